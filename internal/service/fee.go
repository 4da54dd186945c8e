package service

import (
	"context"
	"time"

	"github.com/condoflow/condoflow/internal/api/dto"
	"github.com/condoflow/condoflow/internal/domain/audit"
	"github.com/condoflow/condoflow/internal/domain/fee"
	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/types"
)

// collectDueFeesBatchSize bounds each ListDue page during fee collection
const collectDueFeesBatchSize = 100

// FeeService manages the lifecycle of standing fee definitions
type FeeService interface {
	// CreateFee creates a new fee definition
	CreateFee(ctx context.Context, req *dto.CreateFeeRequest, origin *audit.RequestOrigin) (*dto.FeeResponse, error)

	// GetFee retrieves a fee definition by ID
	GetFee(ctx context.Context, id string) (*dto.FeeResponse, error)

	// ListFees retrieves fee definitions matching the filter
	ListFees(ctx context.Context, filter *types.FeeFilter) (*dto.ListFeesResponse, error)

	// UpdateFee updates the operator-editable fields of a fee definition
	UpdateFee(ctx context.Context, id string, req *dto.UpdateFeeRequest, origin *audit.RequestOrigin) (*dto.FeeResponse, error)

	// TerminateFee permanently retires a fee definition. No further invoices
	// are generated for it; existing invoices are untouched.
	TerminateFee(ctx context.Context, id string, origin *audit.RequestOrigin) (*dto.FeeResponse, error)

	// CollectDueFees returns, across all organizations, every active fee
	// whose recurrence cursor is at or before asOf. Collection is a pure
	// read; cursors advance only when invoices are generated.
	CollectDueFees(ctx context.Context, asOf time.Time) ([]*fee.FeeDefinition, error)
}

type feeService struct {
	ServiceParams
	auditService AuditService
}

func NewFeeService(params ServiceParams) FeeService {
	return &feeService{
		ServiceParams: params,
		auditService:  NewAuditService(params),
	}
}

func (s *feeService) CreateFee(ctx context.Context, req *dto.CreateFeeRequest, origin *audit.RequestOrigin) (*dto.FeeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	f := req.ToFeeDefinition(ctx)
	if err := f.Validate(); err != nil {
		return nil, err
	}

	if err := s.FeeRepo.Create(ctx, f); err != nil {
		return nil, err
	}

	s.auditService.RecordCreated(ctx, f, origin)

	return &dto.FeeResponse{FeeDefinition: f}, nil
}

func (s *feeService) GetFee(ctx context.Context, id string) (*dto.FeeResponse, error) {
	f, err := s.FeeRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.FeeResponse{FeeDefinition: f}, nil
}

func (s *feeService) ListFees(ctx context.Context, filter *types.FeeFilter) (*dto.ListFeesResponse, error) {
	if filter == nil {
		filter = &types.FeeFilter{}
	}

	fees, err := s.FeeRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	response := &dto.ListFeesResponse{
		Items: make([]*dto.FeeResponse, len(fees)),
		Total: len(fees),
	}
	for i, f := range fees {
		response.Items[i] = &dto.FeeResponse{FeeDefinition: f}
	}
	return response, nil
}

func (s *feeService) UpdateFee(ctx context.Context, id string, req *dto.UpdateFeeRequest, origin *audit.RequestOrigin) (*dto.FeeResponse, error) {
	f, err := s.FeeRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	before := f.AuditSnapshot()

	if req.Name != nil {
		f.Name = *req.Name
	}
	if req.Amount != nil {
		f.Amount = *req.Amount
	}
	f.UpdatedAt = s.Clock.Now()
	f.UpdatedBy = types.GetActorID(ctx)

	if err := f.Validate(); err != nil {
		return nil, err
	}

	if err := s.FeeRepo.Update(ctx, f); err != nil {
		return nil, err
	}

	s.auditService.RecordUpdated(ctx, f, before, origin)

	return &dto.FeeResponse{FeeDefinition: f}, nil
}

func (s *feeService) TerminateFee(ctx context.Context, id string, origin *audit.RequestOrigin) (*dto.FeeResponse, error) {
	f, err := s.FeeRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if f.TerminatedAt != nil {
		return nil, ierr.NewError("fee is already terminated").
			WithHint("The fee definition has already been terminated").
			WithReportableDetails(map[string]any{"fee_id": id}).
			Mark(ierr.ErrInvalidOperation)
	}

	before := f.AuditSnapshot()

	now := s.Clock.Now()
	f.Active = false
	f.TerminatedAt = &now
	f.UpdatedAt = now
	f.UpdatedBy = types.GetActorID(ctx)

	if err := s.FeeRepo.Update(ctx, f); err != nil {
		return nil, err
	}

	s.auditService.RecordUpdated(ctx, f, before, origin)

	return &dto.FeeResponse{FeeDefinition: f}, nil
}

func (s *feeService) CollectDueFees(ctx context.Context, asOf time.Time) ([]*fee.FeeDefinition, error) {
	var dueFees []*fee.FeeDefinition

	offset := 0
	for {
		batch, err := s.FeeRepo.ListDue(ctx, asOf, collectDueFeesBatchSize, offset)
		if err != nil {
			return nil, err
		}

		dueFees = append(dueFees, batch...)

		if len(batch) < collectDueFeesBatchSize {
			break
		}
		offset += len(batch)
	}

	s.Logger.Debugw("collected due fees", "as_of", asOf, "count", len(dueFees))
	return dueFees, nil
}
