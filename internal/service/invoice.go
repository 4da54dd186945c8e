package service

import (
	"context"
	"time"

	"github.com/condoflow/condoflow/internal/api/dto"
	"github.com/condoflow/condoflow/internal/domain/audit"
	"github.com/condoflow/condoflow/internal/domain/invoice"
	"github.com/condoflow/condoflow/internal/types"
)

// markOverdueBatchSize bounds each page of the overdue scan
const markOverdueBatchSize = 100

// InvoiceService serves the invoice read surface, the overdue marker
// pipeline, and payment-side status changes reported by the payment system
type InvoiceService interface {
	// GetInvoice retrieves an invoice by ID
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)

	// ListInvoices retrieves invoices matching the filter
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)

	// MarkOverdueInvoices transitions every pending invoice whose due date
	// has passed to overdue. Re-running is a no-op for invoices already
	// marked; one failing invoice never blocks the rest.
	MarkOverdueInvoices(ctx context.Context) (*dto.OverdueRunResponse, error)

	// UpdatePaymentStatus applies a payment-reported status change (paid or
	// cancelled) under the invoice state machine
	UpdatePaymentStatus(ctx context.Context, id string, req *dto.UpdateInvoicePaymentStatusRequest, origin *audit.RequestOrigin) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
	auditService AuditService
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		auditService:  NewAuditService(params),
	}
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceResponse{Invoice: inv}, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = &types.InvoiceFilter{}
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	response := &dto.ListInvoicesResponse{
		Items: make([]*dto.InvoiceResponse, len(invoices)),
		Total: len(invoices),
	}
	for i, inv := range invoices {
		response.Items[i] = &dto.InvoiceResponse{Invoice: inv}
	}
	return response, nil
}

func (s *invoiceService) MarkOverdueInvoices(ctx context.Context) (*dto.OverdueRunResponse, error) {
	asOf := s.Clock.Now()
	response := &dto.OverdueRunResponse{RunAt: asOf}

	// successfully marked invoices leave the predicate, so each pass re-lists
	// from the front; the offset only walks past invoices that failed and
	// would otherwise be retried forever within this run
	offset := 0
	for {
		batch, err := s.InvoiceRepo.ListPendingDueBefore(ctx, asOf, markOverdueBatchSize, offset)
		if err != nil {
			return response, err
		}
		if len(batch) == 0 {
			break
		}

		for _, inv := range batch {
			if err := s.markOverdue(ctx, inv, asOf); err != nil {
				s.Logger.Errorw("failed to mark invoice overdue",
					"invoice_id", inv.ID,
					"error", err,
				)
				response.TotalFailed++
				offset++
				continue
			}
			response.TotalMarked++
		}

		if len(batch) < markOverdueBatchSize {
			break
		}
	}

	s.Logger.Infow("overdue marking run completed",
		"as_of", asOf,
		"total_marked", response.TotalMarked,
		"total_failed", response.TotalFailed,
	)
	return response, nil
}

// markOverdue transitions one invoice in its own transaction, re-reading it
// under the transaction so a concurrent payment observed between listing and
// marking wins
func (s *invoiceService) markOverdue(ctx context.Context, stale *invoice.Invoice, asOf time.Time) error {
	invCtx := types.SetOrgID(ctx, stale.OrgID)

	var (
		marked     *invoice.Invoice
		beforeSnap map[string]any
	)

	err := s.DB.WithTx(invCtx, func(txCtx context.Context) error {
		inv, err := s.InvoiceRepo.Get(txCtx, stale.ID)
		if err != nil {
			return err
		}

		// already paid, cancelled, or marked by a concurrent run
		if inv.InvoiceStatus != types.InvoiceStatusPending {
			return nil
		}
		if !inv.DueDate.Before(asOf) {
			return nil
		}

		beforeSnap = inv.AuditSnapshot()

		if err := inv.TransitionTo(types.InvoiceStatusOverdue, asOf); err != nil {
			return err
		}
		inv.UpdatedAt = s.Clock.Now()
		inv.UpdatedBy = types.GetActorID(txCtx)

		if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
			return err
		}

		marked = inv
		return nil
	})
	if err != nil {
		return err
	}

	if marked != nil {
		s.auditService.RecordUpdated(invCtx, marked, beforeSnap, nil)
	}
	return nil
}

func (s *invoiceService) UpdatePaymentStatus(ctx context.Context, id string, req *dto.UpdateInvoicePaymentStatusRequest, origin *audit.RequestOrigin) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		updated    *invoice.Invoice
		beforeSnap map[string]any
	)

	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		inv, err := s.InvoiceRepo.Get(txCtx, id)
		if err != nil {
			return err
		}

		beforeSnap = inv.AuditSnapshot()

		if err := inv.TransitionTo(req.InvoiceStatus, s.Clock.Now()); err != nil {
			return err
		}
		inv.UpdatedAt = s.Clock.Now()
		inv.UpdatedBy = types.GetActorID(txCtx)

		if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
			return err
		}

		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.RecordUpdated(ctx, updated, beforeSnap, origin)

	return &dto.InvoiceResponse{Invoice: updated}, nil
}
