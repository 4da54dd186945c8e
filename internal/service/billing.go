package service

import (
	"context"
	"time"

	"github.com/condoflow/condoflow/internal/api/dto"
	"github.com/condoflow/condoflow/internal/domain/fee"
	"github.com/condoflow/condoflow/internal/domain/invoice"
	"github.com/condoflow/condoflow/internal/types"
)

// BillingService turns due fee definitions into invoices. One invoice is
// generated per elapsed recurrence period; a fee that has been overdue for
// several periods is caught up in a single run, one invoice each.
type BillingService interface {
	// ProcessRecurringFees runs a full billing pass at the current instant:
	// collect due fees, then generate invoices for each
	ProcessRecurringFees(ctx context.Context) (*dto.RecurringBillingRunResponse, error)

	// GenerateInvoices generates invoices for the given fees as of asOf.
	// Each fee is processed in its own transaction; one failing fee never
	// blocks the rest of the run.
	GenerateInvoices(ctx context.Context, dueFees []*fee.FeeDefinition, asOf time.Time) (*dto.RecurringBillingRunResponse, error)
}

type billingService struct {
	ServiceParams
	feeService   FeeService
	auditService AuditService
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{
		ServiceParams: params,
		feeService:    NewFeeService(params),
		auditService:  NewAuditService(params),
	}
}

func (s *billingService) ProcessRecurringFees(ctx context.Context) (*dto.RecurringBillingRunResponse, error) {
	asOf := s.Clock.Now()

	dueFees, err := s.feeService.CollectDueFees(ctx, asOf)
	if err != nil {
		return nil, err
	}

	return s.GenerateInvoices(ctx, dueFees, asOf)
}

func (s *billingService) GenerateInvoices(ctx context.Context, dueFees []*fee.FeeDefinition, asOf time.Time) (*dto.RecurringBillingRunResponse, error) {
	response := &dto.RecurringBillingRunResponse{
		RunAt:     asOf,
		Items:     make([]*dto.RecurringBillingRunItem, 0, len(dueFees)),
		TotalFees: len(dueFees),
	}

	for _, f := range dueFees {
		item := s.processFee(ctx, f, asOf)
		response.Items = append(response.Items, item)

		response.TotalInvoices += item.PeriodsBilled
		response.TotalSkipped += item.PeriodsSkipped
		if !item.Success {
			response.TotalFailed++
		}
	}

	s.Logger.Infow("invoice generation run completed",
		"as_of", asOf,
		"total_fees", response.TotalFees,
		"total_invoices", response.TotalInvoices,
		"total_skipped", response.TotalSkipped,
		"total_failed", response.TotalFailed,
	)
	return response, nil
}

// processFee bills every elapsed period of a single fee inside one
// transaction: lock the fee row, create one invoice per period, advance the
// recurrence cursor, and commit all of it atomically. Audit records are
// written after the transaction succeeds.
func (s *billingService) processFee(ctx context.Context, f *fee.FeeDefinition, asOf time.Time) *dto.RecurringBillingRunItem {
	item := &dto.RecurringBillingRunItem{FeeID: f.ID}

	// fees are selected across organizations; scope everything billed for
	// this fee to its own organization
	feeCtx := types.SetOrgID(ctx, f.OrgID)

	var (
		created    []*invoice.Invoice
		beforeSnap map[string]any
		lockedFee  *fee.FeeDefinition
	)

	err := s.DB.WithTx(feeCtx, func(txCtx context.Context) error {
		locked, err := s.FeeRepo.GetForUpdate(txCtx, f.ID)
		if err != nil {
			return err
		}

		// the selection snapshot can be stale: a concurrent run may have
		// advanced the cursor, or an operator may have terminated the fee
		if !locked.IsDue(asOf) {
			if locked.TerminatedAt != nil {
				s.Logger.Errorw("terminated fee reached invoice generation",
					"fee_id", locked.ID,
					"terminated_at", locked.TerminatedAt,
				)
			}
			return nil
		}

		beforeSnap = locked.AuditSnapshot()

		cursor := locked.NextRecurringDate
		for !cursor.After(asOf) {
			periodEnd, err := types.NextRecurringDate(cursor, locked.RecurrencePeriod)
			if err != nil {
				return err
			}

			exists, err := s.InvoiceRepo.ExistsForPeriod(txCtx, locked.ID, cursor)
			if err != nil {
				return err
			}
			if exists {
				item.PeriodsSkipped++
				cursor = periodEnd
				continue
			}

			inv, err := s.buildInvoice(txCtx, locked, cursor, periodEnd)
			if err != nil {
				return err
			}
			if err := s.InvoiceRepo.Create(txCtx, inv); err != nil {
				return err
			}

			created = append(created, inv)
			item.PeriodsBilled++
			item.InvoiceIDs = append(item.InvoiceIDs, inv.ID)

			cursor = periodEnd
		}

		locked.NextRecurringDate = cursor
		locked.UpdatedAt = s.Clock.Now()
		locked.UpdatedBy = types.GetActorID(txCtx)
		if err := s.FeeRepo.Update(txCtx, locked); err != nil {
			return err
		}

		lockedFee = locked
		return nil
	})
	if err != nil {
		s.Logger.Errorw("invoice generation failed for fee",
			"fee_id", f.ID,
			"error", err,
		)
		item.Error = err.Error()
		return item
	}

	item.Success = true

	for _, inv := range created {
		s.auditService.RecordCreated(feeCtx, inv, nil)
	}
	if lockedFee != nil {
		s.auditService.RecordUpdated(feeCtx, lockedFee, beforeSnap, nil)
	}

	return item
}

func (s *billingService) buildInvoice(ctx context.Context, f *fee.FeeDefinition, periodStart, periodEnd time.Time) (*invoice.Invoice, error) {
	number, err := s.InvoiceRepo.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		FeeID:         f.ID,
		OwnerType:     f.OwnerType,
		OwnerID:       f.OwnerID,
		Amount:        f.Amount,
		Currency:      f.Currency,
		InvoiceStatus: types.InvoiceStatusPending,
		InvoiceNumber: number,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		DueDate:       periodStart.AddDate(0, 0, s.Config.Billing.DueNetDays),
		IssuedAt:      s.Clock.Now(),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}
