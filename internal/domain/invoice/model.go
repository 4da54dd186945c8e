package invoice

import (
	"time"

	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is a dated charge produced from a fee definition for one
// recurrence period. Exactly one invoice exists per (fee, period start).
type Invoice struct {
	ID            string              `db:"id" json:"id"`
	FeeID         string              `db:"fee_id" json:"fee_id"`
	OwnerType     types.FeeOwnerType  `db:"owner_type" json:"owner_type"`
	OwnerID       string              `db:"owner_id" json:"owner_id"`
	Amount        decimal.Decimal     `db:"amount" json:"amount"`
	Currency      string              `db:"currency" json:"currency"`
	InvoiceStatus types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	InvoiceNumber string              `db:"invoice_number" json:"invoice_number"`
	PeriodStart   time.Time           `db:"period_start" json:"period_start"`
	PeriodEnd     time.Time           `db:"period_end" json:"period_end"`
	DueDate       time.Time           `db:"due_date" json:"due_date"`
	IssuedAt      time.Time           `db:"issued_at" json:"issued_at"`
	PaidAt        *time.Time          `db:"paid_at" json:"paid_at,omitempty"`
	CancelledAt   *time.Time          `db:"cancelled_at" json:"cancelled_at,omitempty"`
	types.BaseModel
}

func (i *Invoice) Validate() error {
	if i.Amount.IsNegative() {
		return ierr.NewError("invoice amount must be non negative").
			WithHint("Invoice amount must be non negative").
			WithReportableDetails(map[string]any{"amount": i.Amount}).
			Mark(ierr.ErrValidation)
	}

	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}

	if i.PeriodEnd.Before(i.PeriodStart) {
		return ierr.NewError("period_end must be after period_start").
			WithHint("Invoice period end must be after the period start").
			Mark(ierr.ErrValidation)
	}

	if i.InvoiceNumber == "" {
		return ierr.NewError("invoice number is required").
			WithHint("Invoice number must be allocated before persisting").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// TransitionTo moves the invoice to target, enforcing the monotone state
// machine. The timestamp of terminal transitions is recorded from at.
func (i *Invoice) TransitionTo(target types.InvoiceStatus, at time.Time) error {
	if !i.InvoiceStatus.CanTransitionTo(target) {
		return ierr.NewError("invoice status transition not allowed").
			WithHintf("Cannot transition invoice from %s to %s", i.InvoiceStatus, target).
			WithReportableDetails(map[string]any{
				"invoice_id": i.ID,
				"from":       i.InvoiceStatus,
				"to":         target,
			}).
			Mark(ierr.ErrInvalidTransition)
	}

	i.InvoiceStatus = target
	switch target {
	case types.InvoiceStatusPaid:
		paidAt := at
		i.PaidAt = &paidAt
	case types.InvoiceStatusCancelled:
		cancelledAt := at
		i.CancelledAt = &cancelledAt
	}
	return nil
}

// AuditEntityType implements audit.Auditable
func (i *Invoice) AuditEntityType() string {
	return types.EntityTypeInvoice
}

// AuditEntityID implements audit.Auditable
func (i *Invoice) AuditEntityID() string {
	return i.ID
}

// AuditSnapshot implements audit.Auditable
func (i *Invoice) AuditSnapshot() map[string]any {
	snapshot := map[string]any{
		"fee_id":         i.FeeID,
		"owner_type":     i.OwnerType.String(),
		"owner_id":       i.OwnerID,
		"amount":         i.Amount.String(),
		"currency":       i.Currency,
		"invoice_status": i.InvoiceStatus.String(),
		"invoice_number": i.InvoiceNumber,
		"period_start":   i.PeriodStart.Format(time.RFC3339),
		"period_end":     i.PeriodEnd.Format(time.RFC3339),
		"due_date":       i.DueDate.Format(time.RFC3339),
		"issued_at":      i.IssuedAt.Format(time.RFC3339),
		"status":         i.Status.String(),
		"updated_at":     i.UpdatedAt.Format(time.RFC3339Nano),
		"updated_by":     i.UpdatedBy,
	}
	if i.PaidAt != nil {
		snapshot["paid_at"] = i.PaidAt.Format(time.RFC3339)
	}
	if i.CancelledAt != nil {
		snapshot["cancelled_at"] = i.CancelledAt.Format(time.RFC3339)
	}
	return snapshot
}
