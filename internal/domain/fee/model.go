package fee

import (
	"time"

	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/types"
	"github.com/shopspring/decimal"
)

// FeeDefinition is a standing billable obligation tied to a unit or building.
// The recurrence engine advances NextRecurringDate one period at a time; a
// terminated fee is never selected again. Fees are never hard-deleted.
type FeeDefinition struct {
	ID                string                 `db:"id" json:"id"`
	OwnerType         types.FeeOwnerType     `db:"owner_type" json:"owner_type"`
	OwnerID           string                 `db:"owner_id" json:"owner_id"`
	Name              string                 `db:"name" json:"name"`
	Amount            decimal.Decimal        `db:"amount" json:"amount"`
	Currency          string                 `db:"currency" json:"currency"`
	RecurrencePeriod  types.RecurrencePeriod `db:"recurrence_period" json:"recurrence_period"`
	NextRecurringDate time.Time              `db:"next_recurring_date" json:"next_recurring_date"`
	Active            bool                   `db:"active" json:"active"`
	TerminatedAt      *time.Time             `db:"terminated_at" json:"terminated_at,omitempty"`
	types.BaseModel
}

// IsDue reports whether the fee is eligible for invoicing at asOf
func (f *FeeDefinition) IsDue(asOf time.Time) bool {
	return f.Active && f.TerminatedAt == nil && !f.NextRecurringDate.After(asOf)
}

func (f *FeeDefinition) Validate() error {
	if f.Name == "" {
		return ierr.NewError("fee name is required").
			WithHint("Please provide a fee name").
			Mark(ierr.ErrValidation)
	}

	if f.Amount.IsNegative() {
		return ierr.NewError("fee amount must be non negative").
			WithHint("Fee amount must be non negative").
			WithReportableDetails(map[string]any{"amount": f.Amount}).
			Mark(ierr.ErrValidation)
	}

	if len(f.Currency) != 3 {
		return ierr.NewError("invalid currency").
			WithHint("Currency must be a 3 letter ISO code").
			WithReportableDetails(map[string]any{"currency": f.Currency}).
			Mark(ierr.ErrValidation)
	}

	if err := f.OwnerType.Validate(); err != nil {
		return err
	}

	if err := f.RecurrencePeriod.Validate(); err != nil {
		return err
	}

	if f.NextRecurringDate.IsZero() {
		return ierr.NewError("next recurring date is required").
			WithHint("Please provide the first recurrence date").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// AuditEntityType implements audit.Auditable
func (f *FeeDefinition) AuditEntityType() string {
	return types.EntityTypeFeeDefinition
}

// AuditEntityID implements audit.Auditable
func (f *FeeDefinition) AuditEntityID() string {
	return f.ID
}

// AuditSnapshot implements audit.Auditable. Field names follow the persisted
// column names so audit diffs read like the schema.
func (f *FeeDefinition) AuditSnapshot() map[string]any {
	snapshot := map[string]any{
		"owner_type":          f.OwnerType.String(),
		"owner_id":            f.OwnerID,
		"name":                f.Name,
		"amount":              f.Amount.String(),
		"currency":            f.Currency,
		"recurrence_period":   f.RecurrencePeriod.String(),
		"next_recurring_date": f.NextRecurringDate.Format(time.RFC3339),
		"active":              f.Active,
		"status":              f.Status.String(),
		"updated_at":          f.UpdatedAt.Format(time.RFC3339Nano),
		"updated_by":          f.UpdatedBy,
	}
	if f.TerminatedAt != nil {
		snapshot["terminated_at"] = f.TerminatedAt.Format(time.RFC3339)
	}
	return snapshot
}
