package dto

import (
	"context"
	"time"

	"github.com/condoflow/condoflow/internal/domain/fee"
	"github.com/condoflow/condoflow/internal/types"
	"github.com/condoflow/condoflow/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateFeeRequest creates a standing fee definition for a unit or building
type CreateFeeRequest struct {
	OwnerType          types.FeeOwnerType     `json:"owner_type" validate:"required"`
	OwnerID            string                 `json:"owner_id" validate:"required"`
	Name               string                 `json:"name" validate:"required"`
	Amount             decimal.Decimal        `json:"amount" validate:"required"`
	Currency           string                 `json:"currency" validate:"required,len=3"`
	RecurrencePeriod   types.RecurrencePeriod `json:"recurrence_period" validate:"required"`
	FirstRecurringDate time.Time              `json:"first_recurring_date" validate:"required"`
}

func (r *CreateFeeRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.OwnerType.Validate(); err != nil {
		return err
	}
	return r.RecurrencePeriod.Validate()
}

// ToFeeDefinition converts the request to a domain fee definition
func (r *CreateFeeRequest) ToFeeDefinition(ctx context.Context) *fee.FeeDefinition {
	return &fee.FeeDefinition{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE),
		OwnerType:         r.OwnerType,
		OwnerID:           r.OwnerID,
		Name:              r.Name,
		Amount:            r.Amount,
		Currency:          r.Currency,
		RecurrencePeriod:  r.RecurrencePeriod,
		NextRecurringDate: r.FirstRecurringDate.UTC(),
		Active:            true,
		BaseModel:         types.GetDefaultBaseModel(ctx),
	}
}

// UpdateFeeRequest updates the operator-editable fields of a fee definition
type UpdateFeeRequest struct {
	Name   *string          `json:"name,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// FeeResponse is the external representation of a fee definition
type FeeResponse struct {
	*fee.FeeDefinition
}

// ListFeesResponse is a paginated list of fee definitions
type ListFeesResponse struct {
	Items []*FeeResponse `json:"items"`
	Total int            `json:"total"`
}
