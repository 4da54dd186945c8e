package dto

import (
	"github.com/condoflow/condoflow/internal/domain/invoice"
	"github.com/condoflow/condoflow/internal/types"
	"github.com/condoflow/condoflow/internal/validator"
)

// InvoiceResponse is the external representation of an invoice
type InvoiceResponse struct {
	*invoice.Invoice
}

// ListInvoicesResponse is a paginated list of invoices
type ListInvoicesResponse struct {
	Items []*InvoiceResponse `json:"items"`
	Total int                `json:"total"`
}

// UpdateInvoicePaymentStatusRequest records a payment-side status change
// reported by the payment collaborator
type UpdateInvoicePaymentStatusRequest struct {
	InvoiceStatus types.InvoiceStatus `json:"invoice_status" validate:"required"`
}

func (r *UpdateInvoicePaymentStatusRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.InvoiceStatus.Validate()
}
