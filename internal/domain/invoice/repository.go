package invoice

import (
	"context"
	"time"

	"github.com/condoflow/condoflow/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create creates a new invoice
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update updates an existing invoice
	Update(ctx context.Context, invoice *Invoice) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// ExistsForPeriod reports whether an invoice already exists for the given
	// fee and recurrence period start. Backs the at-most-one-invoice-per-period
	// invariant against duplicate dispatch.
	ExistsForPeriod(ctx context.Context, feeID string, periodStart time.Time) (bool, error)

	// ListPendingDueBefore retrieves, across all organizations, the pending
	// invoices whose due date is strictly before asOf
	ListPendingDueBefore(ctx context.Context, asOf time.Time, limit, offset int) ([]*Invoice, error)

	// NextInvoiceNumber atomically allocates the next sequential invoice
	// number for the organization in context
	NextInvoiceNumber(ctx context.Context) (string, error)
}
