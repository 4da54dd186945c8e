package fee

import (
	"context"
	"time"

	"github.com/condoflow/condoflow/internal/types"
)

// Repository defines the interface for fee definition persistence
type Repository interface {
	// Create creates a new fee definition
	Create(ctx context.Context, fee *FeeDefinition) error

	// Get retrieves a fee definition by ID
	Get(ctx context.Context, id string) (*FeeDefinition, error)

	// GetForUpdate retrieves a fee definition by ID taking a row-level lock.
	// Must be called inside a transaction; it is the per-fee mutual-exclusion
	// scope that serializes invoice generation against concurrent re-entry.
	GetForUpdate(ctx context.Context, id string) (*FeeDefinition, error)

	// Update updates an existing fee definition
	Update(ctx context.Context, fee *FeeDefinition) error

	// List retrieves fee definitions based on filter criteria
	List(ctx context.Context, filter *types.FeeFilter) ([]*FeeDefinition, error)

	// ListDue retrieves, across all organizations, the active, unterminated
	// fee definitions whose next recurring date is not after asOf. Selection
	// never mutates the recurrence cursor.
	ListDue(ctx context.Context, asOf time.Time, limit, offset int) ([]*FeeDefinition, error)
}
