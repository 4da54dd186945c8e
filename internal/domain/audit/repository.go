package audit

import (
	"context"

	"github.com/condoflow/condoflow/internal/types"
)

// Repository defines the interface for audit record persistence.
// The trail is append-only: the interface intentionally exposes no update or
// delete operation.
type Repository interface {
	// Create appends a new audit record
	Create(ctx context.Context, record *Record) error

	// Get retrieves an audit record by ID
	Get(ctx context.Context, id string) (*Record, error)

	// List retrieves audit records for the read-only reporting surface
	List(ctx context.Context, filter *types.AuditRecordFilter) ([]*Record, error)
}
