package audit

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/types"
)

// Auditable is implemented by every tracked entity. Write paths hand the
// recorder snapshots through this interface instead of relying on any
// transparent interception.
type Auditable interface {
	AuditEntityType() string
	AuditEntityID() string
	AuditSnapshot() map[string]any
}

// RequestOrigin carries the request metadata of the triggering mutation.
// Background jobs pass nil.
type RequestOrigin struct {
	ActorID   *string `json:"actor_id,omitempty"`
	IPAddress *string `json:"ip_address,omitempty"`
	UserAgent *string `json:"user_agent,omitempty"`
}

// FieldChange is a before/after pair for a single field. Created events carry
// only After, deleted events only Before.
type FieldChange struct {
	Before any `json:"before,omitempty"`
	After  any `json:"after,omitempty"`
}

// FieldChanges maps field names to their captured change
type FieldChanges map[string]FieldChange

// Value implements driver.Valuer for jsonb persistence
func (c FieldChanges) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner
func (c *FieldChanges) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	data, ok := value.([]byte)
	if !ok {
		return ierr.NewError("unsupported type for field changes").
			Mark(ierr.ErrDatabase)
	}
	return json.Unmarshal(data, c)
}

// Record is an immutable audit log entry capturing a single entity mutation.
// Records are append-only: no update or delete path exists anywhere.
type Record struct {
	ID         string            `db:"id" json:"id"`
	OrgID      string            `db:"org_id" json:"org_id"`
	ActorID    *string           `db:"actor_id" json:"actor_id,omitempty"`
	Action     types.AuditAction `db:"action" json:"action"`
	EntityType string            `db:"entity_type" json:"entity_type"`
	EntityID   string            `db:"entity_id" json:"entity_id"`
	Changes    FieldChanges      `db:"changes" json:"changes"`
	IPAddress  *string           `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent  *string           `db:"user_agent" json:"user_agent,omitempty"`
	RecordedAt time.Time         `db:"recorded_at" json:"recorded_at"`
}

func (r *Record) Validate() error {
	if err := r.Action.Validate(); err != nil {
		return err
	}

	if r.EntityType == "" || r.EntityID == "" {
		return ierr.NewError("audit target is required").
			WithHint("Audit records must reference a target entity").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// AuditEntityType implements Auditable so the recorder can detect and refuse
// self-referential records.
func (r *Record) AuditEntityType() string {
	return types.EntityTypeAuditRecord
}

// AuditEntityID implements Auditable
func (r *Record) AuditEntityID() string {
	return r.ID
}

// AuditSnapshot implements Auditable
func (r *Record) AuditSnapshot() map[string]any {
	return map[string]any{
		"action":      r.Action.String(),
		"entity_type": r.EntityType,
		"entity_id":   r.EntityID,
	}
}
