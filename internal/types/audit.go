package types

import (
	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/samber/lo"
)

// AuditAction is the kind of entity mutation captured by an audit record
type AuditAction string

const (
	AuditActionCreated  AuditAction = "created"
	AuditActionUpdated  AuditAction = "updated"
	AuditActionDeleted  AuditAction = "deleted"
	AuditActionRestored AuditAction = "restored"
)

func (a AuditAction) String() string {
	return string(a)
}

func (a AuditAction) Validate() error {
	allowed := []AuditAction{
		AuditActionCreated,
		AuditActionUpdated,
		AuditActionDeleted,
		AuditActionRestored,
	}
	if !lo.Contains(allowed, a) {
		return ierr.NewError("invalid audit action").
			WithHint("Please provide a valid audit action").
			WithReportableDetails(map[string]any{
				"allowed":  allowed,
				"provided": a,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Tracked entity types. EntityTypeAuditRecord exists so the recorder can
// refuse to audit itself.
const (
	EntityTypeFeeDefinition = "fee_definition"
	EntityTypeInvoice       = "invoice"
	EntityTypeAuditRecord   = "audit_record"
)
