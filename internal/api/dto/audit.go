package dto

import "github.com/condoflow/condoflow/internal/domain/audit"

// AuditRecordResponse is the external representation of an audit record
type AuditRecordResponse struct {
	*audit.Record
}

// ListAuditRecordsResponse is a paginated list of audit records
type ListAuditRecordsResponse struct {
	Items []*AuditRecordResponse `json:"items"`
	Total int                    `json:"total"`
}
