package types

import "time"

// QueryFilter holds common pagination and status filtering options
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit"`
	Offset *int    `json:"offset,omitempty" form:"offset"`
	Status *Status `json:"status,omitempty" form:"status"`
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil || *f.Limit <= 0 {
		return 50
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil || *f.Offset < 0 {
		return 0
	}
	return *f.Offset
}

// FeeFilter filters fee definitions
type FeeFilter struct {
	*QueryFilter
	OwnerType *FeeOwnerType `json:"owner_type,omitempty" form:"owner_type"`
	OwnerID   *string       `json:"owner_id,omitempty" form:"owner_id"`
	Active    *bool         `json:"active,omitempty" form:"active"`
	DueBefore *time.Time    `json:"due_before,omitempty" form:"due_before"`
}

// InvoiceFilter filters invoices
type InvoiceFilter struct {
	*QueryFilter
	FeeID         *string        `json:"fee_id,omitempty" form:"fee_id"`
	InvoiceStatus *InvoiceStatus `json:"invoice_status,omitempty" form:"invoice_status"`
	DueBefore     *time.Time     `json:"due_before,omitempty" form:"due_before"`
}

// AuditRecordFilter filters audit records for the read-only reporting surface
type AuditRecordFilter struct {
	*QueryFilter
	EntityType *string      `json:"entity_type,omitempty" form:"entity_type"`
	EntityID   *string      `json:"entity_id,omitempty" form:"entity_id"`
	Action     *AuditAction `json:"action,omitempty" form:"action"`
	ActorID    *string      `json:"actor_id,omitempty" form:"actor_id"`
}
