package service

import (
	"context"

	"github.com/condoflow/condoflow/internal/api/dto"
	"github.com/condoflow/condoflow/internal/domain/audit"
	"github.com/condoflow/condoflow/internal/types"
)

// AuditService records entity mutations and serves the read-only trail.
// Recording is best-effort: a failed audit write is logged and swallowed so
// it never fails the business mutation it describes.
type AuditService interface {
	// RecordCreated records a creation event from the entity's current state
	RecordCreated(ctx context.Context, entity audit.Auditable, origin *audit.RequestOrigin)

	// RecordUpdated records an update event from a before snapshot and the
	// entity's current state. A diff touching only volatile bookkeeping
	// fields produces no record.
	RecordUpdated(ctx context.Context, entity audit.Auditable, before map[string]any, origin *audit.RequestOrigin)

	// RecordDeleted records a soft-deletion event from the entity's last
	// known state
	RecordDeleted(ctx context.Context, entity audit.Auditable, origin *audit.RequestOrigin)

	// RecordRestored records a restoration event from the entity's current state
	RecordRestored(ctx context.Context, entity audit.Auditable, origin *audit.RequestOrigin)

	// GetRecord retrieves a single audit record
	GetRecord(ctx context.Context, id string) (*dto.AuditRecordResponse, error)

	// ListRecords retrieves audit records matching the filter
	ListRecords(ctx context.Context, filter *types.AuditRecordFilter) (*dto.ListAuditRecordsResponse, error)
}

type auditService struct {
	ServiceParams
}

func NewAuditService(params ServiceParams) AuditService {
	return &auditService{ServiceParams: params}
}

func (s *auditService) RecordCreated(ctx context.Context, entity audit.Auditable, origin *audit.RequestOrigin) {
	s.record(ctx, types.AuditActionCreated, entity, nil, entity.AuditSnapshot(), origin)
}

func (s *auditService) RecordUpdated(ctx context.Context, entity audit.Auditable, before map[string]any, origin *audit.RequestOrigin) {
	s.record(ctx, types.AuditActionUpdated, entity, before, entity.AuditSnapshot(), origin)
}

func (s *auditService) RecordDeleted(ctx context.Context, entity audit.Auditable, origin *audit.RequestOrigin) {
	s.record(ctx, types.AuditActionDeleted, entity, entity.AuditSnapshot(), nil, origin)
}

func (s *auditService) RecordRestored(ctx context.Context, entity audit.Auditable, origin *audit.RequestOrigin) {
	s.record(ctx, types.AuditActionRestored, entity, nil, entity.AuditSnapshot(), origin)
}

// record builds and persists a single audit record. It refuses to audit the
// audit trail itself, drops empty update diffs, and never returns an error:
// failures are logged and the triggering mutation proceeds untouched.
func (s *auditService) record(
	ctx context.Context,
	action types.AuditAction,
	entity audit.Auditable,
	before, after map[string]any,
	origin *audit.RequestOrigin,
) {
	if entity.AuditEntityType() == types.EntityTypeAuditRecord {
		s.Logger.Debugw("skipping audit of audit record", "entity_id", entity.AuditEntityID())
		return
	}

	changes := audit.BuildChanges(action, before, after)
	if action == types.AuditActionUpdated && len(changes) == 0 {
		s.Logger.Debugw("skipping audit for no-op update",
			"entity_type", entity.AuditEntityType(),
			"entity_id", entity.AuditEntityID(),
		)
		return
	}

	record := &audit.Record{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT_RECORD),
		OrgID:      types.GetOrgID(ctx),
		Action:     action,
		EntityType: entity.AuditEntityType(),
		EntityID:   entity.AuditEntityID(),
		Changes:    changes,
		RecordedAt: s.Clock.Now(),
	}
	if origin != nil {
		record.ActorID = origin.ActorID
		record.IPAddress = origin.IPAddress
		record.UserAgent = origin.UserAgent
	}

	if err := record.Validate(); err != nil {
		s.Logger.Errorw("invalid audit record dropped",
			"error", err,
			"entity_type", record.EntityType,
			"entity_id", record.EntityID,
			"action", record.Action,
		)
		return
	}

	if err := s.AuditRepo.Create(ctx, record); err != nil {
		s.Logger.Errorw("failed to persist audit record",
			"error", err,
			"entity_type", record.EntityType,
			"entity_id", record.EntityID,
			"action", record.Action,
		)
	}
}

func (s *auditService) GetRecord(ctx context.Context, id string) (*dto.AuditRecordResponse, error) {
	record, err := s.AuditRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.AuditRecordResponse{Record: record}, nil
}

func (s *auditService) ListRecords(ctx context.Context, filter *types.AuditRecordFilter) (*dto.ListAuditRecordsResponse, error) {
	if filter == nil {
		filter = &types.AuditRecordFilter{}
	}

	records, err := s.AuditRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	response := &dto.ListAuditRecordsResponse{
		Items: make([]*dto.AuditRecordResponse, len(records)),
		Total: len(records),
	}
	for i, record := range records {
		response.Items[i] = &dto.AuditRecordResponse{Record: record}
	}
	return response, nil
}
