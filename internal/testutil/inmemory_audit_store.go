package testutil

import (
	"context"
	"sync"

	"github.com/condoflow/condoflow/internal/domain/audit"
	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/types"
)

// InMemoryAuditStore is append-only like its SQL counterpart; records are
// kept in insertion order so tests can assert on the trail sequence.
type InMemoryAuditStore struct {
	mu      sync.RWMutex
	records []*audit.Record
	byID    map[string]*audit.Record

	// CreateErr, when set, makes Create fail; used to verify that audit
	// failures never fail the business mutation
	CreateErr error
}

func NewInMemoryAuditStore() *InMemoryAuditStore {
	return &InMemoryAuditStore{
		byID: make(map[string]*audit.Record),
	}
}

func (s *InMemoryAuditStore) Create(ctx context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}

	if record.ID == "" {
		return ierr.NewError("audit record ID cannot be empty").
			Mark(ierr.ErrValidation)
	}

	if _, exists := s.byID[record.ID]; exists {
		return ierr.NewError("audit record already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	s.records = append(s.records, record)
	s.byID[record.ID] = record
	return nil
}

func (s *InMemoryAuditStore) Get(ctx context.Context, id string) (*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.byID[id]
	if !exists {
		return nil, ierr.NewError("audit record not found").
			WithHint("The audit record does not exist").
			Mark(ierr.ErrNotFound)
	}
	return record, nil
}

func (s *InMemoryAuditStore) List(ctx context.Context, filter *types.AuditRecordFilter) ([]*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter == nil {
		filter = &types.AuditRecordFilter{}
	}

	orgID := types.GetOrgID(ctx)
	var result []*audit.Record
	for _, record := range s.records {
		if orgID != "" && record.OrgID != orgID {
			continue
		}
		if filter.EntityType != nil && record.EntityType != *filter.EntityType {
			continue
		}
		if filter.EntityID != nil && record.EntityID != *filter.EntityID {
			continue
		}
		if filter.Action != nil && record.Action != *filter.Action {
			continue
		}
		if filter.ActorID != nil && (record.ActorID == nil || *record.ActorID != *filter.ActorID) {
			continue
		}
		result = append(result, record)
	}

	offset := filter.GetOffset()
	limit := filter.GetLimit()
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

// All returns every record in insertion order, bypassing org scoping
func (s *InMemoryAuditStore) All() []*audit.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*audit.Record(nil), s.records...)
}

func (s *InMemoryAuditStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.byID = make(map[string]*audit.Record)
	s.CreateErr = nil
}
