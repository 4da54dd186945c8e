package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/condoflow/condoflow/internal/domain/fee"
	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/types"
)

type InMemoryFeeStore struct {
	mu   sync.RWMutex
	fees map[string]*fee.FeeDefinition
}

func NewInMemoryFeeStore() *InMemoryFeeStore {
	return &InMemoryFeeStore{
		fees: make(map[string]*fee.FeeDefinition),
	}
}

func copyFee(f *fee.FeeDefinition) *fee.FeeDefinition {
	c := *f
	if f.TerminatedAt != nil {
		t := *f.TerminatedAt
		c.TerminatedAt = &t
	}
	return &c
}

func (s *InMemoryFeeStore) Create(ctx context.Context, f *fee.FeeDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		return ierr.NewError("fee ID cannot be empty").
			Mark(ierr.ErrValidation)
	}

	if _, exists := s.fees[f.ID]; exists {
		return ierr.NewError("fee already exists").
			WithHint("A fee with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	s.fees[f.ID] = copyFee(f)
	return nil
}

func (s *InMemoryFeeStore) Get(ctx context.Context, id string) (*fee.FeeDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.fees[id]
	if !exists {
		return nil, ierr.NewError("fee not found").
			WithHint("The fee definition does not exist").
			Mark(ierr.ErrNotFound)
	}
	return copyFee(f), nil
}

// GetForUpdate behaves like Get; the in-memory store has no row locks
func (s *InMemoryFeeStore) GetForUpdate(ctx context.Context, id string) (*fee.FeeDefinition, error) {
	return s.Get(ctx, id)
}

func (s *InMemoryFeeStore) Update(ctx context.Context, f *fee.FeeDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.fees[f.ID]; !exists {
		return ierr.NewError("fee not found").
			WithHint("The fee definition does not exist").
			Mark(ierr.ErrNotFound)
	}

	s.fees[f.ID] = copyFee(f)
	return nil
}

func (s *InMemoryFeeStore) List(ctx context.Context, filter *types.FeeFilter) ([]*fee.FeeDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter == nil {
		filter = &types.FeeFilter{}
	}

	orgID := types.GetOrgID(ctx)
	var result []*fee.FeeDefinition
	for _, f := range s.fees {
		if orgID != "" && f.OrgID != orgID {
			continue
		}
		if filter.OwnerType != nil && f.OwnerType != *filter.OwnerType {
			continue
		}
		if filter.OwnerID != nil && f.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Active != nil && f.Active != *filter.Active {
			continue
		}
		if filter.DueBefore != nil && f.NextRecurringDate.After(*filter.DueBefore) {
			continue
		}
		if filter.QueryFilter != nil && filter.Status != nil && f.Status != *filter.Status {
			continue
		}
		result = append(result, copyFee(f))
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return paginateFees(result, filter.GetLimit(), filter.GetOffset()), nil
}

func (s *InMemoryFeeStore) ListDue(ctx context.Context, asOf time.Time, limit, offset int) ([]*fee.FeeDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*fee.FeeDefinition
	for _, f := range s.fees {
		if f.Status != types.StatusActive {
			continue
		}
		if !f.IsDue(asOf) {
			continue
		}
		result = append(result, copyFee(f))
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return paginateFees(result, limit, offset), nil
}

func paginateFees(fees []*fee.FeeDefinition, limit, offset int) []*fee.FeeDefinition {
	if offset >= len(fees) {
		return nil
	}
	end := offset + limit
	if end > len(fees) {
		end = len(fees)
	}
	return fees[offset:end]
}

func (s *InMemoryFeeStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fees = make(map[string]*fee.FeeDefinition)
}
