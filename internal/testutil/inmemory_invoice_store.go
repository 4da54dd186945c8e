package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/condoflow/condoflow/internal/domain/invoice"
	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/types"
)

type InMemoryInvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]*invoice.Invoice
	// sequences mirrors the invoice_sequences table, keyed by org and YYYYMM
	sequences map[string]int64
	now       func() time.Time
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		invoices:  make(map[string]*invoice.Invoice),
		sequences: make(map[string]int64),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetNow overrides the instant used for invoice number allocation
func (s *InMemoryInvoiceStore) SetNow(now func() time.Time) {
	s.now = now
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	c := *inv
	if inv.PaidAt != nil {
		t := *inv.PaidAt
		c.PaidAt = &t
	}
	if inv.CancelledAt != nil {
		t := *inv.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.ID == "" {
		return ierr.NewError("invoice ID cannot be empty").
			Mark(ierr.ErrValidation)
	}

	if _, exists := s.invoices[inv.ID]; exists {
		return ierr.NewError("invoice already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	// mirror the unique index on (fee_id, period_start)
	for _, existing := range s.invoices {
		if existing.FeeID == inv.FeeID && existing.PeriodStart.Equal(inv.PeriodStart) {
			return ierr.NewError("invoice already exists for period").
				WithHint("An invoice already exists for this fee and period").
				WithReportableDetails(map[string]any{
					"fee_id":       inv.FeeID,
					"period_start": inv.PeriodStart,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	s.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, exists := s.invoices[id]
	if !exists {
		return nil, ierr.NewError("invoice not found").
			WithHint("The invoice does not exist").
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; !exists {
		return ierr.NewError("invoice not found").
			WithHint("The invoice does not exist").
			Mark(ierr.ErrNotFound)
	}

	s.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter == nil {
		filter = &types.InvoiceFilter{}
	}

	orgID := types.GetOrgID(ctx)
	var result []*invoice.Invoice
	for _, inv := range s.invoices {
		if orgID != "" && inv.OrgID != orgID {
			continue
		}
		if filter.FeeID != nil && inv.FeeID != *filter.FeeID {
			continue
		}
		if filter.InvoiceStatus != nil && inv.InvoiceStatus != *filter.InvoiceStatus {
			continue
		}
		if filter.DueBefore != nil && !inv.DueDate.Before(*filter.DueBefore) {
			continue
		}
		result = append(result, copyInvoice(inv))
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return paginateInvoices(result, filter.GetLimit(), filter.GetOffset()), nil
}

func (s *InMemoryInvoiceStore) ExistsForPeriod(ctx context.Context, feeID string, periodStart time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inv := range s.invoices {
		if inv.FeeID == feeID && inv.PeriodStart.Equal(periodStart) {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryInvoiceStore) ListPendingDueBefore(ctx context.Context, asOf time.Time, limit, offset int) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*invoice.Invoice
	for _, inv := range s.invoices {
		if inv.InvoiceStatus != types.InvoiceStatusPending {
			continue
		}
		if !inv.DueDate.Before(asOf) {
			continue
		}
		result = append(result, copyInvoice(inv))
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return paginateInvoices(result, limit, offset), nil
}

func (s *InMemoryInvoiceStore) NextInvoiceNumber(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	yearMonth := s.now().Format("200601")
	key := types.GetOrgID(ctx) + ":" + yearMonth
	s.sequences[key]++
	return fmt.Sprintf("INV-%s-%05d", yearMonth, s.sequences[key]), nil
}

func paginateInvoices(invoices []*invoice.Invoice, limit, offset int) []*invoice.Invoice {
	if offset >= len(invoices) {
		return nil
	}
	end := offset + limit
	if end > len(invoices) {
		end = len(invoices)
	}
	return invoices[offset:end]
}

func (s *InMemoryInvoiceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = make(map[string]*invoice.Invoice)
	s.sequences = make(map[string]int64)
}
