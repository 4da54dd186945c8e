package service

import (
	"testing"
	"time"

	"github.com/condoflow/condoflow/internal/api/dto"
	"github.com/condoflow/condoflow/internal/domain/invoice"
	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/testutil"
	"github.com/condoflow/condoflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service InvoiceService
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          s.GetDB(),
		Clock:       s.GetClock(),
		FeeRepo:     s.GetStores().FeeRepo,
		InvoiceRepo: s.GetStores().InvoiceRepo,
		AuditRepo:   s.GetStores().AuditRepo,
	})
}

func (s *InvoiceServiceSuite) createInvoice(status types.InvoiceStatus, dueDate time.Time) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		FeeID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE),
		OwnerType:     types.FeeOwnerTypeUnit,
		OwnerID:       "unit_101",
		Amount:        decimal.NewFromInt(150),
		Currency:      "EUR",
		InvoiceStatus: status,
		InvoiceNumber: "INV-202401-00001",
		PeriodStart:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       dueDate,
		IssuedAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))
	return inv
}

func (s *InvoiceServiceSuite) TestMarkOverdueInvoices() {
	s.GetClock().Set(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC))
	inv := s.createInvoice(types.InvoiceStatusPending, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	response, err := s.service.MarkOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(1, response.TotalMarked)
	s.Equal(0, response.TotalFailed)

	marked, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, marked.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestMarkOverdueIsIdempotent() {
	s.GetClock().Set(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC))
	s.createInvoice(types.InvoiceStatusPending, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	first, err := s.service.MarkOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(1, first.TotalMarked)

	second, err := s.service.MarkOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(0, second.TotalMarked)
	s.Equal(0, second.TotalFailed)
}

func (s *InvoiceServiceSuite) TestDueDateNotYetPassed() {
	// due exactly now is not overdue; the marker requires the due date to
	// have strictly passed
	s.GetClock().Set(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	inv := s.createInvoice(types.InvoiceStatusPending, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	response, err := s.service.MarkOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(0, response.TotalMarked)

	unchanged, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPending, unchanged.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestPaidInvoiceIsNeverMarkedOverdue() {
	s.GetClock().Set(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	inv := s.createInvoice(types.InvoiceStatusPaid, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	response, err := s.service.MarkOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(0, response.TotalMarked)

	unchanged, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, unchanged.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestMarkOverdueEmitsAuditRecord() {
	s.GetClock().Set(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC))
	inv := s.createInvoice(types.InvoiceStatusPending, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	_, err := s.service.MarkOverdueInvoices(s.GetContext())
	s.NoError(err)

	records := s.GetStores().AuditRepo.(*testutil.InMemoryAuditStore).All()
	s.Require().Len(records, 1)
	s.Equal(types.AuditActionUpdated, records[0].Action)
	s.Equal(types.EntityTypeInvoice, records[0].EntityType)
	s.Equal(inv.ID, records[0].EntityID)
	s.Contains(records[0].Changes, "invoice_status")
}

func (s *InvoiceServiceSuite) TestUpdatePaymentStatusToPaid() {
	now := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	s.GetClock().Set(now)
	inv := s.createInvoice(types.InvoiceStatusPending, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	response, err := s.service.UpdatePaymentStatus(s.GetContext(), inv.ID, &dto.UpdateInvoicePaymentStatusRequest{
		InvoiceStatus: types.InvoiceStatusPaid,
	}, nil)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, response.InvoiceStatus)
	s.Require().NotNil(response.PaidAt)
	s.True(response.PaidAt.Equal(now))
}

func (s *InvoiceServiceSuite) TestUpdatePaymentStatusOverdueToPaid() {
	s.GetClock().Set(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	inv := s.createInvoice(types.InvoiceStatusOverdue, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	response, err := s.service.UpdatePaymentStatus(s.GetContext(), inv.ID, &dto.UpdateInvoicePaymentStatusRequest{
		InvoiceStatus: types.InvoiceStatusPaid,
	}, nil)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, response.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestUpdatePaymentStatusRejectsTerminalTransition() {
	s.GetClock().Set(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	inv := s.createInvoice(types.InvoiceStatusPaid, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	_, err := s.service.UpdatePaymentStatus(s.GetContext(), inv.ID, &dto.UpdateInvoicePaymentStatusRequest{
		InvoiceStatus: types.InvoiceStatusCancelled,
	}, nil)
	s.Error(err)
	s.True(ierr.IsInvalidTransition(err))

	unchanged, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, unchanged.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestGetInvoiceNotFound() {
	_, err := s.service.GetInvoice(s.GetContext(), "inv_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
