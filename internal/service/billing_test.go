package service

import (
	"testing"
	"time"

	"github.com/condoflow/condoflow/internal/domain/fee"
	"github.com/condoflow/condoflow/internal/domain/invoice"
	"github.com/condoflow/condoflow/internal/testutil"
	"github.com/condoflow/condoflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingService
	params  ServiceParams
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          s.GetDB(),
		Clock:       s.GetClock(),
		FeeRepo:     s.GetStores().FeeRepo,
		InvoiceRepo: s.GetStores().InvoiceRepo,
		AuditRepo:   s.GetStores().AuditRepo,
	}
	s.service = NewBillingService(s.params)
}

func (s *BillingServiceSuite) createFee(next time.Time, period types.RecurrencePeriod) *fee.FeeDefinition {
	f := &fee.FeeDefinition{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE),
		OwnerType:         types.FeeOwnerTypeUnit,
		OwnerID:           "unit_101",
		Name:              "Monthly maintenance",
		Amount:            decimal.NewFromInt(150),
		Currency:          "EUR",
		RecurrencePeriod:  period,
		NextRecurringDate: next,
		Active:            true,
		BaseModel:         types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().FeeRepo.Create(s.GetContext(), f))
	return f
}

func (s *BillingServiceSuite) listInvoices(feeID string) []*invoice.Invoice {
	invoices, err := s.GetStores().InvoiceRepo.List(s.GetContext(), &types.InvoiceFilter{
		FeeID: &feeID,
	})
	s.NoError(err)
	return invoices
}

func (s *BillingServiceSuite) TestSinglePeriodGeneration() {
	s.GetClock().Set(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	f := s.createFee(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), types.RecurrencePeriodMonthly)

	response, err := s.service.ProcessRecurringFees(s.GetContext())
	s.NoError(err)
	s.Equal(1, response.TotalFees)
	s.Equal(1, response.TotalInvoices)
	s.Equal(0, response.TotalFailed)

	invoices := s.listInvoices(f.ID)
	s.Require().Len(invoices, 1)

	inv := invoices[0]
	s.Equal(types.InvoiceStatusPending, inv.InvoiceStatus)
	s.True(inv.Amount.Equal(f.Amount))
	s.Equal(f.Currency, inv.Currency)
	s.Equal(f.OwnerID, inv.OwnerID)
	s.True(inv.PeriodStart.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	s.True(inv.PeriodEnd.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	s.True(inv.DueDate.Equal(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)))
	s.Equal("INV-202401-00001", inv.InvoiceNumber)

	updated, err := s.GetStores().FeeRepo.Get(s.GetContext(), f.ID)
	s.NoError(err)
	s.True(updated.NextRecurringDate.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func (s *BillingServiceSuite) TestCatchUpAcrossMissedPeriods() {
	s.GetClock().Set(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	f := s.createFee(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), types.RecurrencePeriodMonthly)

	response, err := s.service.ProcessRecurringFees(s.GetContext())
	s.NoError(err)
	s.Equal(3, response.TotalInvoices)

	invoices := s.listInvoices(f.ID)
	s.Require().Len(invoices, 3)

	periodStarts := make([]time.Time, 0, 3)
	for _, inv := range invoices {
		periodStarts = append(periodStarts, inv.PeriodStart)
	}
	s.Contains(periodStarts, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s.Contains(periodStarts, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	s.Contains(periodStarts, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	updated, err := s.GetStores().FeeRepo.Get(s.GetContext(), f.ID)
	s.NoError(err)
	s.True(updated.NextRecurringDate.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func (s *BillingServiceSuite) TestRerunIsIdempotent() {
	s.GetClock().Set(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	f := s.createFee(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), types.RecurrencePeriodMonthly)

	_, err := s.service.ProcessRecurringFees(s.GetContext())
	s.NoError(err)

	response, err := s.service.ProcessRecurringFees(s.GetContext())
	s.NoError(err)
	s.Equal(0, response.TotalFees)
	s.Equal(0, response.TotalInvoices)

	s.Len(s.listInvoices(f.ID), 3)
}

func (s *BillingServiceSuite) TestExistingInvoicePeriodIsSkipped() {
	asOf := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	s.GetClock().Set(asOf)
	f := s.createFee(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), types.RecurrencePeriodMonthly)

	// an invoice for February already exists from an overlapping dispatch
	existing := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		FeeID:         f.ID,
		OwnerType:     f.OwnerType,
		OwnerID:       f.OwnerID,
		Amount:        f.Amount,
		Currency:      f.Currency,
		InvoiceStatus: types.InvoiceStatusPending,
		InvoiceNumber: "INV-202402-00001",
		PeriodStart:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC),
		IssuedAt:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), existing))

	response, err := s.service.ProcessRecurringFees(s.GetContext())
	s.NoError(err)
	s.Equal(2, response.TotalInvoices)
	s.Equal(1, response.TotalSkipped)

	s.Len(s.listInvoices(f.ID), 3)

	updated, err := s.GetStores().FeeRepo.Get(s.GetContext(), f.ID)
	s.NoError(err)
	s.True(updated.NextRecurringDate.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func (s *BillingServiceSuite) TestTerminatedFeeIsNotBilled() {
	s.GetClock().Set(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	f := s.createFee(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), types.RecurrencePeriodMonthly)

	terminatedAt := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	f.Active = false
	f.TerminatedAt = &terminatedAt
	s.NoError(s.GetStores().FeeRepo.Update(s.GetContext(), f))

	response, err := s.service.ProcessRecurringFees(s.GetContext())
	s.NoError(err)
	s.Equal(0, response.TotalFees)
	s.Empty(s.listInvoices(f.ID))
}

func (s *BillingServiceSuite) TestFutureFeeIsNotBilled() {
	s.GetClock().Set(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	f := s.createFee(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), types.RecurrencePeriodMonthly)

	response, err := s.service.ProcessRecurringFees(s.GetContext())
	s.NoError(err)
	s.Equal(0, response.TotalFees)
	s.Empty(s.listInvoices(f.ID))
}

func (s *BillingServiceSuite) TestOneFailingFeeDoesNotBlockOthers() {
	s.GetClock().Set(time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC))
	good := s.createFee(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), types.RecurrencePeriodMonthly)

	// a fee with a corrupted recurrence period fails period arithmetic
	bad := s.createFee(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), types.RecurrencePeriodMonthly)
	bad.RecurrencePeriod = types.RecurrencePeriod("weekly")
	s.NoError(s.GetStores().FeeRepo.Update(s.GetContext(), bad))

	response, err := s.service.ProcessRecurringFees(s.GetContext())
	s.NoError(err)
	s.Equal(2, response.TotalFees)
	s.Equal(1, response.TotalInvoices)
	s.Equal(1, response.TotalFailed)

	s.Len(s.listInvoices(good.ID), 1)
	s.Empty(s.listInvoices(bad.ID))

	// the failing fee's cursor did not move
	unchanged, err := s.GetStores().FeeRepo.Get(s.GetContext(), bad.ID)
	s.NoError(err)
	s.True(unchanged.NextRecurringDate.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func (s *BillingServiceSuite) TestQuarterlyCatchUp() {
	s.GetClock().Set(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	f := s.createFee(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), types.RecurrencePeriodQuarterly)

	response, err := s.service.ProcessRecurringFees(s.GetContext())
	s.NoError(err)
	s.Equal(3, response.TotalInvoices)

	updated, err := s.GetStores().FeeRepo.Get(s.GetContext(), f.ID)
	s.NoError(err)
	s.True(updated.NextRecurringDate.Equal(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)))
}

func (s *BillingServiceSuite) TestInvoiceNumbersAreSequential() {
	s.GetClock().Set(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	s.createFee(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), types.RecurrencePeriodMonthly)

	_, err := s.service.ProcessRecurringFees(s.GetContext())
	s.NoError(err)

	invoices, err := s.GetStores().InvoiceRepo.List(s.GetContext(), &types.InvoiceFilter{})
	s.NoError(err)
	s.Require().Len(invoices, 3)

	numbers := map[string]bool{}
	for _, inv := range invoices {
		numbers[inv.InvoiceNumber] = true
	}
	s.True(numbers["INV-202403-00001"])
	s.True(numbers["INV-202403-00002"])
	s.True(numbers["INV-202403-00003"])
}

func (s *BillingServiceSuite) TestGenerationEmitsAuditRecords() {
	s.GetClock().Set(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	f := s.createFee(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), types.RecurrencePeriodMonthly)

	_, err := s.service.ProcessRecurringFees(s.GetContext())
	s.NoError(err)

	records := s.GetStores().AuditRepo.(*testutil.InMemoryAuditStore).All()
	s.Require().Len(records, 2)

	s.Equal(types.AuditActionCreated, records[0].Action)
	s.Equal(types.EntityTypeInvoice, records[0].EntityType)

	s.Equal(types.AuditActionUpdated, records[1].Action)
	s.Equal(types.EntityTypeFeeDefinition, records[1].EntityType)
	s.Equal(f.ID, records[1].EntityID)
	s.Contains(records[1].Changes, "next_recurring_date")
}
