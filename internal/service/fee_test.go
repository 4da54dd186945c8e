package service

import (
	"testing"
	"time"

	"github.com/condoflow/condoflow/internal/api/dto"
	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/testutil"
	"github.com/condoflow/condoflow/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type FeeServiceSuite struct {
	testutil.BaseServiceTestSuite
	service FeeService
}

func TestFeeService(t *testing.T) {
	suite.Run(t, new(FeeServiceSuite))
}

func (s *FeeServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewFeeService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          s.GetDB(),
		Clock:       s.GetClock(),
		FeeRepo:     s.GetStores().FeeRepo,
		InvoiceRepo: s.GetStores().InvoiceRepo,
		AuditRepo:   s.GetStores().AuditRepo,
	})
}

func (s *FeeServiceSuite) validRequest() *dto.CreateFeeRequest {
	return &dto.CreateFeeRequest{
		OwnerType:          types.FeeOwnerTypeUnit,
		OwnerID:            "unit_101",
		Name:               "Monthly maintenance",
		Amount:             decimal.NewFromInt(150),
		Currency:           "EUR",
		RecurrencePeriod:   types.RecurrencePeriodMonthly,
		FirstRecurringDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *FeeServiceSuite) TestCreateFee() {
	response, err := s.service.CreateFee(s.GetContext(), s.validRequest(), nil)
	s.NoError(err)
	s.NotEmpty(response.ID)
	s.True(response.Active)
	s.Nil(response.TerminatedAt)
	s.True(response.NextRecurringDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	s.Equal(types.DefaultOrgID, response.OrgID)
}

func (s *FeeServiceSuite) TestCreateFeeValidation() {
	tests := []struct {
		name   string
		mutate func(*dto.CreateFeeRequest)
	}{
		{"missing name", func(r *dto.CreateFeeRequest) { r.Name = "" }},
		{"negative amount", func(r *dto.CreateFeeRequest) { r.Amount = decimal.NewFromInt(-1) }},
		{"bad currency", func(r *dto.CreateFeeRequest) { r.Currency = "EURO" }},
		{"bad owner type", func(r *dto.CreateFeeRequest) { r.OwnerType = "tenant" }},
		{"bad recurrence", func(r *dto.CreateFeeRequest) { r.RecurrencePeriod = "weekly" }},
		{"missing first date", func(r *dto.CreateFeeRequest) { r.FirstRecurringDate = time.Time{} }},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := s.validRequest()
			tt.mutate(req)
			_, err := s.service.CreateFee(s.GetContext(), req, nil)
			s.Error(err)
			s.True(ierr.IsValidation(err))
		})
	}
}

func (s *FeeServiceSuite) TestUpdateFee() {
	created, err := s.service.CreateFee(s.GetContext(), s.validRequest(), nil)
	s.NoError(err)

	response, err := s.service.UpdateFee(s.GetContext(), created.ID, &dto.UpdateFeeRequest{
		Amount: lo.ToPtr(decimal.NewFromInt(175)),
	}, nil)
	s.NoError(err)
	s.True(response.Amount.Equal(decimal.NewFromInt(175)))
	s.Equal("Monthly maintenance", response.Name)
}

func (s *FeeServiceSuite) TestUpdateFeeNotFound() {
	_, err := s.service.UpdateFee(s.GetContext(), "fee_missing", &dto.UpdateFeeRequest{
		Name: lo.ToPtr("x"),
	}, nil)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *FeeServiceSuite) TestListFeesDueBeforeIsInclusive() {
	boundary := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	atBoundary := s.validRequest()
	_, err := s.service.CreateFee(s.GetContext(), atBoundary, nil)
	s.NoError(err)

	after := s.validRequest()
	after.OwnerID = "unit_102"
	after.FirstRecurringDate = boundary.AddDate(0, 1, 0)
	_, err = s.service.CreateFee(s.GetContext(), after, nil)
	s.NoError(err)

	response, err := s.service.ListFees(s.GetContext(), &types.FeeFilter{
		DueBefore: lo.ToPtr(boundary),
	})
	s.NoError(err)
	s.Require().Len(response.Items, 1)
	s.True(response.Items[0].NextRecurringDate.Equal(boundary))
}

func (s *FeeServiceSuite) TestTerminateFee() {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s.GetClock().Set(now)

	created, err := s.service.CreateFee(s.GetContext(), s.validRequest(), nil)
	s.NoError(err)

	response, err := s.service.TerminateFee(s.GetContext(), created.ID, nil)
	s.NoError(err)
	s.False(response.Active)
	s.Require().NotNil(response.TerminatedAt)
	s.True(response.TerminatedAt.Equal(now))
}

func (s *FeeServiceSuite) TestTerminateFeeTwice() {
	created, err := s.service.CreateFee(s.GetContext(), s.validRequest(), nil)
	s.NoError(err)

	_, err = s.service.TerminateFee(s.GetContext(), created.ID, nil)
	s.NoError(err)

	_, err = s.service.TerminateFee(s.GetContext(), created.ID, nil)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *FeeServiceSuite) TestCollectDueFeesBoundaries() {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	due := s.validRequest()
	due.FirstRecurringDate = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	dueFee, err := s.service.CreateFee(s.GetContext(), due, nil)
	s.NoError(err)

	// due exactly at asOf is included
	exact := s.validRequest()
	exact.OwnerID = "unit_102"
	exact.FirstRecurringDate = asOf
	exactFee, err := s.service.CreateFee(s.GetContext(), exact, nil)
	s.NoError(err)

	future := s.validRequest()
	future.OwnerID = "unit_103"
	future.FirstRecurringDate = time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err = s.service.CreateFee(s.GetContext(), future, nil)
	s.NoError(err)

	terminated := s.validRequest()
	terminated.OwnerID = "unit_104"
	terminated.FirstRecurringDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	terminatedFee, err := s.service.CreateFee(s.GetContext(), terminated, nil)
	s.NoError(err)
	_, err = s.service.TerminateFee(s.GetContext(), terminatedFee.ID, nil)
	s.NoError(err)

	collected, err := s.service.CollectDueFees(s.GetContext(), asOf)
	s.NoError(err)
	s.Require().Len(collected, 2)

	ids := []string{collected[0].ID, collected[1].ID}
	s.Contains(ids, dueFee.ID)
	s.Contains(ids, exactFee.ID)
}

func (s *FeeServiceSuite) TestCollectDueFeesPaginatesBeyondBatchSize() {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < collectDueFeesBatchSize+5; i++ {
		req := s.validRequest()
		req.FirstRecurringDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err := s.service.CreateFee(s.GetContext(), req, nil)
		s.NoError(err)
	}

	collected, err := s.service.CollectDueFees(s.GetContext(), asOf)
	s.NoError(err)
	s.Len(collected, collectDueFeesBatchSize+5)
}
