package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	portssvc "github.com/hishab-app/hishab_backend/internal/core/ports/services"
	"github.com/hishab-app/hishab_backend/internal/core/services"
	"github.com/hishab-app/hishab_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type FxRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo    *MockFxRateRepository
	mockCurrencySvc *MockCurrencyService
	mockAudit       *MockAuditService
	service         portssvc.FxRateSvcFacade

	actorID    string
	lookupDate time.Time
}

func (suite *FxRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockFxRateRepository)
	suite.mockCurrencySvc = new(MockCurrencyService)
	suite.mockAudit = new(MockAuditService)
	suite.service = services.NewFxRateService(suite.mockRateRepo, suite.mockCurrencySvc, suite.mockAudit)

	suite.actorID = uuid.NewString()
	suite.lookupDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *FxRateServiceTestSuite) storedRate(effectiveDate time.Time, rate string) *domain.FxRate {
	return &domain.FxRate{
		RateID:           uuid.NewString(),
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "BDT",
		Rate:             decimal.RequireFromString(rate),
		EffectiveDate:    effectiveDate,
		Source:           domain.RateSourceManual,
		IsActive:         true,
	}
}

func (suite *FxRateServiceTestSuite) expectKnownCurrencies() {
	suite.mockCurrencySvc.On("GetCurrencyByCode", mock.Anything, "USD").Return(&domain.Currency{CurrencyCode: "USD"}, nil)
	suite.mockCurrencySvc.On("GetCurrencyByCode", mock.Anything, "BDT").Return(&domain.Currency{CurrencyCode: "BDT"}, nil)
}

func (suite *FxRateServiceTestSuite) TestGetRate_Success() {
	stored := suite.storedRate(suite.lookupDate.AddDate(0, 0, -3), "110.0")
	suite.mockRateRepo.On("FindRateOnOrBefore", mock.Anything, "USD", "BDT", suite.lookupDate).Return(stored, nil)

	rate, err := suite.service.GetRate(context.Background(), "USD", "BDT", suite.lookupDate)

	suite.Require().NoError(err)
	suite.True(rate.Rate.Equal(decimal.RequireFromString("110.0")))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *FxRateServiceTestSuite) TestGetRate_IdentityPairSkipsStorage() {
	rate, err := suite.service.GetRate(context.Background(), "BDT", "BDT", suite.lookupDate)

	suite.Require().NoError(err)
	suite.True(rate.Rate.Equal(decimal.NewFromInt(1)))
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindRateOnOrBefore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FxRateServiceTestSuite) TestGetRate_MissingRateNamesPairAndDate() {
	suite.mockRateRepo.On("FindRateOnOrBefore", mock.Anything, "USD", "BDT", suite.lookupDate).Return(nil, apperrors.ErrNotFound)

	rate, err := suite.service.GetRate(context.Background(), "USD", "BDT", suite.lookupDate)

	suite.Require().Error(err)
	suite.Nil(rate)
	suite.ErrorIs(err, apperrors.ErrMissingRate)
	suite.Contains(err.Error(), "USD->BDT")
	suite.Contains(err.Error(), "2024-06-01")
}

func (suite *FxRateServiceTestSuite) TestGetRate_LowercaseCodesNormalized() {
	stored := suite.storedRate(suite.lookupDate, "110.0")
	suite.mockRateRepo.On("FindRateOnOrBefore", mock.Anything, "USD", "BDT", suite.lookupDate).Return(stored, nil)

	_, err := suite.service.GetRate(context.Background(), "usd", "bdt", suite.lookupDate)

	suite.Require().NoError(err)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *FxRateServiceTestSuite) TestUpsertRate_CreateAuditsWithoutOldValues() {
	suite.expectKnownCurrencies()
	effectiveDate := suite.lookupDate

	suite.mockRateRepo.On("FindRateByKey", mock.Anything, "USD", "BDT", effectiveDate).Return(nil, apperrors.ErrNotFound)
	suite.mockRateRepo.On("UpsertRate", mock.Anything, mock.MatchedBy(func(r domain.FxRate) bool {
		return r.FromCurrencyCode == "USD" && r.ToCurrencyCode == "BDT" &&
			r.Rate.Equal(decimal.RequireFromString("110.0")) && r.IsActive &&
			r.Source == domain.RateSourceManual
	})).Return(suite.storedRate(effectiveDate, "110.0"), nil)
	suite.mockRateRepo.On("CountFxSnapshots", mock.Anything, "USD", effectiveDate).Return(int64(0), nil)
	suite.mockAudit.On("Record", mock.Anything, "fx_rates", mock.Anything, domain.OperationCreate, nil, mock.Anything, suite.actorID, mock.Anything).Return()

	rate, warning, err := suite.service.UpsertRate(context.Background(), dto.UpsertFxRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "BDT",
		Rate:             decimal.RequireFromString("110.0"),
		EffectiveDate:    "2024-06-01",
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.NotNil(rate)
	suite.Nil(warning)
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *FxRateServiceTestSuite) TestUpsertRate_UpdateAuditsOldValues() {
	suite.expectKnownCurrencies()
	effectiveDate := suite.lookupDate
	existing := suite.storedRate(effectiveDate, "108.5")

	suite.mockRateRepo.On("FindRateByKey", mock.Anything, "USD", "BDT", effectiveDate).Return(existing, nil)
	suite.mockRateRepo.On("UpsertRate", mock.Anything, mock.Anything).Return(suite.storedRate(effectiveDate, "110.0"), nil)
	suite.mockRateRepo.On("CountFxSnapshots", mock.Anything, "USD", effectiveDate).Return(int64(0), nil)
	suite.mockAudit.On("Record", mock.Anything, "fx_rates", mock.Anything, domain.OperationUpdate, existing, mock.Anything, suite.actorID, mock.Anything).Return()

	_, _, err := suite.service.UpsertRate(context.Background(), dto.UpsertFxRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "BDT",
		Rate:             decimal.RequireFromString("110.0"),
		EffectiveDate:    "2024-06-01",
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *FxRateServiceTestSuite) TestUpsertRate_WarnsWhenDateAlreadyHasSnapshots() {
	suite.expectKnownCurrencies()
	effectiveDate := suite.lookupDate

	suite.mockRateRepo.On("FindRateByKey", mock.Anything, "USD", "BDT", effectiveDate).Return(nil, apperrors.ErrNotFound)
	suite.mockRateRepo.On("UpsertRate", mock.Anything, mock.Anything).Return(suite.storedRate(effectiveDate, "111.0"), nil)
	suite.mockRateRepo.On("CountFxSnapshots", mock.Anything, "USD", effectiveDate).Return(int64(3), nil)
	suite.mockAudit.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	_, warning, err := suite.service.UpsertRate(context.Background(), dto.UpsertFxRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "BDT",
		Rate:             decimal.RequireFromString("111.0"),
		EffectiveDate:    "2024-06-01",
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(warning)
	suite.Contains(*warning, "not adjusted")
}

func (suite *FxRateServiceTestSuite) TestUpsertRate_RejectsNonPositiveRate() {
	_, _, err := suite.service.UpsertRate(context.Background(), dto.UpsertFxRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "BDT",
		Rate:             decimal.Zero,
		EffectiveDate:    "2024-06-01",
	}, suite.actorID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpsertRate", mock.Anything, mock.Anything)
}

func (suite *FxRateServiceTestSuite) TestUpsertRate_RejectsExcessPrecision() {
	_, _, err := suite.service.UpsertRate(context.Background(), dto.UpsertFxRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "BDT",
		Rate:             decimal.RequireFromString("110.1234567"),
		EffectiveDate:    "2024-06-01",
	}, suite.actorID)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *FxRateServiceTestSuite) TestUpsertRate_RejectsSamePair() {
	_, _, err := suite.service.UpsertRate(context.Background(), dto.UpsertFxRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "USD",
		Rate:             decimal.NewFromInt(1),
		EffectiveDate:    "2024-06-01",
	}, suite.actorID)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *FxRateServiceTestSuite) TestUpsertRate_RejectsUnknownCurrency() {
	suite.mockCurrencySvc.On("GetCurrencyByCode", mock.Anything, "XXX").Return(nil, apperrors.ErrNotFound)

	_, _, err := suite.service.UpsertRate(context.Background(), dto.UpsertFxRateRequest{
		FromCurrencyCode: "XXX",
		ToCurrencyCode:   "BDT",
		Rate:             decimal.NewFromInt(2),
		EffectiveDate:    "2024-06-01",
	}, suite.actorID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "XXX")
}

func (suite *FxRateServiceTestSuite) TestDeactivateRate_Audited() {
	rate := suite.storedRate(suite.lookupDate, "110.0")
	suite.mockRateRepo.On("FindRateByID", mock.Anything, rate.RateID).Return(rate, nil)
	suite.mockRateRepo.On("DeactivateRate", mock.Anything, rate.RateID, suite.actorID, mock.Anything).Return(nil)
	suite.mockAudit.On("Record", mock.Anything, "fx_rates", rate.RateID, domain.OperationUpdate, rate, mock.Anything, suite.actorID, mock.Anything).Return()

	err := suite.service.DeactivateRate(context.Background(), rate.RateID, suite.actorID)

	suite.Require().NoError(err)
	suite.mockRateRepo.AssertExpectations(suite.T())
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *FxRateServiceTestSuite) TestDeactivateRate_AlreadyInactiveIsNoop() {
	rate := suite.storedRate(suite.lookupDate, "110.0")
	rate.IsActive = false
	suite.mockRateRepo.On("FindRateByID", mock.Anything, rate.RateID).Return(rate, nil)

	err := suite.service.DeactivateRate(context.Background(), rate.RateID, suite.actorID)

	suite.Require().NoError(err)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "DeactivateRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FxRateServiceTestSuite) TestListRates_DefaultsLimit() {
	suite.mockRateRepo.On("ListRates", mock.Anything, "", "", 20, 0).Return([]domain.FxRate{}, nil)

	resp, err := suite.service.ListRates(context.Background(), dto.ListFxRatesParams{})

	suite.Require().NoError(err)
	suite.Empty(resp.Rates)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func TestFxRateServiceSuite(t *testing.T) {
	suite.Run(t, new(FxRateServiceTestSuite))
}
