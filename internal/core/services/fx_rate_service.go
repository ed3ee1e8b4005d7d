package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	portsrepo "github.com/hishab-app/hishab_backend/internal/core/ports/repositories"
	portssvc "github.com/hishab-app/hishab_backend/internal/core/ports/services"
	"github.com/hishab-app/hishab_backend/internal/dto"
	"github.com/hishab-app/hishab_backend/internal/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// fxRateService provides business logic for the exchange rate store.
type fxRateService struct {
	rateRepo    portsrepo.FxRateRepositoryWithTx
	currencySvc portssvc.CurrencyReaderSvc
	auditSvc    portssvc.AuditSvc
}

// NewFxRateService creates a new exchange rate service.
func NewFxRateService(rateRepo portsrepo.FxRateRepositoryWithTx, currencySvc portssvc.CurrencyReaderSvc, auditSvc portssvc.AuditSvc) portssvc.FxRateSvcFacade {
	return &fxRateService{
		rateRepo:    rateRepo,
		currencySvc: currencySvc,
		auditSvc:    auditSvc,
	}
}

var _ portssvc.FxRateSvcFacade = (*fxRateService)(nil)

// GetRate resolves the applicable rate for a pair: newest active rate with
// effectiveDate <= onOrBefore. A same-currency pair short-circuits to the
// identity rate without touching storage.
func (s *fxRateService) GetRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, onOrBefore time.Time) (*domain.FxRate, error) {
	fromCurrencyCode = strings.ToUpper(fromCurrencyCode)
	toCurrencyCode = strings.ToUpper(toCurrencyCode)
	if len(fromCurrencyCode) != 3 || len(toCurrencyCode) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	if onOrBefore.IsZero() {
		onOrBefore = time.Now()
	}

	if fromCurrencyCode == toCurrencyCode {
		return &domain.FxRate{
			FromCurrencyCode: fromCurrencyCode,
			ToCurrencyCode:   toCurrencyCode,
			Rate:             decimal.NewFromInt(1),
			EffectiveDate:    onOrBefore,
			IsActive:         true,
		}, nil
	}

	rate, err := s.rateRepo.FindRateOnOrBefore(ctx, fromCurrencyCode, toCurrencyCode, onOrBefore)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewMissingRateError(fromCurrencyCode, toCurrencyCode, onOrBefore.Format(dateLayout))
		}
		return nil, fmt.Errorf("failed to resolve rate %s->%s: %w", fromCurrencyCode, toCurrencyCode, err)
	}
	return rate, nil
}

func (s *fxRateService) GetRateByID(ctx context.Context, rateID string) (*domain.FxRate, error) {
	rate, err := s.rateRepo.FindRateByID(ctx, rateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate %s: %w", rateID, err)
	}
	return rate, nil
}

func (s *fxRateService) ListRates(ctx context.Context, params dto.ListFxRatesParams) (*dto.ListFxRatesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	rates, err := s.rateRepo.ListRates(ctx, params.From, params.To, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}

	return &dto.ListFxRatesResponse{Rates: dto.ToListFxRateResponse(rates)}, nil
}

// UpsertRate records a rate for the exact (from, to, effectiveDate) key,
// updating in place when the key already exists. When postings already
// snapshotted a rate for that currency and date, the returned warning flags
// that those entries stay as posted.
func (s *fxRateService) UpsertRate(ctx context.Context, req dto.UpsertFxRateRequest, actorID string) (*domain.FxRate, *string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if !req.Rate.Equal(req.Rate.Round(domain.RatePrecision)) {
		return nil, nil, fmt.Errorf("%w: exchange rate supports at most %d decimal places", apperrors.ErrValidation, domain.RatePrecision)
	}
	if req.FromCurrencyCode == req.ToCurrencyCode {
		return nil, nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}

	if _, err := s.currencySvc.GetCurrencyByCode(ctx, req.FromCurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: 'from' currency code '%s' not found", apperrors.ErrValidation, req.FromCurrencyCode)
		}
		return nil, nil, fmt.Errorf("failed to validate 'from' currency '%s': %w", req.FromCurrencyCode, err)
	}
	if _, err := s.currencySvc.GetCurrencyByCode(ctx, req.ToCurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: 'to' currency code '%s' not found", apperrors.ErrValidation, req.ToCurrencyCode)
		}
		return nil, nil, fmt.Errorf("failed to validate 'to' currency '%s': %w", req.ToCurrencyCode, err)
	}

	effectiveDate, err := time.Parse(dateLayout, req.EffectiveDate)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid effective date '%s'", apperrors.ErrValidation, req.EffectiveDate)
	}

	// Fetched once up front so the audit record can carry the before image.
	// The write itself is a native upsert and stays atomic regardless.
	existing, err := s.rateRepo.FindRateByKey(ctx, req.FromCurrencyCode, req.ToCurrencyCode, effectiveDate)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing rate: %w", err)
	}

	now := time.Now()
	rate := domain.FxRate{
		RateID:           uuid.NewString(),
		FromCurrencyCode: req.FromCurrencyCode,
		ToCurrencyCode:   req.ToCurrencyCode,
		Rate:             req.Rate,
		EffectiveDate:    effectiveDate,
		Source:           domain.RateSourceManual,
		Notes:            req.Notes,
		IsActive:         true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	persisted, err := s.rateRepo.UpsertRate(ctx, rate)
	if err != nil {
		logger.Error("Failed to upsert rate", "error", err, "from", req.FromCurrencyCode, "to", req.ToCurrencyCode)
		return nil, nil, fmt.Errorf("failed to upsert rate: %w", err)
	}

	op := domain.OperationCreate
	var oldValues any
	if existing != nil {
		op = domain.OperationUpdate
		oldValues = existing
	}
	s.auditSvc.Record(ctx, "fx_rates", persisted.RateID, op, oldValues, persisted, actorID, "exchange rate upserted")

	var warning *string
	count, err := s.rateRepo.CountFxSnapshots(ctx, req.FromCurrencyCode, effectiveDate)
	if err != nil {
		logger.Warn("Failed to count fx snapshots for upsert warning", "error", err)
	} else if count > 0 {
		msg := fmt.Sprintf("%d posted transaction(s) already captured a %s rate snapshot on %s; previously posted entries are not adjusted",
			count, req.FromCurrencyCode, req.EffectiveDate)
		warning = &msg
	}

	logger.Info("Exchange rate upserted", "rate_id", persisted.RateID, "from", persisted.FromCurrencyCode, "to", persisted.ToCurrencyCode, "effective_date", req.EffectiveDate)
	return persisted, warning, nil
}

func (s *fxRateService) DeactivateRate(ctx context.Context, rateID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	rate, err := s.rateRepo.FindRateByID(ctx, rateID)
	if err != nil {
		return fmt.Errorf("failed to find rate %s for deactivation: %w", rateID, err)
	}
	if !rate.IsActive {
		return nil
	}

	now := time.Now()
	if err := s.rateRepo.DeactivateRate(ctx, rateID, actorID, now); err != nil {
		logger.Error("Failed to deactivate rate", "error", err, "rate_id", rateID)
		return fmt.Errorf("failed to deactivate rate %s: %w", rateID, err)
	}

	deactivated := *rate
	deactivated.IsActive = false
	deactivated.LastUpdatedAt = now
	deactivated.LastUpdatedBy = actorID
	s.auditSvc.Record(ctx, "fx_rates", rateID, domain.OperationUpdate, rate, deactivated, actorID, "exchange rate deactivated")

	logger.Info("Exchange rate deactivated", "rate_id", rateID)
	return nil
}
