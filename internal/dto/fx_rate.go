package dto

import (
	"time"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpsertFxRateRequest defines the structure for creating or updating a rate.
// A request for an already-known (from, to, effectiveDate) key updates that
// rate in place.
type UpsertFxRateRequest struct {
	FromCurrencyCode string          `json:"fromCurrencyCode" binding:"required,uppercase,len=3"`
	ToCurrencyCode   string          `json:"toCurrencyCode" binding:"required,uppercase,len=3"`
	Rate             decimal.Decimal `json:"rate" binding:"required"` // Positivity and precision checked in the service
	EffectiveDate    string          `json:"effectiveDate" binding:"required,datetime=2006-01-02"`
	Notes            string          `json:"notes"` // Optional
}

// FxRateResponse defines the structure for API responses containing rate details.
type FxRateResponse struct {
	RateID           string          `json:"rateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	EffectiveDate    time.Time       `json:"effectiveDate"`
	Source           string          `json:"source"`
	Notes            string          `json:"notes,omitempty"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
	LastUpdatedAt    time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy    string          `json:"lastUpdatedBy"`
}

// UpsertFxRateResponse wraps the persisted rate together with the warning
// issued when the date already has postings snapshotted against it.
type UpsertFxRateResponse struct {
	Rate    FxRateResponse `json:"rate"`
	Warning *string        `json:"warning,omitempty"`
}

// ToFxRateResponse converts a domain.FxRate to FxRateResponse DTO
func ToFxRateResponse(rate *domain.FxRate) FxRateResponse {
	return FxRateResponse{
		RateID:           rate.RateID,
		FromCurrencyCode: rate.FromCurrencyCode,
		ToCurrencyCode:   rate.ToCurrencyCode,
		Rate:             rate.Rate,
		EffectiveDate:    rate.EffectiveDate,
		Source:           string(rate.Source),
		Notes:            rate.Notes,
		IsActive:         rate.IsActive,
		CreatedAt:        rate.CreatedAt,
		CreatedBy:        rate.CreatedBy,
		LastUpdatedAt:    rate.LastUpdatedAt,
		LastUpdatedBy:    rate.LastUpdatedBy,
	}
}

// ToListFxRateResponse converts a slice of domain.FxRate to a slice of FxRateResponse DTOs
func ToListFxRateResponse(rates []domain.FxRate) []FxRateResponse {
	res := make([]FxRateResponse, len(rates))
	for i, rate := range rates {
		res[i] = ToFxRateResponse(&rate)
	}
	return res
}

// ListFxRatesParams defines query parameters for listing rates.
type ListFxRatesParams struct {
	From   string `form:"from" binding:"omitempty,uppercase,len=3"`
	To     string `form:"to" binding:"omitempty,uppercase,len=3"`
	Limit  int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset,default=0" binding:"omitempty,min=0"`
}

// ListFxRatesResponse wraps the list of rates.
type ListFxRatesResponse struct {
	Rates []FxRateResponse `json:"rates"`
}

// GetRateParams defines query parameters for resolving a rate for a pair.
type GetRateParams struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"` // Defaults to today
}
