package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSource tags the provenance of an exchange rate.
type RateSource string

const (
	RateSourceManual   RateSource = "manual"   // Entered by an operator
	RateSourceDocument RateSource = "document" // Captured from a posted transaction
	RateSourceFeed     RateSource = "feed"     // Imported from an external feed
)

// FxRate stores the conversion rate between two currencies effective from a
// specific date. Rates are versioned reference data: one row per
// (from, to, effectiveDate), updated in place for the same key, never deleted.
// Deactivating a rate hides it from lookups while keeping history.
type FxRate struct {
	RateID           string          `json:"rateID"`           // Primary Key (e.g., UUID)
	FromCurrencyCode string          `json:"fromCurrencyCode"` // FK -> currencies.currency_code
	ToCurrencyCode   string          `json:"toCurrencyCode"`   // FK -> currencies.currency_code
	Rate             decimal.Decimal `json:"rate"`             // Positive, 6 fractional digits
	EffectiveDate    time.Time       `json:"effectiveDate"`    // Date the rate takes effect
	Source           RateSource      `json:"source"`
	Notes            string          `json:"notes"` // Nullable
	IsActive         bool            `json:"isActive"`
	AuditFields
}

// RatePrecision is the number of fractional digits stored for a rate.
const RatePrecision = 6
