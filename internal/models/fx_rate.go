package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxRate stores one versioned conversion rate row, keyed by
// (from_currency_code, to_currency_code, effective_date).
type FxRate struct {
	RateID           string          `db:"rate_id"`
	FromCurrencyCode string          `db:"from_currency_code"`
	ToCurrencyCode   string          `db:"to_currency_code"`
	Rate             decimal.Decimal `db:"rate"` // NUMERIC(18,6)
	EffectiveDate    time.Time       `db:"effective_date"`
	Source           string          `db:"source"` // manual | document | feed
	Notes            string          `db:"notes"`  // Nullable
	IsActive         bool            `db:"is_active"`
	AuditFields
}
