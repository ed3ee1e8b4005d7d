package mapping

import (
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/hishab-app/hishab_backend/internal/models"
)

// ToModelFxRate converts a domain FxRate to a model FxRate
func ToModelFxRate(d domain.FxRate) models.FxRate {
	return models.FxRate{
		RateID:           d.RateID,
		FromCurrencyCode: d.FromCurrencyCode,
		ToCurrencyCode:   d.ToCurrencyCode,
		Rate:             d.Rate,
		EffectiveDate:    d.EffectiveDate,
		Source:           string(d.Source),
		Notes:            d.Notes,
		IsActive:         d.IsActive,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFxRate converts a model FxRate to a domain FxRate
func ToDomainFxRate(m models.FxRate) domain.FxRate {
	return domain.FxRate{
		RateID:           m.RateID,
		FromCurrencyCode: m.FromCurrencyCode,
		ToCurrencyCode:   m.ToCurrencyCode,
		Rate:             m.Rate,
		EffectiveDate:    m.EffectiveDate,
		Source:           domain.RateSource(m.Source),
		Notes:            m.Notes,
		IsActive:         m.IsActive,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainFxRateSlice converts a slice of model FxRates to a slice of domain FxRates
func ToDomainFxRateSlice(ms []models.FxRate) []domain.FxRate {
	ds := make([]domain.FxRate, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainFxRate(m)
	}
	return ds
}
