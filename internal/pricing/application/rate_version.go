package application

import (
	"tariff-cloud/internal/observability/metrics"
	pricing "tariff-cloud/internal/pricing/domain"
	"tariff-cloud/internal/schedule/rules"
)

const ratePlaces = 2

// BuildRateVersions rewrites energy and service texts into the system rate
// layout with two decimals.
func (s *PricingApplicationService) BuildRateVersions(rows []pricing.RateVersionRow) []pricing.RateVersion {
	out := make([]pricing.RateVersion, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		energy, energySkipped := rules.NormalizeVersionText(row.Energy, ratePlaces)
		service, serviceSkipped := rules.NormalizeVersionText(row.Service, ratePlaces)
		version := pricing.RateVersion{
			Name:    row.Name,
			Code:    row.Code,
			Energy:  energy,
			Service: service,
			Skipped: energySkipped + serviceSkipped,
		}
		skipped += version.Skipped
		metrics.IncStationPricing(kindRateVersion, metrics.ResultSuccess)
		out = append(out, version)
	}
	metrics.AddSkippedLines("rate_version", skipped)
	s.logger.Info().Int("rows", len(out)).Int("skipped_lines", skipped).Msg("rate versions built")
	return out
}
