package application

import (
	"sort"

	"tariff-cloud/internal/observability/metrics"
	pricing "tariff-cloud/internal/pricing/domain"
	schedule "tariff-cloud/internal/schedule/domain"
	"tariff-cloud/internal/schedule/rules"
)

// MergeTexts parses an energy and a service schedule text and merges them.
func MergeTexts(energyText, serviceText string) pricing.TotalResult {
	energy := rules.ParseScheduleText(energyText)
	service := rules.ParseScheduleText(serviceText)
	metrics.AddSkippedLines("schedule", energy.Skipped+service.Skipped)

	merged := schedule.Merge(energy.Segments, service.Segments)
	result := pricing.TotalResult{
		Segments: merged.Segments,
		Dropped:  merged.Dropped,
		Skipped:  energy.Skipped + service.Skipped,
	}
	if len(merged.Segments) == 0 {
		metrics.ObserveScheduleMerge(metrics.ResultError, len(merged.Dropped))
		result.Text = pricing.TextMergeFailed
		return result
	}
	metrics.ObserveScheduleMerge(metrics.ResultSuccess, len(merged.Dropped))
	result.Text = rules.FormatMerged(merged.Segments)
	return result
}

// CalculateTotals merges energy and service schedules of every station found
// in both tables, ordered by station name. The first row of a repeated
// station wins.
func (s *PricingApplicationService) CalculateTotals(energy, service []pricing.StationText) (pricing.TotalReport, error) {
	energyByName := firstByStation(energy)
	serviceByName := firstByStation(service)

	var report pricing.TotalReport
	var common []string
	for name := range energyByName {
		if _, ok := serviceByName[name]; ok {
			common = append(common, name)
		} else {
			report.EnergyOnly = append(report.EnergyOnly, name)
		}
	}
	for name := range serviceByName {
		if _, ok := energyByName[name]; !ok {
			report.ServiceOnly = append(report.ServiceOnly, name)
		}
	}
	sort.Strings(common)
	sort.Strings(report.EnergyOnly)
	sort.Strings(report.ServiceOnly)
	if len(common) == 0 {
		return report, pricing.ErrNoCommonStations
	}

	for _, name := range common {
		result := MergeTexts(energyByName[name], serviceByName[name])
		result.Station = name
		kind := metrics.ResultSuccess
		if len(result.Segments) == 0 {
			kind = metrics.ResultError
		}
		metrics.IncStationPricing(kindTotal, kind)
		report.Results = append(report.Results, result)
	}
	s.logger.Info().
		Int("stations", len(common)).
		Int("energy_only", len(report.EnergyOnly)).
		Int("service_only", len(report.ServiceOnly)).
		Msg("total prices calculated")
	return report, nil
}

func firstByStation(rows []pricing.StationText) map[string]string {
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Station == "" {
			continue
		}
		if _, seen := out[row.Station]; !seen {
			out[row.Station] = row.Text
		}
	}
	return out
}
