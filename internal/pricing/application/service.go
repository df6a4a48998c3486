package application

import (
	"strings"

	"tariff-cloud/internal/observability/metrics"
	pricing "tariff-cloud/internal/pricing/domain"
	"tariff-cloud/internal/schedule/rules"
	tariff "tariff-cloud/internal/tariff/domain"
)

const servicePlaces = 2

// ServiceReport is the outcome of a service fee setting run.
type ServiceReport struct {
	// Column is the station sheet column the time ranges were read from.
	Column  string
	Results []pricing.StationText
}

// SetServicePrices prices every station of sheet for month using the time
// ranges of the month column and the station's row of the price table.
func (s *PricingApplicationService) SetServicePrices(sheet pricing.StationSheet, prices []pricing.ServicePrice, month int) (ServiceReport, error) {
	column, err := sheet.MonthColumn(month)
	if err != nil {
		return ServiceReport{}, err
	}
	byName := make(map[string]pricing.ServicePrice, len(prices))
	for _, p := range prices {
		if _, seen := byName[p.StationName]; !seen {
			byName[p.StationName] = p
		}
	}

	report := ServiceReport{Column: column, Results: make([]pricing.StationText, 0, len(sheet.Stations))}
	missing := 0
	for _, station := range sheet.Stations {
		price, ok := byName[station.Name]
		if !ok {
			missing++
			metrics.IncStationPricing(kindService, metrics.ResultError)
			report.Results = append(report.Results, pricing.StationText{Station: station.Name, Text: pricing.TextNoServicePrice})
			continue
		}
		metrics.IncStationPricing(kindService, metrics.ResultSuccess)
		report.Results = append(report.Results, pricing.StationText{
			Station: station.Name,
			Text:    serviceText(station.Schedule(column), price.Prices),
		})
	}
	s.logger.Info().Int("month", month).Str("column", column).Int("stations", len(sheet.Stations)).Int("missing", missing).Msg("service prices set")
	return report, nil
}

func serviceText(ranges string, prices tariff.Prices) string {
	if rules.IsFullDay(ranges) {
		if !prices.Flat.Valid {
			return pricing.TextFlatFeeMissing
		}
		return pricing.FullDayRange + " " + prices.Flat.Decimal.StringFixed(servicePlaces) + pricing.UnitPerKWh
	}
	var out []string
	for _, line := range strings.Split(ranges, "\n") {
		parsed, ok := rules.ParseServiceLine(line)
		if !ok {
			continue
		}
		tier, ok := tariff.TierFromSymbol(parsed.Tier)
		if !ok {
			continue
		}
		price := prices.Tier(tier)
		if !price.Valid {
			continue
		}
		out = append(out, parsed.Tier+" "+parsed.Start+" - "+parsed.End+" "+price.Decimal.StringFixed(servicePlaces)+pricing.UnitPerKWh)
	}
	return strings.Join(out, "\n")
}
