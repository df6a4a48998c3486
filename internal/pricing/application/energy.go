package application

import (
	"strings"

	"github.com/shopspring/decimal"

	"tariff-cloud/internal/observability/metrics"
	pricing "tariff-cloud/internal/pricing/domain"
	"tariff-cloud/internal/schedule/rules"
	tariff "tariff-cloud/internal/tariff/domain"
)

const energyPlaces = 4

// EnergyReport is the outcome of an energy price setting run.
type EnergyReport struct {
	Results    []pricing.EnergyResult
	Mismatches []pricing.Mismatch
}

// SetEnergyPrices prices every station for month from records. Stations no
// record matches get TextNoEnergyPrice and a Mismatch entry.
func (s *PricingApplicationService) SetEnergyPrices(stations []pricing.Station, records []tariff.Record, month int) (EnergyReport, error) {
	if err := pricing.ValidateMonth(month); err != nil {
		return EnergyReport{}, err
	}
	column := pricing.EnergyColumn(month)
	report := EnergyReport{Results: make([]pricing.EnergyResult, 0, len(stations))}
	for _, station := range stations {
		record, ok := matchStation(station, records)
		if !ok {
			metrics.IncStationPricing(kindEnergy, metrics.ResultError)
			report.Results = append(report.Results, pricing.EnergyResult{Station: station, Text: pricing.TextNoEnergyPrice})
			report.Mismatches = append(report.Mismatches, pricing.Mismatch{
				Seq:    station.Seq,
				Name:   station.Name,
				Region: station.Region,
				City:   station.City,
				Scheme: station.SchemeLabel,
			})
			continue
		}
		metrics.IncStationPricing(kindEnergy, metrics.ResultSuccess)
		report.Results = append(report.Results, pricing.EnergyResult{
			Station: station,
			Text:    energyText(station, record, station.Schedule(column)),
			Matched: true,
		})
	}
	if len(report.Mismatches) > 0 {
		s.logger.Warn().Int("month", month).Int("mismatches", len(report.Mismatches)).Msg("stations without tariff record")
	}
	return report, nil
}

func matchStation(station pricing.Station, records []tariff.Record) (tariff.Record, bool) {
	scheme, ok := station.Scheme()
	if !ok {
		return tariff.Record{}, false
	}
	return tariff.Match(records, strings.TrimSpace(station.Region), station.City, scheme)
}

func energyText(station pricing.Station, record tariff.Record, ruleText string) string {
	if !station.TimeOfUse {
		if !record.Flat.Valid {
			return pricing.FullDayRange + " " + pricing.TextNoTierPrice
		}
		return pricing.FullDayRange + " " + scaled(record.Flat.Decimal, station.Multiplier) + pricing.UnitPerKWh
	}

	lines := rules.ParseRuleText(ruleText)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		base := tierPrice(line.Tier, record)
		switch {
		case !base.Valid:
			out = append(out, line.Tier+" "+line.Time+" "+pricing.TextNoTierPrice)
		case line.Tier == "":
			out = append(out, line.Time+" "+scaled(base.Decimal, station.Multiplier)+pricing.UnitPerKWh)
		default:
			out = append(out, line.Tier+" "+line.Time+" "+scaled(base.Decimal, station.Multiplier)+pricing.UnitPerKWh)
		}
	}
	return strings.Join(out, "\n")
}

// tierPrice resolves a rule token. Unknown tokens have no price.
func tierPrice(token string, record tariff.Record) decimal.NullDecimal {
	if token == "" {
		return tariff.PriceFor(tariff.TierNone, record)
	}
	tier, ok := tariff.TierFromSymbol(token)
	if !ok {
		return decimal.NullDecimal{}
	}
	return tariff.PriceFor(tier, record)
}

// scaled renders price×multiplier with up to four places. Whole amounts keep
// one decimal place ("1.0").
func scaled(price, multiplier decimal.Decimal) string {
	v := price.Mul(multiplier).Round(energyPlaces)
	if v.Equal(v.Truncate(0)) {
		return v.StringFixed(1)
	}
	return v.String()
}
