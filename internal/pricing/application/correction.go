package application

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tariff-cloud/internal/observability/metrics"
	pricing "tariff-cloud/internal/pricing/domain"
	schedule "tariff-cloud/internal/schedule/domain"
	"tariff-cloud/internal/schedule/rules"
	tariff "tariff-cloud/internal/tariff/domain"
)

// CorrectionRow is one editable row of a schedule correction: the segment
// closes at End and costs Price. Starts are implied by the previous row.
type CorrectionRow struct {
	End   string
	Price decimal.NullDecimal
}

// CorrectionRows seeds editable rows from a finalized schedule text.
func CorrectionRows(text string) []CorrectionRow {
	parsed := rules.ParseScheduleText(text)
	rows := make([]CorrectionRow, 0, len(parsed.Segments))
	for _, seg := range parsed.Segments {
		rows = append(rows, CorrectionRow{End: schedule.FormatClock(seg.End), Price: tariff.Price(seg.Price)})
	}
	return rows
}

// CorrectSchedule rebuilds a contiguous 0:00-24:00 schedule from rows.
// Rows with a blank end or missing price are dropped first.
func (s *PricingApplicationService) CorrectSchedule(station string, rows []CorrectionRow) (pricing.StationText, []schedule.Segment, error) {
	points := make([]schedule.Breakpoint, 0, len(rows))
	for _, row := range rows {
		end := strings.TrimSpace(row.End)
		if end == "" || !row.Price.Valid {
			continue
		}
		minute, err := schedule.ParseClock(end)
		if err != nil {
			metrics.IncStationPricing(kindCorrection, metrics.ResultError)
			return pricing.StationText{}, nil, fmt.Errorf("pricing: correct %s: %w", station, err)
		}
		points = append(points, schedule.Breakpoint{End: minute, Price: row.Price.Decimal})
	}
	if len(points) == 0 {
		metrics.IncStationPricing(kindCorrection, metrics.ResultError)
		return pricing.StationText{}, nil, fmt.Errorf("%w: %s", pricing.ErrEmptyCorrection, station)
	}
	segs, err := schedule.Rebuild(points)
	if err != nil {
		metrics.IncStationPricing(kindCorrection, metrics.ResultError)
		return pricing.StationText{}, nil, fmt.Errorf("pricing: correct %s: %w", station, err)
	}
	metrics.IncStationPricing(kindCorrection, metrics.ResultSuccess)
	s.logger.Debug().Str("station", station).Int("segments", len(segs)).Msg("schedule corrected")
	return pricing.StationText{Station: station, Text: rules.FormatSegments(segs)}, segs, nil
}
