package schedule

import (
	"sort"
	"strings"
	"time"
)

// Plan modes.
const (
	ModeFixed = "fixed"
	ModeTOU   = "tou"
)

// Plan is a merged schedule stored for one station and billing month.
type Plan struct {
	ID             string
	StationID      string
	EffectiveMonth time.Time
	Currency       string
	Mode           string
	Segments       []MergedSegment
}

// NewPlan builds a plan from merged segments, which must cover the day
// exactly once. The month is normalized to its first day in UTC.
func NewPlan(stationID string, month time.Time, currency string, segs []MergedSegment) (Plan, error) {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return Plan{}, ErrEmptyStationID
	}
	if !IsPartition(MergedIntervals(segs)) {
		return Plan{}, ErrIncompletePlan
	}
	sorted := append([]MergedSegment(nil), segs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	mode := ModeTOU
	if len(sorted) == 1 {
		mode = ModeFixed
	}
	return Plan{
		StationID:      stationID,
		EffectiveMonth: MonthStart(month),
		Currency:       currency,
		Mode:           mode,
		Segments:       sorted,
	}, nil
}

// MonthStart returns the first instant of t's month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
