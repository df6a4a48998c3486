package schedule

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// IsPartition reports whether the intervals cover [0, 1440) exactly once.
func IsPartition(intervals []Interval) bool {
	if len(intervals) == 0 {
		return false
	}
	sorted := append([]Interval(nil), intervals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	cursor := 0
	for _, iv := range sorted {
		if iv.Start != cursor || iv.End <= iv.Start {
			return false
		}
		cursor = iv.End
	}
	return cursor == MinutesPerDay
}

// Intervals returns the bounds of segs.
func Intervals(segs []Segment) []Interval {
	out := make([]Interval, len(segs))
	for i, seg := range segs {
		out[i] = seg.Interval()
	}
	return out
}

// MergedIntervals returns the bounds of merged.
func MergedIntervals(merged []MergedSegment) []Interval {
	out := make([]Interval, len(merged))
	for i, seg := range merged {
		out[i] = seg.Interval()
	}
	return out
}

// Breakpoint closes a segment at End with Price.
type Breakpoint struct {
	End   int
	Price decimal.Decimal
}

// Rebuild lays breakpoints end to end starting at 0:00. The last breakpoint
// must close the day.
func Rebuild(points []Breakpoint) ([]Segment, error) {
	if len(points) == 0 {
		return nil, ErrEmptySchedule
	}
	if last := points[len(points)-1].End; last != MinutesPerDay {
		return nil, fmt.Errorf("%w: got %s", ErrNotEndOfDay, FormatClock(last))
	}
	segs := make([]Segment, 0, len(points))
	start := 0
	for _, p := range points {
		if p.End <= start {
			return nil, fmt.Errorf("%w: %s -> %s", ErrNotContiguous, FormatClock(start), FormatClock(p.End))
		}
		segs = append(segs, Segment{Start: start, End: p.End, Price: p.Price})
		start = p.End
	}
	return segs, nil
}
