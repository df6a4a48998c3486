package schedule

import (
	"sort"

	"github.com/shopspring/decimal"
)

const totalPlaces = 4

// MergedSegment is a sub-interval priced by both schedules.
type MergedSegment struct {
	Start   int
	End     int
	Energy  decimal.Decimal
	Service decimal.Decimal
	Total   decimal.Decimal
}

// Interval returns the bounds of the merged segment.
func (m MergedSegment) Interval() Interval {
	return Interval{Start: m.Start, End: m.End}
}

// MergeResult holds the merged partition and the sub-intervals left out
// because one schedule did not cover them.
type MergeResult struct {
	Segments []MergedSegment
	Dropped  []Interval
}

// Merge splits the day at every boundary of either schedule and prices each
// piece with the first covering segment of each side. Pieces uncovered on
// either side are dropped. An empty schedule on either side yields an empty
// result.
func Merge(energy, service []Segment) MergeResult {
	var result MergeResult
	if len(energy) == 0 || len(service) == 0 {
		return result
	}

	points := boundaries(energy, service)
	for i := 0; i+1 < len(points); i++ {
		start, end := points[i], points[i+1]
		e, okE := priceAt(energy, start)
		s, okS := priceAt(service, start)
		if !okE || !okS {
			result.Dropped = append(result.Dropped, Interval{Start: start, End: end})
			continue
		}
		result.Segments = append(result.Segments, MergedSegment{
			Start:   start,
			End:     end,
			Energy:  e,
			Service: s,
			Total:   e.Add(s).Round(totalPlaces),
		})
	}
	return result
}

func boundaries(schedules ...[]Segment) []int {
	seen := map[int]struct{}{}
	var points []int
	for _, segs := range schedules {
		for _, seg := range segs {
			for _, p := range [2]int{seg.Start, seg.End} {
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				points = append(points, p)
			}
		}
	}
	sort.Ints(points)
	return points
}

func priceAt(segs []Segment, minute int) (decimal.Decimal, bool) {
	for _, seg := range segs {
		if seg.Covers(minute) {
			return seg.Price, true
		}
	}
	return decimal.Decimal{}, false
}
