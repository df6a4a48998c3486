package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"

	tariff "tariff-cloud/internal/tariff/domain"
)

// Segment prices the half-open minute interval [Start, End).
type Segment struct {
	Start int
	End   int
	Tier  tariff.Tier
	Price decimal.Decimal
}

// NewSegment validates the bounds of a segment.
func NewSegment(start, end int, tier tariff.Tier, price decimal.Decimal) (Segment, error) {
	seg := Segment{Start: start, End: end, Tier: tier, Price: price}
	if err := seg.Validate(); err != nil {
		return Segment{}, err
	}
	return seg, nil
}

// Validate checks 0 <= start < end <= 1440.
func (s Segment) Validate() error {
	if s.Start < 0 || s.End > MinutesPerDay || s.Start >= s.End {
		return fmt.Errorf("%w: %s", ErrInvalidSegment, s.Interval())
	}
	return nil
}

// Covers reports whether minute falls in the segment.
func (s Segment) Covers(minute int) bool {
	return s.Start <= minute && minute < s.End
}

// Interval returns the bounds of the segment.
func (s Segment) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// Interval is a half-open minute interval.
type Interval struct {
	Start int
	End   int
}

func (i Interval) String() string {
	return FormatClock(i.Start) + " - " + FormatClock(i.End)
}
