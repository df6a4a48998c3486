package rules

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	schedule "tariff-cloud/internal/schedule/domain"
	tariff "tariff-cloud/internal/tariff/domain"
)

// Anything may sit between the range and the price, e.g. unit annotations.
var scheduleLine = regexp.MustCompile(`(?:(尖|峰|平|谷|深)\s*)?(\d{1,2}:\d{2})\s*[-–~至]\s*(\d{1,2}:\d{2}).*?([0-9]+(?:\.[0-9]+)?)`)

// Parsed is a schedule read from text. Skipped counts the non-blank lines
// that did not yield a segment.
type Parsed struct {
	Segments []schedule.Segment
	Skipped  int
}

// ParseScheduleText reads lines shaped `[tier] start - end price`.
func ParseScheduleText(text string) Parsed {
	var out Parsed
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seg, ok := parseScheduleLine(line)
		if !ok {
			out.Skipped++
			continue
		}
		out.Segments = append(out.Segments, seg)
	}
	return out
}

func parseScheduleLine(line string) (schedule.Segment, bool) {
	m := scheduleLine.FindStringSubmatch(line)
	if m == nil {
		return schedule.Segment{}, false
	}
	start, err := schedule.ParseClock(m[2])
	if err != nil {
		return schedule.Segment{}, false
	}
	end, err := schedule.ParseClock(m[3])
	if err != nil {
		return schedule.Segment{}, false
	}
	price, err := decimal.NewFromString(m[4])
	if err != nil {
		return schedule.Segment{}, false
	}
	tier, _ := tariff.TierFromSymbol(m[1])
	seg, err := schedule.NewSegment(start, end, tier, price)
	if err != nil {
		return schedule.Segment{}, false
	}
	return seg, true
}

// FormatMerged renders merged segments one per line with four decimals.
func FormatMerged(merged []schedule.MergedSegment) string {
	lines := make([]string, 0, len(merged))
	for _, m := range merged {
		lines = append(lines, m.Interval().String()+" "+m.Total.StringFixed(4)+"元/度")
	}
	return strings.Join(lines, "\n")
}

// FormatSegments renders segments as `start - end price元/度`.
func FormatSegments(segs []schedule.Segment) string {
	lines := make([]string, 0, len(segs))
	for _, seg := range segs {
		lines = append(lines, seg.Interval().String()+" "+seg.Price.String()+"元/度")
	}
	return strings.Join(lines, "\n")
}
