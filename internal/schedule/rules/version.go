package rules

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	schedule "tariff-cloud/internal/schedule/domain"
	tariff "tariff-cloud/internal/tariff/domain"
)

var versionLine = regexp.MustCompile(`^(?:(尖|峰|平|谷|深)\s*)?(\d{1,2}:\d{2})\s*[-–~至]\s*(\d{1,2}:\d{2}).*?([0-9]+(?:\.[0-9]+)?)`)

// NormalizeVersionText rewrites a schedule into the rate version layout
// `[tier ]start-end,price` with closed interval ends. Lines that do not start
// with an optional tier symbol and a range are skipped and counted.
func NormalizeVersionText(text string, places int32) (string, int) {
	var (
		lines   []string
		skipped int
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := versionLine.FindStringSubmatch(line)
		if m == nil {
			skipped++
			continue
		}
		price, err := decimal.NewFromString(m[4])
		if err != nil {
			skipped++
			continue
		}
		tier, start, end := m[1], m[2], closedEnd(m[3])
		if start == "0:00" && end == "23:59" {
			tier = tariff.TierFlat.Symbol()
		}
		prefix := ""
		if tier != "" {
			prefix = tier + " "
		}
		lines = append(lines, prefix+start+"-"+end+","+price.StringFixed(places))
	}
	return strings.Join(lines, "\n"), skipped
}

// closedEnd turns an exclusive end into the inclusive minute before it. Ends
// already on :59 or :29 are taken as inclusive.
func closedEnd(end string) string {
	if end == "24:00" {
		return "23:59"
	}
	if strings.HasSuffix(end, ":59") || strings.HasSuffix(end, ":29") {
		return end
	}
	minute, err := schedule.ParseClock(end)
	if err != nil {
		return end
	}
	if minute > 0 {
		minute--
	}
	return schedule.FormatClock(minute)
}
