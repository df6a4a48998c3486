package rules

import (
	"regexp"
	"strings"
)

var (
	serviceLine = regexp.MustCompile(`(\S+)\s+(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)
	fullDayLine = regexp.MustCompile(`\b0:00\s*-\s*24:00\b`)
)

// ServiceLine is a tiered time range of a service fee rule.
type ServiceLine struct {
	Tier  string
	Start string
	End   string
}

// ParseServiceLine reads `tier start - end` anywhere in line.
func ParseServiceLine(line string) (ServiceLine, bool) {
	m := serviceLine.FindStringSubmatch(line)
	if m == nil {
		return ServiceLine{}, false
	}
	return ServiceLine{Tier: m[1], Start: m[2], End: m[3]}, true
}

// IsFullDay reports whether any line of text spans 0:00 - 24:00.
func IsFullDay(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if fullDayLine.MatchString(line) {
			return true
		}
	}
	return false
}
