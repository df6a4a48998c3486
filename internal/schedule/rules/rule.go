// Package rules parses the free-text time rules and price schedules that
// station sheets carry per month.
package rules

import (
	"regexp"
	"strings"
)

var leadingClock = regexp.MustCompile(`^\d{1,2}:\d{2}`)

// RuleLine is one line of a station's monthly time rule. Tier holds the raw
// token before the time range; it is empty for untiered lines. Time is empty
// when the line carried no range.
type RuleLine struct {
	Tier string
	Time string
}

// ParseRuleLine splits a rule line into its tier token and time range.
func ParseRuleLine(line string) RuleLine {
	line = strings.TrimSpace(line)
	if leadingClock.MatchString(line) {
		return RuleLine{Time: line}
	}
	tier, rest, ok := strings.Cut(line, " ")
	if !ok {
		return RuleLine{Tier: tier}
	}
	return RuleLine{Tier: tier, Time: strings.TrimSpace(rest)}
}

// ParseRuleText parses every non-blank line of a rule text.
func ParseRuleText(text string) []RuleLine {
	var out []RuleLine
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, ParseRuleLine(line))
	}
	return out
}
