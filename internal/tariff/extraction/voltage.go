package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"

	tariff "tariff-cloud/internal/tariff/domain"
)

var (
	rangeVoltagePattern = regexp.MustCompile(`1\s*[-~～至到]\s*10(?:（\s*20\s*）|\(\s*20\s*\))?\s*(?:千伏|kV|KV)`)
	plainVoltagePattern = regexp.MustCompile(`(?:^|[^0-9])10\s*(千伏|kV|KV)`)
)

// FindVoltageRows returns the indexes of rows describing the 1-10(20) kV
// class. Plain 10 kV rows are only considered when no range row exists.
func FindVoltageRows(grid tariff.Grid) []int {
	var idxs []int
	for i, row := range grid.Rows {
		if rangeVoltagePattern.MatchString(row.Text()) {
			idxs = append(idxs, i)
		}
	}
	if len(idxs) > 0 {
		return idxs
	}
	for i, row := range grid.Rows {
		if matchesPlainVoltage(row.Text()) {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// matchesPlainVoltage rejects 10千伏安 and 10kVA, which are capacity units.
func matchesPlainVoltage(text string) bool {
	for _, loc := range plainVoltagePattern.FindAllStringSubmatchIndex(text, -1) {
		unit := text[loc[2]:loc[3]]
		next, _ := utf8.DecodeRuneInString(text[loc[1]:])
		if unit == "千伏" && next == '安' {
			continue
		}
		if unit != "千伏" && (next == 'A' || next == 'a') {
			continue
		}
		return true
	}
	return false
}

// rowRule reorders voltage row matches for jurisdictions whose documents
// deviate from the single-part then two-part layout.
type rowRule struct {
	regionContains string
	apply          func(matches []int) []int
}

var rowRules = []rowRule{
	// The first match is a general header row.
	{regionContains: "浙江", apply: func(m []int) []int {
		if len(m) >= 3 {
			return m[1:3]
		}
		return firstTwo(m)
	}},
	// Two-part is listed before single-part.
	{regionContains: "江苏", apply: func(m []int) []int {
		m = firstTwo(m)
		if len(m) == 2 {
			return []int{m[1], m[0]}
		}
		return m
	}},
}

// SelectRows applies the first jurisdiction rule whose name is contained in
// region, or keeps the first two matches. Position in the result decides the
// scheme.
func SelectRows(region string, matches []int) []int {
	for _, rule := range rowRules {
		if strings.Contains(region, rule.regionContains) {
			return append([]int(nil), rule.apply(matches)...)
		}
	}
	return append([]int(nil), firstTwo(matches)...)
}

func firstTwo(m []int) []int {
	if len(m) > 2 {
		return m[:2]
	}
	return m
}
