package extraction

import (
	"strings"
	"unicode"
)

const (
	gridCompanyMarker = "国网"
	// FallbackRegion is used when the header names no grid company.
	FallbackRegion = "上海市"
)

// Suffixes ending the jurisdiction name, longest first.
var companySuffixes = []string{"电力有限公司", "电力公司"}

// Bare jurisdiction names rewritten to their municipal form.
var regionAliases = map[string]string{
	"重庆": "重庆市",
}

// RegionResult is the jurisdiction inferred from a document header.
type RegionResult struct {
	Name     string
	Detected bool
}

// DetectRegion extracts the issuing jurisdiction from header text. It never
// fails: without a recognizable marker, or when the marker is followed
// directly by the company suffix, it returns FallbackRegion with Detected
// unset.
func DetectRegion(header string) RegionResult {
	text := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, header)

	start := strings.Index(text, gridCompanyMarker)
	if start == -1 {
		return RegionResult{Name: FallbackRegion}
	}
	rest := text[start+len(gridCompanyMarker):]
	for _, suffix := range companySuffixes {
		end := strings.Index(rest, suffix)
		if end == -1 {
			continue
		}
		name := strings.TrimSpace(rest[:end])
		if alias, ok := regionAliases[name]; ok {
			name = alias
		}
		if name == "" {
			return RegionResult{Name: FallbackRegion}
		}
		return RegionResult{Name: name, Detected: true}
	}
	return RegionResult{Name: FallbackRegion}
}

// CityFor returns the city column value of records issued for region.
// Municipalities are their own city.
func CityFor(region string) string {
	if region == regionAliases["重庆"] {
		return region
	}
	return ""
}
