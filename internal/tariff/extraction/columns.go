package extraction

import (
	"sort"
	"strings"

	tariff "tariff-cloud/internal/tariff/domain"
)

var flatKeywords = []string{"非分时电度电价", "非分时电量电价", "非分时电价"}

// Compound keywords that classify a cell as sharp regardless of other hits.
var sharpCompounds = []string{"尖峰时段", "尖峰"}

type tierKeywords struct {
	tier     tariff.Tier
	keywords []string
}

var columnKeywords = []tierKeywords{
	{tariff.TierSharp, []string{"尖峰时段", "尖峰", "尖时段", "尖时"}},
	{tariff.TierPeak, []string{"高峰时段", "高峰", "峰时段", "峰时"}},
	{tariff.TierFlat, []string{"平段", "平时段", "平时"}},
	{tariff.TierValley, []string{"低谷时段", "低谷", "谷段", "谷时段", "谷时"}},
	{tariff.TierDeep, []string{"深谷时段", "深谷", "深时段", "深时"}},
}

type headerKeyword struct {
	raw  string
	tier tariff.Tier
}

// Header keywords in lookup order. Bare symbols are accepted here, unlike
// column classification.
var headerKeywords = []headerKeyword{
	{"尖峰时段", tariff.TierSharp}, {"尖峰", tariff.TierSharp}, {"尖时段", tariff.TierSharp},
	{"尖时", tariff.TierSharp}, {"尖", tariff.TierSharp},
	{"高峰时段", tariff.TierPeak}, {"高峰", tariff.TierPeak}, {"峰段", tariff.TierPeak},
	{"峰时段", tariff.TierPeak}, {"峰时", tariff.TierPeak}, {"峰", tariff.TierPeak},
	{"平段", tariff.TierFlat}, {"平时段", tariff.TierFlat}, {"平时", tariff.TierFlat},
	{"平", tariff.TierFlat},
	{"低谷时段", tariff.TierValley}, {"低谷", tariff.TierValley}, {"谷段", tariff.TierValley},
	{"谷时段", tariff.TierValley}, {"谷时", tariff.TierValley}, {"谷", tariff.TierValley},
	{"深谷时段", tariff.TierDeep}, {"深谷", tariff.TierDeep}, {"深时段", tariff.TierDeep},
	{"深时", tariff.TierDeep}, {"深", tariff.TierDeep},
}

// ColumnMap locates the flat price column and the tier price columns of a grid.
type ColumnMap struct {
	// FlatCol is -1 when no flat price header was found.
	FlatCol int
	Tiers   map[tariff.Tier]int
}

// Empty reports whether no tier column was found.
func (m ColumnMap) Empty() bool {
	return len(m.Tiers) == 0
}

// ClassifyColumns scans every cell of the grid. Later matches overwrite
// earlier ones since wrapped headers repeat lower down.
func ClassifyColumns(grid tariff.Grid) ColumnMap {
	out := ColumnMap{FlatCol: -1, Tiers: map[tariff.Tier]int{}}
	for _, row := range grid.Rows {
		for col, cell := range row {
			if !cell.Valid {
				continue
			}
			if containsAny(cell.Text, flatKeywords) {
				out.FlatCol = col
			}
			if tier, ok := classifyCell(cell.Text); ok {
				out.Tiers[tier] = col
			}
		}
	}
	return out
}

func classifyCell(text string) (tariff.Tier, bool) {
	if containsAny(text, sharpCompounds) {
		return tariff.TierSharp, true
	}
	var matched []tariff.Tier
	for _, entry := range columnKeywords {
		if containsAny(text, entry.keywords) {
			matched = append(matched, entry.tier)
		}
	}
	if len(matched) != 1 {
		return tariff.TierNone, false
	}
	return matched[0], true
}

// InferTierOrder returns the left-to-right tier order of the grid's header
// row. A row mentioning 尖峰 wins over other rows. The result is empty when no
// row names at least two tiers.
func InferTierOrder(grid tariff.Grid) []tariff.Tier {
	header, ok := findHeaderRow(grid, true)
	if !ok {
		header, ok = findHeaderRow(grid, false)
	}
	if !ok {
		return nil
	}

	type hit struct {
		offset int
		tier   tariff.Tier
	}
	var hits []hit
	for _, kw := range headerKeywords {
		if idx := strings.Index(header, kw.raw); idx != -1 {
			hits = append(hits, hit{offset: idx, tier: kw.tier})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].offset < hits[j].offset })

	order := make([]tariff.Tier, 0, len(tariff.Tiers))
	seen := map[tariff.Tier]bool{}
	for _, h := range hits {
		if seen[h.tier] {
			continue
		}
		seen[h.tier] = true
		order = append(order, h.tier)
	}
	return order
}

func findHeaderRow(grid tariff.Grid, requireSharp bool) (string, bool) {
	for _, row := range grid.Rows {
		text := row.Text()
		if requireSharp && !strings.Contains(text, "尖峰") {
			continue
		}
		if distinctHeaderTiers(text) >= 2 {
			return text, true
		}
	}
	return "", false
}

func distinctHeaderTiers(text string) int {
	seen := map[tariff.Tier]bool{}
	for _, kw := range headerKeywords {
		if strings.Contains(text, kw.raw) {
			seen[kw.tier] = true
		}
	}
	return len(seen)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
