package tariff

// Tier is a time-of-use pricing category. The zero value means "no tier",
// i.e. the flat (non time-of-use) price applies.
type Tier string

const (
	TierNone   Tier = ""
	TierSharp  Tier = "sharp"
	TierPeak   Tier = "peak"
	TierFlat   Tier = "flat"
	TierValley Tier = "valley"
	TierDeep   Tier = "deep"
)

// Tiers lists all tiers in demand order.
var Tiers = []Tier{TierSharp, TierPeak, TierFlat, TierValley, TierDeep}

var tierSymbols = map[Tier]string{
	TierSharp:  "尖",
	TierPeak:   "峰",
	TierFlat:   "平",
	TierValley: "谷",
	TierDeep:   "深",
}

// Symbol returns the single-character symbol used in tariff documents and
// schedule text.
func (t Tier) Symbol() string {
	return tierSymbols[t]
}

// Valid reports whether t is one of the five tiers.
func (t Tier) Valid() bool {
	_, ok := tierSymbols[t]
	return ok
}

// TierFromSymbol resolves a document symbol such as "谷".
func TierFromSymbol(symbol string) (Tier, bool) {
	for tier, s := range tierSymbols {
		if s == symbol {
			return tier, true
		}
	}
	return TierNone, false
}
