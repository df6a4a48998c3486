package tariff

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v string) decimal.NullDecimal {
	return Price(decimal.RequireFromString(v))
}

func TestPriceForFallsBackFromSharpToPeak(t *testing.T) {
	record := Record{Prices: Prices{Peak: price("0.92")}}

	got := PriceFor(TierSharp, record)

	require.True(t, got.Valid)
	assert.True(t, decimal.RequireFromString("0.92").Equal(got.Decimal))
}

func TestPriceFor(t *testing.T) {
	record := Record{Prices: Prices{
		Flat:   price("0.6"),
		Sharp:  price("1.3"),
		Peak:   price("1.1"),
		Valley: price("0.3"),
	}}

	assert.Equal(t, price("0.6"), PriceFor(TierNone, record))
	assert.Equal(t, price("1.3"), PriceFor(TierSharp, record))
	assert.Equal(t, price("0.3"), PriceFor(TierValley, record))
	assert.False(t, PriceFor(TierDeep, record).Valid)
	assert.False(t, PriceFor(TierFlat, record).Valid)
	assert.False(t, PriceFor(Tier("bogus"), record).Valid)
}

func TestTierSymbols(t *testing.T) {
	for _, tier := range Tiers {
		got, ok := TierFromSymbol(tier.Symbol())
		require.True(t, ok)
		assert.Equal(t, tier, got)
	}
	_, ok := TierFromSymbol("")
	assert.False(t, ok)
	_, ok = TierFromSymbol("峰时")
	assert.False(t, ok)
	assert.False(t, TierNone.Valid())
}

func TestSchemeLabels(t *testing.T) {
	assert.Equal(t, SchemeSinglePart, SchemeAt(0))
	assert.Equal(t, SchemeTwoPart, SchemeAt(1))
	assert.Equal(t, Scheme("scheme-3"), SchemeAt(2))

	for label, want := range map[string]Scheme{
		"单一制":        SchemeSinglePart,
		" two-part ": SchemeTwoPart,
		"方案3":        "scheme-3",
		"scheme-4":   "scheme-4",
	} {
		got, ok := ParseScheme(label)
		require.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}
	for _, label := range []string{"", "方案", "方案x", "三部制"} {
		_, ok := ParseScheme(label)
		assert.False(t, ok, label)
	}

	assert.Equal(t, "两部制", SchemeTwoPart.Label())
	assert.Equal(t, "方案3", SchemeAt(2).Label())
}

func TestMatch(t *testing.T) {
	records := []Record{
		{Region: "广东省", Scheme: SchemeSinglePart, Prices: Prices{Flat: price("0.70")}},
		{Region: "广东省", City: "深圳市", Scheme: SchemeSinglePart, Prices: Prices{Flat: price("0.75")}},
		{Region: "江苏省", City: "南京市", Scheme: SchemeSinglePart, Prices: Prices{Flat: price("0.65")}},
		{Region: "江苏省", Scheme: SchemeTwoPart, Prices: Prices{Flat: price("0.60")}},
	}

	got, ok := Match(records, "广东省", "深圳市", SchemeSinglePart)
	require.True(t, ok)
	assert.Equal(t, "深圳市", got.City)

	got, ok = Match(records, "广东省", "广州市", SchemeSinglePart)
	require.True(t, ok)
	assert.Equal(t, "", got.City)

	got, ok = Match(records, "江苏省", "苏州市", SchemeSinglePart)
	require.True(t, ok)
	assert.Equal(t, "南京市", got.City)

	_, ok = Match(records, "浙江省", "", SchemeSinglePart)
	assert.False(t, ok)
	_, ok = Match(records, "广东省", "深圳市", SchemeTwoPart)
	assert.False(t, ok)
}

func TestCellNumber(t *testing.T) {
	v, ok := NewCell(" 1,234.5 ").Number()
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("1234.5").Equal(v))

	_, ok = NewCell("1-10千伏").Number()
	assert.False(t, ok)
	_, ok = NewCell("  ").Number()
	assert.False(t, ok)
	assert.True(t, NewCell("\t").Null())
}

func TestGridAccessors(t *testing.T) {
	grid := Grid{Rows: []Row{{NewCell("a"), NewCell(""), NewCell("b")}}}
	assert.Equal(t, 3, grid.Width())
	assert.Equal(t, "ab", grid.Row(0).Text())
	assert.Nil(t, grid.Row(1))
	assert.True(t, grid.Row(0).Cell(5).Null())
}
