package tariff

import "github.com/shopspring/decimal"

// VoltageLabel is the voltage class every extracted record describes.
const VoltageLabel = "1-10（20）千伏"

// Prices holds the flat price and the five tier prices of one row.
type Prices struct {
	Flat     decimal.NullDecimal
	Sharp    decimal.NullDecimal
	Peak     decimal.NullDecimal
	FlatTier decimal.NullDecimal
	Valley   decimal.NullDecimal
	Deep     decimal.NullDecimal
}

// Tier returns the price of tier t. TierNone returns the flat price.
func (p Prices) Tier(t Tier) decimal.NullDecimal {
	switch t {
	case TierNone:
		return p.Flat
	case TierSharp:
		return p.Sharp
	case TierPeak:
		return p.Peak
	case TierFlat:
		return p.FlatTier
	case TierValley:
		return p.Valley
	case TierDeep:
		return p.Deep
	default:
		return decimal.NullDecimal{}
	}
}

// WithTier returns a copy of p with the price of tier t replaced.
func (p Prices) WithTier(t Tier, v decimal.NullDecimal) Prices {
	switch t {
	case TierNone:
		p.Flat = v
	case TierSharp:
		p.Sharp = v
	case TierPeak:
		p.Peak = v
	case TierFlat:
		p.FlatTier = v
	case TierValley:
		p.Valley = v
	case TierDeep:
		p.Deep = v
	}
	return p
}

// Record is one typed tariff row read from a document.
type Record struct {
	Region       string
	City         string
	Scheme       Scheme
	VoltageLabel string
	Prices
}

// PriceFor resolves the base price a schedule line of tier t uses. A sharp
// line falls back to the peak price when the record has no sharp value.
func PriceFor(t Tier, record Record) decimal.NullDecimal {
	price := record.Tier(t)
	if t == TierSharp && !price.Valid {
		return record.Peak
	}
	return price
}

// Price wraps v as a valid nullable decimal.
func Price(v decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: v, Valid: true}
}
