package xlsx

import (
	"io"

	pricing "tariff-cloud/internal/pricing/domain"
	tariff "tariff-cloud/internal/tariff/domain"
)

const colFlatFee = "一口价服务费"

// ReadServicePrices reads the service price table: station name, the
// whole-day fee and one column per tier symbol.
func ReadServicePrices(r io.Reader) ([]pricing.ServicePrice, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(colStation); err != nil {
		return nil, err
	}
	out := make([]pricing.ServicePrice, 0, len(t.rows))
	for _, row := range t.rows {
		prices := tariff.Prices{Flat: numberOf(t.value(row, colFlatFee))}
		for _, tier := range tariff.Tiers {
			prices = prices.WithTier(tier, numberOf(t.value(row, tier.Symbol())))
		}
		out = append(out, pricing.ServicePrice{StationName: t.value(row, colStation), Prices: prices})
	}
	return out, nil
}
