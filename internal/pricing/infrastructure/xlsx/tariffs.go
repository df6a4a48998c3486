package xlsx

import (
	"io"

	"github.com/shopspring/decimal"

	tariff "tariff-cloud/internal/tariff/domain"
)

// Tariff table headers.
const (
	colRegion  = "省份"
	colTCity   = "城市"
	colTScheme = "制度"
	colVoltage = "电压等级"
	colFlat    = "不分时电价"
)

var tariffHeader = []string{colRegion, colTCity, colTScheme, colVoltage, colFlat, "尖", "峰", "平", "谷", "深"}

// WriteTariffTable renders records as the tariff table.
func WriteTariffTable(records []tariff.Record) ([]byte, error) {
	w := newWorkbook("电价表")
	if err := w.writeRow(headerValues(tariffHeader)...); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []any{r.Region, r.City, r.Scheme.Label(), r.VoltageLabel, cellValue(r.Flat)}
		for _, tier := range tariff.Tiers {
			row = append(row, cellValue(r.Tier(tier)))
		}
		if err := w.writeRow(row...); err != nil {
			return nil, err
		}
	}
	return w.bytes()
}

// ReadTariffTable reads a tariff table, typically an edited export of
// WriteTariffTable. Rows with an unknown scheme keep the raw label.
func ReadTariffTable(r io.Reader) ([]tariff.Record, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(colRegion, colTScheme); err != nil {
		return nil, err
	}
	records := make([]tariff.Record, 0, len(t.rows))
	for _, row := range t.rows {
		label := t.value(row, colTScheme)
		scheme, ok := tariff.ParseScheme(label)
		if !ok {
			scheme = tariff.Scheme(label)
		}
		prices := tariff.Prices{Flat: numberOf(t.value(row, colFlat))}
		for _, tier := range tariff.Tiers {
			prices = prices.WithTier(tier, numberOf(t.value(row, tier.Symbol())))
		}
		records = append(records, tariff.Record{
			Region:       t.value(row, colRegion),
			City:         t.value(row, colTCity),
			Scheme:       scheme,
			VoltageLabel: t.value(row, colVoltage),
			Prices:       prices,
		})
	}
	return records, nil
}

func numberOf(text string) decimal.NullDecimal {
	v, ok := tariff.NewCell(text).Number()
	if !ok {
		return decimal.NullDecimal{}
	}
	return tariff.Price(v)
}

// cellValue writes prices as numbers so spreadsheets can compute with them.
func cellValue(v decimal.NullDecimal) any {
	if !v.Valid {
		return nil
	}
	f, _ := v.Decimal.Float64()
	return f
}

func headerValues(names []string) []any {
	out := make([]any, len(names))
	for i, name := range names {
		out[i] = name
	}
	return out
}
