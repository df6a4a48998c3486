package extraction

import (
	"strings"

	"github.com/shopspring/decimal"

	tariff "tariff-cloud/internal/tariff/domain"
)

const maxClusterSize = 5

var (
	clusterMin  = decimal.RequireFromString("0.05")
	clusterMax  = decimal.NewFromInt(10)
	flatMin     = decimal.RequireFromString("0.1")
	flatMax     = decimal.NewFromInt(2)
	levyCeiling = decimal.RequireFromString("0.1")
)

// Layout is the column structure shared by every row of one grid.
type Layout struct {
	Columns ColumnMap
	// Order is consulted only when Columns is empty.
	Order []tariff.Tier
}

// ExtractRow reads the prices of one voltage row.
func ExtractRow(row tariff.Row, layout Layout) tariff.Prices {
	if !layout.Columns.Empty() {
		return extractByColumns(row, layout.Columns)
	}
	prices := tariff.Prices{Flat: firstFlatPrice(row)}
	for tier, price := range AlignCluster(PriceCluster(row), layout.Order) {
		prices = prices.WithTier(tier, price)
	}
	return prices
}

func extractByColumns(row tariff.Row, columns ColumnMap) tariff.Prices {
	var prices tariff.Prices
	if columns.FlatCol >= 0 {
		if v, ok := row.Cell(columns.FlatCol).Number(); ok {
			prices.Flat = tariff.Price(v)
		}
	}
	if !prices.Flat.Valid {
		prices.Flat = firstFlatPrice(row)
	}
	for tier, col := range columns.Tiers {
		if v, ok := row.Cell(col).Number(); ok {
			prices = prices.WithTier(tier, tariff.Price(v))
		}
	}
	return prices
}

// firstFlatPrice returns the first number in the plausible flat rate range.
func firstFlatPrice(row tariff.Row) decimal.NullDecimal {
	for _, cell := range row {
		v, ok := cell.Number()
		if ok && inRange(v, flatMin, flatMax) {
			return tariff.Price(v)
		}
	}
	return decimal.NullDecimal{}
}

// PriceCluster returns the trailing run of price-like numbers of a row, left
// to right, holding at most five values.
func PriceCluster(row tariff.Row) []decimal.Decimal {
	var rev []decimal.Decimal
	for i := len(row) - 1; i >= 0; i-- {
		v, ok := row[i].Number()
		if !ok || !inRange(v, clusterMin, clusterMax) {
			if len(rev) > 0 {
				break
			}
			continue
		}
		if len(rev) == maxClusterSize {
			break
		}
		rev = append(rev, v)
	}
	cluster := make([]decimal.Decimal, len(rev))
	for i, v := range rev {
		cluster[len(rev)-1-i] = v
	}
	return cluster
}

// AlignCluster maps cluster onto order by right alignment. When the cluster
// is shorter than the order the leading tiers are left null.
func AlignCluster(cluster []decimal.Decimal, order []tariff.Tier) map[tariff.Tier]decimal.NullDecimal {
	out := make(map[tariff.Tier]decimal.NullDecimal, len(order))
	if len(cluster) == 0 || len(order) == 0 {
		return out
	}
	offset := len(order) - len(cluster)
	for i, tier := range order {
		j := i - offset
		if j >= 0 && j < len(cluster) {
			out[tier] = tariff.Price(cluster[j])
		} else {
			out[tier] = decimal.NullDecimal{}
		}
	}
	return out
}

// correction rewrites extracted prices for jurisdictions with known layout
// quirks. It runs after the default extraction.
type correction struct {
	regionContains string
	apply          func(row tariff.Row, prices tariff.Prices) tariff.Prices
}

var corrections = []correction{
	{regionContains: "浙江", apply: correctLevyColumn},
}

// correctLevyColumn drops the government fund levy that precedes the four
// tier prices. The table has no deep tier.
func correctLevyColumn(row tariff.Row, prices tariff.Prices) tariff.Prices {
	cluster := PriceCluster(row)
	for len(cluster) > 4 && cluster[0].LessThan(levyCeiling) {
		cluster = cluster[1:]
	}
	if len(cluster) != 4 {
		return prices
	}
	return tariff.Prices{
		Flat:     prices.Flat,
		Sharp:    tariff.Price(cluster[0]),
		Peak:     tariff.Price(cluster[1]),
		FlatTier: tariff.Price(cluster[2]),
		Valley:   tariff.Price(cluster[3]),
	}
}

// Extract builds one record per selected row. It has no side effects.
func Extract(grid tariff.Grid, region string, rows []int, layout Layout) []tariff.Record {
	records := make([]tariff.Record, 0, len(rows))
	for pos, idx := range rows {
		row := grid.Row(idx)
		prices := ExtractRow(row, layout)
		for _, c := range corrections {
			if strings.Contains(region, c.regionContains) {
				prices = c.apply(row, prices)
			}
		}
		records = append(records, tariff.Record{
			Region:       region,
			City:         CityFor(region),
			Scheme:       tariff.SchemeAt(pos),
			VoltageLabel: tariff.VoltageLabel,
			Prices:       prices,
		})
	}
	return records
}

func inRange(v, lo, hi decimal.Decimal) bool {
	return v.GreaterThanOrEqual(lo) && v.LessThanOrEqual(hi)
}
