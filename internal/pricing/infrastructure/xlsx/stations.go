package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	pricing "tariff-cloud/internal/pricing/domain"
	tariff "tariff-cloud/internal/tariff/domain"
)

// Station sheet headers.
const (
	colSeq        = "序号"
	colStation    = "站点名称"
	colProvince   = "所在省份"
	colCity       = "所属市区"
	colScheme     = "配置"
	colTimeOfUse  = "是否分时"
	colMultiplier = "电费乘子"
)

// ReadStationSheet reads the station sheet. Every header mentioning a month
// and either fee is kept as a schedule column. A blank multiplier means 1.
func ReadStationSheet(r io.Reader) (pricing.StationSheet, error) {
	t, err := readTable(r)
	if err != nil {
		return pricing.StationSheet{}, err
	}
	if err := t.require(colStation); err != nil {
		return pricing.StationSheet{}, err
	}

	var scheduleCols []string
	for _, name := range t.header {
		if isScheduleColumn(name) {
			scheduleCols = append(scheduleCols, name)
		}
	}

	sheet := pricing.StationSheet{Columns: t.header}
	for i, row := range t.rows {
		station := pricing.Station{
			Seq:         t.value(row, colSeq),
			Name:        t.value(row, colStation),
			Region:      t.value(row, colProvince),
			City:        t.value(row, colCity),
			SchemeLabel: t.value(row, colScheme),
			TimeOfUse:   t.value(row, colTimeOfUse) != pricing.TimeOfUseDisabled,
			Multiplier:  decimal.NewFromInt(1),
			Schedules:   make(map[string]string, len(scheduleCols)),
		}
		if station.Name == "" {
			return pricing.StationSheet{}, fmt.Errorf("%w: row %d", pricing.ErrEmptyStationName, i+2)
		}
		if text := t.value(row, colMultiplier); text != "" {
			m, ok := tariff.NewCell(text).Number()
			if !ok {
				return pricing.StationSheet{}, fmt.Errorf("xlsx: row %d: invalid %s %q", i+2, colMultiplier, text)
			}
			station.Multiplier = m
		}
		for _, col := range scheduleCols {
			station.Schedules[col] = t.raw(row, col)
		}
		sheet.Stations = append(sheet.Stations, station)
	}
	return sheet, nil
}

func isScheduleColumn(name string) bool {
	return strings.Contains(name, "月") && (strings.Contains(name, "电费") || strings.Contains(name, "服务费"))
}
