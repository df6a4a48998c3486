package xlsx

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	pricing "tariff-cloud/internal/pricing/domain"
)

// Result table text columns.
const (
	ColumnEnergy  = "电费"
	ColumnService = "服务费"
	ColumnTotal   = "总价"
)

// WriteEnergyResults renders energy setting results with a second sheet
// listing stations no tariff record matched.
func WriteEnergyResults(results []pricing.EnergyResult, mismatches []pricing.Mismatch) ([]byte, error) {
	w := newWorkbook("电费")
	if err := w.writeRow("序号", "站点名称", "省份", "城市", "配置", "是否分时", "电费乘子", ColumnEnergy); err != nil {
		return nil, err
	}
	for _, r := range results {
		tou := "是"
		if !r.Station.TimeOfUse {
			tou = pricing.TimeOfUseDisabled
		}
		mult, _ := r.Station.Multiplier.Float64()
		if err := w.writeRow(r.Station.Seq, r.Station.Name, r.Station.Region, r.Station.City, r.Station.SchemeLabel, tou, mult, r.Text); err != nil {
			return nil, err
		}
	}
	if len(mismatches) > 0 {
		m := w.addSheet("未匹配")
		if err := m.writeRow("序号", "站点名称", "省份", "城市", "配置"); err != nil {
			return nil, err
		}
		for _, mm := range mismatches {
			if err := m.writeRow(mm.Seq, mm.Name, mm.Region, mm.City, mm.Scheme); err != nil {
				return nil, err
			}
		}
	}
	return w.bytes()
}

// WriteStationTexts renders a two-column station/text table.
func WriteStationTexts(column string, rows []pricing.StationText) ([]byte, error) {
	w := newWorkbook(column)
	if err := w.writeRow(colStation, column); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.writeRow(r.Station, r.Text); err != nil {
			return nil, err
		}
	}
	return w.bytes()
}

// ReadStationTexts reads station names and the schedule text of column.
func ReadStationTexts(r io.Reader, column string) ([]pricing.StationText, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(colStation, column); err != nil {
		return nil, err
	}
	out := make([]pricing.StationText, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, pricing.StationText{Station: t.value(row, colStation), Text: t.raw(row, column)})
	}
	return out, nil
}

// WriteTotals renders total prices and a per-segment detail sheet.
func WriteTotals(report pricing.TotalReport) ([]byte, error) {
	w := newWorkbook(ColumnTotal)
	if err := w.writeRow(colStation, ColumnTotal); err != nil {
		return nil, err
	}
	for _, r := range report.Results {
		if err := w.writeRow(r.Station, r.Text); err != nil {
			return nil, err
		}
	}
	detail := w.addSheet("时段详情")
	if err := detail.writeRow(colStation, "时段", "电费(元/度)", "服务费(元/度)", "总价(元/度)"); err != nil {
		return nil, err
	}
	for _, r := range report.Results {
		for _, seg := range r.Segments {
			if err := detail.writeRow(r.Station, seg.Interval().String(), seg.Energy.String(), seg.Service.String(), seg.Total.StringFixed(4)); err != nil {
				return nil, err
			}
		}
	}
	return w.bytes()
}

// Rate version template headers.
const (
	colCode           = "站点编号"
	colEffectEnergy   = "本次生效价格-电费"
	colEffectService  = "本次生效价格-服务费"
	colRateEnergy     = "充电费"
	rateVersionSheet  = "费率版本"
	defaultReportFont = "微软雅黑 Light"
)

// ReadRateVersionRows reads the rate template columns.
func ReadRateVersionRows(r io.Reader) ([]pricing.RateVersionRow, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(colStation, colCode, colEffectEnergy, colEffectService); err != nil {
		return nil, err
	}
	out := make([]pricing.RateVersionRow, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, pricing.RateVersionRow{
			Name:    t.value(row, colStation),
			Code:    t.value(row, colCode),
			Energy:  t.raw(row, colEffectEnergy),
			Service: t.raw(row, colEffectService),
		})
	}
	return out, nil
}

// RateVersionStyle controls the rate version workbook look.
type RateVersionStyle struct {
	Font     string
	FontSize float64
	// Plain skips fonts, alignment and widths.
	Plain bool
}

// RateVersionFilename names the export for a version date.
func RateVersionFilename(date time.Time) string {
	return fmt.Sprintf("费率版本-%s.xlsx", date.Format("20060102"))
}

// WriteRateVersions renders rate versions on one sheet. Unless plain, every
// cell is centered and wrapped and the header row is bold.
func WriteRateVersions(versions []pricing.RateVersion, style RateVersionStyle) ([]byte, error) {
	w := newWorkbook(rateVersionSheet)
	if err := w.writeRow(colStation, colCode, colRateEnergy, ColumnService); err != nil {
		return nil, err
	}
	for _, v := range versions {
		if err := w.writeRow(v.Name, v.Code, v.Energy, v.Service); err != nil {
			return nil, err
		}
	}
	if !style.Plain {
		if err := applyRateVersionStyle(w, style, len(versions)+1); err != nil {
			return nil, err
		}
	}
	return w.bytes()
}

func applyRateVersionStyle(w *sheetWriter, style RateVersionStyle, lastRow int) error {
	if style.Font == "" {
		style.Font = defaultReportFont
	}
	if style.FontSize <= 0 {
		style.FontSize = 10
	}
	align := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	header, err := w.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: style.Font, Size: style.FontSize, Bold: true},
		Alignment: align,
	})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	body, err := w.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: style.Font, Size: style.FontSize},
		Alignment: align,
	})
	if err != nil {
		return fmt.Errorf("xlsx: body style: %w", err)
	}
	if err := w.f.SetCellStyle(w.sheet, "A1", "D1", header); err != nil {
		return err
	}
	if lastRow > 1 {
		if err := w.f.SetCellStyle(w.sheet, "A2", fmt.Sprintf("D%d", lastRow), body); err != nil {
			return err
		}
	}
	for col, width := range map[string]float64{"A": 40, "B": 26, "C": 20, "D": 20} {
		if err := w.f.SetColWidth(w.sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}
