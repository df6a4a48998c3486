package application

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pricing "tariff-cloud/internal/pricing/domain"
	schedule "tariff-cloud/internal/schedule/domain"
	tariff "tariff-cloud/internal/tariff/domain"
)

func price(v string) decimal.NullDecimal {
	return tariff.Price(decimal.RequireFromString(v))
}

func testRecords() []tariff.Record {
	return []tariff.Record{
		{Region: "江苏省", Scheme: tariff.SchemeSinglePart, Prices: tariff.Prices{
			Flat: price("0.65"), Peak: price("1.0"), FlatTier: price("0.65"), Valley: price("0.35"),
		}},
		{Region: "广东省", Scheme: tariff.SchemeSinglePart, Prices: tariff.Prices{Flat: price("0.6")}},
		{Region: "广东省", City: "深圳市", Scheme: tariff.SchemeSinglePart, Prices: tariff.Prices{Flat: price("0.7")}},
		{Region: "湖南省", Scheme: tariff.SchemeSinglePart},
	}
}

func TestSetEnergyPrices(t *testing.T) {
	svc := NewPricingApplicationService()
	stations := []pricing.Station{
		{
			Seq: "1", Name: "A站", Region: "江苏省", SchemeLabel: "单一制", TimeOfUse: true,
			Multiplier: decimal.RequireFromString("1.1"),
			Schedules: map[string]string{
				"电费-1月": "尖 10:00 - 11:00\n谷 0:00 - 8:00\n\n8:00 - 10:00\n高峰 11:00 - 24:00",
			},
		},
		{Seq: "2", Name: "B站", Region: "广东省", City: "深圳市", SchemeLabel: "单一制", Multiplier: decimal.NewFromInt(1)},
		{Seq: "3", Name: "C站", Region: "广东省", City: "广州市", SchemeLabel: "单一制", Multiplier: decimal.NewFromInt(2)},
		{Seq: "4", Name: "D站", Region: "浙江省", City: "杭州市", SchemeLabel: "单一制", Multiplier: decimal.NewFromInt(1)},
		{Seq: "5", Name: "E站", Region: "江苏省", SchemeLabel: "方案X", Multiplier: decimal.NewFromInt(1)},
		{Seq: "6", Name: "F站", Region: "湖南省", SchemeLabel: "单一制", Multiplier: decimal.NewFromInt(1)},
	}

	report, err := svc.SetEnergyPrices(stations, testRecords(), 1)
	require.NoError(t, err)
	require.Len(t, report.Results, 6)

	assert.True(t, report.Results[0].Matched)
	assert.Equal(t,
		"尖 10:00 - 11:00 1.1元/度\n谷 0:00 - 8:00 0.385元/度\n8:00 - 10:00 0.715元/度\n高峰 11:00 - 24:00 无对应电价",
		report.Results[0].Text)
	assert.Equal(t, "0:00 - 24:00 0.7元/度", report.Results[1].Text)
	assert.Equal(t, "0:00 - 24:00 1.2元/度", report.Results[2].Text)
	assert.Equal(t, pricing.TextNoEnergyPrice, report.Results[3].Text)
	assert.False(t, report.Results[3].Matched)
	assert.Equal(t, pricing.TextNoEnergyPrice, report.Results[4].Text)
	assert.Equal(t, "0:00 - 24:00 无对应电价", report.Results[5].Text)

	assert.Equal(t, []pricing.Mismatch{
		{Seq: "4", Name: "D站", Region: "浙江省", City: "杭州市", Scheme: "单一制"},
		{Seq: "5", Name: "E站", Region: "江苏省", Scheme: "方案X"},
	}, report.Mismatches)
}

func TestSetEnergyPricesRejectsBadMonth(t *testing.T) {
	_, err := NewPricingApplicationService().SetEnergyPrices(nil, nil, 0)
	assert.ErrorIs(t, err, pricing.ErrInvalidMonth)
}

func TestSetEnergyPricesWholeAmountsKeepOneDecimal(t *testing.T) {
	records := []tariff.Record{
		{Region: "江苏省", Scheme: tariff.SchemeSinglePart, Prices: tariff.Prices{
			Flat: price("0.5"), Peak: price("1.5"), Valley: price("0.35"),
		}},
	}
	stations := []pricing.Station{
		{Name: "A站", Region: "江苏省", SchemeLabel: "单一制", Multiplier: decimal.NewFromInt(2)},
		{
			Name: "B站", Region: "江苏省", SchemeLabel: "单一制", TimeOfUse: true,
			Multiplier: decimal.NewFromInt(2),
			Schedules:  map[string]string{"电费-3月": "峰 8:00 - 24:00\n谷 0:00 - 8:00"},
		},
	}

	report, err := NewPricingApplicationService().SetEnergyPrices(stations, records, 3)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "0:00 - 24:00 1.0元/度", report.Results[0].Text)
	assert.Equal(t, "峰 8:00 - 24:00 3.0元/度\n谷 0:00 - 8:00 0.7元/度", report.Results[1].Text)
}

func TestSetServicePrices(t *testing.T) {
	svc := NewPricingApplicationService()
	sheet := pricing.StationSheet{
		Columns: []string{"站点名称", "电费-1月"},
		Stations: []pricing.Station{
			{Name: "S1", Schedules: map[string]string{"电费-1月": "谷 0:00 - 8:00 0.3元/度\n峰 8:00 - 24:00 1.0元/度"}},
			{Name: "S2", Schedules: map[string]string{"电费-1月": "0:00 - 24:00 0.6元/度"}},
			{Name: "S3", Schedules: map[string]string{"电费-1月": "0:00 - 24:00"}},
			{Name: "S4", Schedules: map[string]string{"电费-1月": "0:00 - 24:00"}},
			{Name: "S5", Schedules: map[string]string{"电费-1月": "尖 8:00 - 9:00\n谷 0:00 - 8:00\n备注"}},
		},
	}
	prices := []pricing.ServicePrice{
		{StationName: "S1", Prices: tariff.Prices{Valley: price("0.4"), Peak: price("0.8")}},
		{StationName: "S2", Prices: tariff.Prices{Flat: price("0.5")}},
		{StationName: "S3", Prices: tariff.Prices{Valley: price("0.4")}},
		{StationName: "S5", Prices: tariff.Prices{Valley: price("0.456")}},
		{StationName: "S5", Prices: tariff.Prices{Valley: price("9")}},
	}

	report, err := svc.SetServicePrices(sheet, prices, 1)
	require.NoError(t, err)
	assert.Equal(t, "电费-1月", report.Column)
	assert.Equal(t, []pricing.StationText{
		{Station: "S1", Text: "谷 0:00 - 8:00 0.40元/度\n峰 8:00 - 24:00 0.80元/度"},
		{Station: "S2", Text: "0:00 - 24:00 0.50元/度"},
		{Station: "S3", Text: pricing.TextFlatFeeMissing},
		{Station: "S4", Text: pricing.TextNoServicePrice},
		{Station: "S5", Text: "谷 0:00 - 8:00 0.46元/度"},
	}, report.Results)
}

func TestSetServicePricesWithoutMonthColumn(t *testing.T) {
	_, err := NewPricingApplicationService().SetServicePrices(pricing.StationSheet{Columns: []string{"站点名称"}}, nil, 2)
	assert.ErrorIs(t, err, pricing.ErrNoMonthColumn)
}

func TestCorrectSchedule(t *testing.T) {
	svc := NewPricingApplicationService()
	rows := []CorrectionRow{
		{End: "8:00", Price: price("0.5")},
		{End: " ", Price: price("0.9")},
		{End: "12:00"},
		{End: "24:00", Price: price("0.8")},
	}
	text, segs, err := svc.CorrectSchedule("S1", rows)
	require.NoError(t, err)
	assert.Equal(t, "S1", text.Station)
	assert.Equal(t, "0:00 - 8:00 0.5元/度\n8:00 - 24:00 0.8元/度", text.Text)
	assert.True(t, schedule.IsPartition(schedule.Intervals(segs)))
}

func TestCorrectScheduleErrors(t *testing.T) {
	svc := NewPricingApplicationService()

	_, _, err := svc.CorrectSchedule("S1", []CorrectionRow{{End: "23:00", Price: price("1")}})
	assert.ErrorIs(t, err, schedule.ErrNotEndOfDay)

	_, _, err = svc.CorrectSchedule("S1", []CorrectionRow{{End: "12:00", Price: price("1")}, {End: "8:00", Price: price("1")}, {End: "24:00", Price: price("1")}})
	assert.ErrorIs(t, err, schedule.ErrNotContiguous)

	_, _, err = svc.CorrectSchedule("S1", []CorrectionRow{{End: "25:00", Price: price("1")}})
	assert.ErrorIs(t, err, schedule.ErrInvalidClock)

	_, _, err = svc.CorrectSchedule("S1", []CorrectionRow{{End: ""}})
	assert.ErrorIs(t, err, pricing.ErrEmptyCorrection)
}

func TestCorrectionRows(t *testing.T) {
	rows := CorrectionRows("谷 0:00 - 8:00 0.5元/度\n说明\n峰 8:00 - 24:00 0.8元/度")
	require.Len(t, rows, 2)
	assert.Equal(t, "8:00", rows[0].End)
	assert.Equal(t, "24:00", rows[1].End)
	assert.True(t, rows[1].Price.Decimal.Equal(decimal.RequireFromString("0.8")))
}

func TestCalculateTotals(t *testing.T) {
	svc := NewPricingApplicationService()
	energy := []pricing.StationText{
		{Station: "B站", Text: "0:00 - 24:00 0.7元/度"},
		{Station: "A站", Text: "谷 0:00 - 8:00 0.3元/度\n峰 8:00 - 24:00 1.0元/度"},
		{Station: "A站", Text: "0:00 - 24:00 9元/度"},
		{Station: "D站", Text: "0:00 - 24:00 0.7元/度"},
	}
	service := []pricing.StationText{
		{Station: "A站", Text: "0:00 - 12:00 0.5元/度\n12:00 - 24:00 0.6元/度"},
		{Station: "B站", Text: pricing.TextNoServicePrice},
		{Station: "C站", Text: "0:00 - 24:00 0.5元/度"},
	}

	report, err := svc.CalculateTotals(energy, service)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	a := report.Results[0]
	assert.Equal(t, "A站", a.Station)
	assert.Equal(t, "0:00 - 8:00 0.8000元/度\n8:00 - 12:00 1.5000元/度\n12:00 - 24:00 1.6000元/度", a.Text)
	assert.Len(t, a.Segments, 3)

	b := report.Results[1]
	assert.Equal(t, "B站", b.Station)
	assert.Equal(t, pricing.TextMergeFailed, b.Text)
	assert.Equal(t, 1, b.Skipped)

	assert.Equal(t, []string{"D站"}, report.EnergyOnly)
	assert.Equal(t, []string{"C站"}, report.ServiceOnly)
}

func TestCalculateTotalsWithoutCommonStations(t *testing.T) {
	report, err := NewPricingApplicationService().CalculateTotals(
		[]pricing.StationText{{Station: "A", Text: "0:00 - 24:00 1元/度"}},
		[]pricing.StationText{{Station: "B", Text: "0:00 - 24:00 1元/度"}},
	)
	assert.ErrorIs(t, err, pricing.ErrNoCommonStations)
	assert.Equal(t, []string{"A"}, report.EnergyOnly)
	assert.Equal(t, []string{"B"}, report.ServiceOnly)
}

func TestMergeTextsReportsDroppedIntervals(t *testing.T) {
	result := MergeTexts("0:00 - 10:00 0.5元/度", "0:00 - 24:00 0.2元/度")
	assert.Equal(t, "0:00 - 10:00 0.7000元/度", result.Text)
	assert.Equal(t, []schedule.Interval{{Start: 600, End: 1440}}, result.Dropped)
}

func TestBuildRateVersions(t *testing.T) {
	versions := NewPricingApplicationService().BuildRateVersions([]pricing.RateVersionRow{{
		Name:    "A站",
		Code:    "0001",
		Energy:  "谷 0:00 - 8:00 0.3元/度\n峰 8:00 - 24:00 1.0元/度\n备注",
		Service: "0:00 - 24:00 0.5元/度",
	}})
	require.Len(t, versions, 1)
	assert.Equal(t, pricing.RateVersion{
		Name:    "A站",
		Code:    "0001",
		Energy:  "谷 0:00-7:59,0.30\n峰 8:00-23:59,1.00",
		Service: "平 0:00-23:59,0.50",
		Skipped: 1,
	}, versions[0])
}
