package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tariff-cloud/internal/tariff/extraction"
)

func TestSniff(t *testing.T) {
	format, err := Sniff([]byte("%PDF-1.7\n"))
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, format)

	format, err = Sniff([]byte("PK\x03\x04"))
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)

	_, err = Sniff(nil)
	assert.ErrorIs(t, err, ErrEmptyContent)
	_, err = Sniff([]byte("<html>"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func glyphs(x float64, s string) []textRun {
	var runs []textRun
	for _, r := range s {
		runs = append(runs, textRun{x: x, w: 5, s: string(r)})
		x += 5
	}
	return runs
}

func line(y int64, parts ...[]textRun) textLine {
	l := textLine{y: y}
	for _, p := range parts {
		l.runs = append(l.runs, p...)
	}
	return l
}

func TestLayoutTableClustersColumns(t *testing.T) {
	lines := []textLine{
		line(600, glyphs(50, "1-10千伏"), glyphs(200, "0.65"), glyphs(300, "1.2")),
		line(700, glyphs(50, "电压等级"), glyphs(200, "非分时"), glyphs(300, "尖峰")),
		line(500, glyphs(52, "35千伏"), glyphs(301, "1.1")),
	}

	got := layoutTable(lines, 6)

	assert.Equal(t, extraction.Table{
		{"电压等级", "非分时", "尖峰"},
		{"1-10千伏", "0.65", "1.2"},
		{"35千伏", "", "1.1"},
	}, got)
}

func TestLayoutTableSkipsSingleCellLines(t *testing.T) {
	lines := []textLine{
		line(800, glyphs(120, "代理购电工商业用户电价表")),
		line(700, glyphs(50, "电压等级"), glyphs(200, "非分时"), glyphs(300, "尖峰")),
		line(600, glyphs(50, "1-10千伏"), glyphs(200, "0.65"), glyphs(300, "1.2")),
		line(400, glyphs(260, "注：低谷时段执行低谷电价")),
	}

	got := layoutTable(lines, 6)

	assert.Equal(t, extraction.Table{
		{"电压等级", "非分时", "尖峰"},
		{"1-10千伏", "0.65", "1.2"},
	}, got)
}

func TestLayoutTableEmpty(t *testing.T) {
	assert.Nil(t, layoutTable(nil, 6))
	assert.Nil(t, layoutTable([]textLine{{y: 1, runs: []textRun{{x: 1, s: ""}}}}, 6))
}

func TestJoinRunsSplitsOnGap(t *testing.T) {
	runs := append(glyphs(100, "谷段"), glyphs(10, "平段")...)
	got := joinRuns(runs, 6)
	require.Len(t, got, 2)
	assert.Equal(t, "平段", got[0].text)
	assert.Equal(t, "谷段", got[1].text)
	assert.InDelta(t, 20.0, got[0].x1, 1e-9)
}

func TestColumnOf(t *testing.T) {
	anchors := []float64{10, 100, 200}
	assert.Equal(t, 0, columnOf(anchors, 5))
	assert.Equal(t, 0, columnOf(anchors, 99))
	assert.Equal(t, 1, columnOf(anchors, 100))
	assert.Equal(t, 2, columnOf(anchors, 500))
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"国网湖南省电力有限公司代理购电价格表"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"电压等级", "非分时电度电价", "高峰", "低谷"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"1-10（20）千伏", 0.62, 0.91, 0.33}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	doc, err := NewReader().Read(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	assert.Contains(t, doc.Header, "国网湖南省电力有限公司")

	result := extraction.Parse(doc)
	assert.Equal(t, "湖南省", result.Region.Name)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "0.62", result.Records[0].Flat.Decimal.String())
	assert.Equal(t, "0.33", result.Records[0].Valley.Decimal.String())
}

func TestReadRejectsUnknownContent(t *testing.T) {
	_, err := NewReader(WithColumnGap(4)).Read([]byte("plain text"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
