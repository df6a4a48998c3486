package document

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ledongthuc/pdf"

	"tariff-cloud/internal/tariff/extraction"
)

// ReadPDF extracts the first page text and one table per page.
func (r *Reader) ReadPDF(data []byte) (doc extraction.Document, err error) {
	// The pdf package panics on some malformed streams.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("document: read pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return extraction.Document{}, fmt.Errorf("document: open pdf: %w", err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		if i == 1 {
			header, err := page.GetPlainText(nil)
			if err != nil {
				return extraction.Document{}, fmt.Errorf("document: page %d text: %w", i, err)
			}
			doc.Header = header
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return extraction.Document{}, fmt.Errorf("document: page %d rows: %w", i, err)
		}
		lines := make([]textLine, 0, len(rows))
		for _, row := range rows {
			line := textLine{y: row.Position}
			for _, text := range row.Content {
				line.runs = append(line.runs, textRun{x: text.X, w: text.W, s: text.S})
			}
			lines = append(lines, line)
		}
		if table := layoutTable(lines, r.columnGap); len(table) > 0 {
			doc.Tables = append(doc.Tables, table)
		}
	}
	return doc, nil
}

// minTableCells is the cell count a line needs to count as a table row.
// Titles, paragraphs and footnotes join into a single cell and are left out.
const minTableCells = 2

type textRun struct {
	x, w float64
	s    string
}

type textLine struct {
	y    int64
	runs []textRun
}

type span struct {
	x0, x1 float64
	text   string
}

// layoutTable rebuilds a cell table from positioned text. Runs closer than gap
// join into one cell. Cells are assigned to columns by clustering their left
// edges across the table rows of the page.
func layoutTable(lines []textLine, gap float64) extraction.Table {
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	spans := make([][]span, 0, len(lines))
	var starts []float64
	for _, line := range lines {
		cells := joinRuns(line.runs, gap)
		if len(cells) < minTableCells {
			continue
		}
		for _, c := range cells {
			starts = append(starts, c.x0)
		}
		spans = append(spans, cells)
	}
	anchors := clusterStarts(starts, gap)
	if len(anchors) == 0 {
		return nil
	}

	table := make(extraction.Table, 0, len(spans))
	for _, cells := range spans {
		row := make([]string, len(anchors))
		for _, c := range cells {
			col := columnOf(anchors, c.x0)
			row[col] += c.text
		}
		table = append(table, row)
	}
	return table
}

func joinRuns(runs []textRun, gap float64) []span {
	sorted := append([]textRun(nil), runs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].x < sorted[j].x })

	var out []span
	for _, run := range sorted {
		if run.s == "" {
			continue
		}
		if n := len(out); n > 0 && run.x-out[n-1].x1 < gap {
			out[n-1].text += run.s
			if end := run.x + run.w; end > out[n-1].x1 {
				out[n-1].x1 = end
			}
			continue
		}
		out = append(out, span{x0: run.x, x1: run.x + run.w, text: run.s})
	}
	return out
}

// clusterStarts returns the left edge of each group of starts lying within
// gap of their neighbour.
func clusterStarts(starts []float64, gap float64) []float64 {
	if len(starts) == 0 {
		return nil
	}
	sorted := append([]float64(nil), starts...)
	sort.Float64s(sorted)

	anchors := []float64{sorted[0]}
	prev := sorted[0]
	for _, x := range sorted[1:] {
		if x-prev >= gap {
			anchors = append(anchors, x)
		}
		prev = x
	}
	return anchors
}

// columnOf returns the last anchor at or left of x.
func columnOf(anchors []float64, x float64) int {
	col := sort.Search(len(anchors), func(i int) bool { return anchors[i] > x }) - 1
	if col < 0 {
		return 0
	}
	return col
}
