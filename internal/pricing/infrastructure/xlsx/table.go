package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrMissingColumns is returned when a sheet lacks required headers.
	ErrMissingColumns = errors.New("xlsx: missing columns")
	// ErrEmptySheet is returned when a workbook has no header row.
	ErrEmptySheet = errors.New("xlsx: empty sheet")
)

// table is the first sheet of a workbook addressed by header name.
type table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

func readTable(r io.Reader) (table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return table{}, fmt.Errorf("xlsx: open: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table{}, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return table{}, fmt.Errorf("xlsx: read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return table{}, ErrEmptySheet
	}

	t := table{index: make(map[string]int, len(rows[0]))}
	for i, name := range rows[0] {
		name = strings.TrimSpace(name)
		t.header = append(t.header, name)
		if _, seen := t.index[name]; !seen && name != "" {
			t.index[name] = i
		}
	}
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func (t table) require(names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := t.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

func (t table) has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// value returns the trimmed cell of row under header name.
func (t table) value(row []string, name string) string {
	i, ok := t.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// raw returns the cell untrimmed except for surrounding blank lines.
func (t table) raw(row []string, name string) string {
	i, ok := t.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.Trim(row[i], "\r\n")
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sheetWriter appends rows to a workbook sheet.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
}

func newWorkbook(sheet string) *sheetWriter {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheet)
	return &sheetWriter{f: f, sheet: sheet, next: 1}
}

func (w *sheetWriter) addSheet(sheet string) *sheetWriter {
	w.f.NewSheet(sheet)
	return &sheetWriter{f: w.f, sheet: sheet, next: 1}
}

func (w *sheetWriter) writeRow(values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx: write %s row %d: %w", w.sheet, w.next, err)
	}
	w.next++
	return nil
}

func (w *sheetWriter) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
