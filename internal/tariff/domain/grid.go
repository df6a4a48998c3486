package tariff

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Cell is one position of a document grid. A cell is null when its trimmed
// text is empty.
type Cell struct {
	Text  string
	Valid bool
}

// NewCell trims raw and builds a cell.
func NewCell(raw string) Cell {
	text := strings.TrimSpace(raw)
	return Cell{Text: text, Valid: text != ""}
}

// Null reports whether the cell holds nothing.
func (c Cell) Null() bool {
	return !c.Valid
}

// Number parses the cell as a comma-free decimal.
func (c Cell) Number() (decimal.Decimal, bool) {
	if !c.Valid {
		return decimal.Decimal{}, false
	}
	text := strings.ReplaceAll(c.Text, ",", "")
	value, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return value, true
}

// Row is one grid row.
type Row []Cell

// Text concatenates the non-null cells of the row.
func (r Row) Text() string {
	var b strings.Builder
	for _, cell := range r {
		if cell.Valid {
			b.WriteString(cell.Text)
		}
	}
	return b.String()
}

// Cell returns the cell at col, or a null cell when col is out of range.
func (r Row) Cell(col int) Cell {
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// Grid is a dense rectangular table of cells.
type Grid struct {
	Rows []Row
}

// Empty reports whether the grid has no usable data.
func (g Grid) Empty() bool {
	return len(g.Rows) == 0
}

// Width returns the column count.
func (g Grid) Width() int {
	if len(g.Rows) == 0 {
		return 0
	}
	return len(g.Rows[0])
}

// Row returns row i.
func (g Grid) Row(i int) Row {
	if i < 0 || i >= len(g.Rows) {
		return nil
	}
	return g.Rows[i]
}
