package extraction

import (
	tariff "tariff-cloud/internal/tariff/domain"
)

// Table is one table extracted from a document page, as raw cell text.
type Table [][]string

// BuildGrid concatenates tables in page/table order into a dense grid. Cells
// are trimmed, rows and columns holding only null cells are dropped.
func BuildGrid(tables []Table) tariff.Grid {
	var rows []tariff.Row
	width := 0
	for _, table := range tables {
		for _, raw := range table {
			row := make(tariff.Row, len(raw))
			empty := true
			for i, text := range raw {
				row[i] = tariff.NewCell(text)
				if row[i].Valid {
					empty = false
				}
			}
			if empty {
				continue
			}
			if len(row) > width {
				width = len(row)
			}
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return tariff.Grid{}
	}

	keep := make([]bool, width)
	for _, row := range rows {
		for col, cell := range row {
			if cell.Valid {
				keep[col] = true
			}
		}
	}

	grid := tariff.Grid{Rows: make([]tariff.Row, 0, len(rows))}
	for _, row := range rows {
		dense := make(tariff.Row, 0, width)
		for col := 0; col < width; col++ {
			if keep[col] {
				dense = append(dense, row.Cell(col))
			}
		}
		grid.Rows = append(grid.Rows, dense)
	}
	return grid
}
