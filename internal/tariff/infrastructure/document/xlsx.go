package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"tariff-cloud/internal/tariff/extraction"
)

// ReadXLSX reads every sheet as one table. The header is the text of the
// first sheet.
func ReadXLSX(data []byte) (extraction.Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return extraction.Document{}, fmt.Errorf("document: open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	var doc extraction.Document
	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return extraction.Document{}, fmt.Errorf("document: sheet %s: %w", sheet, err)
		}
		if i == 0 {
			var b strings.Builder
			for _, row := range rows {
				b.WriteString(strings.Join(row, ""))
				b.WriteString("\n")
			}
			doc.Header = b.String()
		}
		if len(rows) > 0 {
			doc.Tables = append(doc.Tables, extraction.Table(rows))
		}
	}
	return doc, nil
}
