package extraction

import (
	tariff "tariff-cloud/internal/tariff/domain"
)

// Document is a tariff document reduced to its first page text and the
// tables of every page in reading order.
type Document struct {
	Header string
	Tables []Table
}

// ParseResult is the outcome of parsing one document. Warnings hold the
// sentinel errors of soft structural failures; Records may be empty.
type ParseResult struct {
	Region   RegionResult
	Records  []tariff.Record
	Warnings []error
	Layout   Layout
	// VoltageRows are the grid rows the records were read from.
	VoltageRows []int
}

// Parse runs the extraction stages over doc.
func Parse(doc Document) ParseResult {
	result := ParseResult{Region: DetectRegion(doc.Header)}
	if !result.Region.Detected {
		result.Warnings = append(result.Warnings, tariff.ErrRegionNotDetected)
	}

	grid := BuildGrid(doc.Tables)
	if grid.Empty() {
		result.Warnings = append(result.Warnings, tariff.ErrNoTables)
		return result
	}

	result.Layout.Columns = ClassifyColumns(grid)
	if result.Layout.Columns.Empty() {
		result.Layout.Order = InferTierOrder(grid)
		if len(result.Layout.Order) == 0 {
			result.Warnings = append(result.Warnings, tariff.ErrNoTierOrder)
		}
	}

	matches := FindVoltageRows(grid)
	if len(matches) == 0 {
		result.Warnings = append(result.Warnings, tariff.ErrNoVoltageRow)
		return result
	}
	result.VoltageRows = SelectRows(result.Region.Name, matches)
	result.Records = Extract(grid, result.Region.Name, result.VoltageRows, result.Layout)
	return result
}
