package pricing

import schedule "tariff-cloud/internal/schedule/domain"

// TotalResult is the merged schedule of one station.
type TotalResult struct {
	Station  string
	Text     string
	Segments []schedule.MergedSegment
	Dropped  []schedule.Interval
	// Skipped counts unparsable energy and service lines.
	Skipped int
}

// TotalReport is the outcome of a total price calculation.
type TotalReport struct {
	Results []TotalResult
	// EnergyOnly and ServiceOnly list stations missing from the other table.
	EnergyOnly  []string
	ServiceOnly []string
}

// RateVersionRow is one template row before normalization.
type RateVersionRow struct {
	Name    string
	Code    string
	Energy  string
	Service string
}

// RateVersion is a template row in system rate format.
type RateVersion struct {
	Name    string
	Code    string
	Energy  string
	Service string
	Skipped int
}
