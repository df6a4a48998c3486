package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	tariff "tariff-cloud/internal/tariff/domain"
)

// Station is one row of the station sheet.
type Station struct {
	Seq    string
	Name   string
	Region string
	City   string
	// SchemeLabel is the billing scheme as written on the sheet, e.g. 单一制.
	SchemeLabel string
	TimeOfUse   bool
	Multiplier  decimal.Decimal
	// Schedules holds the free-text schedule columns keyed by header.
	Schedules map[string]string
}

// Scheme resolves the sheet label. Unknown labels never match a record.
func (s Station) Scheme() (tariff.Scheme, bool) {
	return tariff.ParseScheme(s.SchemeLabel)
}

// Schedule returns the text of column, or "" when absent.
func (s Station) Schedule(column string) string {
	return s.Schedules[column]
}

// StationSheet is the station sheet with its header order preserved.
type StationSheet struct {
	Columns  []string
	Stations []Station
}

// EnergyColumn names the energy rule column of month.
func EnergyColumn(month int) string {
	return fmt.Sprintf("电费-%d月", month)
}

// ServiceColumn names the service rule column of month.
func ServiceColumn(month int) string {
	return fmt.Sprintf("服务费-%d月", month)
}

// ValidateMonth checks month is within 1..12.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return nil
}

// MonthColumn finds the schedule column of month. Exact energy then service
// headers win; otherwise the first header mentioning the month and either fee.
func (s StationSheet) MonthColumn(month int) (string, error) {
	if err := ValidateMonth(month); err != nil {
		return "", err
	}
	for _, want := range []string{EnergyColumn(month), ServiceColumn(month)} {
		for _, col := range s.Columns {
			if col == want {
				return col, nil
			}
		}
	}
	monthText := fmt.Sprintf("%d月", month)
	for _, col := range s.Columns {
		if strings.Contains(col, monthText) && (strings.Contains(col, "电费") || strings.Contains(col, "服务费")) {
			return col, nil
		}
	}
	return "", fmt.Errorf("%w: %d", ErrNoMonthColumn, month)
}

// ServicePrice is one row of the service price table. Prices.Flat holds the
// whole-day fee.
type ServicePrice struct {
	StationName string
	Prices      tariff.Prices
}

// Mismatch identifies a station no tariff record matched.
type Mismatch struct {
	Seq    string
	Name   string
	Region string
	City   string
	Scheme string
}

// EnergyResult is the finalized energy schedule of one station.
type EnergyResult struct {
	Station Station
	Text    string
	Matched bool
}

// StationText pairs a station with a finalized schedule text.
type StationText struct {
	Station string
	Text    string
}
