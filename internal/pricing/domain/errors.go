package pricing

import "errors"

var (
	// ErrInvalidMonth is returned when a month is outside 1..12.
	ErrInvalidMonth = errors.New("pricing: invalid month")
	// ErrNoMonthColumn is returned when a station sheet has no schedule column for the month.
	ErrNoMonthColumn = errors.New("pricing: no schedule column for month")
	// ErrNoCommonStations is returned when energy and service tables share no station.
	ErrNoCommonStations = errors.New("pricing: no station present in both tables")
	// ErrEmptyStationName is returned when a row has no station name.
	ErrEmptyStationName = errors.New("pricing: empty station name")
	// ErrEmptyCorrection is returned when a correction has no usable row.
	ErrEmptyCorrection = errors.New("pricing: empty correction")
)
