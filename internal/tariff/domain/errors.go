package tariff

import "errors"

var (
	// ErrNoTables is reported when a document yields no table rows.
	ErrNoTables = errors.New("tariff: no table extracted")
	// ErrNoVoltageRow is reported when no 1-10(20) kV row is found.
	ErrNoVoltageRow = errors.New("tariff: no voltage class row")
	// ErrNoTierOrder is reported when neither a column map nor a header tier
	// order could be inferred.
	ErrNoTierOrder = errors.New("tariff: no time-of-use tier order")
	// ErrRegionNotDetected is reported when the fallback jurisdiction was used.
	ErrRegionNotDetected = errors.New("tariff: region not detected")
	// ErrEmptyRegion is returned when a record has no region.
	ErrEmptyRegion = errors.New("tariff: empty region")
	// ErrNilRecords is returned when saving nil records.
	ErrNilRecords = errors.New("tariff: nil records")
)
