package tariff

import "context"

// Repository persists extracted tariff records. Saving a record replaces the
// stored record with the same Key.
type Repository interface {
	SaveRecords(ctx context.Context, records []Record) error
	ListRecords(ctx context.Context, region string) ([]Record, error)
}

// Validate checks the fields a stored record needs.
func (r Record) Validate() error {
	if r.Region == "" {
		return ErrEmptyRegion
	}
	return nil
}
