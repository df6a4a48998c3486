package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	tariff "tariff-cloud/internal/tariff/domain"
)

const defaultRecordsTable = "tariff_records"

// DBTX is the subset of *sql.DB and *sql.Tx the repository uses.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// RecordRepository stores tariff records in Postgres.
type RecordRepository struct {
	db       DBTX
	table    string
	tenantID string
}

// RecordOption configures the repository.
type RecordOption func(*RecordRepository)

// WithRecordsTable overrides the default table name.
func WithRecordsTable(table string) RecordOption {
	return func(repo *RecordRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// WithTenantID sets the tenant scope.
func WithTenantID(tenantID string) RecordOption {
	return func(repo *RecordRepository) {
		if tenantID != "" {
			repo.tenantID = tenantID
		}
	}
}

// NewRecordRepository constructs a repository.
func NewRecordRepository(db DBTX, opts ...RecordOption) *RecordRepository {
	repo := &RecordRepository{db: db, table: defaultRecordsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// SaveRecords upserts records keyed by region, scheme and city. The batch is
// written in one transaction when db can begin one; a caller-supplied *sql.Tx
// is used as is.
func (r *RecordRepository) SaveRecords(ctx context.Context, records []tariff.Record) error {
	if r == nil || r.db == nil {
		return errors.New("tariff record repo: nil db")
	}
	if r.tenantID == "" {
		return errors.New("tariff record repo: empty tenant id")
	}
	if records == nil {
		return tariff.ErrNilRecords
	}
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	tenant_id,
	region,
	city,
	scheme,
	voltage_label,
	flat_price,
	sharp_price,
	peak_price,
	flat_tier_price,
	valley_price,
	deep_price
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
)
ON CONFLICT (tenant_id, region, scheme, city)
DO UPDATE SET
	voltage_label = EXCLUDED.voltage_label,
	flat_price = EXCLUDED.flat_price,
	sharp_price = EXCLUDED.sharp_price,
	peak_price = EXCLUDED.peak_price,
	flat_tier_price = EXCLUDED.flat_tier_price,
	valley_price = EXCLUDED.valley_price,
	deep_price = EXCLUDED.deep_price,
	updated_at = NOW()`, r.table)

	exec := r.db
	var tx *sql.Tx
	if b, ok := r.db.(txBeginner); ok {
		var err error
		tx, err = b.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("tariff record repo: begin: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		exec = tx
	}

	for _, record := range records {
		if _, err := exec.ExecContext(
			ctx,
			query,
			r.tenantID,
			record.Region,
			record.City,
			string(record.Scheme),
			record.VoltageLabel,
			record.Flat,
			record.Sharp,
			record.Peak,
			record.FlatTier,
			record.Valley,
			record.Deep,
		); err != nil {
			return fmt.Errorf("tariff record repo: save %s: %w", record.Key(), err)
		}
	}
	if tx != nil {
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("tariff record repo: commit: %w", err)
		}
	}
	return nil
}

// ListRecords returns the records of region, or every record when region is
// empty.
func (r *RecordRepository) ListRecords(ctx context.Context, region string) ([]tariff.Record, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("tariff record repo: nil db")
	}
	if r.tenantID == "" {
		return nil, errors.New("tariff record repo: empty tenant id")
	}

	query := fmt.Sprintf(`
SELECT region, city, scheme, voltage_label, flat_price, sharp_price, peak_price, flat_tier_price, valley_price, deep_price
FROM %s
WHERE tenant_id = $1 AND ($2 = '' OR region = $2)
ORDER BY region ASC, scheme ASC, city ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, r.tenantID, region)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tariff.Record
	for rows.Next() {
		var (
			record tariff.Record
			scheme string
		)
		if err := rows.Scan(
			&record.Region,
			&record.City,
			&scheme,
			&record.VoltageLabel,
			&record.Flat,
			&record.Sharp,
			&record.Peak,
			&record.FlatTier,
			&record.Valley,
			&record.Deep,
		); err != nil {
			return nil, err
		}
		record.Scheme = tariff.Scheme(scheme)
		out = append(out, record)
	}
	return out, rows.Err()
}
