package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	schedule "tariff-cloud/internal/schedule/domain"
)

const (
	defaultPlansTable = "tariff_plans"
	defaultRulesTable = "tariff_rules"
)

// PlanRepository stores merged station plans in tariff_plans/tariff_rules.
type PlanRepository struct {
	db         *sql.DB
	tenantID   string
	plansTable string
	rulesTable string
}

// PlanOption configures the repository.
type PlanOption func(*PlanRepository)

// WithPlansTable overrides the plans table name.
func WithPlansTable(table string) PlanOption {
	return func(r *PlanRepository) {
		if table != "" {
			r.plansTable = table
		}
	}
}

// WithRulesTable overrides the rules table name.
func WithRulesTable(table string) PlanOption {
	return func(r *PlanRepository) {
		if table != "" {
			r.rulesTable = table
		}
	}
}

// WithTenantID sets the tenant scope.
func WithTenantID(tenantID string) PlanOption {
	return func(r *PlanRepository) {
		if tenantID != "" {
			r.tenantID = tenantID
		}
	}
}

// NewPlanRepository constructs a repository.
func NewPlanRepository(db *sql.DB, opts ...PlanOption) *PlanRepository {
	r := &PlanRepository{
		db:         db,
		plansTable: defaultPlansTable,
		rulesTable: defaultRulesTable,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SavePlan replaces the station's plan for the month and its rules in one
// transaction. It returns the stored plan id.
func (r *PlanRepository) SavePlan(ctx context.Context, plan schedule.Plan) (string, error) {
	if r == nil || r.db == nil {
		return "", errors.New("plan repo: nil db")
	}
	if r.tenantID == "" {
		return "", errors.New("plan repo: empty tenant id")
	}
	if plan.StationID == "" {
		return "", schedule.ErrEmptyStationID
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	upsert := fmt.Sprintf(`
INSERT INTO %s (id, tenant_id, station_id, effective_month, currency, mode)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (tenant_id, station_id, effective_month)
DO UPDATE SET
	currency = EXCLUDED.currency,
	mode = EXCLUDED.mode,
	updated_at = NOW()
RETURNING id`, r.plansTable)

	var planID string
	if err := tx.QueryRowContext(ctx, upsert, plan.ID, r.tenantID, plan.StationID, plan.EffectiveMonth, plan.Currency, plan.Mode).Scan(&planID); err != nil {
		return "", fmt.Errorf("plan repo: upsert plan: %w", err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE plan_id = $1`, r.rulesTable), planID); err != nil {
		return "", fmt.Errorf("plan repo: clear rules: %w", err)
	}
	insertRule := fmt.Sprintf(`
INSERT INTO %s (id, plan_id, start_minute, end_minute, energy_price, service_price, price_per_kwh)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, r.rulesTable)
	for _, seg := range plan.Segments {
		if _, err := tx.ExecContext(ctx, insertRule, uuid.NewString(), planID, seg.Start, seg.End, seg.Energy, seg.Service, seg.Total); err != nil {
			return "", fmt.Errorf("plan repo: insert rule %s: %w", seg.Interval(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return planID, nil
}

// FindPlan loads the station's plan for the month containing month.
func (r *PlanRepository) FindPlan(ctx context.Context, stationID string, month time.Time) (schedule.Plan, error) {
	if r == nil || r.db == nil {
		return schedule.Plan{}, errors.New("plan repo: nil db")
	}
	if r.tenantID == "" {
		return schedule.Plan{}, errors.New("plan repo: empty tenant id")
	}
	plan := schedule.Plan{StationID: stationID, EffectiveMonth: schedule.MonthStart(month)}
	query := fmt.Sprintf(`
SELECT id, currency, mode
FROM %s
WHERE tenant_id = $1 AND station_id = $2 AND effective_month = $3
LIMIT 1`, r.plansTable)
	if err := r.db.QueryRowContext(ctx, query, r.tenantID, stationID, plan.EffectiveMonth).Scan(&plan.ID, &plan.Currency, &plan.Mode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return schedule.Plan{}, schedule.ErrPlanNotFound
		}
		return schedule.Plan{}, err
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT start_minute, end_minute, energy_price, service_price, price_per_kwh
FROM %s
WHERE plan_id = $1
ORDER BY start_minute ASC`, r.rulesTable), plan.ID)
	if err != nil {
		return schedule.Plan{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var seg schedule.MergedSegment
		if err := rows.Scan(&seg.Start, &seg.End, &seg.Energy, &seg.Service, &seg.Total); err != nil {
			return schedule.Plan{}, err
		}
		plan.Segments = append(plan.Segments, seg)
	}
	if err := rows.Err(); err != nil {
		return schedule.Plan{}, err
	}
	return plan, nil
}

// PriceAt returns the total price per kWh of a station at a specific time.
func (r *PlanRepository) PriceAt(ctx context.Context, stationID string, at time.Time) (decimal.Decimal, error) {
	if r == nil || r.db == nil {
		return decimal.Zero, errors.New("plan repo: nil db")
	}
	if r.tenantID == "" {
		return decimal.Zero, errors.New("plan repo: empty tenant id")
	}
	if stationID == "" {
		return decimal.Zero, schedule.ErrEmptyStationID
	}
	if at.IsZero() {
		return decimal.Zero, errors.New("plan repo: invalid timestamp")
	}

	planID, mode, err := r.loadPlan(ctx, stationID, schedule.MonthStart(at))
	if err != nil {
		return decimal.Zero, err
	}
	if mode != schedule.ModeFixed && mode != schedule.ModeTOU {
		return decimal.Zero, fmt.Errorf("plan repo: unknown mode %q", mode)
	}
	minute := at.UTC().Hour()*60 + at.UTC().Minute()
	return r.loadRulePrice(ctx, planID, minute)
}

func (r *PlanRepository) loadPlan(ctx context.Context, stationID string, month time.Time) (string, string, error) {
	query := fmt.Sprintf(`
SELECT id, mode
FROM %s
WHERE tenant_id = $1 AND station_id = $2 AND effective_month = $3
LIMIT 1`, r.plansTable)

	var planID, mode string
	if err := r.db.QueryRowContext(ctx, query, r.tenantID, stationID, month).Scan(&planID, &mode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", schedule.ErrPlanNotFound
		}
		return "", "", err
	}
	return planID, mode, nil
}

func (r *PlanRepository) loadRulePrice(ctx context.Context, planID string, minute int) (decimal.Decimal, error) {
	query := fmt.Sprintf(`
SELECT price_per_kwh
FROM %s
WHERE plan_id = $1 AND start_minute <= $2 AND end_minute > $2
ORDER BY start_minute ASC
LIMIT 1`, r.rulesTable)

	var price decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, planID, minute).Scan(&price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, schedule.ErrRuleNotFound
		}
		return decimal.Zero, err
	}
	return price, nil
}
