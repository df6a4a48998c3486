package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	schedule "tariff-cloud/internal/schedule/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var exists bool
	if err := db.QueryRow(`SELECT to_regclass('public.tariff_plans') IS NOT NULL`).Scan(&exists); err != nil || !exists {
		t.Skip("missing tables; run migrations")
	}
	return db
}

func seg(start, end int, energy, service string) schedule.MergedSegment {
	e := decimal.RequireFromString(energy)
	s := decimal.RequireFromString(service)
	return schedule.MergedSegment{Start: start, End: end, Energy: e, Service: s, Total: e.Add(s).Round(4)}
}

func TestPlanRepository_SaveFindPriceAt(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tenantID := "tenant-plans"
	_, _ = db.ExecContext(ctx, "DELETE FROM tariff_plans WHERE tenant_id = $1", tenantID)

	repo := NewPlanRepository(db, WithTenantID(tenantID))
	month := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	plan, err := schedule.NewPlan("station-1", month, "CNY", []schedule.MergedSegment{
		seg(0, 480, "0.3", "0.5"),
		seg(480, 1440, "1.0", "0.6"),
	})
	if err != nil {
		t.Fatalf("new plan: %v", err)
	}
	planID, err := repo.SavePlan(ctx, plan)
	if err != nil {
		t.Fatalf("save plan: %v", err)
	}

	// Saving again for the same month keeps the id and replaces the rules.
	plan.Segments = []schedule.MergedSegment{seg(0, 1440, "0.7", "0.5")}
	plan.Mode = schedule.ModeFixed
	againID, err := repo.SavePlan(ctx, plan)
	if err != nil {
		t.Fatalf("resave plan: %v", err)
	}
	if againID != planID {
		t.Fatalf("plan id changed: %s -> %s", planID, againID)
	}

	found, err := repo.FindPlan(ctx, "station-1", month.AddDate(0, 0, 12))
	if err != nil {
		t.Fatalf("find plan: %v", err)
	}
	if found.Mode != schedule.ModeFixed || len(found.Segments) != 1 {
		t.Fatalf("unexpected plan: %+v", found)
	}

	price, err := repo.PriceAt(ctx, "station-1", time.Date(2025, 1, 9, 10, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("price at: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("1.2")) {
		t.Fatalf("expected 1.2, got %s", price)
	}

	if _, err := repo.PriceAt(ctx, "station-1", time.Date(2025, 2, 9, 10, 30, 0, 0, time.UTC)); !errors.Is(err, schedule.ErrPlanNotFound) {
		t.Fatalf("expected plan not found, got %v", err)
	}
}

func TestPlanRepository_RequiresTenant(t *testing.T) {
	repo := NewPlanRepository(&sql.DB{})
	if _, err := repo.SavePlan(context.Background(), schedule.Plan{StationID: "s"}); err == nil {
		t.Fatalf("expected tenant error")
	}
	if _, err := repo.PriceAt(context.Background(), "s", time.Now()); err == nil {
		t.Fatalf("expected tenant error")
	}
}
