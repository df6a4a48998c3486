package apihttp

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	tariff "tariff-cloud/internal/tariff/domain"
)

// Deps are the services the API routes are built from. Nil services make
// their routes answer 503.
type Deps struct {
	Reader   DocumentReader
	Records  tariff.Repository
	Ingester Ingester
	Plans    PlanStore
	TenantID string
	Currency string
	Ping     func(ctx context.Context) error
	Logger   zerolog.Logger
}

// NewMux registers every API route.
func NewMux(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/tariffs/parse", NewParseHandler(deps.Reader, deps.Records, deps.TenantID, deps.Logger))
	mux.Handle("/api/v1/tariffs", NewTariffsHandler(deps.Records, deps.Ingester, deps.TenantID))
	mux.Handle("/api/v1/schedules/merge", NewMergeHandler())
	plans := NewPlansHandler(deps.Plans, deps.TenantID, deps.Currency, deps.Logger)
	mux.Handle("/api/v1/schedules/plans", plans)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", NewHealthHandler(deps.Ping))
	return mux
}

// LoggingMiddleware logs one line per request.
func LoggingMiddleware(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", resp.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
