package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tariff-cloud/internal/auth"
	"tariff-cloud/internal/observability/metrics"
	pricingapp "tariff-cloud/internal/pricing/application"
	schedule "tariff-cloud/internal/schedule/domain"
	tariffapp "tariff-cloud/internal/tariff/application"
	tariff "tariff-cloud/internal/tariff/domain"
	"tariff-cloud/internal/tariff/extraction"
)

const (
	timeLayout   = time.RFC3339
	monthLayout  = "2006-01"
	maxBodyBytes = 32 << 20
)

// DocumentReader turns uploaded bytes into a tariff document.
type DocumentReader interface {
	Read(data []byte) (extraction.Document, error)
}

// Ingester runs a batch ingest over document sources.
type Ingester interface {
	Ingest(ctx context.Context, sources []string) (tariffapp.IngestReport, error)
}

// PlanStore persists merged plans and answers price lookups.
type PlanStore interface {
	SavePlan(ctx context.Context, plan schedule.Plan) (string, error)
	PriceAt(ctx context.Context, stationID string, at time.Time) (decimal.Decimal, error)
}

// ParseHandler parses an uploaded tariff document.
type ParseHandler struct {
	reader   DocumentReader
	repo     tariff.Repository
	tenantID string
	logger   zerolog.Logger
}

// NewParseHandler constructs a ParseHandler. repo may be nil, in which case
// save requests are rejected.
func NewParseHandler(reader DocumentReader, repo tariff.Repository, tenantID string, logger zerolog.Logger) *ParseHandler {
	return &ParseHandler{reader: reader, repo: repo, tenantID: tenantID, logger: logger}
}

// ServeHTTP handles POST /api/v1/tariffs/parse with the document as body.
// ?save=true stores the records.
func (h *ParseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.reader == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	if !auth.SameTenant(r.Context(), h.tenantID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	save := r.URL.Query().Get("save") == "true"
	if save && h.repo == nil {
		http.Error(w, "storage not configured", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	if len(data) > maxBodyBytes {
		http.Error(w, "document too large", http.StatusRequestEntityTooLarge)
		return
	}
	doc, err := h.reader.Read(data)
	if err != nil {
		metrics.IncIngestError("read")
		metrics.ObserveDocumentIngest(metrics.ResultError, time.Since(start))
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	result := extraction.Parse(doc)
	metrics.ObserveDocumentIngest(metrics.ResultSuccess, time.Since(start))
	metrics.AddRecordsExtracted(len(result.Records))

	if save && len(result.Records) > 0 {
		if err := h.repo.SaveRecords(r.Context(), result.Records); err != nil {
			h.logger.Error().Err(err).Msg("save parsed records")
			http.Error(w, "save records error", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, http.StatusOK, newParseResponse(result))
}

// TariffsHandler lists stored records and runs source ingests.
type TariffsHandler struct {
	repo     tariff.Repository
	ingester Ingester
	tenantID string
}

// NewTariffsHandler constructs a TariffsHandler.
func NewTariffsHandler(repo tariff.Repository, ingester Ingester, tenantID string) *TariffsHandler {
	return &TariffsHandler{repo: repo, ingester: ingester, tenantID: tenantID}
}

type ingestRequest struct {
	Sources []string `json:"sources"`
}

type ingestResponse struct {
	RunID   string         `json:"run_id"`
	Records []recordDTO    `json:"records"`
	Saved   int            `json:"saved"`
	Errors  []ingestErrDTO `json:"errors"`
}

type ingestErrDTO struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// ServeHTTP handles GET /api/v1/tariffs?region= and POST /api/v1/tariffs.
func (h *TariffsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h != nil && !auth.SameTenant(r.Context(), h.tenantID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.ingest(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *TariffsHandler) list(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.repo == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	records, err := h.repo.ListRecords(r.Context(), r.URL.Query().Get("region"))
	if err != nil {
		http.Error(w, "query records error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recordDTOs(records))
}

func (h *TariffsHandler) ingest(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.ingester == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	var req ingestRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Sources) == 0 {
		http.Error(w, "sources is required", http.StatusBadRequest)
		return
	}
	report, err := h.ingester.Ingest(r.Context(), req.Sources)
	if err != nil {
		http.Error(w, "ingest error", http.StatusInternalServerError)
		return
	}
	resp := ingestResponse{
		RunID:   report.RunID,
		Records: recordDTOs(report.Records),
		Saved:   report.Saved,
		Errors:  make([]ingestErrDTO, 0, len(report.Errors)),
	}
	for _, e := range report.Errors {
		resp.Errors = append(resp.Errors, ingestErrDTO{Source: e.Source, Message: e.Message})
	}
	writeJSON(w, http.StatusOK, resp)
}

type mergeRequest struct {
	Energy  string `json:"energy"`
	Service string `json:"service"`
}

type mergeResponse struct {
	Text     string       `json:"text"`
	Segments []segmentDTO `json:"segments"`
	Dropped  []string     `json:"dropped"`
	Skipped  int          `json:"skipped"`
}

type segmentDTO struct {
	Start   string          `json:"start"`
	End     string          `json:"end"`
	Energy  decimal.Decimal `json:"energy_price"`
	Service decimal.Decimal `json:"service_price"`
	Total   decimal.Decimal `json:"total_price"`
}

// MergeHandler merges an energy and a service schedule text.
type MergeHandler struct{}

// NewMergeHandler constructs a MergeHandler.
func NewMergeHandler() *MergeHandler {
	return &MergeHandler{}
}

// ServeHTTP handles POST /api/v1/schedules/merge.
func (h *MergeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req mergeRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result := pricingapp.MergeTexts(req.Energy, req.Service)
	resp := mergeResponse{
		Text:     result.Text,
		Segments: segmentDTOs(result.Segments),
		Dropped:  make([]string, 0, len(result.Dropped)),
		Skipped:  result.Skipped,
	}
	for _, iv := range result.Dropped {
		resp.Dropped = append(resp.Dropped, iv.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

type planRequest struct {
	StationID string `json:"station_id"`
	Month     string `json:"month"`
	Currency  string `json:"currency"`
	Energy    string `json:"energy"`
	Service   string `json:"service"`
}

type planResponse struct {
	ID       string       `json:"id"`
	Mode     string       `json:"mode"`
	Month    string       `json:"month"`
	Segments []segmentDTO `json:"segments"`
}

type priceResponse struct {
	StationID string          `json:"station_id"`
	At        string          `json:"at"`
	Price     decimal.Decimal `json:"price_per_kwh"`
}

// PlansHandler publishes merged station plans and resolves prices.
type PlansHandler struct {
	store    PlanStore
	tenantID string
	currency string
	logger   zerolog.Logger
}

// NewPlansHandler constructs a PlansHandler.
func NewPlansHandler(store PlanStore, tenantID, currency string, logger zerolog.Logger) *PlansHandler {
	return &PlansHandler{store: store, tenantID: tenantID, currency: currency, logger: logger}
}

// ServeHTTP handles POST /api/v1/schedules/plans and
// GET /api/v1/schedules/plans?station_id=&at=.
func (h *PlansHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.store == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	if !auth.SameTenant(r.Context(), h.tenantID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	switch r.Method {
	case http.MethodPost:
		h.publish(w, r)
	case http.MethodGet:
		h.priceAt(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *PlansHandler) publish(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	month, err := time.Parse(monthLayout, req.Month)
	if err != nil {
		http.Error(w, "month must be YYYY-MM", http.StatusBadRequest)
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = h.currency
	}

	merged := pricingapp.MergeTexts(req.Energy, req.Service)
	plan, err := schedule.NewPlan(req.StationID, month, currency, merged.Segments)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	id, err := h.store.SavePlan(r.Context(), plan)
	if err != nil {
		h.logger.Error().Err(err).Str("station_id", plan.StationID).Msg("save plan")
		http.Error(w, "save plan error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, planResponse{
		ID:       id,
		Mode:     plan.Mode,
		Month:    plan.EffectiveMonth.Format(monthLayout),
		Segments: segmentDTOs(plan.Segments),
	})
	h.logger.Info().
		Str("tenant_id", h.tenantID).
		Str("actor", auth.SubjectFromContext(r.Context())).
		Str("role", string(auth.RoleFromContext(r.Context()))).
		Str("station_id", plan.StationID).
		Str("plan_id", id).
		Str("month", plan.EffectiveMonth.Format(monthLayout)).
		Msg("plan published")
}

func (h *PlansHandler) priceAt(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station_id")
	if stationID == "" {
		http.Error(w, "station_id is required", http.StatusBadRequest)
		return
	}
	at, err := parseTimeQuery(r, "at")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	price, err := h.store.PriceAt(r.Context(), stationID, at)
	if err != nil {
		if errors.Is(err, schedule.ErrPlanNotFound) || errors.Is(err, schedule.ErrRuleNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "price lookup error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, priceResponse{StationID: stationID, At: at.Format(timeLayout), Price: price})
}

// HealthHandler reports liveness and, when configured, database reachability.
type HealthHandler struct {
	ping func(ctx context.Context) error
}

// NewHealthHandler constructs a HealthHandler. ping may be nil.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// ServeHTTP handles GET /healthz.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid json body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseTimeQuery(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, errors.New(key + " is required")
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, errors.New(key + " must be RFC3339")
	}
	return parsed.UTC(), nil
}
