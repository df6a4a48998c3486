package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	metricPrefix = "tariff_"

	resultSuccess = "success"
	resultError   = "error"

	dbQueryTimeout = 2 * time.Second
)

var (
	registerOnce sync.Once

	documentIngestTotal   *prometheus.CounterVec
	documentIngestLatency *prometheus.HistogramVec
	ingestErrors          *prometheus.CounterVec
	parseWarnings         *prometheus.CounterVec
	recordsExtracted      prometheus.Counter

	scheduleMergeTotal *prometheus.CounterVec
	droppedIntervals   prometheus.Counter
	skippedLines       *prometheus.CounterVec

	stationPricingTotal *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers tariff metrics and, when db is set, DB-backed gauges.
func Init(db *sql.DB, logger zerolog.Logger) {
	registerOnce.Do(func() {
		documentIngestTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "document_ingest_total",
				Help: "Total tariff documents ingested by result",
			},
			[]string{"result"},
		)
		documentIngestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "document_ingest_latency_seconds",
				Help:    "Tariff document fetch and parse latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		ingestErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_errors_total",
				Help: "Total ingest errors by reason",
			},
			[]string{"reason"},
		)
		parseWarnings = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "parse_warnings_total",
				Help: "Total soft parse failures by kind",
			},
			[]string{"warning"},
		)
		recordsExtracted = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "records_extracted_total",
				Help: "Total tariff records extracted from documents",
			},
		)

		scheduleMergeTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "schedule_merge_total",
				Help: "Total schedule merges by result",
			},
			[]string{"result"},
		)
		droppedIntervals = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "schedule_dropped_intervals_total",
				Help: "Total sub-intervals dropped because one side did not cover them",
			},
		)
		skippedLines = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "schedule_skipped_lines_total",
				Help: "Total schedule text lines that did not match their grammar",
			},
			[]string{"grammar"},
		)

		stationPricingTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "station_pricing_total",
				Help: "Total station pricing computations by kind and result",
			},
			[]string{"kind", "result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			documentIngestTotal,
			documentIngestLatency,
			ingestErrors,
			parseWarnings,
			recordsExtracted,
			scheduleMergeTotal,
			droppedIntervals,
			skippedLines,
			stationPricingTotal,
			exportTotal,
			exportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

func registerDBMetrics(db *sql.DB, logger zerolog.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "stored_records",
			Help: "Tariff records currently stored",
		},
		func() float64 {
			return countRows(db, logger, "tariff_records")
		},
	))
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "stored_plans",
			Help: "Station tariff plans currently stored",
		},
		func() float64 {
			return countRows(db, logger, "tariff_plans")
		},
	))
}

func countRows(db *sql.DB, logger zerolog.Logger, table string) float64 {
	ctx, cancel := context.WithTimeout(context.Background(), dbQueryTimeout)
	defer cancel()
	var count int64
	if err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&count); err != nil {
		logger.Warn().Err(err).Str("table", table).Msg("metrics: count rows")
		return 0
	}
	return float64(count)
}

// ObserveDocumentIngest records one document's ingest duration and result.
func ObserveDocumentIngest(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if documentIngestTotal != nil {
		documentIngestTotal.WithLabelValues(result).Inc()
	}
	if documentIngestLatency != nil {
		documentIngestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncIngestError increments the ingest error counter.
func IncIngestError(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if ingestErrors != nil {
		ingestErrors.WithLabelValues(reason).Inc()
	}
}

// IncParseWarning increments the soft parse failure counter.
func IncParseWarning(warning string) {
	if warning == "" {
		warning = "unknown"
	}
	if parseWarnings != nil {
		parseWarnings.WithLabelValues(warning).Inc()
	}
}

// AddRecordsExtracted adds to the extracted record counter.
func AddRecordsExtracted(count int) {
	if count <= 0 {
		return
	}
	if recordsExtracted != nil {
		recordsExtracted.Add(float64(count))
	}
}

// ObserveScheduleMerge records a merge result and how many intervals it dropped.
func ObserveScheduleMerge(result string, dropped int) {
	if result == "" {
		result = resultSuccess
	}
	if scheduleMergeTotal != nil {
		scheduleMergeTotal.WithLabelValues(result).Inc()
	}
	if dropped > 0 && droppedIntervals != nil {
		droppedIntervals.Add(float64(dropped))
	}
}

// AddSkippedLines adds to the skipped line counter for a grammar.
func AddSkippedLines(grammar string, count int) {
	if count <= 0 {
		return
	}
	if grammar == "" {
		grammar = "unknown"
	}
	if skippedLines != nil {
		skippedLines.WithLabelValues(grammar).Add(float64(count))
	}
}

// IncStationPricing increments station pricing counters.
func IncStationPricing(kind, result string) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if stationPricingTotal != nil {
		stationPricingTotal.WithLabelValues(kind, result).Inc()
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
