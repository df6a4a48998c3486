package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tariff-cloud/internal/observability/metrics"
	tariff "tariff-cloud/internal/tariff/domain"
	"tariff-cloud/internal/tariff/extraction"
)

// MessageNoRecords is reported for a document that parsed without any tariff row.
const MessageNoRecords = "未能识别有效电价行"

// Fetcher retrieves raw document bytes from a URL or local path.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// DocumentReader turns raw bytes into header text and tables.
type DocumentReader interface {
	Read(data []byte) (extraction.Document, error)
}

// IngestError records one failed source; the batch continues past it.
type IngestError struct {
	Source  string
	Message string
}

func (e IngestError) Error() string {
	return e.Source + ": " + e.Message
}

// SourceResult is the parse outcome for one successfully read source.
type SourceResult struct {
	Source string
	Result extraction.ParseResult
}

// IngestReport summarizes one batch run.
type IngestReport struct {
	RunID   string
	Records []tariff.Record
	Sources []SourceResult
	Errors  []IngestError
	Saved   int
}

// IngestApplicationService fetches, reads and parses tariff documents.
type IngestApplicationService struct {
	fetcher Fetcher
	reader  DocumentReader
	repo    tariff.Repository
	logger  zerolog.Logger
	now     func() time.Time
}

// IngestOption configures the service.
type IngestOption func(*IngestApplicationService)

// WithRepository persists extracted records after each batch.
func WithRepository(repo tariff.Repository) IngestOption {
	return func(s *IngestApplicationService) {
		s.repo = repo
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) IngestOption {
	return func(s *IngestApplicationService) {
		s.logger = logger
	}
}

// NewIngestApplicationService constructs the service.
func NewIngestApplicationService(fetcher Fetcher, reader DocumentReader, opts ...IngestOption) (*IngestApplicationService, error) {
	if fetcher == nil {
		return nil, errors.New("ingest app service: nil fetcher")
	}
	if reader == nil {
		return nil, errors.New("ingest app service: nil document reader")
	}
	s := &IngestApplicationService{
		fetcher: fetcher,
		reader:  reader,
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Ingest processes sources in order. Per-source failures are collected in the
// report; only a repository failure aborts the run.
func (s *IngestApplicationService) Ingest(ctx context.Context, sources []string) (IngestReport, error) {
	report := IngestReport{RunID: uuid.NewString()}
	logger := s.logger.With().Str("run_id", report.RunID).Logger()

	for _, source := range sources {
		source = strings.TrimSpace(source)
		if source == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		start := s.now()
		result, ingestErr := s.ingestOne(ctx, source)
		elapsed := s.now().Sub(start)
		if ingestErr != nil {
			metrics.ObserveDocumentIngest(metrics.ResultError, elapsed)
			logger.Warn().Str("source", source).Str("reason", ingestErr.Message).Msg("tariff document skipped")
			report.Errors = append(report.Errors, *ingestErr)
			continue
		}
		metrics.ObserveDocumentIngest(metrics.ResultSuccess, elapsed)
		metrics.AddRecordsExtracted(len(result.Records))
		logger.Info().
			Str("source", source).
			Str("region", result.Region.Name).
			Bool("region_detected", result.Region.Detected).
			Int("records", len(result.Records)).
			Msg("tariff document parsed")
		report.Sources = append(report.Sources, SourceResult{Source: source, Result: result})
		report.Records = append(report.Records, result.Records...)
	}

	if s.repo != nil && len(report.Records) > 0 {
		if err := s.repo.SaveRecords(ctx, report.Records); err != nil {
			return report, fmt.Errorf("ingest app service: save records: %w", err)
		}
		report.Saved = len(report.Records)
	}
	return report, nil
}

func (s *IngestApplicationService) ingestOne(ctx context.Context, source string) (extraction.ParseResult, *IngestError) {
	data, err := s.fetcher.Fetch(ctx, source)
	if err != nil {
		metrics.IncIngestError("fetch")
		return extraction.ParseResult{}, &IngestError{Source: source, Message: err.Error()}
	}
	doc, err := s.reader.Read(data)
	if err != nil {
		metrics.IncIngestError("read")
		return extraction.ParseResult{}, &IngestError{Source: source, Message: err.Error()}
	}
	result := extraction.Parse(doc)
	for _, warning := range result.Warnings {
		metrics.IncParseWarning(warningLabel(warning))
	}
	if len(result.Records) == 0 {
		metrics.IncIngestError("no_records")
		return result, &IngestError{Source: source, Message: MessageNoRecords}
	}
	return result, nil
}

func warningLabel(err error) string {
	switch {
	case errors.Is(err, tariff.ErrRegionNotDetected):
		return "region_not_detected"
	case errors.Is(err, tariff.ErrNoTables):
		return "no_tables"
	case errors.Is(err, tariff.ErrNoTierOrder):
		return "no_tier_order"
	case errors.Is(err, tariff.ErrNoVoltageRow):
		return "no_voltage_row"
	default:
		return "other"
	}
}
