package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tariff "tariff-cloud/internal/tariff/domain"
	"tariff-cloud/internal/tariff/extraction"
	"tariff-cloud/internal/tariff/infrastructure/memory"
)

type fakeFetcher map[string][]byte

func (f fakeFetcher) Fetch(_ context.Context, source string) ([]byte, error) {
	data, ok := f[source]
	if !ok {
		return nil, errors.New("fetch: http 404")
	}
	return data, nil
}

type fakeReader map[string]extraction.Document

func (r fakeReader) Read(data []byte) (extraction.Document, error) {
	doc, ok := r[string(data)]
	if !ok {
		return extraction.Document{}, errors.New("document: unsupported format")
	}
	return doc, nil
}

type failingRepo struct{}

func (failingRepo) SaveRecords(context.Context, []tariff.Record) error {
	return errors.New("db down")
}

func (failingRepo) ListRecords(context.Context, string) ([]tariff.Record, error) {
	return nil, nil
}

var jiangsuDoc = extraction.Document{
	Header: "国网江苏省电力有限公司代理购电工商业用户电价表",
	Tables: []extraction.Table{{
		{"用电分类", "电压等级", "非分时电度电价", "尖峰时段", "高峰时段", "平时段", "低谷时段"},
		{"单一制", "1-10（20）千伏", "0.65", "1.2", "1.0", "0.65", "0.35"},
	}},
}

func newTestService(t *testing.T, opts ...IngestOption) *IngestApplicationService {
	t.Helper()
	fetcher := fakeFetcher{
		"https://example.test/js.pdf": []byte("js"),
		"local/empty.pdf":             []byte("empty"),
		"local/garbage.bin":           []byte("garbage"),
	}
	reader := fakeReader{
		"js":    jiangsuDoc,
		"empty": {Header: "国网湖南省电力有限公司"},
	}
	svc, err := NewIngestApplicationService(fetcher, reader, opts...)
	require.NoError(t, err)
	return svc
}

func TestIngestCollectsPartialFailures(t *testing.T) {
	repo := memory.NewRecordRepository()
	svc := newTestService(t, WithRepository(repo))

	report, err := svc.Ingest(context.Background(), []string{
		"https://example.test/missing.pdf",
		"https://example.test/js.pdf",
		"  ",
		"local/empty.pdf",
		"local/garbage.bin",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Records, 1)
	assert.Equal(t, "江苏省", report.Records[0].Region)
	require.Len(t, report.Sources, 1)
	assert.Equal(t, "https://example.test/js.pdf", report.Sources[0].Source)
	assert.Equal(t, 1, report.Saved)

	require.Len(t, report.Errors, 3)
	assert.Equal(t, "https://example.test/missing.pdf", report.Errors[0].Source)
	assert.Equal(t, IngestError{Source: "local/empty.pdf", Message: MessageNoRecords}, report.Errors[1])
	assert.Equal(t, "local/garbage.bin", report.Errors[2].Source)

	stored, err := repo.ListRecords(context.Background(), "江苏省")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestIngestWithoutRepositoryDoesNotSave(t *testing.T) {
	svc := newTestService(t)
	report, err := svc.Ingest(context.Background(), []string{"https://example.test/js.pdf"})
	require.NoError(t, err)
	assert.Zero(t, report.Saved)
	assert.Len(t, report.Records, 1)
}

func TestIngestRepositoryFailure(t *testing.T) {
	svc := newTestService(t, WithRepository(failingRepo{}))
	report, err := svc.Ingest(context.Background(), []string{"https://example.test/js.pdf"})
	require.Error(t, err)
	assert.Len(t, report.Records, 1)
}

func TestIngestStopsOnCancelledContext(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Ingest(ctx, []string{"https://example.test/js.pdf"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewIngestApplicationServiceValidates(t *testing.T) {
	_, err := NewIngestApplicationService(nil, fakeReader{})
	assert.Error(t, err)
	_, err = NewIngestApplicationService(fakeFetcher{}, nil)
	assert.Error(t, err)
}

func TestWarningLabel(t *testing.T) {
	assert.Equal(t, "no_voltage_row", warningLabel(tariff.ErrNoVoltageRow))
	assert.Equal(t, "other", warningLabel(errors.New("x")))
}
