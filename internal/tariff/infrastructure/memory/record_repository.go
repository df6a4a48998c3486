package memory

import (
	"context"
	"sort"
	"sync"

	tariff "tariff-cloud/internal/tariff/domain"
)

// RecordRepository keeps tariff records in process memory.
type RecordRepository struct {
	mu      sync.RWMutex
	records map[string]tariff.Record
}

// NewRecordRepository constructs an empty repository.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{records: map[string]tariff.Record{}}
}

// SaveRecords replaces records with the same key.
func (r *RecordRepository) SaveRecords(_ context.Context, records []tariff.Record) error {
	if records == nil {
		return tariff.ErrNilRecords
	}
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range records {
		r.records[record.Key()] = record
	}
	return nil
}

// ListRecords returns records of region ordered by key. An empty region
// lists everything.
func (r *RecordRepository) ListRecords(_ context.Context, region string) ([]tariff.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []tariff.Record
	for _, record := range r.records {
		if region == "" || record.Region == region {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}
