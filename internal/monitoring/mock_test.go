package monitoring

import (
	"context"
	"time"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/store"
)

type mockStore struct {
	records []model.Record
	err     error
	filters []store.RecordFilter
}

func (m *mockStore) ListRecords(_ context.Context, filter store.RecordFilter) ([]model.Record, error) {
	m.filters = append(m.filters, filter)
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedCollector(st RecordLister, th Thresholds) *Collector {
	c := NewCollector(st, th)
	c.now = func() time.Time { return testNow }
	return c
}

func score(v float64) *float64 { return &v }
