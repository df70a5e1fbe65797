package review

import (
	"context"
	"sync"

	"github.com/sells-group/intake-cli/internal/model"
)

// mockMutator records every call. Unset funcs succeed by applying the change
// to the record the test registered with put.
type mockMutator struct {
	mu      sync.Mutex
	records map[string]model.Record

	listFn    func(ctx context.Context, status model.Status, limit int) ([]model.Record, error)
	updateFn  func(ctx context.Context, id string, upd model.RecordUpdate) (*model.Record, error)
	promoteFn func(ctx context.Context, id, accountID string) (*model.Record, error)
	refreshFn func(ctx context.Context, id string) (*model.Record, error)

	updates  []model.RecordUpdate
	updated  []string
	promoted []string
	accounts []string
	refreshs []string
}

func newMockMutator(recs ...model.Record) *mockMutator {
	m := &mockMutator{records: make(map[string]model.Record)}
	for _, r := range recs {
		m.records[r.ID] = r
	}
	return m
}

func (m *mockMutator) ListRecords(ctx context.Context, status model.Status, limit int) ([]model.Record, error) {
	if m.listFn != nil {
		return m.listFn(ctx, status, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Record
	for _, r := range m.records {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockMutator) UpdateRecord(ctx context.Context, id string, upd model.RecordUpdate) (*model.Record, error) {
	m.mu.Lock()
	m.updated = append(m.updated, id)
	m.updates = append(m.updates, upd)
	m.mu.Unlock()

	if m.updateFn != nil {
		return m.updateFn(ctx, id, upd)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := upd.Apply(m.records[id])
	rec.ID = id
	m.records[id] = rec
	return &rec, nil
}

func (m *mockMutator) PromoteRecord(ctx context.Context, id, accountID string) (*model.Record, error) {
	m.mu.Lock()
	m.promoted = append(m.promoted, id)
	m.accounts = append(m.accounts, accountID)
	m.mu.Unlock()

	if m.promoteFn != nil {
		return m.promoteFn(ctx, id, accountID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[id]
	rec.ID = id
	rec.Status = model.StatusPromoted
	rec.PromotionPending = false
	rec.OpportunityID = "opp-" + id
	rec.AccountID = accountID
	m.records[id] = rec
	return &rec, nil
}

func (m *mockMutator) RefreshRecord(ctx context.Context, id string) (*model.Record, error) {
	m.mu.Lock()
	m.refreshs = append(m.refreshs, id)
	m.mu.Unlock()

	if m.refreshFn != nil {
		return m.refreshFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[id]
	rec.AISummary = "refreshed"
	m.records[id] = rec
	return &rec, nil
}

func (m *mockMutator) calls() (updates, promotes, refreshes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.updated), len(m.promoted), len(m.refreshs)
}
