package tui

import (
	"context"
	"sync"

	"github.com/sells-group/intake-cli/internal/model"
)

// fakeMutator keeps records in memory. promoteErr and updateErr force
// failures for every call.
type fakeMutator struct {
	mu      sync.Mutex
	records map[string]model.Record

	updateErr  error
	promoteErr error

	updates  int
	promotes int
	refreshs int
}

func newFakeMutator(recs ...model.Record) *fakeMutator {
	f := &fakeMutator{records: make(map[string]model.Record)}
	for _, r := range recs {
		f.records[r.ID] = r
	}
	return f
}

func (f *fakeMutator) ListRecords(_ context.Context, status model.Status, _ int) ([]model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Record
	for _, r := range f.records {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeMutator) UpdateRecord(_ context.Context, id string, upd model.RecordUpdate) (*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	rec := upd.Apply(f.records[id])
	f.records[id] = rec
	return &rec, nil
}

func (f *fakeMutator) PromoteRecord(_ context.Context, id, accountID string) (*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.promotes++
	if f.promoteErr != nil {
		return nil, f.promoteErr
	}
	rec := f.records[id]
	rec.Status = model.StatusPromoted
	rec.PromotionPending = false
	rec.OpportunityID = "local-" + id
	rec.AccountID = accountID
	f.records[id] = rec
	return &rec, nil
}

func (f *fakeMutator) RefreshRecord(_ context.Context, id string) (*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshs++
	rec := f.records[id]
	rec.AISummary = "refreshed"
	f.records[id] = rec
	return &rec, nil
}
