package api

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/store"
)

// fakeBackend is an in-memory Backend.
type fakeBackend struct {
	mu         sync.Mutex
	records    map[string]model.Record
	pingErr    error
	getErr     error
	promote    func(id, accountID string) error
	refreshErr error
	updates    int
	promotes   int
}

func newFakeBackend(recs ...model.Record) *fakeBackend {
	b := &fakeBackend{records: make(map[string]model.Record)}
	for _, r := range recs {
		b.records[r.ID] = r
	}
	return b
}

func (b *fakeBackend) Ping(context.Context) error { return b.pingErr }

func (b *fakeBackend) GetRecord(_ context.Context, id string) (*model.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.getErr != nil {
		return nil, b.getErr
	}
	r, ok := b.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (b *fakeBackend) ListRecords(_ context.Context, status model.Status, limit int) ([]model.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.Record{}
	for _, r := range b.records {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (b *fakeBackend) UpdateRecord(_ context.Context, id string, upd model.RecordUpdate) (*model.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates++
	r, ok := b.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r = upd.Apply(r)
	b.records[id] = r
	return &r, nil
}

func (b *fakeBackend) PromoteRecord(_ context.Context, id, accountID string) (*model.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.promotes++
	if b.promote != nil {
		if err := b.promote(id, accountID); err != nil {
			return nil, err
		}
	}
	r, ok := b.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r.Status = model.StatusPromoted
	r.PromotionPending = false
	r.OpportunityID = "local-" + id
	r.AccountID = accountID
	b.records[id] = r
	return &r, nil
}

func (b *fakeBackend) RefreshRecord(_ context.Context, id string) (*model.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refreshErr != nil {
		return nil, b.refreshErr
	}
	r, ok := b.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r.AISummary = "refreshed"
	b.records[id] = r
	return &r, nil
}

var errDownstream = errors.New("downstream unavailable")
