package review

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/intake-cli/internal/model"
)

// Bulk action names.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionPromote = "promote"
)

// Queue owns the reviewer's working set: the loaded records, the active
// filter and sort, the selection and the open detail record. It is safe for
// concurrent use; the lock is never held across Mutator calls.
type Queue struct {
	wf        *Workflow
	m         Mutator
	bulkLimit int

	mu       sync.Mutex
	records  map[string]model.Record
	filter   Filter
	sort     Sort
	selected map[string]struct{}
	detail   *model.Record
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithBulkLimit caps concurrent members of a bulk action. Zero or negative
// means unlimited.
func WithBulkLimit(n int) QueueOption {
	return func(q *Queue) { q.bulkLimit = n }
}

// NewQueue creates an empty Queue backed by m.
func NewQueue(m Mutator, opts ...QueueOption) *Queue {
	q := &Queue{
		wf:       NewWorkflow(m),
		m:        m,
		records:  make(map[string]model.Record),
		sort:     DefaultSort,
		selected: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Workflow returns the workflow the queue drives.
func (q *Queue) Workflow() *Workflow { return q.wf }

// Load fetches records from the collaborator and replaces the working set.
func (q *Queue) Load(ctx context.Context, status model.Status, limit int) error {
	recs, err := q.m.ListRecords(ctx, status, limit)
	if err != nil {
		return eris.Wrap(err, "review: load records")
	}
	q.SetRecords(recs)
	return nil
}

// SetRecords replaces the working set. Selected ids that are no longer
// present are dropped.
func (q *Queue) SetRecords(recs []model.Record) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.records = make(map[string]model.Record, len(recs))
	for _, r := range recs {
		q.records[r.ID] = r
	}
	for id := range q.selected {
		if _, ok := q.records[id]; !ok {
			delete(q.selected, id)
		}
	}
	if q.detail != nil {
		if r, ok := q.records[q.detail.ID]; ok {
			q.detail = &r
		}
	}
}

// Record returns the record with id from the working set.
func (q *Queue) Record(id string) (model.Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	r, ok := q.records[id]
	return r, ok
}

// Len returns the size of the working set.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}

// SetFilter replaces the active filter.
func (q *Queue) SetFilter(f Filter) {
	q.mu.Lock()
	q.filter = f
	q.mu.Unlock()
}

// Filter returns the active filter.
func (q *Queue) Filter() Filter {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.filter
}

// SetSort replaces the active sort.
func (q *Queue) SetSort(s Sort) {
	q.mu.Lock()
	q.sort = s
	q.mu.Unlock()
}

// Sort returns the active sort.
func (q *Queue) Sort() Sort {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sort
}

// Visible returns the filtered, sorted records.
func (q *Queue) Visible() []model.Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.visibleLocked()
}

func (q *Queue) visibleLocked() []model.Record {
	all := make([]model.Record, 0, len(q.records))
	for _, r := range q.records {
		all = append(all, r)
	}
	// Map iteration is random; fix a base order so stable sorting is
	// deterministic across calls.
	slices.SortFunc(all, func(a, b model.Record) int { return strings.Compare(a.ID, b.ID) })
	return SortRecords(FilterRecords(all, q.filter), q.sort)
}

// ToggleSelect flips the selection of id and reports whether it is now
// selected. Unknown ids are ignored.
func (q *Queue) ToggleSelect(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.records[id]; !ok {
		return false
	}
	if _, ok := q.selected[id]; ok {
		delete(q.selected, id)
		return false
	}
	q.selected[id] = struct{}{}
	return true
}

// SelectAll selects every visible record. If the selection already equals
// the visible set, it clears the selection instead.
func (q *Queue) SelectAll() {
	q.mu.Lock()
	defer q.mu.Unlock()

	visible := q.visibleLocked()
	if len(visible) == len(q.selected) {
		all := true
		for _, r := range visible {
			if _, ok := q.selected[r.ID]; !ok {
				all = false
				break
			}
		}
		if all {
			clear(q.selected)
			return
		}
	}

	clear(q.selected)
	for _, r := range visible {
		q.selected[r.ID] = struct{}{}
	}
}

// Clear empties the selection.
func (q *Queue) Clear() {
	q.mu.Lock()
	clear(q.selected)
	q.mu.Unlock()
}

// Selected returns the selected ids in sorted order.
func (q *Queue) Selected() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := make([]string, 0, len(q.selected))
	for id := range q.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IsSelected reports whether id is selected.
func (q *Queue) IsSelected(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.selected[id]
	return ok
}

// SetDetail opens the detail view on id.
func (q *Queue) SetDetail(id string) (model.Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	r, ok := q.records[id]
	if !ok {
		return model.Record{}, false
	}
	q.detail = &r
	return r, true
}

// CloseDetail closes the detail view.
func (q *Queue) CloseDetail() {
	q.mu.Lock()
	q.detail = nil
	q.mu.Unlock()
}

// Detail returns the open detail record.
func (q *Queue) Detail() (model.Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.detail == nil {
		return model.Record{}, false
	}
	return *q.detail, true
}

// Apply stores a mutated record in the working set. If it is the open detail
// record, the detail view is replaced too.
func (q *Queue) Apply(rec model.Record) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.applyLocked(rec)
}

func (q *Queue) applyLocked(rec model.Record) {
	q.records[rec.ID] = rec
	if q.detail != nil && q.detail.ID == rec.ID {
		r := rec
		q.detail = &r
	}
}

// Transition changes the status of one record.
func (q *Queue) Transition(ctx context.Context, id string, to model.Status) (*model.Record, error) {
	rec, ok := q.Record(id)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownRecord, "review: transition %s", id)
	}
	out, err := q.wf.Transition(ctx, &rec, to)
	if err != nil {
		return nil, err
	}
	q.Apply(*out)
	return out, nil
}

// Promote runs the two-phase promotion for one record. When only the update
// phase lands, the updated record is still applied so the view matches what
// was persisted.
func (q *Queue) Promote(ctx context.Context, id string, form PromotionForm, accountID string) (*model.Record, error) {
	rec, ok := q.Record(id)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownRecord, "review: promote %s", id)
	}
	out, err := q.wf.Promote(ctx, &rec, form, accountID)
	if err != nil {
		var perr *PromotionError
		if errors.As(err, &perr) && perr.Updated != nil {
			q.Apply(*perr.Updated)
		}
		return nil, err
	}
	q.Apply(*out)
	return out, nil
}

// Refresh re-extracts one record from its source page.
func (q *Queue) Refresh(ctx context.Context, id string) (*model.Record, error) {
	rec, ok := q.Record(id)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownRecord, "review: refresh %s", id)
	}
	out, err := q.wf.Refresh(ctx, &rec)
	if err != nil {
		return nil, err
	}
	q.Apply(*out)
	return out, nil
}

// BulkApprove approves every id concurrently.
func (q *Queue) BulkApprove(ctx context.Context, ids []string) ([]BulkResult, error) {
	return q.bulk(ctx, ActionApprove, ids, model.StatusApproved)
}

// BulkReject rejects every id concurrently.
func (q *Queue) BulkReject(ctx context.Context, ids []string) ([]BulkResult, error) {
	return q.bulk(ctx, ActionReject, ids, model.StatusRejected)
}

// BulkPromote promotes every id concurrently, without a form update or
// account.
func (q *Queue) BulkPromote(ctx context.Context, ids []string) ([]BulkResult, error) {
	return q.bulk(ctx, ActionPromote, ids, model.StatusPromoted)
}

// Bulk dispatches a named bulk action.
func (q *Queue) Bulk(ctx context.Context, action string, ids []string) ([]BulkResult, error) {
	switch action {
	case ActionApprove:
		return q.BulkApprove(ctx, ids)
	case ActionReject:
		return q.BulkReject(ctx, ids)
	case ActionPromote:
		return q.BulkPromote(ctx, ids)
	}
	return nil, eris.Errorf("review: unknown bulk action %q", action)
}

// bulk issues one transition per id concurrently and waits for all of them
// to settle. One failure never cancels the others. Successful records are
// applied and deselected; failed ids stay selected. Results follow ids order.
func (q *Queue) bulk(ctx context.Context, action string, ids []string, to model.Status) ([]BulkResult, error) {
	ids = uniqueIDs(ids)
	results := make([]BulkResult, len(ids))

	snapshot := make([]*model.Record, len(ids))
	q.mu.Lock()
	for i, id := range ids {
		if r, ok := q.records[id]; ok {
			snapshot[i] = &r
		}
	}
	q.mu.Unlock()

	var g errgroup.Group
	if q.bulkLimit > 0 {
		g.SetLimit(q.bulkLimit)
	}
	for i, id := range ids {
		g.Go(func() error {
			results[i].ID = id
			rec := snapshot[i]
			if rec == nil {
				results[i].Err = eris.Wrapf(ErrUnknownRecord, "review: %s %s", action, id)
				return nil
			}
			out, err := q.wf.Transition(ctx, rec, to)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Record = out
			return nil
		})
	}
	_ = g.Wait() // members record their own errors

	var failed []BulkResult
	q.mu.Lock()
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
			zap.L().Warn("bulk member failed",
				zap.String("action", action),
				zap.String("record_id", r.ID),
				zap.Error(r.Err))
			continue
		}
		if r.Record != nil {
			q.applyLocked(*r.Record)
		}
		delete(q.selected, r.ID)
	}
	q.mu.Unlock()

	if len(failed) > 0 {
		return results, &BulkError{Action: action, Total: len(ids), Failed: failed}
	}
	return results, nil
}

// uniqueIDs drops repeated ids, keeping first occurrences in order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
