// Package review implements the reviewer-facing core: the promotion state
// machine and the queue controller that filters, sorts, selects and
// bulk-mutates ingestion records.
package review

import (
	"context"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/normalize"
)

// Mutator is the record collaborator. Every call may have a side effect and
// is made at most once per user action.
type Mutator interface {
	ListRecords(ctx context.Context, status model.Status, limit int) ([]model.Record, error)
	UpdateRecord(ctx context.Context, id string, upd model.RecordUpdate) (*model.Record, error)
	PromoteRecord(ctx context.Context, id, accountID string) (*model.Record, error)
	RefreshRecord(ctx context.Context, id string) (*model.Record, error)
}

var transitions = map[model.Status][]model.Status{
	model.StatusPendingReview: {model.StatusApproved, model.StatusRejected},
	model.StatusApproved:      {model.StatusPromoted, model.StatusRejected},
	model.StatusRejected:      {model.StatusPendingReview, model.StatusApproved},
	model.StatusPromoted:      nil,
}

// CanTransition reports whether a record in status from may move to to.
func CanTransition(from, to model.Status) bool {
	return slices.Contains(transitions[from], to)
}

// NextStatuses lists the statuses reachable from from.
func NextStatuses(from model.Status) []model.Status {
	return slices.Clone(transitions[from])
}

// Workflow drives status changes and promotion through a Mutator.
type Workflow struct {
	m Mutator
}

// NewWorkflow creates a Workflow.
func NewWorkflow(m Mutator) *Workflow {
	return &Workflow{m: m}
}

// Transition moves rec to status to. A move to promoted issues a promote with
// no account and no form update; use Promote for the form-driven path.
func (w *Workflow) Transition(ctx context.Context, rec *model.Record, to model.Status) (*model.Record, error) {
	if !CanTransition(rec.Status, to) {
		return nil, eris.Wrapf(ErrInvalidTransition, "review: %s -> %s", rec.Status, to)
	}

	log := zap.L().With(zap.String("record_id", rec.ID), zap.String("from", string(rec.Status)), zap.String("to", string(to)))

	var (
		out *model.Record
		err error
	)
	if to == model.StatusPromoted {
		out, err = w.m.PromoteRecord(ctx, rec.ID, "")
	} else {
		out, err = w.m.UpdateRecord(ctx, rec.ID, model.RecordUpdate{Status: &to})
	}
	if err != nil {
		log.Warn("status transition failed", zap.Error(err))
		return nil, eris.Wrapf(err, "review: transition %s to %s", rec.ID, to)
	}
	log.Info("status changed")
	return out, nil
}

// Promote validates the form, persists it (phase 1) and then promotes the
// record (phase 2). Phase 2 runs only if phase 1 succeeded. Neither phase is
// retried and phase 1 is never rolled back; a phase 2 failure leaves the
// record with promotion_pending set.
func (w *Workflow) Promote(ctx context.Context, rec *model.Record, form PromotionForm, accountID string) (*model.Record, error) {
	if rec.Status == model.StatusPromoted {
		return nil, eris.Wrapf(ErrAlreadyPromoted, "review: promote %s", rec.ID)
	}
	if !CanTransition(rec.Status, model.StatusPromoted) {
		return nil, eris.Wrapf(ErrInvalidTransition, "review: %s -> %s", rec.Status, model.StatusPromoted)
	}

	upd, err := form.Update()
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("record_id", rec.ID), zap.String("account_id", accountID))

	updated, err := w.m.UpdateRecord(ctx, rec.ID, upd)
	if err != nil {
		log.Error("promotion update phase failed", zap.Error(err))
		return nil, &PromotionError{RecordID: rec.ID, Phase: PhaseUpdate, Err: err}
	}

	promoted, err := w.m.PromoteRecord(ctx, rec.ID, accountID)
	if err != nil {
		log.Error("promotion promote phase failed; record left updated but not promoted", zap.Error(err))
		return nil, &PromotionError{RecordID: rec.ID, Phase: PhasePromote, Updated: updated, Err: err}
	}

	log.Info("record promoted", zap.String("opportunity_id", promoted.OpportunityID))
	return promoted, nil
}

// Refresh re-extracts the record from its source page. Status is unchanged.
func (w *Workflow) Refresh(ctx context.Context, rec *model.Record) (*model.Record, error) {
	if normalize.ScrapedSourceURL(rec) == "" {
		return nil, eris.Wrapf(ErrNoSourceURL, "review: refresh %s", rec.ID)
	}
	out, err := w.m.RefreshRecord(ctx, rec.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "review: refresh %s", rec.ID)
	}
	return out, nil
}
