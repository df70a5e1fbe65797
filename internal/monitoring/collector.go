// Package monitoring reports review queue health and alerts on it.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/store"
)

// scanLimit bounds how many records one snapshot reads.
const scanLimit = 10000

// QueueSnapshot holds a point-in-time view of the review queue.
type QueueSnapshot struct {
	Total    int                  `json:"total"`
	ByStatus map[model.Status]int `json:"by_status"`

	// PromotionPending counts records whose form update landed but whose
	// promotion has not.
	PromotionPending int `json:"promotion_pending"`

	// StuckPromotions lists pending promotions untouched for longer than
	// the stuck threshold.
	StuckPromotions []string `json:"stuck_promotions"`

	// StaleReviews counts pending_review records older than the stale
	// threshold.
	StaleReviews int `json:"stale_reviews"`

	AvgMatchScore float64   `json:"avg_match_score"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Pending returns the number of records awaiting review.
func (s *QueueSnapshot) Pending() int {
	return s.ByStatus[model.StatusPendingReview]
}

// RecordLister is the store method the collector reads through.
type RecordLister interface {
	ListRecords(ctx context.Context, filter store.RecordFilter) ([]model.Record, error)
}

// Thresholds sets when records count as stuck or stale.
type Thresholds struct {
	StuckPromotion time.Duration
	StaleReview    time.Duration
}

// Collector gathers queue metrics from the store.
type Collector struct {
	store      RecordLister
	thresholds Thresholds
	now        func() time.Time
}

// NewCollector creates a new metrics collector.
func NewCollector(st RecordLister, th Thresholds) *Collector {
	return &Collector{store: st, thresholds: th, now: time.Now}
}

// Collect gathers a snapshot of the queue.
func (c *Collector) Collect(ctx context.Context) (*QueueSnapshot, error) {
	now := c.now().UTC()
	snap := &QueueSnapshot{
		ByStatus:        make(map[model.Status]int, len(model.Statuses)),
		StuckPromotions: []string{},
		CollectedAt:     now,
	}
	for _, s := range model.Statuses {
		snap.ByStatus[s] = 0
	}

	recs, err := c.store.ListRecords(ctx, store.RecordFilter{Limit: scanLimit})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list records")
	}

	snap.Total = len(recs)
	var totalScore float64
	var scored int

	for _, r := range recs {
		snap.ByStatus[r.Status]++

		if r.PromotionPending {
			snap.PromotionPending++
			if c.thresholds.StuckPromotion > 0 && now.Sub(r.UpdatedAt) > c.thresholds.StuckPromotion {
				snap.StuckPromotions = append(snap.StuckPromotions, r.ID)
			}
		}
		if r.Status == model.StatusPendingReview && c.thresholds.StaleReview > 0 &&
			now.Sub(r.CreatedAt) > c.thresholds.StaleReview {
			snap.StaleReviews++
		}
		if r.MatchScore != nil {
			totalScore += *r.MatchScore
			scored++
		}
	}
	if scored > 0 {
		snap.AvgMatchScore = totalScore / float64(scored)
	}

	return snap, nil
}
