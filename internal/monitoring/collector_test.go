package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intake-cli/internal/model"
)

func TestCollector_EmptyStore(t *testing.T) {
	st := &mockStore{}
	snap, err := fixedCollector(st, Thresholds{}).Collect(context.Background())
	require.NoError(t, err)

	assert.Zero(t, snap.Total)
	assert.Len(t, snap.ByStatus, 4)
	assert.Empty(t, snap.StuckPromotions)
	assert.NotNil(t, snap.StuckPromotions)
	assert.Equal(t, testNow, snap.CollectedAt)
	require.Len(t, st.filters, 1)
	assert.Equal(t, scanLimit, st.filters[0].Limit)
}

func TestCollector_QueueMetrics(t *testing.T) {
	st := &mockStore{records: []model.Record{
		{ID: "new", Status: model.StatusPendingReview, MatchScore: score(0.9), CreatedAt: testNow.Add(-time.Hour)},
		{ID: "old", Status: model.StatusPendingReview, MatchScore: score(0.5), CreatedAt: testNow.Add(-100 * time.Hour)},
		{ID: "stuck", Status: model.StatusApproved, PromotionPending: true, UpdatedAt: testNow.Add(-2 * time.Hour)},
		{ID: "fresh", Status: model.StatusApproved, PromotionPending: true, UpdatedAt: testNow.Add(-5 * time.Minute)},
		{ID: "done", Status: model.StatusPromoted},
	}}
	th := Thresholds{StuckPromotion: 30 * time.Minute, StaleReview: 72 * time.Hour}

	snap, err := fixedCollector(st, th).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, snap.Total)
	assert.Equal(t, 2, snap.Pending())
	assert.Equal(t, 2, snap.ByStatus[model.StatusApproved])
	assert.Equal(t, 1, snap.ByStatus[model.StatusPromoted])
	assert.Zero(t, snap.ByStatus[model.StatusRejected])
	assert.Equal(t, 2, snap.PromotionPending)
	assert.Equal(t, []string{"stuck"}, snap.StuckPromotions)
	assert.Equal(t, 1, snap.StaleReviews)
	assert.InDelta(t, 0.7, snap.AvgMatchScore, 1e-9)
}

func TestCollector_ZeroThresholdsDisableChecks(t *testing.T) {
	st := &mockStore{records: []model.Record{
		{ID: "a", Status: model.StatusPendingReview, CreatedAt: testNow.Add(-1000 * time.Hour)},
		{ID: "b", Status: model.StatusApproved, PromotionPending: true, UpdatedAt: testNow.Add(-1000 * time.Hour)},
	}}
	snap, err := fixedCollector(st, Thresholds{}).Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.StuckPromotions)
	assert.Zero(t, snap.StaleReviews)
	assert.Equal(t, 1, snap.PromotionPending)
}

func TestCollector_StoreError(t *testing.T) {
	st := &mockStore{err: errors.New("connection refused")}
	_, err := fixedCollector(st, Thresholds{}).Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitoring: list records")
}
