package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/intake-cli/internal/model"
)

func fptr(v float64) *float64 { return &v }

func ids(recs []model.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func sampleRecords() []model.Record {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.Record{
		{ID: "a", Status: model.StatusPendingReview, ProjectTitle: "bridge repair", ClientName: "TxDOT", Location: "Austin, TX", MatchScore: fptr(0.5), CreatedAt: base.Add(2 * time.Hour)},
		{ID: "b", Status: model.StatusApproved, ProjectTitle: "Airport Terminal", ClientName: "City of Dallas", Tags: []string{"Aviation"}, CreatedAt: base},
		{ID: "c", Status: model.StatusPendingReview, ProjectTitle: "Courthouse", ClientName: "Travis County", Location: "Austin, TX", MatchScore: fptr(0.9), CreatedAt: base.Add(time.Hour)},
		{ID: "d", Status: model.StatusRejected, ProjectTitle: "airport parking", MatchScore: fptr(0.5), CreatedAt: base.Add(time.Hour)},
	}
}

func TestFilterRecords(t *testing.T) {
	recs := sampleRecords()

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(FilterRecords(recs, Filter{})))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(FilterRecords(recs, Filter{Status: StatusAll})))
	assert.Equal(t, []string{"a", "c"}, ids(FilterRecords(recs, Filter{Status: "pending_review"})))

	assert.Equal(t, []string{"b", "d"}, ids(FilterRecords(recs, Filter{Query: "AIRPORT"})), "title")
	assert.Equal(t, []string{"c"}, ids(FilterRecords(recs, Filter{Query: "travis"})), "client")
	assert.Equal(t, []string{"a", "c"}, ids(FilterRecords(recs, Filter{Query: "austin"})), "location")
	assert.Equal(t, []string{"b"}, ids(FilterRecords(recs, Filter{Query: "aviation"})), "tag")
	assert.Equal(t, []string{"d"}, ids(FilterRecords(recs, Filter{Query: "airport", Status: "rejected"})))
	assert.Empty(t, FilterRecords(recs, Filter{Query: "nothing matches"}))
}

func TestSortRecords(t *testing.T) {
	recs := sampleRecords()

	assert.Equal(t, []string{"b", "c", "d", "a"}, ids(SortRecords(recs, Sort{By: SortCreatedAt, Order: SortAsc})))
	assert.Equal(t, []string{"a", "c", "d", "b"}, ids(SortRecords(recs, Sort{By: SortCreatedAt, Order: SortDesc})),
		"desc reverses the comparator; ties keep input order")

	assert.Equal(t, []string{"b", "a", "d", "c"}, ids(SortRecords(recs, Sort{By: SortMatchScore, Order: SortAsc})),
		"nil score sorts as zero")
	assert.Equal(t, []string{"c", "a", "d", "b"}, ids(SortRecords(recs, Sort{By: SortMatchScore, Order: SortDesc})))

	assert.Equal(t, []string{"d", "b", "a", "c"}, ids(SortRecords(recs, Sort{By: SortProjectTitle, Order: SortAsc})),
		"titles compare case-insensitively")

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(recs), "input is not mutated")
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, DefaultSort, ParseSort("", ""))
	assert.Equal(t, Sort{By: SortMatchScore, Order: SortDesc}, ParseSort("match_score", "bogus"))
	assert.Equal(t, Sort{By: SortProjectTitle, Order: SortAsc}, ParseSort("project_title", "ASC"))
	assert.Equal(t, Sort{By: SortCreatedAt, Order: SortAsc}, ParseSort("risk", "asc"))
}
