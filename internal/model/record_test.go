package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Valid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("archived").Valid())
	assert.False(t, Status("").Valid())
}

func TestRecordFromPayload(t *testing.T) {
	p := Payload{
		"id":            "rec-1",
		"status":        "approved",
		"project_title": "Library Renovation",
		"tags":          []any{"civic", 7, "renovation"},
		"match_score":   82.0,
		"risk_score":    "high",
		"raw_payload":   map[string]any{"location": "Austin, TX"},
		"created_at":    "2026-01-02T15:04:05Z",
	}

	rec := RecordFromPayload(p)

	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, StatusApproved, rec.Status)
	assert.Equal(t, []string{"civic", "renovation"}, rec.Tags)
	require.NotNil(t, rec.MatchScore)
	assert.Equal(t, 82.0, *rec.MatchScore)
	assert.Nil(t, rec.RiskScore)
	assert.Equal(t, "Austin, TX", rec.RawPayload.String("location"))
	assert.Equal(t, 2026, rec.CreatedAt.Year())
}

func TestRecordFromPayload_UnknownStatusDefaultsToPending(t *testing.T) {
	rec := RecordFromPayload(Payload{"status": "weird"})
	assert.Equal(t, StatusPendingReview, rec.Status)
}

func TestRecordUpdate_IsEmpty(t *testing.T) {
	assert.True(t, RecordUpdate{}.IsEmpty())

	title := "x"
	assert.False(t, RecordUpdate{ProjectTitle: &title}.IsEmpty())
}

func TestRecordUpdate_Apply(t *testing.T) {
	rec := Record{ID: "r1", ProjectTitle: "Old", ClientName: "Keep", Tags: []string{"a"}}

	title := "New"
	tags := []string{"b", "c"}
	pending := true
	status := StatusApproved
	out := RecordUpdate{ProjectTitle: &title, Tags: &tags, PromotionPending: &pending, Status: &status}.Apply(rec)

	assert.Equal(t, "New", out.ProjectTitle)
	assert.Equal(t, "Keep", out.ClientName)
	assert.Equal(t, []string{"b", "c"}, out.Tags)
	assert.True(t, out.PromotionPending)
	assert.Equal(t, StatusApproved, out.Status)
	assert.Equal(t, "Old", rec.ProjectTitle)
}

func TestDecodeOpportunity_Lists(t *testing.T) {
	opp := DecodeOpportunity(Payload{
		"scope_items": []any{"Demolition", "", "  ", 12, "HVAC"},
		"documents": []any{
			map[string]any{"title": "Plans", "url": "https://x/plans.pdf"},
			"garbage",
		},
		"contacts": []any{
			map[string]any{"name": "Ann", "email": "ann@example.com", "phone": []any{"512-555-0100"}},
		},
		"location_details": map[string]any{"city": " Austin ", "state": "TX", "line1": "100 Main St"},
	})

	assert.Equal(t, []string{"Demolition", "HVAC"}, opp.ScopeItems)
	require.Len(t, opp.Documents, 2)
	require.NotNil(t, opp.Documents[0].Title)
	assert.Equal(t, "Plans", *opp.Documents[0].Title)
	assert.Nil(t, opp.Documents[0].Type)
	assert.Nil(t, opp.Documents[1].Title)
	require.Len(t, opp.Contacts, 1)
	assert.Equal(t, []string{"ann@example.com"}, opp.Contacts[0].Email)
	assert.Equal(t, []string{"512-555-0100"}, opp.Contacts[0].Phone)
	assert.Equal(t, []LocationDetails{{City: "Austin", State: "TX"}}, opp.LocationCandidates)
	assert.Equal(t, "100 Main St", opp.AddressLine1)
}

func TestLocationDetails_String(t *testing.T) {
	assert.Equal(t, "Austin, TX", LocationDetails{City: "Austin", State: "TX"}.String())
	assert.Equal(t, "CA", LocationDetails{State: "CA"}.String())
	assert.Equal(t, "", LocationDetails{}.String())
}
