package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/intake-cli/internal/model"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want model.LocationDetails
	}{
		{"city and state", "Austin, TX", model.LocationDetails{City: "Austin", State: "TX"}},
		{"site qualifier before", "Downtown Site - Austin, TX", model.LocationDetails{City: "Austin", State: "TX"}},
		{"site qualifier after", "Austin, TX - Building 4", model.LocationDetails{City: "Austin", State: "TX"}},
		{"qualifier without commas keeps leading side", "Main Campus - Austin", model.LocationDetails{City: "Main Campus"}},
		{"city only", "Austin", model.LocationDetails{City: "Austin"}},
		{"neighborhood city state", "Downtown, Austin, TX", model.LocationDetails{City: "Downtown, Austin", State: "TX"}},
		{"empty segments dropped", " Austin ,  , TX , ", model.LocationDetails{City: "Austin", State: "TX"}},
		{"only commas", " , , ", model.LocationDetails{}},
		{"empty", "", model.LocationDetails{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocation(tt.in))
		})
	}
}

func TestResolveLocation_StructuredWinsVerbatim(t *testing.T) {
	rec := &model.Record{
		Location: "Somewhere Else, CA",
		RawPayload: model.Payload{
			"location_details": map[string]any{"city": "Austin", "state": "TX"},
		},
	}
	assert.Equal(t, model.LocationDetails{City: "Austin", State: "TX"}, ResolveLocation(rec))
}

func TestResolveLocation_ScrapedOpportunityBeforeRawTopLevel(t *testing.T) {
	rec := &model.Record{
		RawPayload: model.Payload{
			"location_details": map[string]any{"city": "Dallas", "state": "TX"},
			"opportunity": map[string]any{
				"locationDetails": map[string]any{"city": " Houston ", "state": "TX"},
			},
		},
	}
	assert.Equal(t, model.LocationDetails{City: "Houston", State: "TX"}, ResolveLocation(rec))
}

// A structured candidate with only a state still wins over free text.
func TestResolveLocation_StateOnlyStructuredCandidateWins(t *testing.T) {
	rec := &model.Record{
		RawPayload: model.Payload{
			"location": "San Jose, CA",
			"opportunity": map[string]any{
				"location_details": map[string]any{"city": "", "state": "CA"},
			},
		},
	}
	assert.Equal(t, model.LocationDetails{City: "", State: "CA"}, ResolveLocation(rec))
}

func TestResolveLocation_EmptyStructuredFallsThroughToFreeText(t *testing.T) {
	rec := &model.Record{
		RawPayload: model.Payload{
			"location": "San Jose, CA",
			"opportunity": map[string]any{
				"location_details": map[string]any{"city": " ", "state": ""},
			},
		},
	}
	assert.Equal(t, model.LocationDetails{City: "San Jose", State: "CA"}, ResolveLocation(rec))
}

func TestResolveLocation_FreeTextPrecedence(t *testing.T) {
	rec := &model.Record{
		Location: "Record City, RC",
		AIMetadata: model.Payload{
			"preview": map[string]any{"location": "Preview City, PC"},
		},
	}
	assert.Equal(t, model.LocationDetails{City: "Record City", State: "RC"}, ResolveLocation(rec))

	rec.Location = ""
	assert.Equal(t, model.LocationDetails{City: "Preview City", State: "PC"}, ResolveLocation(rec))

	rec.RawPayload = model.Payload{"opportunity": map[string]any{"location": "Scraped City, SC"}}
	assert.Equal(t, model.LocationDetails{City: "Scraped City", State: "SC"}, ResolveLocation(rec))
}

func TestResolveLocation_MalformedPayloads(t *testing.T) {
	rec := &model.Record{
		RawPayload: model.Payload{
			"location_details": "Austin, TX",
			"opportunity":      []any{"not", "an", "object"},
			"location":         12,
		},
	}
	assert.Equal(t, model.LocationDetails{}, ResolveLocation(rec))
	assert.Equal(t, model.LocationDetails{}, ResolveLocation(nil))
}

func TestDisplayAddress(t *testing.T) {
	rec := &model.Record{
		RawPayload: model.Payload{
			"location": "Austin, TX",
			"opportunity": map[string]any{
				"address": "710 W Cesar Chavez St, Austin, TX",
			},
		},
	}
	assert.Equal(t, "710 W Cesar Chavez St, Austin, TX", DisplayAddress(rec))

	rec.RawPayload["opportunity"] = map[string]any{}
	assert.Equal(t, "Austin, TX", DisplayAddress(rec))

	assert.Equal(t, "", DisplayAddress(&model.Record{}))
}
