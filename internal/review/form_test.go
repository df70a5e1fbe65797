package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intake-cli/internal/model"
)

func TestFormFromDraft(t *testing.T) {
	d := model.Draft{
		Title:        "Library",
		Location:     "Austin, TX",
		ExpectedDate: "2026-03-15",
		Tags:         []string{"civic"},
		Description:  "Overview.\n\nScope: Roofing",
		Summary:      "Overview.",
		ContactPhone: "(512) 555-0100",
	}
	f := FormFromDraft(d)
	assert.Equal(t, "Library", f.Title)
	assert.Equal(t, "2026-03-15", f.Deadline)
	assert.Equal(t, "Overview.\n\nScope: Roofing", f.Summary)
	assert.Equal(t, []string{"civic"}, f.Tags)

	f.Tags[0] = "changed"
	assert.Equal(t, "civic", d.Tags[0])
}

func TestPromotionForm_Update(t *testing.T) {
	f := PromotionForm{
		Title:        "  Library  ",
		ClientName:   " ",
		Tags:         []string{" civic ", "", "k12"},
		ContactEmail: "ann@austin.gov",
		ContactPhone: "",
		SourceURL:    "https://austin.gov/rfp",
	}
	upd, err := f.Update()
	require.NoError(t, err)

	require.NotNil(t, upd.ProjectTitle)
	assert.Equal(t, "Library", *upd.ProjectTitle)
	assert.Nil(t, upd.ClientName, "blank fields are omitted")
	assert.Nil(t, upd.ContactPhone, "blank phone is omitted")
	require.NotNil(t, upd.Tags)
	assert.Equal(t, []string{"civic", "k12"}, *upd.Tags)
	require.NotNil(t, upd.ContactEmail)
	assert.Equal(t, "ann@austin.gov", *upd.ContactEmail)
	require.NotNil(t, upd.PromotionPending)
	assert.True(t, *upd.PromotionPending)
}

func TestPromotionForm_ValidationErrors(t *testing.T) {
	f := PromotionForm{
		Title:        " ",
		Deadline:     "03/15/2026",
		ContactEmail: "not an email",
		ContactPhone: "12345",
		SourceURL:    "ftp://example.com",
	}
	_, err := f.Update()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"title", "deadline", "contact_email", "contact_phone", "source_url"} {
		_, ok := verr.Field(field)
		assert.True(t, ok, field)
	}
	assert.Contains(t, err.Error(), "review: invalid promotion form")
}
