package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeDescription_DropsDuplicates(t *testing.T) {
	assert.Equal(t, "Same text.\n\nOther.", ComposeDescription("Same text.", "Same text.", "Other."))
}

func TestComposeDescription_TrimsAndSkipsEmpty(t *testing.T) {
	got := ComposeDescription("", "  First  ", "\n", "Second", " First")
	assert.Equal(t, "First\n\nSecond", got)
}

func TestComposeDescription_ExactMatchOnly(t *testing.T) {
	got := ComposeDescription("Same text.", "same text.")
	assert.Equal(t, "Same text.\n\nsame text.", got)
}

func TestComposeDescription_Empty(t *testing.T) {
	assert.Equal(t, "", ComposeDescription())
	assert.Equal(t, "", ComposeDescription("", " "))
}

func TestScopeSections(t *testing.T) {
	assert.Equal(t, "", scopeSection(" "))
	assert.Equal(t, "Scope: Roofing", scopeSection("Roofing"))
	assert.Equal(t, "", scopeItemsSection(nil))
	assert.Equal(t, "Scope Items:\n- A\n- B", scopeItemsSection([]string{"A", " B "}))
}
