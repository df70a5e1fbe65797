package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhoneForInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", ""},
		{"4", "(4"},
		{"415", "(415"},
		{"4155", "(415) 5"},
		{"415555", "(415) 555"},
		{"4155551", "(415) 555-1"},
		{"4155551234", "(415) 555-1234"},
		{"14155551234", "(415) 555-1234"},
		{"+1 (415) 555-1234", "(415) 555-1234"},
		{"415555123499", "(415) 555-1234"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhoneForInput(tt.in))
		})
	}
}

func TestFormatPhoneForSubmission(t *testing.T) {
	got, err := FormatPhoneForSubmission("(415) 555-1234")
	require.NoError(t, err)
	assert.Equal(t, "+14155551234", got)

	got, err = FormatPhoneForSubmission("1-415-555-1234")
	require.NoError(t, err)
	assert.Equal(t, "+14155551234", got)

	got, err = FormatPhoneForSubmission("   ")
	require.NoError(t, err)
	assert.Equal(t, "", got, "blank input is omitted, not rejected")

	for _, bad := range []string{"5551234", "24155551234", "415555123", "call me"} {
		_, err := FormatPhoneForSubmission(bad)
		assert.ErrorIs(t, err, ErrInvalidPhone, bad)
	}
}

func TestFormatPhone_RoundTrip(t *testing.T) {
	got, err := FormatPhoneForSubmission(FormatPhoneForInput("4155551234"))
	require.NoError(t, err)
	assert.Equal(t, "+14155551234", got)
}

func TestFormatPhoneForDisplay(t *testing.T) {
	assert.Equal(t, "+1 (415) 555-1234", FormatPhoneForDisplay("+14155551234"))
	assert.Equal(t, "+1 (415) 555-1234", FormatPhoneForDisplay("4155551234"))
	assert.Equal(t, PhonePlaceholder, FormatPhoneForDisplay(""))
	assert.Equal(t, "—", FormatPhoneForDisplay("  "))
	assert.Equal(t, "+44 20 7946 0958", FormatPhoneForDisplay("+44 20 7946 0958"))
	assert.Equal(t, "555-1234", FormatPhoneForDisplay("555-1234"))
}
