package normalize

import (
	"errors"
	"strings"
)

// PhonePlaceholder is rendered when no phone number is available.
const PhonePlaceholder = "—"

// ErrInvalidPhone is returned by FormatPhoneForSubmission for numbers that are
// neither 10 digits nor 11 digits with a leading 1.
var ErrInvalidPhone = errors.New("phone number must be a 10-digit US number")

// FormatPhoneForInput formats a partially typed US number progressively:
// "(415", "(415) 555", "(415) 555-1234". A leading country code 1 is
// dropped and input is clipped to ten digits.
func FormatPhoneForInput(raw string) string {
	digits := phoneDigits(raw)
	digits = strings.TrimPrefix(digits, "1")
	if len(digits) > 10 {
		digits = digits[:10]
	}

	switch n := len(digits); {
	case n == 0:
		return ""
	case n <= 3:
		return "(" + digits
	case n <= 6:
		return "(" + digits[:3] + ") " + digits[3:]
	default:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	}
}

// FormatPhoneForSubmission converts user input to E.164 for storage. Blank
// input returns ("", nil), meaning the field is omitted. Anything that is not
// a US number returns ErrInvalidPhone and must block the submission.
func FormatPhoneForSubmission(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	digits := phoneDigits(raw)
	switch {
	case len(digits) == 10:
		return "+1" + digits, nil
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, nil
	}
	return "", ErrInvalidPhone
}

// FormatPhoneForDisplay renders a stored number as "+1 (415) 555-1234".
// Numbers that are not US-shaped are returned unchanged.
func FormatPhoneForDisplay(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return PhonePlaceholder
	}
	digits := phoneDigits(raw)
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return raw
	}
	return "+1 (" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}

func phoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
