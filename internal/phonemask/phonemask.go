// Package phonemask hides bidder phone numbers from non-privileged readers.
// Masking and format validation are pure functions with no dependencies.
package phonemask

import (
	"regexp"
	"strings"
)

// phoneRegex accepts 7 to 15 digits with an optional leading plus sign.
var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ValidFormat reports whether the raw phone number is acceptable for a bid.
func ValidFormat(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// Mask hides the middle of a phone number, keeping only leading and
// trailing digits visible. Non-digit characters are stripped first.
// Numbers of 3 digits or fewer are fully masked; 4 to 6 digits keep the
// first 2 and last 1; longer numbers keep the first 3 and last 3 with at
// least 3 mask characters in between, so short numbers do not leak their
// exact length.
func Mask(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	d := digits.String()
	n := len(d)
	switch {
	case n == 0:
		return ""
	case n <= 3:
		return strings.Repeat("*", n)
	case n <= 6:
		return d[:2] + strings.Repeat("*", n-3) + d[n-1:]
	default:
		masked := n - 6
		if masked < 3 {
			masked = 3
		}
		return d[:3] + strings.Repeat("*", masked) + d[n-3:]
	}
}
