package phonemask

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Test Mask
func TestMask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{name: "nine_digits", phone: "777123456", want: "777***456"},
		{name: "five_digits_short_rule", phone: "12345", want: "12**5"},
		{name: "empty", phone: "", want: ""},
		{name: "one_digit", phone: "7", want: "*"},
		{name: "three_digits", phone: "123", want: "***"},
		{name: "four_digits", phone: "1234", want: "12*4"},
		{name: "six_digits", phone: "123456", want: "12***6"},
		{name: "seven_digits_minimum_mask", phone: "1234567", want: "123***567"},
		{name: "eight_digits_minimum_mask", phone: "12345678", want: "123***678"},
		{name: "ten_digits", phone: "1234567890", want: "123****890"},
		{name: "fifteen_digits", phone: "123456789012345", want: "123*********345"},
		{name: "leading_plus_stripped", phone: "+777123456", want: "777***456"},
		{name: "separators_stripped", phone: "777-123-456", want: "777***456"},
		{name: "only_non_digits", phone: "+-()", want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Mask(tc.phone))
		})
	}
}

// The masked form must never reveal more than the first 3 and last 3 digits,
// regardless of input length.
func TestMask_NeverRevealsMiddleDigits(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 20; n++ {
		digits := strings.Repeat("1234567890", 2)[:n]
		masked := Mask(digits)

		visible := strings.Count(masked, "*")
		revealed := len(masked) - visible

		switch {
		case n <= 3:
			require.Equal(t, 0, revealed, "length %d should be fully masked", n)
		case n <= 6:
			require.Equal(t, 3, revealed, "length %d should reveal 3 digits", n)
		default:
			require.Equal(t, 6, revealed, "length %d should reveal 6 digits", n)
			require.GreaterOrEqual(t, visible, 3, "length %d needs at least 3 mask characters", n)
			require.True(t, strings.HasPrefix(masked, digits[:3]))
			require.True(t, strings.HasSuffix(masked, digits[n-3:]))
		}
	}
}

// Test ValidFormat
func TestValidFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{name: "seven_digits", phone: "1234567", want: true},
		{name: "fifteen_digits", phone: "123456789012345", want: true},
		{name: "with_leading_plus", phone: "+777123456", want: true},
		{name: "too_short", phone: "123456", want: false},
		{name: "too_long", phone: "1234567890123456", want: false},
		{name: "empty", phone: "", want: false},
		{name: "plus_only", phone: "+", want: false},
		{name: "letters", phone: "77712345a", want: false},
		{name: "spaces", phone: "777 123 456", want: false},
		{name: "plus_in_middle", phone: "777+123456", want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, ValidFormat(tc.phone))
		})
	}
}
