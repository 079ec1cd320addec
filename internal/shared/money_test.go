package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCents(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"1500", 150000},
		{"1500.5", 150050},
		{"1500.50", 150050},
		{"800.50", 80050},
		{"0", 0},
		{"0.01", 1},
		{".50", 50},
		{"-12.34", -1234},
		{" 42.00 ", 4200},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseCents(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCentsRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "   ", ".", "1.234", "abc", "12.3x", "1,500.00", "--5"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseCents(input)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestParseCentsRejectsOverflowingAmounts(t *testing.T) {
	// 92233720368547759 * 100 would wrap past MaxInt64.
	for _, input := range []string{"92233720368547759", "92233720368547758.08", "99999999999999999999"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseCents(input)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "2300.50", FormatCents(230050))
	assert.Equal(t, "1500.00", FormatCents(150000))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "-12.34", FormatCents(-1234))
}

func TestParseFormatRoundTrip(t *testing.T) {
	got, err := ParseCents(FormatCents(230050))
	require.NoError(t, err)
	assert.Equal(t, int64(230050), got)
}
