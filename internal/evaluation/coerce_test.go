package evaluation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseScore(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"3", "3"},
		{"4.5", "4.5"},
		{" 1.5 ", "1.5"},
		{"-2", "-2"},
		{"+7", "7"},
		{".5", "0.5"},
		{"3.", "3"},
		{"1e1", "10"},
		{"2.5e-1", "0.25"},
		{"0.125", "0.13"},
		{"-0.125", "-0.13"},
		{"3abc", "3"},
		{"12.5kg", "12.5"},
		{"1e", "1"},
		{"999.99", "999.99"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := ParseScore(tc.in)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}
}

// Malformed scores are deliberately coerced to zero instead of rejected.
func TestParseScoreDefaultsToZero(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "NaN", "Infinity", "-", ".", "e5", "0x10z", "1000", "-1e9", "1e1234"} {
		t.Run(in, func(t *testing.T) {
			got := ParseScore(in)
			assert.True(t, got.IsZero(), "%q gave %s", in, got)
		})
	}
}

func TestSumIsExact(t *testing.T) {
	scores := make(map[string]decimal.Decimal)
	for i := 0; i < 1000; i++ {
		scores[string(rune('a'+i%26))+string(rune('a'+i/26))] = decimal.RequireFromString("0.1")
	}
	assert.Equal(t, "100", Sum(scores).String())
	assert.True(t, Sum(nil).IsZero())
}
