package evaluation

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ScorePlaces is the number of fractional digits kept for every score.
const ScorePlaces = 2

// MaxScore is the largest magnitude a single score column can hold.
var MaxScore = decimal.RequireFromString("999.99")

// numericPrefix matches the leading decimal literal of a string, the same
// prefix a lenient float parser would consume.
var numericPrefix = regexp.MustCompile(`^([+-]?)(\d*)(?:\.(\d*))?(?:[eE]([+-]?\d{1,4}))?`)

// ParseScore turns submitted text into a score. It never fails: missing,
// empty, unparseable or out-of-range input counts as 0. When the text starts
// with a number followed by junk ("3abc") the numeric prefix is used.
// Results are rounded half away from zero to ScorePlaces digits.
func ParseScore(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	m := numericPrefix.FindStringSubmatch(s)
	if m == nil || (m[2] == "" && m[3] == "") {
		return decimal.Zero
	}

	sign, whole, frac, exp := m[1], m[2], m[3], m[4]
	if whole == "" {
		whole = "0"
	}
	lit := sign + whole
	if frac != "" {
		lit += "." + frac
	}
	if exp != "" {
		lit += "e" + exp
	}

	d, err := decimal.NewFromString(lit)
	if err != nil {
		return decimal.Zero
	}
	d = d.Round(ScorePlaces)
	if d.Abs().GreaterThan(MaxScore) {
		return decimal.Zero
	}
	return d
}

// Sum adds scores exactly.
func Sum(scores map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range scores {
		total = total.Add(v)
	}
	return total
}
