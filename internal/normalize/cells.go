package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DateLayout is month/day/year with optional zero padding.
const DateLayout = "1/2/2006"

// StripAnnotation drops everything from the first comma on and trims the
// rest. Cells like "25.5, approx" or "03/14/2019, deed" carry such notes.
func StripAnnotation(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Date parses a month/day/year cell after stripping any annotation.
func Date(s string) *time.Time {
	s = StripAnnotation(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// Year returns the null-propagating year of t.
func Year(t *time.Time) *int {
	if t == nil {
		return nil
	}
	y := t.Year()
	return &y
}

// Number parses a numeric cell after stripping any annotation. NaN is
// treated like a blank cell; infinities are kept and left for callers that
// care about finiteness.
func Number(s string) *float64 {
	s = StripAnnotation(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// Int truncates a numeric cell to an integer. Values that are not finite or
// do not fit an int are nil.
func Int(s string) *int {
	v := Number(s)
	if v == nil || !fitsInt(*v) {
		return nil
	}
	i := int(*v)
	return &i
}

// Currency parses a money amount such as "$350,000" or "1200.50". The comma
// is a thousands separator here, not an annotation marker.
func Currency(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// Text canonicalizes a free text cell: NFKC folding (which also turns
// non-breaking spaces into spaces), trimmed, inner whitespace collapsed.
func Text(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// fitsInt reports whether v truncates to an int without overflow. -MinInt
// is the first float past MaxInt.
func fitsInt(v float64) bool {
	return v >= math.MinInt && v < -math.MinInt
}
