package query

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"parceldash/internal/types"
)

// All is the select-box sentinel that matches every value.
const All = "All"

// Range is an inclusive integer bound. The zero Range is unset and matches
// everything.
type Range struct {
	lo, hi int
	set    bool
}

// Between returns the inclusive range [lo, hi]. lo > hi is allowed and
// matches nothing.
func Between(lo, hi int) Range {
	return Range{lo: lo, hi: hi, set: true}
}

// IsSet reports whether the range constrains anything.
func (r Range) IsSet() bool { return r.set }

// Bounds returns the range's bounds.
func (r Range) Bounds() (lo, hi int) { return r.lo, r.hi }

// containsInt checks an integer attribute.
func (r Range) containsInt(v int) bool {
	return v >= r.lo && v <= r.hi
}

// containsNumber applies integer-range membership to a float attribute:
// only integral values inside the bounds match.
func (r Range) containsNumber(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return false
	}
	return v >= float64(r.lo) && v <= float64(r.hi)
}

func (r Range) key() string {
	if !r.set {
		return "*"
	}
	return fmt.Sprintf("%d..%d", r.lo, r.hi)
}

// Match accepts a value equal to one of an allow-list. The zero Match and
// any Match containing All pass every value.
type Match struct {
	values []string
}

// Equals matches exactly v.
func Equals(v string) Match {
	return Match{values: []string{v}}
}

// OneOf matches any of vs.
func OneOf(vs ...string) Match {
	return Match{values: append([]string(nil), vs...)}
}

// IsSet reports whether the match constrains anything.
func (m Match) IsSet() bool {
	return len(m.values) > 0 && !slices.Contains(m.values, All)
}

// Values returns a copy of the allow-list.
func (m Match) Values() []string {
	return append([]string(nil), m.values...)
}

func (m Match) accepts(v string) bool {
	return !m.IsSet() || slices.Contains(m.values, v)
}

func (m Match) key() string {
	if !m.IsSet() {
		return "*"
	}
	vs := append([]string(nil), m.values...)
	slices.Sort(vs)
	return fmt.Sprintf("%q", vs)
}

// FieldMatch filters on a passthrough column of the raw table, such as the
// county/township column.
type FieldMatch struct {
	Column string
	Match  Match
}

// Near keeps records within Miles of a point.
type Near struct {
	Lat, Lng float64
	Miles    float64
}

// IndividualOrCorporate is the property-type filter used for buyer listings.
var IndividualOrCorporate = []types.PropertyType{types.TypeIndividual, types.TypeCorporate}

func typesKey(ts []types.PropertyType) string {
	if len(ts) == 0 {
		return "*"
	}
	codes := make([]string, len(ts))
	for i, t := range ts {
		codes[i] = t.String()
	}
	slices.Sort(codes)
	return strings.Join(codes, ",")
}
