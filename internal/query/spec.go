package query

import (
	"fmt"
	"slices"
	"strings"

	"parceldash/internal/types"
)

// FilterSpec is a set of optional predicates combined with AND. It is a
// value type: builder methods return modified copies.
type FilterSpec struct {
	years        Range
	saleAmount   Range
	localityCode Range
	owner        Match
	locality     Match
	propTypes    []types.PropertyType
	fields       []FieldMatch
	require      []types.Field
	near         *Near
}

// Years bounds the prior-sale year.
func (f FilterSpec) Years(r Range) FilterSpec {
	f.years = r
	return f
}

// SaleAmount bounds the last sale amount.
func (f FilterSpec) SaleAmount(r Range) FilterSpec {
	f.saleAmount = r
	return f
}

// LocalityCode bounds the numeric value of the locality column.
func (f FilterSpec) LocalityCode(r Range) FilterSpec {
	f.localityCode = r
	return f
}

// Owner restricts the owner column.
func (f FilterSpec) Owner(m Match) FilterSpec {
	f.owner = m
	return f
}

// Locality restricts the locality column.
func (f FilterSpec) Locality(m Match) FilterSpec {
	f.locality = m
	return f
}

// Types restricts the property type to the given set.
func (f FilterSpec) Types(ts ...types.PropertyType) FilterSpec {
	f.propTypes = append([]types.PropertyType(nil), ts...)
	return f
}

// Field adds a passthrough column restriction.
func (f FilterSpec) Field(column string, m Match) FilterSpec {
	f.fields = append(slices.Clip(f.fields), FieldMatch{Column: column, Match: m})
	return f
}

// Require drops records where any of fs is null.
func (f FilterSpec) Require(fs ...types.Field) FilterSpec {
	f.require = append(slices.Clip(f.require), fs...)
	return f
}

// Within keeps records inside a radius.
func (f FilterSpec) Within(n Near) FilterSpec {
	f.near = &n
	return f
}

// YearRange returns the prior-sale-year bound.
func (f FilterSpec) YearRange() Range { return f.years }

// SaleAmountRange returns the last-sale-amount bound.
func (f FilterSpec) SaleAmountRange() Range { return f.saleAmount }

// OwnerMatch returns the owner restriction.
func (f FilterSpec) OwnerMatch() Match { return f.owner }

// LocalityMatch returns the locality restriction.
func (f FilterSpec) LocalityMatch() Match { return f.locality }

// Key is a canonical encoding of the spec. Equal specs produce equal keys
// regardless of the order allow-lists were given in.
func (f FilterSpec) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "years=%s;sale=%s;code=%s;owner=%s;locality=%s;types=%s",
		f.years.key(), f.saleAmount.key(), f.localityCode.key(),
		f.owner.key(), f.locality.key(), typesKey(f.propTypes))

	fields := make([]string, 0, len(f.fields))
	for _, fm := range f.fields {
		fields = append(fields, fmt.Sprintf("%q=%s", fm.Column, fm.Match.key()))
	}
	slices.Sort(fields)
	fmt.Fprintf(&b, ";fields=[%s]", strings.Join(fields, ","))

	req := make([]string, 0, len(f.require))
	for _, r := range f.require {
		req = append(req, r.String())
	}
	slices.Sort(req)
	req = slices.Compact(req)
	fmt.Fprintf(&b, ";require=[%s]", strings.Join(req, ","))

	if f.near != nil {
		fmt.Fprintf(&b, ";near=%g,%g,%g", f.near.Lat, f.near.Lng, f.near.Miles)
	}
	return b.String()
}
