// Package query filters a normalized RecordSet with a FilterSpec.
package query

import (
	"slices"

	"parceldash/internal/schema"
	"parceldash/internal/types"
)

// Run returns the records of rs that satisfy every predicate in spec, in
// their original order. cols must be the resolved columns of rs's variant.
// An inverted range is not an error: it simply matches nothing.
func Run(rs *types.RecordSet, cols schema.Columns, spec FilterSpec) (*types.RecordSet, error) {
	if err := check(rs, cols, spec); err != nil {
		return nil, err
	}

	out := make([]*types.Record, 0, rs.Len())
	for _, rec := range rs.Records {
		if spec.matches(rec) {
			out = append(out, rec)
		}
	}
	return rs.Derive(slices.Clip(out)), nil
}

// check verifies that every column the spec depends on exists for rs.
func check(rs *types.RecordSet, cols schema.Columns, spec FilterSpec) error {
	if cols.Variant != rs.Variant {
		// Columns resolved for another variant: whichever column the caller
		// meant is not part of this dataset.
		return types.NewSchemaMismatch(cols.Owner, rs.Variant)
	}
	if spec.owner.IsSet() && !rs.HasColumn(cols.Owner) {
		return types.NewSchemaMismatch(cols.Owner, rs.Variant)
	}
	if (spec.locality.IsSet() || spec.localityCode.IsSet()) && !rs.HasColumn(cols.Locality) {
		return types.NewSchemaMismatch(cols.Locality, rs.Variant)
	}
	for _, fm := range spec.fields {
		if fm.Match.IsSet() && !rs.HasColumn(fm.Column) {
			return types.NewSchemaMismatch(fm.Column, rs.Variant)
		}
	}
	return nil
}

func (f FilterSpec) matches(r *types.Record) bool {
	if f.years.IsSet() {
		if r.PriorSaleYear == nil || !f.years.containsInt(*r.PriorSaleYear) {
			return false
		}
	}
	if f.saleAmount.IsSet() {
		if r.LastSaleAmount == nil || !f.saleAmount.containsNumber(*r.LastSaleAmount) {
			return false
		}
	}
	if f.localityCode.IsSet() {
		if r.LocalityCode == nil || !f.localityCode.containsNumber(*r.LocalityCode) {
			return false
		}
	}
	if !f.owner.accepts(r.Owner) || !f.locality.accepts(r.Locality) {
		return false
	}
	if len(f.propTypes) > 0 && !slices.Contains(f.propTypes, r.Type) {
		return false
	}
	for _, fm := range f.fields {
		if !fm.Match.accepts(r.Fields[fm.Column]) {
			return false
		}
	}
	for _, req := range f.require {
		if !r.Present(req) {
			return false
		}
	}
	if f.near != nil {
		p := r.Point()
		if !p.Valid || DistanceMiles(f.near.Lat, f.near.Lng, p.Lat, p.Lng) > f.near.Miles {
			return false
		}
	}
	return true
}
