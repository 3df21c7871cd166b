package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"parceldash/internal/types"
)

// ParseSubtype maps the property subtype names offered by the dashboard to
// a PropertyType. Residential parcels are owned by individuals.
func ParseSubtype(s string) (types.PropertyType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ind", "individual", "residential":
		return types.TypeIndividual, true
	case "corp", "corporate", "corporation":
		return types.TypeCorporate, true
	}
	return types.TypeUnknown, false
}

// FromValues builds a FilterSpec from request parameters:
//
//	year_min, year_max      prior sale year range
//	sale_min, sale_max      last sale amount range
//	code_min, code_max      numeric locality range
//	owner, owners           one owner, or a |-separated allow-list
//	locality, localities    likewise for the locality column
//	type                    comma list of IND, CORP, individual, corporate, residential
//	field                   repeated column:value, value may be |-separated
//	require                 comma list of field names that must be present
//	near_lat, near_lng, radius
//
// A missing range bound is open. Empty values and "All" leave a predicate
// unset.
func FromValues(vals url.Values) (FilterSpec, error) {
	var spec FilterSpec

	for _, r := range []struct {
		min, max string
		set      func(FilterSpec, Range) FilterSpec
	}{
		{"year_min", "year_max", FilterSpec.Years},
		{"sale_min", "sale_max", FilterSpec.SaleAmount},
		{"code_min", "code_max", FilterSpec.LocalityCode},
	} {
		lo, hi, set, err := rangeParams(vals, r.min, r.max)
		if err != nil {
			return FilterSpec{}, err
		}
		if set {
			spec = r.set(spec, Between(lo, hi))
		}
	}

	if m, ok := matchParams(vals, "owner", "owners"); ok {
		spec = spec.Owner(m)
	}
	if m, ok := matchParams(vals, "locality", "localities"); ok {
		spec = spec.Locality(m)
	}

	if s := vals.Get("type"); s != "" && s != All {
		var ts []types.PropertyType
		for _, part := range strings.Split(s, ",") {
			t, ok := ParseSubtype(part)
			if !ok {
				return FilterSpec{}, types.NewInvalidParameter("type", part)
			}
			ts = append(ts, t)
		}
		spec = spec.Types(ts...)
	}

	for _, fv := range vals["field"] {
		col, val, ok := strings.Cut(fv, ":")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return FilterSpec{}, types.NewInvalidParameter("field", fv)
		}
		spec = spec.Field(col, OneOf(strings.Split(val, "|")...))
	}

	if s := vals.Get("require"); s != "" {
		var fs []types.Field
		for _, part := range strings.Split(s, ",") {
			f, ok := types.ParseField(strings.TrimSpace(part))
			if !ok {
				return FilterSpec{}, types.NewInvalidParameter("require", part)
			}
			fs = append(fs, f)
		}
		spec = spec.Require(fs...)
	}

	near, ok, err := nearParams(vals)
	if err != nil {
		return FilterSpec{}, err
	}
	if ok {
		spec = spec.Within(near)
	}
	return spec, nil
}

func rangeParams(vals url.Values, minKey, maxKey string) (lo, hi int, set bool, err error) {
	lo, hi = math.MinInt, math.MaxInt
	if s := vals.Get(minKey); s != "" {
		if lo, err = strconv.Atoi(s); err != nil {
			return 0, 0, false, types.NewInvalidParameter(minKey, s)
		}
		set = true
	}
	if s := vals.Get(maxKey); s != "" {
		if hi, err = strconv.Atoi(s); err != nil {
			return 0, 0, false, types.NewInvalidParameter(maxKey, s)
		}
		set = true
	}
	return lo, hi, set, nil
}

func matchParams(vals url.Values, one, many string) (Match, bool) {
	if s := vals.Get(many); s != "" {
		return OneOf(strings.Split(s, "|")...), true
	}
	if s := vals.Get(one); s != "" && s != All {
		return Equals(s), true
	}
	return Match{}, false
}

func nearParams(vals url.Values) (Near, bool, error) {
	keys := []string{"near_lat", "near_lng", "radius"}
	var out [3]float64
	given := 0
	for i, k := range keys {
		s := vals.Get(k)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Near{}, false, types.NewInvalidParameter(k, s)
		}
		out[i] = v
		given++
	}
	switch given {
	case 0:
		return Near{}, false, nil
	case len(keys):
		return Near{Lat: out[0], Lng: out[1], Miles: out[2]}, true, nil
	}
	return Near{}, false, types.NewInvalidParameter("near", "near_lat, near_lng and radius go together")
}
