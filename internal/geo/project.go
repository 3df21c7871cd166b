// Package geo projects record coordinates into map points.
package geo

import (
	"math/rand"
	"slices"

	"parceldash/internal/types"
)

// Placemark is a valid map point together with the record it came from.
type Placemark struct {
	Point  types.GeoPoint
	Record *types.Record
	// Zone is the zoning code under the point, when a ZoneIndex was given.
	Zone string
}

// Project returns one GeoPoint per record, in order. Invalid points are kept
// with Valid == false so the result stays parallel to rs.
func Project(rs *types.RecordSet) []types.GeoPoint {
	out := make([]types.GeoPoint, rs.Len())
	for i, r := range rs.Records {
		out[i] = r.Point()
	}
	return out
}

// Placemarks returns only the records with a valid point. zones may be nil.
func Placemarks(rs *types.RecordSet, zones *ZoneIndex) []Placemark {
	out := make([]Placemark, 0, rs.Len())
	for _, r := range rs.Records {
		p := r.Point()
		if !p.Valid {
			continue
		}
		pm := Placemark{Point: p, Record: r}
		if zones != nil {
			pm.Zone = zones.Zone(p.Lat, p.Lng)
		}
		out = append(out, pm)
	}
	return out
}

// Sample keeps round(fraction * n) records chosen by a PRNG seeded with seed,
// preserving input order. The same input, fraction and seed always give the
// same sample. fraction >= 1 returns rs; fraction <= 0 or NaN returns an empty set.
func Sample(rs *types.RecordSet, fraction float64, seed int64) *types.RecordSet {
	n := rs.Len()
	if fraction >= 1 {
		return rs
	}
	if !(fraction > 0) {
		return rs.Derive([]*types.Record{})
	}
	k := int(fraction*float64(n) + 0.5)
	if k <= 0 {
		return rs.Derive([]*types.Record{})
	}

	rng := rand.New(rand.NewSource(seed))
	picked := rng.Perm(n)[:k]
	slices.Sort(picked)

	out := make([]*types.Record, k)
	for i, idx := range picked {
		out[i] = rs.Records[idx]
	}
	return rs.Derive(out)
}
