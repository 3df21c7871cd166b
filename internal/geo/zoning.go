package geo

import (
	"fmt"
	"math"
	"strings"

	shp "github.com/jonas-p/go-shp"
)

// zoningFeature is one polygon (possibly multi-part) from a zoning shapefile
// together with its attribute row.
type zoningFeature struct {
	Parts [][][2]float64 // each part is a closed ring of [y, x] points
	Attrs map[string]string
	MinY  float64
	MinX  float64
	MaxY  float64
	MaxX  float64
}

// ZoneIndex answers "which zoning district contains this point". Shapefiles
// in a projected CRS need Projection set to convert lat/lng into the
// shapefile's (y, x) units.
type ZoneIndex struct {
	features   []zoningFeature
	Projection func(lat, lng float64) (y, x float64)
	// CodeFields are tried in order to pick the zoning code from the
	// attribute row.
	CodeFields []string
}

// DefaultCodeFields are the attribute names zoning layers commonly use.
var DefaultCodeFields = []string{"ZONING", "BASE_ZONIN"}

// LoadZoning reads every shapefile in paths into one index. Later layers
// (overlay districts) are searched after the base layer.
func LoadZoning(paths ...string) (*ZoneIndex, error) {
	idx := &ZoneIndex{CodeFields: DefaultCodeFields}
	for _, p := range paths {
		feats, err := loadZoningShapefile(p)
		if err != nil {
			return nil, fmt.Errorf("load zoning shapefile %s: %w", p, err)
		}
		idx.features = append(idx.features, feats...)
	}
	return idx, nil
}

// Len returns the number of polygons in the index.
func (z *ZoneIndex) Len() int {
	return len(z.features)
}

func loadZoningShapefile(path string) ([]zoningFeature, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	fields := r.Fields()

	var features []zoningFeature
	for r.Next() {
		n, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}

		numParts := len(poly.Parts)
		parts := make([][][2]float64, numParts)
		minY, minX := math.MaxFloat64, math.MaxFloat64
		maxY, maxX := -math.MaxFloat64, -math.MaxFloat64

		for partIdx := 0; partIdx < numParts; partIdx++ {
			start := poly.Parts[partIdx]
			end := int32(len(poly.Points))
			if partIdx+1 < numParts {
				end = poly.Parts[partIdx+1]
			}
			ring := make([][2]float64, 0, int(end-start))
			for i := start; i < end; i++ {
				pt := poly.Points[i]
				ring = append(ring, [2]float64{pt.Y, pt.X})
				minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
				minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
			}
			parts[partIdx] = ring
		}

		attrs := make(map[string]string, len(fields))
		for i, f := range fields {
			attrs[f.String()] = strings.TrimSpace(r.ReadAttribute(n, i))
		}

		features = append(features, zoningFeature{
			Parts: parts,
			Attrs: attrs,
			MinY:  minY,
			MinX:  minX,
			MaxY:  maxY,
			MaxX:  maxX,
		})
	}
	return features, nil
}

// Attributes returns the attribute row of the first polygon containing the
// point.
func (z *ZoneIndex) Attributes(lat, lng float64) (map[string]string, bool) {
	y, x := lat, lng
	if z.Projection != nil {
		y, x = z.Projection(lat, lng)
	}
	for _, f := range z.features {
		if y < f.MinY || y > f.MaxY || x < f.MinX || x > f.MaxX {
			continue
		}
		for _, ring := range f.Parts {
			if pointInPolygon(y, x, ring) {
				return f.Attrs, true
			}
		}
	}
	return nil, false
}

// Zone returns the zoning code at the point, or "" when no polygon matches
// or the polygon has no code.
func (z *ZoneIndex) Zone(lat, lng float64) string {
	attrs, ok := z.Attributes(lat, lng)
	if !ok {
		return ""
	}
	for _, f := range z.CodeFields {
		if v := attrs[f]; v != "" {
			return v
		}
	}
	return ""
}

// pointInPolygon is the ray casting test. Shapefile rings are closed, but
// the test does not depend on it.
func pointInPolygon(y, x float64, ring [][2]float64) bool {
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		yi, xi := ring[i][0], ring[i][1]
		yj, xj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}
