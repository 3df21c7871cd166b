package types

import (
	"math"
	"time"
)

// PropertyType classifies the buyer on a transaction.
type PropertyType int

const (
	TypeUnknown PropertyType = iota
	TypeIndividual
	TypeCorporate
)

// ParsePropertyType maps the dataset's Type codes (IND, CORP) to a PropertyType.
// Anything else is TypeUnknown.
func ParsePropertyType(code string) PropertyType {
	switch code {
	case "IND":
		return TypeIndividual
	case "CORP":
		return TypeCorporate
	}
	return TypeUnknown
}

// Code returns the dataset code for t, or "" for TypeUnknown.
func (t PropertyType) Code() string {
	switch t {
	case TypeIndividual:
		return "IND"
	case TypeCorporate:
		return "CORP"
	}
	return ""
}

func (t PropertyType) String() string {
	switch t {
	case TypeIndividual:
		return "individual"
	case TypeCorporate:
		return "corporate"
	}
	return "unknown"
}

// Field names a typed attribute of a Record. Rules, predicates and summaries
// refer to attributes through it.
type Field int

const (
	FieldOwner Field = iota + 1
	FieldLocality
	FieldLocalityCode
	FieldPriorSaleDate
	FieldLastSaleDate
	FieldPriorSaleYear
	FieldLastSaleYear
	FieldLastSaleAmount
	FieldYearBuilt
	FieldLatitude
	FieldLongitude
	FieldType
)

var fieldNames = map[Field]string{
	FieldOwner:          "owner",
	FieldLocality:       "locality",
	FieldLocalityCode:   "locality_code",
	FieldPriorSaleDate:  "prior_sale_date",
	FieldLastSaleDate:   "last_sale_date",
	FieldPriorSaleYear:  "prior_sale_year",
	FieldLastSaleYear:   "last_sale_year",
	FieldLastSaleAmount: "last_sale_amount",
	FieldYearBuilt:      "year_built",
	FieldLatitude:       "lat",
	FieldLongitude:      "lng",
	FieldType:           "type",
}

func (f Field) String() string {
	if s, ok := fieldNames[f]; ok {
		return s
	}
	return "field(?)"
}

// ParseField is the inverse of Field.String.
func ParseField(s string) (Field, bool) {
	for f, name := range fieldNames {
		if name == s {
			return f, true
		}
	}
	return 0, false
}

// Record is one normalized real-estate transaction. Nullable attributes are
// pointers; a nil value means the source cell was missing or malformed.
// Records are built once by the normalizer and never modified afterwards.
type Record struct {
	Row int // index of the source row in the raw table

	Owner        string
	Locality     string
	LocalityCode *float64

	PriorSaleDate *time.Time
	LastSaleDate  *time.Time
	PriorSaleYear *int
	LastSaleYear  *int

	LastSaleAmount *float64
	YearBuilt      *int

	Latitude  *float64
	Longitude *float64

	Type PropertyType

	// Fields keeps every raw cell of the source row keyed by column name.
	Fields map[string]string
}

// Present reports whether the typed field f holds a value.
func (r *Record) Present(f Field) bool {
	switch f {
	case FieldOwner:
		return r.Owner != ""
	case FieldLocality:
		return r.Locality != ""
	case FieldLocalityCode:
		return r.LocalityCode != nil
	case FieldPriorSaleDate:
		return r.PriorSaleDate != nil
	case FieldLastSaleDate:
		return r.LastSaleDate != nil
	case FieldPriorSaleYear:
		return r.PriorSaleYear != nil
	case FieldLastSaleYear:
		return r.LastSaleYear != nil
	case FieldLastSaleAmount:
		return r.LastSaleAmount != nil
	case FieldYearBuilt:
		return r.YearBuilt != nil
	case FieldLatitude:
		return r.Latitude != nil
	case FieldLongitude:
		return r.Longitude != nil
	case FieldType:
		return r.Type != TypeUnknown
	}
	return false
}

// Number returns the numeric value of f, if f is numeric and set.
func (r *Record) Number(f Field) (float64, bool) {
	switch f {
	case FieldLocalityCode:
		return deref(r.LocalityCode)
	case FieldPriorSaleYear:
		return derefInt(r.PriorSaleYear)
	case FieldLastSaleYear:
		return derefInt(r.LastSaleYear)
	case FieldLastSaleAmount:
		return deref(r.LastSaleAmount)
	case FieldYearBuilt:
		return derefInt(r.YearBuilt)
	case FieldLatitude:
		return deref(r.Latitude)
	case FieldLongitude:
		return deref(r.Longitude)
	}
	return 0, false
}

// Text returns the string value of f for the text-valued fields.
func (r *Record) Text(f Field) (string, bool) {
	switch f {
	case FieldOwner:
		return r.Owner, true
	case FieldLocality:
		return r.Locality, true
	case FieldType:
		return r.Type.Code(), true
	}
	return "", false
}

// Point returns the record's coordinates as a GeoPoint.
func (r *Record) Point() GeoPoint {
	p := GeoPoint{}
	if r.Latitude != nil {
		p.Lat = *r.Latitude
	}
	if r.Longitude != nil {
		p.Lng = *r.Longitude
	}
	p.Valid = r.Latitude != nil && r.Longitude != nil &&
		finite(*r.Latitude) && finite(*r.Longitude)
	return p
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func derefInt(p *int) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return float64(*p), true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// GeoPoint is a latitude/longitude pair. Valid is false when either
// coordinate is missing or not a finite number.
type GeoPoint struct {
	Lat   float64
	Lng   float64
	Valid bool
}

// RecordSet is an ordered, read-only collection of records that came out of
// one normalizer pass over one dataset variant.
type RecordSet struct {
	Variant Variant
	Columns []string // raw header the records were normalized from
	Records []*Record
}

// Len returns the number of records.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Records)
}

// HasColumn reports whether the raw header contained name.
func (rs *RecordSet) HasColumn(name string) bool {
	for _, c := range rs.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Derive returns a set sharing rs's variant and header with the given records.
func (rs *RecordSet) Derive(records []*Record) *RecordSet {
	return &RecordSet{Variant: rs.Variant, Columns: rs.Columns, Records: records}
}
