package server

import (
	"math"
	"time"

	"parceldash/internal/geo"
	"parceldash/internal/types"
)

const dateLayout = "2006-01-02"

// RecordDTO is the JSON shape of a table row.
type RecordDTO struct {
	Row            int               `json:"row"`
	Owner          string            `json:"owner"`
	Locality       string            `json:"locality"`
	LocalityCode   *float64          `json:"locality_code,omitempty"`
	PriorSaleDate  string            `json:"prior_sale_date,omitempty"`
	LastSaleDate   string            `json:"last_sale_date,omitempty"`
	PriorSaleYear  *int              `json:"prior_sale_year,omitempty"`
	LastSaleYear   *int              `json:"last_sale_year,omitempty"`
	LastSaleAmount *float64          `json:"last_sale_amount,omitempty"`
	YearBuilt      *int              `json:"year_built,omitempty"`
	Lat            *float64          `json:"lat,omitempty"`
	Lng            *float64          `json:"lng,omitempty"`
	Type           string            `json:"type,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// finite drops values JSON cannot carry.
func finite(p *float64) *float64 {
	if p == nil || math.IsInf(*p, 0) || math.IsNaN(*p) {
		return nil
	}
	return p
}

func toRecordDTO(r *types.Record, withFields bool) RecordDTO {
	d := RecordDTO{
		Row:            r.Row,
		Owner:          r.Owner,
		Locality:       r.Locality,
		LocalityCode:   finite(r.LocalityCode),
		PriorSaleDate:  formatDate(r.PriorSaleDate),
		LastSaleDate:   formatDate(r.LastSaleDate),
		PriorSaleYear:  r.PriorSaleYear,
		LastSaleYear:   r.LastSaleYear,
		LastSaleAmount: finite(r.LastSaleAmount),
		YearBuilt:      r.YearBuilt,
		Type:           r.Type.Code(),
	}
	if p := r.Point(); p.Valid {
		d.Lat, d.Lng = &p.Lat, &p.Lng
	}
	if withFields {
		d.Fields = r.Fields
	}
	return d
}

func toRecordDTOs(records []*types.Record, withFields bool) []RecordDTO {
	out := make([]RecordDTO, len(records))
	for i, r := range records {
		out[i] = toRecordDTO(r, withFields)
	}
	return out
}

// PlacemarkDTO is one map marker.
type PlacemarkDTO struct {
	Lat    float64   `json:"lat"`
	Lng    float64   `json:"lng"`
	Zone   string    `json:"zone,omitempty"`
	Record RecordDTO `json:"record"`
}

func toPlacemarkDTOs(marks []geo.Placemark) []PlacemarkDTO {
	out := make([]PlacemarkDTO, len(marks))
	for i, m := range marks {
		out[i] = PlacemarkDTO{
			Lat:    m.Point.Lat,
			Lng:    m.Point.Lng,
			Zone:   m.Zone,
			Record: toRecordDTO(m.Record, false),
		}
	}
	return out
}

type SessionDTO struct {
	ID      string    `json:"id"`
	Variant string    `json:"variant"`
	Created time.Time `json:"created"`
}

type VariantRequest struct {
	Variant string `json:"variant"`
}

type SchemaDTO struct {
	Variant        string   `json:"variant"`
	OwnerColumn    string   `json:"owner_column"`
	LocalityColumn string   `json:"locality_column"`
	File           string   `json:"file"`
	Columns        []string `json:"columns"`
}

type BoundsDTO struct {
	Field string `json:"field"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	// Known is false when no record has a value.
	Known bool `json:"known"`
}
