// Package normalize turns a raw table into a typed RecordSet. Malformed cells
// degrade to nil; the only failure is a rule naming a column the table lacks.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"

	"parceldash/internal/schema"
	"parceldash/internal/types"
)

// Rule copies one raw column into one typed Record field. The parse applied
// follows from the field: dates for sale dates, currency for the sale
// amount, numbers for year built and coordinates, text for owner/locality.
type Rule struct {
	Column string
	Field  types.Field
}

func (r Rule) apply(raw string, rec *types.Record) {
	switch r.Field {
	case types.FieldOwner:
		rec.Owner = Text(raw)
	case types.FieldLocality:
		rec.Locality = Text(raw)
		rec.LocalityCode = Number(raw)
	case types.FieldLocalityCode:
		rec.LocalityCode = Number(raw)
	case types.FieldPriorSaleDate:
		rec.PriorSaleDate = Date(raw)
		rec.PriorSaleYear = Year(rec.PriorSaleDate)
	case types.FieldLastSaleDate:
		rec.LastSaleDate = Date(raw)
		rec.LastSaleYear = Year(rec.LastSaleDate)
	case types.FieldLastSaleAmount:
		rec.LastSaleAmount = Currency(raw)
	case types.FieldYearBuilt:
		rec.YearBuilt = Int(raw)
	case types.FieldLatitude:
		rec.Latitude = Number(raw)
	case types.FieldLongitude:
		rec.Longitude = Number(raw)
	case types.FieldType:
		rec.Type = types.ParsePropertyType(strings.ToUpper(strings.TrimSpace(raw)))
	}
}

// supported reports whether the rule targets a field that has a raw column.
// The derived year fields are filled by the date rules.
func (r Rule) supported() bool {
	switch r.Field {
	case types.FieldPriorSaleYear, types.FieldLastSaleYear:
		return false
	}
	_, ok := types.ParseField(r.Field.String())
	return ok
}

// DefaultRules is the standard rule list for a variant's columns.
func DefaultRules(cols schema.Columns) []Rule {
	return []Rule{
		{Column: cols.Owner, Field: types.FieldOwner},
		{Column: cols.Locality, Field: types.FieldLocality},
		{Column: schema.ColPriorSaleDate, Field: types.FieldPriorSaleDate},
		{Column: schema.ColLastSaleDate, Field: types.FieldLastSaleDate},
		{Column: schema.ColLastSaleAmount, Field: types.FieldLastSaleAmount},
		{Column: schema.ColYearBuilt, Field: types.FieldYearBuilt},
		{Column: schema.ColLatitude, Field: types.FieldLatitude},
		{Column: schema.ColLongitude, Field: types.FieldLongitude},
		{Column: schema.ColType, Field: types.FieldType},
	}
}

// Normalizer applies an ordered list of rules to every row of a raw table.
type Normalizer struct {
	Rules  []Rule
	Logger *slog.Logger
}

// New returns a Normalizer with the default rules for v.
func New(v types.Variant, logger *slog.Logger) (*Normalizer, error) {
	cols, err := schema.Resolve(v)
	if err != nil {
		return nil, err
	}
	return &Normalizer{Rules: DefaultRules(cols), Logger: logger}, nil
}

// Normalize builds one Record per raw row, in order. The raw table is not
// modified.
func (n *Normalizer) Normalize(raw *types.RawTable, v types.Variant) (*types.RecordSet, error) {
	idx := make([]int, len(n.Rules))
	for i, r := range n.Rules {
		if !r.supported() {
			return nil, fmt.Errorf("normalize: rule for column %q targets unsupported field %s", r.Column, r.Field)
		}
		idx[i] = raw.Index(r.Column)
		if idx[i] < 0 {
			return nil, types.NewSchemaMismatch(r.Column, v)
		}
	}

	records := make([]*types.Record, raw.Len())
	degraded := 0
	for i := range raw.Rows {
		rec := &types.Record{Row: i, Fields: make(map[string]string, len(raw.Columns))}
		for j, c := range raw.Columns {
			rec.Fields[c] = strings.TrimSpace(raw.Cell(i, j))
		}
		for k, r := range n.Rules {
			cell := raw.Cell(i, idx[k])
			r.apply(cell, rec)
			if strings.TrimSpace(cell) != "" && !rec.Present(r.Field) {
				degraded++
			}
		}
		records[i] = rec
	}

	if n.Logger != nil {
		n.Logger.Debug("normalized table",
			"variant", v.String(),
			"rows", len(records),
			"degraded_cells", degraded,
		)
	}

	return &types.RecordSet{
		Variant: v,
		Columns: append([]string(nil), raw.Columns...),
		Records: records,
	}, nil
}
