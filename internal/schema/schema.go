// Package schema maps each dataset variant to the column names it uses for
// concepts that the two spreadsheets name differently.
package schema

import (
	"strings"

	"parceldash/internal/types"
)

// Column names shared by both datasets.
const (
	ColPriorSaleDate  = "Prior Sale Date"
	ColLastSaleDate   = "Last Sale Date"
	ColLastSaleAmount = "Last Sale Amount"
	ColYearBuilt      = "Year Built"
	ColLatitude       = "lat"
	ColLongitude      = "lng"
	ColType           = "Type"
	ColSitusCity      = "Situs City"
	ColSitusZip       = "Situs Zip Code"
)

// Columns holds the resolved owner and locality column names for one variant.
type Columns struct {
	Variant  types.Variant
	Owner    string
	Locality string
	// File is the spreadsheet the variant has historically been shipped as.
	File string
}

var table = map[types.Variant]Columns{
	types.VariantLarge: {
		Variant:  types.VariantLarge,
		Owner:    "Owner 1",
		Locality: "Neighborhood",
		File:     "merged_df.xlsx",
	},
	types.VariantReduced: {
		Variant:  types.VariantReduced,
		Owner:    "Owner",
		Locality: ColSitusCity,
		File:     "all_2024_details.xlsx",
	},
}

// Resolve returns the column names for v.
func Resolve(v types.Variant) (Columns, error) {
	cols, ok := table[v]
	if !ok {
		return Columns{}, types.NewUnknownVariant(v.String())
	}
	return cols, nil
}

// Parse turns a user supplied dataset identifier into a Variant. It accepts
// the variant names and the historical spreadsheet file names.
func Parse(id string) (types.Variant, error) {
	s := strings.ToLower(strings.TrimSpace(id))
	for v, cols := range table {
		if s == v.String() || s == strings.ToLower(cols.File) {
			return v, nil
		}
	}
	return 0, types.NewUnknownVariant(id)
}

// Variants lists the known variants in a stable order.
func Variants() []types.Variant {
	return []types.Variant{types.VariantLarge, types.VariantReduced}
}
