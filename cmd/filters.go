package main

import (
	"net/url"

	"github.com/spf13/cobra"

	"parceldash/internal/query"
)

// filterParams maps command flags onto the query parameters the API takes,
// so the terminal and HTTP surfaces parse filters the same way.
var filterParams = []struct {
	flag, param, usage string
}{
	{"year-min", "year_min", "earliest prior sale year"},
	{"year-max", "year_max", "latest prior sale year"},
	{"sale-min", "sale_min", "lowest last sale amount"},
	{"sale-max", "sale_max", "highest last sale amount"},
	{"code-min", "code_min", "lowest neighborhood code"},
	{"code-max", "code_max", "highest neighborhood code"},
	{"owner", "owner", "exact owner name, or All"},
	{"owners", "owners", "|-separated owner allow-list"},
	{"locality", "locality", "neighborhood or city, or All"},
	{"localities", "localities", "|-separated locality allow-list"},
	{"type", "type", "comma list of IND, CORP"},
	{"require", "require", "comma list of fields that must be present (lat,lng,...)"},
	{"near-lat", "near_lat", "latitude of the search center"},
	{"near-lng", "near_lng", "longitude of the search center"},
	{"radius", "radius", "search radius in miles"},
}

func addFilterFlags(cmd *cobra.Command) {
	for _, p := range filterParams {
		cmd.Flags().String(p.flag, "", p.usage)
	}
	cmd.Flags().StringArray("field", nil, "column:value filter on any column, repeatable")
	cmd.Flags().StringP("variant", "v", "", "dataset variant: large or reduced")
}

func filterValues(cmd *cobra.Command) (url.Values, error) {
	vals := url.Values{}
	for _, p := range filterParams {
		s, err := cmd.Flags().GetString(p.flag)
		if err != nil {
			return nil, err
		}
		if s != "" {
			vals.Set(p.param, s)
		}
	}
	fields, err := cmd.Flags().GetStringArray("field")
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		vals.Add("field", f)
	}
	return vals, nil
}

func filterSpec(cmd *cobra.Command) (query.FilterSpec, error) {
	vals, err := filterValues(cmd)
	if err != nil {
		return query.FilterSpec{}, err
	}
	return query.FromValues(vals)
}
