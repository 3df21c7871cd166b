package main

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parceldash/internal/query"
	"parceldash/internal/types"
)

func TestWriteCSV(t *testing.T) {
	rs := &types.RecordSet{
		Variant: types.VariantReduced,
		Columns: []string{"Owner", "Situs City", "Last Sale Amount"},
		Records: []*types.Record{
			{Row: 0, Fields: map[string]string{"Owner": "ACME LLC", "Situs City": "Venice", "Last Sale Amount": "$410,000"}},
			{Row: 1, Fields: map[string]string{"Owner": "LEE ANN", "Situs City": "Nokomis"}},
		},
	}
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, writeCSV(path, rs))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Owner", "Situs City", "Last Sale Amount"},
		{"ACME LLC", "Venice", "$410,000"},
		{"LEE ANN", "Nokomis", ""},
	}, rows)
}

func TestFilterFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addFilterFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--year-min", "2021", "--type", "CORP",
		"--field", "Situs City:Venice|Nokomis", "--field", "Situs Zip Code:34285",
	}))

	vals, err := filterValues(cmd)
	require.NoError(t, err)
	assert.Equal(t, "2021", vals.Get("year_min"))
	assert.Equal(t, "CORP", vals.Get("type"))
	assert.Len(t, vals["field"], 2)
	assert.Empty(t, vals.Get("year_max"))

	spec, err := filterSpec(cmd)
	require.NoError(t, err)
	want := query.FilterSpec{}.
		Years(query.Between(2021, math.MaxInt)).
		Types(types.TypeCorporate).
		Field("Situs City", query.OneOf("Venice", "Nokomis")).
		Field("Situs Zip Code", query.OneOf("34285"))
	assert.Equal(t, want.Key(), spec.Key())
}

func TestFilterFlagsInvalid(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addFilterFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--sale-min", "cheap"}))
	_, err := filterSpec(cmd)
	assert.True(t, types.IsInvalidParameter(err))
}

func TestPredictedType(t *testing.T) {
	code, err := predictedType("")
	require.NoError(t, err)
	assert.Equal(t, query.All, code)

	code, err = predictedType("residential")
	require.NoError(t, err)
	assert.Equal(t, "IND", code)

	code, err = predictedType("CORP")
	require.NoError(t, err)
	assert.Equal(t, "CORP", code)

	_, err = predictedType("bogus")
	assert.True(t, types.IsInvalidParameter(err))
}

func TestRenderRecord(t *testing.T) {
	amount := 350000.0
	sold := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	r := &types.Record{
		Owner:          "SMITH JOHN",
		Locality:       "Palmer Ranch",
		LastSaleDate:   &sold,
		LastSaleAmount: &amount,
		Type:           types.TypeIndividual,
		Fields:         map[string]string{"Situs Zip Code": "34238"},
	}
	out := renderRecord(r, "Neighborhood", nil)
	assert.Contains(t, out, "SMITH JOHN")
	assert.Contains(t, out, "Palmer Ranch")
	assert.Contains(t, out, "2023-01-02")
	assert.Contains(t, out, "$350,000")
	assert.Contains(t, out, "individual")
	assert.Contains(t, out, "cannot determine zoning")
	assert.Contains(t, out, "34238")
}

func TestRecordTableLimit(t *testing.T) {
	rs := &types.RecordSet{Variant: types.VariantLarge}
	for i := 0; i < 5; i++ {
		rs.Records = append(rs.Records, &types.Record{Row: i, Owner: "OWNER"})
	}
	out := recordTable(rs, 2)
	assert.Equal(t, 3, strings.Count(out, "OWNER"), "header plus two rows")
	assert.Equal(t, "5 records, showing the first 2", summaryLine(rs, 2))
	assert.Equal(t, "5 records", summaryLine(rs, 0))
}

func TestPickerWindow(t *testing.T) {
	p := &picker{lines: make([]string, 10), height: 3}
	from, to := p.window()
	assert.Equal(t, [2]int{0, 3}, [2]int{from, to})

	for p.down() {
	}
	assert.Equal(t, 9, p.selected)
	from, to = p.window()
	assert.Equal(t, [2]int{7, 10}, [2]int{from, to})

	assert.True(t, p.up())
	from, _ = p.window()
	assert.Equal(t, 7, from)

	p.selected = 0
	assert.False(t, p.up())
	from, to = p.window()
	assert.Equal(t, [2]int{0, 3}, [2]int{from, to})
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "-", formatMoney(nil))
	big := 1200000.4
	assert.Equal(t, "$1,200,000", formatMoney(&big))
	assert.Equal(t, "-", formatInt(nil))
	assert.Equal(t, "abc…", truncate("abcdef", 4))
	assert.Equal(t, "abc", truncate("abc", 4))
}
