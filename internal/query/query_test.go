package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parceldash/internal/schema"
	"parceldash/internal/types"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func largeCols(t *testing.T) schema.Columns {
	t.Helper()
	cols, err := schema.Resolve(types.VariantLarge)
	require.NoError(t, err)
	return cols
}

func sampleSet() *types.RecordSet {
	return &types.RecordSet{
		Variant: types.VariantLarge,
		Columns: []string{"Owner 1", "Neighborhood", "Prior Sale Date", "Last Sale Amount", "Situs City", "lat", "lng", "Type"},
		Records: []*types.Record{
			{Row: 0, Owner: "SMITH JOHN", Locality: "Palmer Ranch", PriorSaleYear: intp(2020), LastSaleAmount: floatp(5000),
				Latitude: floatp(27.27), Longitude: floatp(-82.45), Type: types.TypeIndividual,
				Fields: map[string]string{"Situs City": "Sarasota"}},
			{Row: 1, Owner: "ACME LLC", Locality: "12", LocalityCode: floatp(12), PriorSaleYear: intp(2022), LastSaleAmount: floatp(7500.5),
				Latitude: floatp(27.10), Longitude: floatp(-82.44), Type: types.TypeCorporate,
				Fields: map[string]string{"Situs City": "Venice"}},
			{Row: 2, Owner: "DOE JANE", Locality: "Gulf Gate", LastSaleAmount: floatp(9000),
				Type: types.TypeUnknown, Fields: map[string]string{"Situs City": "Sarasota"}},
			{Row: 3, Owner: "ACME LLC", Locality: "3000", LocalityCode: floatp(3000), PriorSaleYear: intp(2024),
				Latitude: floatp(30.0), Longitude: floatp(-81.0), Type: types.TypeCorporate,
				Fields: map[string]string{"Situs City": "Venice"}},
		},
	}
}

func rows(rs *types.RecordSet) []int {
	out := make([]int, 0, rs.Len())
	for _, r := range rs.Records {
		out = append(out, r.Row)
	}
	return out
}

func TestRunPredicates(t *testing.T) {
	tests := []struct {
		name string
		spec FilterSpec
		want []int
	}{
		{name: "empty spec is identity", spec: FilterSpec{}, want: []int{0, 1, 2, 3}},
		{name: "year range inclusive", spec: FilterSpec{}.Years(Between(2022, 2024)), want: []int{1, 3}},
		{name: "year range skips null years", spec: FilterSpec{}.Years(Between(0, 9999)), want: []int{0, 1, 3}},
		{name: "inverted range is empty", spec: FilterSpec{}.Years(Between(2024, 2020)), want: []int{}},
		{name: "sale amount integral only", spec: FilterSpec{}.SaleAmount(Between(1000, 10000)), want: []int{0, 2}},
		{name: "locality code", spec: FilterSpec{}.LocalityCode(Between(1000, 10000)), want: []int{3}},
		{name: "owner equals", spec: FilterSpec{}.Owner(Equals("ACME LLC")), want: []int{1, 3}},
		{name: "owner all sentinel", spec: FilterSpec{}.Owner(Equals(All)), want: []int{0, 1, 2, 3}},
		{name: "owner allow-list", spec: FilterSpec{}.Owner(OneOf("DOE JANE", "SMITH JOHN")), want: []int{0, 2}},
		{name: "locality equals", spec: FilterSpec{}.Locality(Equals("Gulf Gate")), want: []int{2}},
		{name: "types", spec: FilterSpec{}.Types(IndividualOrCorporate...), want: []int{0, 1, 3}},
		{name: "corporate only", spec: FilterSpec{}.Types(types.TypeCorporate), want: []int{1, 3}},
		{name: "passthrough field", spec: FilterSpec{}.Field("Situs City", Equals("Sarasota")), want: []int{0, 2}},
		{name: "require coordinates", spec: FilterSpec{}.Require(types.FieldLatitude, types.FieldLongitude), want: []int{0, 1, 3}},
		{name: "within radius", spec: FilterSpec{}.Within(Near{Lat: 27.2, Lng: -82.45, Miles: 15}), want: []int{0, 1}},
		{
			name: "combined predicates",
			spec: FilterSpec{}.Years(Between(2000, 2024)).Owner(Equals("ACME LLC")).Field("Situs City", Equals("Venice")),
			want: []int{1, 3},
		},
		{name: "no match is empty", spec: FilterSpec{}.Owner(Equals("NOBODY")), want: []int{}},
	}

	cols := largeCols(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := sampleSet()
			got, err := Run(rs, cols, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows(got))
			assert.LessOrEqual(t, got.Len(), rs.Len())
			assert.Equal(t, rs.Variant, got.Variant)

			again, err := Run(got, cols, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, rows(got), rows(again), "filters must be idempotent")
		})
	}
}

func TestRunYearScenario(t *testing.T) {
	rs := &types.RecordSet{
		Variant: types.VariantLarge,
		Columns: []string{"Owner 1", "Neighborhood"},
		Records: []*types.Record{
			{Row: 0, PriorSaleYear: intp(2020)},
			{Row: 1, PriorSaleYear: intp(2022)},
			{Row: 2},
		},
	}
	got, err := Run(rs, largeCols(t), FilterSpec{}.Years(Between(2021, 2024)))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, rows(got))
}

func TestRunSchemaMismatch(t *testing.T) {
	rs := sampleSet()

	_, err := Run(rs, largeCols(t), FilterSpec{}.Field("County", Equals("Sarasota")))
	assert.True(t, types.IsSchemaMismatch(err))

	reduced, err := schema.Resolve(types.VariantReduced)
	require.NoError(t, err)
	_, err = Run(rs, reduced, FilterSpec{}.Owner(Equals("ACME LLC")))
	assert.True(t, types.IsSchemaMismatch(err))

	// unset predicates never reference a column
	got, err := Run(rs, largeCols(t), FilterSpec{}.Field("County", Equals(All)))
	require.NoError(t, err)
	assert.Equal(t, rs.Len(), got.Len())
}

func TestFilterSpecIsValue(t *testing.T) {
	base := FilterSpec{}.Field("Situs City", Equals("Venice"))
	a := base.Field("Type", Equals("IND"))
	b := base.Field("Type", Equals("CORP"))

	assert.NotEqual(t, a.Key(), b.Key())
	assert.Contains(t, a.Key(), `"IND"`)
	assert.NotContains(t, base.Key(), "Type")
}

func TestFilterSpecKey(t *testing.T) {
	a := FilterSpec{}.Owner(OneOf("B", "A")).Types(types.TypeCorporate, types.TypeIndividual)
	b := FilterSpec{}.Owner(OneOf("A", "B")).Types(types.TypeIndividual, types.TypeCorporate)
	assert.Equal(t, a.Key(), b.Key())

	assert.Equal(t, FilterSpec{}.Key(), FilterSpec{}.Owner(Equals(All)).Key())
	assert.NotEqual(t, FilterSpec{}.Key(), FilterSpec{}.Years(Between(2000, 2024)).Key())
}

func TestBounds(t *testing.T) {
	rs := sampleSet()
	lo, hi := Bounds(rs, types.FieldLastSaleAmount)
	assert.Equal(t, 5000, lo)
	assert.Equal(t, 9000, hi)

	huge := sampleSet()
	huge.Records[3].LastSaleAmount = floatp(1e300)
	huge.Records[1].LastSaleAmount = floatp(math.Inf(-1))
	lo, hi = Bounds(huge, types.FieldLastSaleAmount)
	assert.Equal(t, 5000, lo, "out of range values are skipped")
	assert.Equal(t, 9000, hi)

	lo, hi = Bounds(rs.Derive(nil), types.FieldLastSaleAmount)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 0, hi)
}

func TestYearSpan(t *testing.T) {
	rs := sampleSet()
	rs.Records[2].YearBuilt = intp(1961)
	lo, hi, ok := YearSpan(rs)
	require.True(t, ok)
	assert.Equal(t, 1961, lo)
	assert.Equal(t, 2024, hi)

	_, _, ok = YearSpan(rs.Derive(nil))
	assert.False(t, ok)
}

func TestDistinct(t *testing.T) {
	rs := sampleSet()
	assert.Equal(t, []string{"SMITH JOHN", "ACME LLC", "DOE JANE"}, Distinct(rs, types.FieldOwner))
	assert.Equal(t, []string{"Sarasota", "Venice"}, DistinctColumn(rs, "Situs City"))
}

func TestDistanceMiles(t *testing.T) {
	assert.InDelta(t, 0, DistanceMiles(27.0, -82.0, 27.0, -82.0), 1e-9)
	// one degree of latitude is about 69 miles
	assert.InDelta(t, 69.1, DistanceMiles(27.0, -82.0, 28.0, -82.0), 0.5)
}
