package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"parceldash/internal/types"
)

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged_df.xlsx")
	writeWorkbook(t, path, [][]any{
		{"Owner 1", " Neighborhood ", "Prior Sale Date"},
		{"SMITH JOHN", "Palmer Ranch", "3/14/2021, deed"},
		{"ACME LLC", "Gulf Gate"},
	})

	raw, err := ReadFile(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Owner 1", "Neighborhood", "Prior Sale Date"}, raw.Columns)
	require.Equal(t, 2, raw.Len())
	assert.Equal(t, "3/14/2021, deed", raw.Cell(0, 2))
	assert.Equal(t, "", raw.Cell(1, 2), "short rows read as empty cells")
}

func TestReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "details.csv")
	body := "Owner,Situs City,Last Sale Amount\n" +
		"ACME LLC,Venice,\"$350,000\"\n" +
		"DOE JANE,Sarasota\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	raw, err := ReadFile(context.Background(), path, "")
	require.NoError(t, err)
	require.Equal(t, 2, raw.Len())
	assert.Equal(t, "$350,000", raw.Cell(0, 2))
	assert.Equal(t, "", raw.Cell(1, 2))
}

func TestReadPipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PropertyData.txt")
	body := "Owner|Situs City|lat|lng\n"
	for i := 0; i < 50; i++ {
		body += "OWNER|Venice|27.1|-82.4\n"
	}
	body += "\nLAST|Nokomis|27.0|-82.3\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	raw, err := ReadFile(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Owner", "Situs City", "lat", "lng"}, raw.Columns)
	require.Equal(t, 51, raw.Len())
	assert.Equal(t, "LAST", raw.Cell(50, 0), "row order is kept")
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadFile(context.Background(), filepath.Join(dir, "data.json"), "")
	assert.Error(t, err)

	_, err = ReadFile(context.Background(), filepath.Join(dir, "missing.csv"), "")
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = ReadFile(context.Background(), empty, "")
	assert.Error(t, err)
}

func TestFilesUsesHistoricalNames(t *testing.T) {
	f := NewFiles("data", nil)
	assert.Equal(t, filepath.Join("data", "merged_df.xlsx"), f.Paths[types.VariantLarge])
	assert.Equal(t, filepath.Join("data", "all_2024_details.xlsx"), f.Paths[types.VariantReduced])

	_, err := f.Load(context.Background(), types.Variant(9))
	assert.True(t, types.IsUnknownVariant(err))
}

type stubLoader map[types.Variant]error

func (s stubLoader) Load(_ context.Context, v types.Variant) (*types.RawTable, error) {
	if err := s[v]; err != nil {
		return nil, err
	}
	return &types.RawTable{Columns: []string{v.String()}}, nil
}

func TestPreload(t *testing.T) {
	tables, err := Preload(context.Background(), stubLoader{})
	require.NoError(t, err)
	require.Len(t, tables, 2)

	raw, err := tables.Load(context.Background(), types.VariantReduced)
	require.NoError(t, err)
	assert.Equal(t, []string{"reduced"}, raw.Columns)

	_, err = Tables{}.Load(context.Background(), types.VariantLarge)
	assert.Error(t, err)
}

func TestPreloadFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := Preload(context.Background(), stubLoader{types.VariantReduced: boom}, types.VariantLarge, types.VariantReduced)
	assert.ErrorIs(t, err, boom)
}
