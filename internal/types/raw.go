package types

// RawTable is an untyped table as handed over by a loader: a header row and
// rows of cell strings. Rows shorter than the header read as empty cells.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of column name in the header, or -1.
func (t *RawTable) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row i, column j, or "" when the row is short.
func (t *RawTable) Cell(i, j int) string {
	row := t.Rows[i]
	if j < 0 || j >= len(row) {
		return ""
	}
	return row[j]
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	return len(t.Rows)
}
