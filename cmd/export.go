package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"parceldash/internal/types"
)

// writeCSV saves rs with the raw column layout it was loaded from, so an
// exported file can be fed back in as a dataset.
func writeCSV(path string, rs *types.RecordSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(rs.Columns); err != nil {
		return err
	}
	row := make([]string, len(rs.Columns))
	for _, r := range rs.Records {
		for i, c := range rs.Columns {
			row[i] = r.Fields[c]
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
