// Package source hands raw tables to the normalizer. Loaders read the two
// dataset variants from spreadsheets, delimited text or a database; the core
// never sees where a table came from.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"parceldash/internal/schema"
	"parceldash/internal/types"
)

// Loader returns the raw table for a dataset variant.
type Loader interface {
	Load(ctx context.Context, v types.Variant) (*types.RawTable, error)
}

// Files loads each variant from a file, picking the reader by extension.
type Files struct {
	Paths map[types.Variant]string
	// Sheet selects the worksheet of .xlsx files; empty means the first.
	Sheet  string
	Logger *slog.Logger
}

// NewFiles points every variant at its historical spreadsheet name in dir.
func NewFiles(dir string, logger *slog.Logger) *Files {
	paths := make(map[types.Variant]string)
	for _, v := range schema.Variants() {
		cols, _ := schema.Resolve(v)
		paths[v] = filepath.Join(dir, cols.File)
	}
	return &Files{Paths: paths, Logger: logger}
}

func (f *Files) Load(ctx context.Context, v types.Variant) (*types.RawTable, error) {
	path, ok := f.Paths[v]
	if !ok {
		return nil, types.NewUnknownVariant(v.String())
	}
	start := time.Now()
	t, err := ReadFile(ctx, path, f.Sheet)
	if err != nil {
		return nil, err
	}
	if f.Logger != nil {
		f.Logger.Info("dataset loaded",
			"variant", v.String(),
			"path", path,
			"rows", t.Len(),
			"elapsed", time.Since(start).Truncate(time.Millisecond).String())
	}
	return t, nil
}

// ReadFile reads a raw table from path: .xlsx/.xlsm through excelize, .csv
// as comma separated and .txt/.psv as pipe delimited text.
func ReadFile(ctx context.Context, path, sheet string) (*types.RawTable, error) {
	var (
		t   *types.RawTable
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		t, err = readWorkbook(path, sheet)
	case ".csv":
		t, err = readCSV(ctx, path)
	case ".txt", ".psv":
		t, err = readPipe(ctx, path)
	default:
		return nil, fmt.Errorf("read %s: unsupported file type %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// Tables serves tables that were loaded once and are shared read-only.
type Tables map[types.Variant]*types.RawTable

func (t Tables) Load(_ context.Context, v types.Variant) (*types.RawTable, error) {
	raw, ok := t[v]
	if !ok {
		return nil, fmt.Errorf("no %s dataset loaded", v)
	}
	return raw, nil
}

// Preload loads the given variants concurrently. The first failure cancels
// the others.
func Preload(ctx context.Context, l Loader, variants ...types.Variant) (Tables, error) {
	if len(variants) == 0 {
		variants = schema.Variants()
	}
	out := make([]*types.RawTable, len(variants))
	g, ctx := errgroup.WithContext(ctx)
	for i, v := range variants {
		i, v := i, v
		g.Go(func() error {
			raw, err := l.Load(ctx, v)
			if err != nil {
				return fmt.Errorf("load %s dataset: %w", v, err)
			}
			out[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tables := make(Tables, len(variants))
	for i, v := range variants {
		tables[v] = out[i]
	}
	return tables, nil
}
