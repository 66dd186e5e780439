package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/IshaanNene/cpubench/internal/types"
)

// Table is a persisted table as read from disk.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of column in the header.
func (t *Table) ColumnIndex(column string) (int, bool) {
	for i, h := range t.Header {
		if h == column {
			return i, true
		}
	}
	return -1, false
}

// ReadTable reads a CSV table with a header row. Rows may be shorter or
// longer than the header.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read %s: empty table", path)
		}
		return nil, fmt.Errorf("read %s header: %w", path, err)
	}

	tbl := &Table{Header: header}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}

// --- CSV Storage ---

// CSVStorage overwrites a CSV file with the full table on every Save.
type CSVStorage struct {
	path   string
	logger *slog.Logger
}

// NewCSVStorage creates a new CSV file storage.
func NewCSVStorage(path string, logger *slog.Logger) *CSVStorage {
	return &CSVStorage{
		path:   path,
		logger: logger.With("component", "csv_storage"),
	}
}

func (s *CSVStorage) Name() string { return "csv" }

// Save writes header and rows to a temp file next to the target and renames
// it into place, so a failed write never leaves a truncated table.
func (s *CSVStorage) Save(_ context.Context, columns []string, records []*types.Record) error {
	err := writeAtomic(s.path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(columns); err != nil {
			return fmt.Errorf("write CSV header: %w", err)
		}
		for _, rec := range records {
			if err := cw.Write(rec.Row(columns)); err != nil {
				return fmt.Errorf("write CSV row: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}

	s.logger.Info("CSV written", "path", s.path, "rows", len(records))
	return nil
}

func (s *CSVStorage) Close(context.Context) error { return nil }

// --- JSON Storage ---

// JSONStorage writes the table as a JSON array of row objects.
type JSONStorage struct {
	path   string
	logger *slog.Logger
}

// NewJSONStorage creates a new JSON file storage.
func NewJSONStorage(path string, logger *slog.Logger) *JSONStorage {
	return &JSONStorage{
		path:   path,
		logger: logger.With("component", "json_storage"),
	}
}

func (s *JSONStorage) Name() string { return "json" }

func (s *JSONStorage) Save(_ context.Context, columns []string, records []*types.Record) error {
	output := make([]map[string]string, len(records))
	for i, rec := range records {
		entry := make(map[string]string, len(columns)+1)
		entry["id"] = rec.ID
		for _, c := range columns {
			entry[c] = rec.Get(c)
		}
		output[i] = entry
	}

	err := writeAtomic(s.path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	})
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}

	s.logger.Info("JSON written", "path", s.path, "rows", len(records))
	return nil
}

func (s *JSONStorage) Close(context.Context) error { return nil }

// writeAtomic writes through fill into a temp file and renames it over path.
func writeAtomic(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
