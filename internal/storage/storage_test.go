package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/IshaanNene/cpubench/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var testColumns = []string{"Name", "Cores", "Link", "Updated"}

func testRecords() []*types.Record {
	a := types.NewRecord("828", "Intel Core i5-3570K")
	a.Set("Cores", "4 (4)")
	a.Set("Link", "https://example/cpu.php?id=828")
	a.Set("Updated", "2026-10-19")
	a.Set("Stale Column", "ignored")

	b := types.NewRecord("3708", `AMD "Ryzen" 5, 4600H`)
	b.Set("Link", "https://example/cpu.php?id=3708")
	return []*types.Record{a, b}
}

func TestCSVSaveAndReadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "processors.csv")
	s := NewCSVStorage(path, testLogger)

	if err := s.Save(context.Background(), testColumns, testRecords()); err != nil {
		t.Fatalf("save: %v", err)
	}

	tbl, err := ReadTable(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	want := &Table{
		Header: testColumns,
		Rows: [][]string{
			{"Intel Core i5-3570K", "4 (4)", "https://example/cpu.php?id=828", "2026-10-19"},
			{`AMD "Ryzen" 5, 4600H`, "", "https://example/cpu.php?id=3708", ""},
		},
	}
	if diff := cmp.Diff(want, tbl); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}

	idx, ok := tbl.ColumnIndex("Link")
	if !ok || idx != 2 {
		t.Errorf("expected Link at 2, got %d (%v)", idx, ok)
	}
	if _, ok := tbl.ColumnIndex("Stale Column"); ok {
		t.Error("columns outside the header list must not be written")
	}
}

func TestCSVSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processors.csv")
	s := NewCSVStorage(path, testLogger)
	ctx := context.Background()

	if err := s.Save(ctx, testColumns, testRecords()); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, testColumns, testRecords()[:1]); err != nil {
		t.Fatal(err)
	}

	tbl, err := ReadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 1 {
		t.Errorf("expected full overwrite with 1 row, got %d", len(tbl.Rows))
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestReadTableErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadTable(filepath.Join(dir, "absent.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	empty := filepath.Join(dir, "empty.csv")
	os.WriteFile(empty, nil, 0o644)
	if _, err := ReadTable(empty); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestReadTableRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	os.WriteFile(path, []byte("Name,Link\nA\nB,link-b,extra\n"), 0o644)

	tbl, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ragged rows should be accepted: %v", err)
	}
	if len(tbl.Rows) != 2 || len(tbl.Rows[0]) != 1 || len(tbl.Rows[1]) != 3 {
		t.Errorf("unexpected rows %v", tbl.Rows)
	}
}

func TestJSONSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processors.json")
	s := NewJSONStorage(path, testLogger)
	if err := s.Save(context.Background(), testColumns, testRecords()); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0]["id"] != "828" || got[0]["Cores"] != "4 (4)" {
		t.Errorf("unexpected first row %v", got[0])
	}
	if _, ok := got[0]["Stale Column"]; ok {
		t.Error("unlisted column leaked into JSON")
	}
}

type fakeStorage struct {
	name  string
	err   error
	saves int
}

func (f *fakeStorage) Save(context.Context, []string, []*types.Record) error {
	f.saves++
	return f.err
}
func (f *fakeStorage) Close(context.Context) error { return nil }
func (f *fakeStorage) Name() string                { return f.name }

func TestMultiStorageMirrorFailureIsNotFatal(t *testing.T) {
	primary := &fakeStorage{name: "primary"}
	broken := &fakeStorage{name: "broken", err: errors.New("down")}
	ok := &fakeStorage{name: "ok"}

	m := NewMultiStorage(primary, []Storage{broken, ok}, testLogger)
	if err := m.Save(context.Background(), testColumns, testRecords()); err != nil {
		t.Fatalf("mirror error should not propagate: %v", err)
	}
	if primary.saves != 1 || broken.saves != 1 || ok.saves != 1 {
		t.Errorf("expected every backend saved once: %d %d %d", primary.saves, broken.saves, ok.saves)
	}
}

func TestMultiStoragePrimaryFailure(t *testing.T) {
	primary := &fakeStorage{name: "primary", err: errors.New("disk full")}
	mirror := &fakeStorage{name: "mirror"}

	m := NewMultiStorage(primary, []Storage{mirror}, testLogger)
	if err := m.Save(context.Background(), testColumns, testRecords()); err == nil {
		t.Fatal("expected primary error")
	}
	if mirror.saves != 0 {
		t.Error("mirrors must not be written when the primary fails")
	}
}

func TestRecordDocument(t *testing.T) {
	doc := RecordDocument(testColumns, testRecords()[0])
	if len(doc) != len(testColumns) {
		t.Fatalf("expected %d fields, got %d", len(testColumns), len(doc))
	}
	for i, e := range doc {
		if e.Key != testColumns[i] {
			t.Errorf("field %d: expected key %q, got %q", i, testColumns[i], e.Key)
		}
	}
	if doc[1].Value != "4 (4)" {
		t.Errorf("unexpected Cores value %v", doc[1].Value)
	}
}
