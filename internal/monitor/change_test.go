package monitor

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/IshaanNene/cpubench/internal/types"
)

func TestDiff(t *testing.T) {
	old := types.NewRecord("3708", "AMD Ryzen 5 4600H")
	old.Set("Single Thread", "2521")
	old.Set("TDP", "45")

	updated := old.Clone()
	updated.Set("Single Thread", "2530")
	updated.Set("Cores", "6 (12)")
	updated.Set("Notes", "ignored")

	got := Diff(old, updated, []string{"Name", "Single Thread", "TDP", "Cores"})
	want := []Change{
		{ID: "3708", Type: ChangeModified, Field: "Single Thread", OldValue: "2521", NewValue: "2530"},
		{ID: "3708", Type: ChangeAdded, Field: "Cores", NewValue: "6 (12)"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffNoChanges(t *testing.T) {
	rec := types.NewRecord("828", "Intel Core i5-3570K")
	if changes := Diff(rec, rec.Clone(), []string{"Name", "TDP"}); len(changes) != 0 {
		t.Errorf("expected no changes, got %v", changes)
	}
}

func TestDiffTruncatesLongValues(t *testing.T) {
	old := types.NewRecord("828", "")
	updated := types.NewRecord("828", strings.Repeat("x", 300))
	changes := Diff(old, updated, []string{"Name"})
	if len(changes) != 1 || len(changes[0].NewValue) != 203 {
		t.Errorf("expected truncated value, got %+v", changes)
	}
}
