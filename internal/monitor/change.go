// Package monitor reports how a processor's columns moved between runs.
package monitor

import (
	"log/slog"

	"github.com/IshaanNene/cpubench/internal/types"
)

// ChangeType identifies what kind of change occurred.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
)

// Change represents one column whose value differs from the stored one.
type Change struct {
	ID       string     `json:"id"`
	Type     ChangeType `json:"type"`
	Field    string     `json:"field"`
	OldValue string     `json:"old_value,omitempty"`
	NewValue string     `json:"new_value,omitempty"`
}

// Diff compares the given columns of two versions of a record. A column
// that was empty or unset before is reported as added.
func Diff(old, updated *types.Record, columns []string) []Change {
	var changes []Change
	for _, col := range columns {
		oldVal := old.Get(col)
		newVal := updated.Get(col)
		if oldVal == newVal {
			continue
		}
		c := Change{
			ID:       updated.ID,
			Type:     ChangeModified,
			Field:    col,
			OldValue: truncateStr(oldVal, 200),
			NewValue: truncateStr(newVal, 200),
		}
		if oldVal == "" {
			c.Type = ChangeAdded
		}
		changes = append(changes, c)
	}
	return changes
}

// LogChanges writes one info line per change.
func LogChanges(logger *slog.Logger, changes []Change) {
	for _, c := range changes {
		logger.Info("column changed",
			"id", c.ID,
			"field", c.Field,
			"type", c.Type,
			"old", c.OldValue,
			"new", c.NewValue,
		)
	}
}

func truncateStr(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
