package storage

import (
	"context"
	"log/slog"

	"github.com/IshaanNene/cpubench/internal/types"
)

// Storage is the interface for all table backends.
type Storage interface {
	// Save replaces the stored table with records, using columns in order.
	Save(ctx context.Context, columns []string, records []*types.Record) error

	// Close releases resources.
	Close(ctx context.Context) error

	// Name returns the storage backend identifier.
	Name() string
}

// --- Multi-Storage Fan-Out ---

// MultiStorage writes the table to a primary backend and best-effort mirrors.
// Only a primary failure is returned; mirror failures are logged.
type MultiStorage struct {
	primary Storage
	mirrors []Storage
	logger  *slog.Logger
}

// NewMultiStorage creates a storage that fans out to a primary and mirrors.
func NewMultiStorage(primary Storage, mirrors []Storage, logger *slog.Logger) *MultiStorage {
	return &MultiStorage{
		primary: primary,
		mirrors: mirrors,
		logger:  logger.With("component", "multi_storage"),
	}
}

func (s *MultiStorage) Name() string { return "multi" }

func (s *MultiStorage) Save(ctx context.Context, columns []string, records []*types.Record) error {
	if err := s.primary.Save(ctx, columns, records); err != nil {
		return err
	}
	for _, m := range s.mirrors {
		if err := m.Save(ctx, columns, records); err != nil {
			s.logger.Error("mirror save failed", "backend", m.Name(), "error", err)
		}
	}
	return nil
}

func (s *MultiStorage) Close(ctx context.Context) error {
	firstErr := s.primary.Close(ctx)
	for _, m := range s.mirrors {
		if err := m.Close(ctx); err != nil {
			s.logger.Error("mirror close failed", "backend", m.Name(), "error", err)
		}
	}
	return firstErr
}
