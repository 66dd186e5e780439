package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrPatternMissing   = errors.New("pattern not found in page")
	ErrPayload          = errors.New("response payload unreadable")
	ErrNoLinkColumn     = errors.New("table has no Link column")
	ErrUnknownExtractor = errors.New("unknown extractor type")
	ErrUnknownRecord    = errors.New("unknown processor id")
	ErrChallenge        = errors.New("bot challenge page")
)

// FetchError wraps errors that occur during fetching.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsPayload reports whether the request succeeded but the body could not be read.
func (e *FetchError) IsPayload() bool { return errors.Is(e.Err, ErrPayload) }

// ParseError wraps errors that occur while extracting a column.
type ParseError struct {
	URL   string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s (field=%q): %v", e.URL, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PipelineError wraps errors from a value-cleaning stage.
type PipelineError struct {
	Stage    string
	RecordID string
	Err      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error at stage %q (id=%s): %v", e.Stage, e.RecordID, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur during storage/export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
