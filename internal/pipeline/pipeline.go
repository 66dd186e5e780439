// Package pipeline cleans freshly extracted column values before they are
// merged into the record store.
package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/IshaanNene/cpubench/internal/config"
	"github.com/IshaanNene/cpubench/internal/types"
)

// Middleware processes a record and returns the (possibly modified) record.
// Return nil to reject the page the record was extracted from.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a record. Return nil to reject it.
	Process(rec *types.Record) (*types.Record, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// FromConfig builds a pipeline from configured stages, in order.
func FromConfig(stages []config.PipelineStage, placeholder string, logger *slog.Logger) (*Pipeline, error) {
	p := New(logger)
	for _, stage := range stages {
		mw, err := newStage(stage, placeholder)
		if err != nil {
			return nil, err
		}
		p.Use(mw)
	}
	return p, nil
}

func newStage(stage config.PipelineStage, placeholder string) (Middleware, error) {
	switch stage.Name {
	case "html_sanitize":
		return NewHTMLSanitizeMiddleware(), nil
	case "trim":
		return &TrimMiddleware{}, nil
	case "number_normalize":
		return &NumberNormalizeMiddleware{Columns: stage.Columns, Placeholder: placeholder}, nil
	case "required_fields":
		return &RequiredFieldsMiddleware{Columns: stage.Columns, Placeholder: placeholder}, nil
	case "field_validate":
		return NewFieldValidateMiddleware(stage.Columns, stage.Pattern, placeholder)
	default:
		return nil, fmt.Errorf("unknown pipeline stage %q", stage.Name)
	}
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the record through all middleware in order.
func (p *Pipeline) Process(rec *types.Record) (*types.Record, error) {
	current := rec

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{
				Stage:    mw.Name(),
				RecordID: rec.ID,
				Err:      err,
			}
		}
		if result == nil {
			p.logger.Debug("record rejected", "stage", mw.Name(), "id", rec.ID)
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}

// --- Built-in Middleware ---

// TrimMiddleware trims whitespace from every value.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(rec *types.Record) (*types.Record, error) {
	for key, s := range rec.Fields {
		rec.Set(key, strings.TrimSpace(s))
	}
	return rec, nil
}

// RequiredFieldsMiddleware rejects records where a listed column is empty
// or holds the placeholder, e.g. a bot-check page that matched nothing.
type RequiredFieldsMiddleware struct {
	Columns     []string
	Placeholder string
}

func (m *RequiredFieldsMiddleware) Name() string { return "required_fields" }

func (m *RequiredFieldsMiddleware) Process(rec *types.Record) (*types.Record, error) {
	for _, col := range m.Columns {
		if v := rec.Get(col); v == "" || v == m.Placeholder {
			return nil, nil
		}
	}
	return rec, nil
}
