// Package records holds the in-memory processor table that a crawl fills in.
package records

import (
	"log/slog"
	"strings"
	"time"

	"github.com/IshaanNene/cpubench/internal/config"
	"github.com/IshaanNene/cpubench/internal/monitor"
	"github.com/IshaanNene/cpubench/internal/parser"
	"github.com/IshaanNene/cpubench/internal/pipeline"
	"github.com/IshaanNene/cpubench/internal/storage"
	"github.com/IshaanNene/cpubench/internal/types"
)

// DateLayout is the format of the Updated column.
const DateLayout = "2006-01-02"

// Options configures a Store.
type Options struct {
	LinkBase    string
	Placeholder string

	// Pipeline cleans extracted values before they are stored. Optional.
	Pipeline *pipeline.Pipeline
}

// MergeResult describes what a Merge did to a record.
type MergeResult struct {
	// Changed is true when the record was rewritten from a page.
	Changed bool

	// Missing lists the columns whose extractor found nothing.
	Missing []string

	// NameMismatch is true when the page's Name differs from the stored one.
	NameMismatch bool

	// Rejected is true when the pipeline discarded the page.
	Rejected bool

	// Changes lists the registry columns whose value moved.
	Changes []monitor.Change
}

// Store maps processor ids to records. The set of ids is fixed at
// construction; during a crawl each task touches only its own record, so the
// map itself is read-only and needs no lock.
type Store struct {
	records  map[string]*types.Record
	order    []string
	registry parser.Registry
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// New seeds a store with the given processors.
func New(seeds []config.Processor, registry parser.Registry, opts Options, logger *slog.Logger) *Store {
	s := &Store{
		records:  make(map[string]*types.Record, len(seeds)),
		order:    make([]string, 0, len(seeds)),
		registry: registry,
		opts:     opts,
		logger:   logger.With("component", "record_store"),
		now:      time.Now,
	}
	for _, p := range seeds {
		if _, dup := s.records[p.ID]; dup {
			continue
		}
		s.records[p.ID] = types.NewRecord(p.ID, p.Name)
		s.order = append(s.order, p.ID)
	}
	return s
}

// SetClock replaces the time source used to stamp Updated.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// IDs returns the seeded ids in seed order.
func (s *Store) IDs() []string {
	return append([]string(nil), s.order...)
}

// Get returns the record for id.
func (s *Store) Get(id string) (*types.Record, bool) {
	r, ok := s.records[id]
	return r, ok
}

// Records returns all records in seed order.
func (s *Store) Records() []*types.Record {
	out := make([]*types.Record, len(s.order))
	for i, id := range s.order {
		out[i] = s.records[id]
	}
	return out
}

// Columns returns the persisted column order: registry columns, then Link and Updated.
func (s *Store) Columns() []string {
	return append(s.registry.Names(), config.ColumnLink, config.ColumnUpdated)
}

// Link returns the page URL for id.
func (s *Store) Link(id string) string {
	return s.opts.LinkBase + id
}

// IDFromLink recovers a processor id from a persisted Link value.
func (s *Store) IDFromLink(link string) (string, bool) {
	id, ok := strings.CutPrefix(link, s.opts.LinkBase)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Prefill copies persisted rows onto known records, column by column.
// Rows for ids that are not seeded are dropped. It returns the number of
// rows applied.
func (s *Store) Prefill(tbl *storage.Table) (int, error) {
	linkIdx, ok := tbl.ColumnIndex(config.ColumnLink)
	if !ok {
		return 0, types.ErrNoLinkColumn
	}

	applied := 0
	for _, row := range tbl.Rows {
		if linkIdx >= len(row) {
			continue
		}
		id, ok := s.IDFromLink(row[linkIdx])
		if !ok {
			s.logger.Debug("row link does not match link base", "link", row[linkIdx])
			continue
		}
		rec, ok := s.records[id]
		if !ok {
			continue
		}
		for i, value := range row {
			if i >= len(tbl.Header) {
				break
			}
			rec.Set(tbl.Header[i], value)
		}
		applied++
	}

	s.logger.Debug("prefilled from table", "rows", len(tbl.Rows), "applied", applied)
	return applied, nil
}

// Merge extracts every registry column from page into the record for id.
// A nil page leaves the record untouched. A column whose extractor fails is
// set to the placeholder without affecting the other columns. Values pass
// through the pipeline, if any, before they reach the record.
func (s *Store) Merge(id string, page *types.Page) (MergeResult, error) {
	var res MergeResult
	if page == nil {
		return res, nil
	}
	rec, ok := s.records[id]
	if !ok {
		return res, types.ErrUnknownRecord
	}

	link := s.Link(id)
	fresh := types.NewRecord(id, "")
	for _, f := range s.registry {
		value, err := f.Extractor.Extract(page)
		if err != nil {
			s.logger.Error("extract failed",
				"key", f.Name,
				"link", link,
				"error", &types.ParseError{URL: link, Field: f.Name, Err: err},
			)
			fresh.Set(f.Name, s.opts.Placeholder)
			res.Missing = append(res.Missing, f.Name)
			continue
		}
		fresh.Set(f.Name, value)
	}

	if s.opts.Pipeline != nil {
		out, err := s.opts.Pipeline.Process(fresh)
		if err != nil {
			return res, err
		}
		if out == nil {
			s.logger.Warn("page rejected, record kept as is", "id", id, "link", link)
			res.Rejected = true
			return res, nil
		}
		fresh = out
	}

	previous := rec.Clone()
	for k, v := range fresh.Fields {
		rec.Set(k, v)
	}

	previousName := previous.Get(config.ColumnName)
	if name := rec.Get(config.ColumnName); previousName != "" && name != previousName {
		res.NameMismatch = true
		s.logger.Error("name on page differs from stored name",
			"id", id,
			"page_name", name,
			"stored_name", previousName,
		)
	}

	rec.Set(config.ColumnUpdated, s.now().Format(DateLayout))
	res.Changes = monitor.Diff(previous, rec, s.registry.Names())
	res.Changed = true
	return res, nil
}
