package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IshaanNene/cpubench/internal/config"
	"github.com/IshaanNene/cpubench/internal/monitor"
	"github.com/IshaanNene/cpubench/internal/observability"
	"github.com/IshaanNene/cpubench/internal/records"
	"github.com/IshaanNene/cpubench/internal/types"
)

// Status is the outcome of one processor's task.
type Status int

const (
	StatusSkipped   Status = iota // fresh, no request made
	StatusMerged                  // fetched and merged
	StatusNoContent               // fetched but the body was unreadable
	StatusFailed                  // transport or status error
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusMerged:
		return "merged"
	case StatusNoContent:
		return "no_content"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is what happened to one processor during a run.
type Outcome struct {
	ID       string
	URL      string
	Status   Status
	Err      error
	Duration time.Duration // fetch time, zero when nothing was fetched
}

// Result is the reduced outcome of a run.
type Result struct {
	Outcomes []Outcome
	Stats    map[string]int64
}

// Changed reports whether any record was merged, i.e. whether the table
// must be persisted.
func (r *Result) Changed() bool {
	for _, o := range r.Outcomes {
		if o.Status == StatusMerged {
			return true
		}
	}
	return false
}

// Count returns how many outcomes have status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Failures returns the outcomes that failed hard.
func (r *Result) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// Fetcher is the page source used by the engine.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*types.Page, error)
}

// ProgressFunc is called after each task finishes. Calls may come from
// several goroutines and in any order.
type ProgressFunc func(done, total int, o Outcome)

// Options controls a run.
type Options struct {
	// Window is how long a record stays fresh after its Updated date.
	Window time.Duration

	// Concurrency caps in-flight tasks; 0 runs every task at once.
	Concurrency int

	// Force ignores freshness and fetches every processor.
	Force bool

	// Only restricts the run to these ids; empty means all seeded ids.
	Only []string
}

// OptionsFromConfig builds run options from the crawl config.
func OptionsFromConfig(cfg config.CrawlConfig) Options {
	return Options{
		Window:      cfg.StalenessWindow,
		Concurrency: cfg.Concurrency,
		Force:       cfg.Force,
		Only:        cfg.Only,
	}
}

// Engine fetches and merges every processor of a Store concurrently.
type Engine struct {
	store    *records.Store
	fetcher  Fetcher
	opts     Options
	metrics  *observability.Metrics
	logger   *slog.Logger
	progress ProgressFunc
	now      func() time.Time
}

// New creates an Engine.
func New(store *records.Store, f Fetcher, opts Options, logger *slog.Logger) *Engine {
	return &Engine{
		store:   store,
		fetcher: f,
		opts:    opts,
		metrics: observability.NewMetrics(logger),
		logger:  logger.With("component", "engine"),
		now:     time.Now,
	}
}

// OnProgress registers a progress callback.
func (e *Engine) OnProgress(fn ProgressFunc) {
	e.progress = fn
}

// SetClock replaces the time source used for freshness checks.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Metrics returns the run counters.
func (e *Engine) Metrics() *observability.Metrics {
	return e.metrics
}

// Run launches one task per processor and waits for all of them. A task's
// failure is recorded in its Outcome and does not cancel the others. The
// returned error is non-nil only when ctx was cancelled or an id in
// Options.Only is not seeded.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	ids, err := e.selectIDs()
	if err != nil {
		return nil, err
	}

	total := len(ids)
	outcomes := make([]Outcome, total)
	var done atomic.Int64

	e.logger.Info("crawl starting", "processors", total, "concurrency", e.opts.Concurrency, "force", e.opts.Force)
	e.metrics.TasksScheduled.Add(int64(total))

	var g errgroup.Group
	if e.opts.Concurrency > 0 {
		g.SetLimit(e.opts.Concurrency)
	}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			outcomes[i] = e.updateOne(ctx, id)
			e.metrics.TasksDone.Add(1)
			n := int(done.Add(1))
			if e.progress != nil {
				e.progress(n, total, outcomes[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	e.metrics.LogSummary("crawl finished")
	res := &Result{Outcomes: outcomes, Stats: e.metrics.Snapshot()}
	return res, ctx.Err()
}

func (e *Engine) selectIDs() ([]string, error) {
	if len(e.opts.Only) == 0 {
		return e.store.IDs(), nil
	}
	// Each id gets exactly one task.
	ids := make([]string, 0, len(e.opts.Only))
	seen := make(map[string]bool, len(e.opts.Only))
	for _, id := range e.opts.Only {
		if _, ok := e.store.Get(id); !ok {
			return nil, fmt.Errorf("%w: %s", types.ErrUnknownRecord, id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// updateOne runs the per-processor steps in order: store the link, check
// freshness, fetch, merge.
func (e *Engine) updateOne(ctx context.Context, id string) Outcome {
	rec, _ := e.store.Get(id)
	link := e.store.Link(id)
	rec.Set(config.ColumnLink, link)
	out := Outcome{ID: id, URL: link}

	if !e.opts.Force && e.isFresh(rec) {
		e.logger.Info("skipping update", "name", rec.Get(config.ColumnName), "updated", rec.Get(config.ColumnUpdated))
		e.metrics.TasksSkipped.Add(1)
		out.Status = StatusSkipped
		return out
	}

	if err := ctx.Err(); err != nil {
		out.Status = StatusFailed
		out.Err = err
		return out
	}

	e.logger.Debug("used link", "link", link)
	page, err := e.fetcher.Fetch(ctx, link)
	if err != nil {
		out.Err = err
		var fe *types.FetchError
		if errors.As(err, &fe) && fe.IsPayload() {
			e.logger.Error("payload error", "url", link, "error", err)
			e.metrics.PayloadErrors.Add(1)
			out.Status = StatusNoContent
			return out
		}
		e.logger.Error("fetch failed", "url", link, "error", err)
		e.metrics.FetchErrors.Add(1)
		out.Status = StatusFailed
		return out
	}
	e.metrics.FetchesOK.Add(1)
	e.metrics.BytesDownloaded.Add(int64(len(page.Body)))
	out.Duration = page.FetchDuration

	mr, err := e.store.Merge(id, page)
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		return out
	}
	e.metrics.PatternMisses.Add(int64(len(mr.Missing)))
	if mr.NameMismatch {
		e.metrics.NameMismatches.Add(1)
	}
	if mr.Rejected {
		e.metrics.RecordsRejected.Add(1)
	}
	if !mr.Changed {
		out.Status = StatusNoContent
		return out
	}
	monitor.LogChanges(e.logger, mr.Changes)
	e.metrics.ColumnsChanged.Add(int64(len(mr.Changes)))
	e.metrics.RecordsMerged.Add(1)
	out.Status = StatusMerged
	return out
}

// isFresh reports whether the record's Updated date plus the window is
// still after today. Dates are compared as calendar days.
func (e *Engine) isFresh(rec *types.Record) bool {
	updated, ok := rec.Lookup(config.ColumnUpdated)
	if !ok || updated == "" {
		return false
	}
	day, err := time.Parse(records.DateLayout, updated)
	if err != nil {
		e.logger.Warn("unparseable Updated date, refetching", "id", rec.ID, "updated", updated)
		return false
	}
	now := e.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day.Add(e.opts.Window).After(today)
}
