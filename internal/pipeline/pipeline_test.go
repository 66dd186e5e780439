package pipeline

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/IshaanNene/cpubench/internal/config"
	"github.com/IshaanNene/cpubench/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func record(fields map[string]string) *types.Record {
	rec := types.NewRecord("828", "")
	for k, v := range fields {
		rec.Set(k, v)
	}
	return rec
}

func TestPipelineBasic(t *testing.T) {
	p := New(testLogger)
	p.Use(&TrimMiddleware{})

	result, err := p.Process(record(map[string]string{"Name": "  Intel Core i5-3570K  ", "TDP": " 77 "}))
	if err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	if result.Get("Name") != "Intel Core i5-3570K" || result.Get("TDP") != "77" {
		t.Errorf("expected trimmed values, got %v", result.Fields)
	}
	if p.Len() != 1 {
		t.Errorf("expected 1 middleware, got %d", p.Len())
	}
}

func TestHTMLSanitizeMiddleware(t *testing.T) {
	m := NewHTMLSanitizeMiddleware()
	rec := record(map[string]string{
		"First Seen": "&nbsp;&nbsp;Q2   2012",
		"TDP":        "77 W<sup>3</sup>",
		"Name":       "Intel&reg; Core&trade;",
	})

	result, err := m.Process(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"First Seen": "Q2 2012",
		"TDP":        "77 W3",
		"Name":       "Intel® Core™",
	}
	if diff := cmp.Diff(want, result.Fields); diff != "" {
		t.Errorf("sanitize mismatch (-want +got):\n%s", diff)
	}
}

func TestNumberNormalizeMiddleware(t *testing.T) {
	m := &NumberNormalizeMiddleware{Columns: []string{"# Samples", "Multi Thread", "TDP"}, Placeholder: "-"}
	rec := record(map[string]string{
		"# Samples":    "7,913*",
		"Multi Thread": "n/a",
		"TDP":          "-",
		"Name":         "AMD Ryzen 5 4600H",
	})

	result, _ := m.Process(rec)
	if got := result.Get("# Samples"); got != "7913" {
		t.Errorf("expected 7913, got %q", got)
	}
	if got := result.Get("Multi Thread"); got != "n/a" {
		t.Errorf("value without digits should be kept, got %q", got)
	}
	if got := result.Get("TDP"); got != "-" {
		t.Errorf("placeholder should be kept, got %q", got)
	}
	if got := result.Get("Name"); got != "AMD Ryzen 5 4600H" {
		t.Errorf("unlisted column changed: %q", got)
	}
}

func TestRequiredFieldsMiddleware(t *testing.T) {
	m := &RequiredFieldsMiddleware{Columns: []string{"Name"}, Placeholder: "-"}

	result, err := m.Process(record(map[string]string{"Name": "AMD Ryzen 5 5500U"}))
	if err != nil || result == nil {
		t.Error("record with required column should pass")
	}

	for _, v := range []string{"", "-"} {
		result, _ = m.Process(record(map[string]string{"Name": v}))
		if result != nil {
			t.Errorf("Name=%q should be rejected", v)
		}
	}
}

func TestFieldValidateMiddleware(t *testing.T) {
	m, err := NewFieldValidateMiddleware([]string{"Single Thread", "TDP"}, `^\d+$`, "-")
	if err != nil {
		t.Fatal(err)
	}
	result, _ := m.Process(record(map[string]string{"Single Thread": "2050", "TDP": "77 W"}))
	if result.Get("Single Thread") != "2050" {
		t.Errorf("valid value changed: %q", result.Get("Single Thread"))
	}
	if result.Get("TDP") != "-" {
		t.Errorf("invalid value should become placeholder, got %q", result.Get("TDP"))
	}

	if _, err := NewFieldValidateMiddleware([]string{"TDP"}, `(`, "-"); err == nil {
		t.Error("expected error for invalid regex")
	}
}

type failingMiddleware struct{}

func (failingMiddleware) Name() string { return "failing" }
func (failingMiddleware) Process(*types.Record) (*types.Record, error) {
	return nil, errors.New("boom")
}

func TestPipelineErrorAndReject(t *testing.T) {
	p := New(testLogger)
	p.Use(failingMiddleware{})
	_, err := p.Process(record(nil))
	var perr *types.PipelineError
	if !errors.As(err, &perr) || perr.Stage != "failing" || perr.RecordID != "828" {
		t.Errorf("expected PipelineError from stage failing, got %v", err)
	}

	p = New(testLogger)
	p.Use(&RequiredFieldsMiddleware{Columns: []string{"Name"}})
	p.Use(failingMiddleware{})
	result, err := p.Process(record(nil))
	if result != nil || err != nil {
		t.Errorf("rejection should stop the chain, got %v, %v", result, err)
	}
}

func TestFromConfig(t *testing.T) {
	p, err := FromConfig([]config.PipelineStage{
		{Name: "html_sanitize"},
		{Name: "number_normalize", Columns: []string{"# Samples"}},
		{Name: "required_fields", Columns: []string{"Name"}},
	}, "-", testLogger)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	if p.Len() != 3 {
		t.Errorf("expected 3 stages, got %d", p.Len())
	}

	result, err := p.Process(record(map[string]string{"Name": " Intel Core i3-1115G4 ", "# Samples": "1,024"}))
	if err != nil || result == nil {
		t.Fatalf("unexpected result %v, %v", result, err)
	}
	if result.Get("Name") != "Intel Core i3-1115G4" || result.Get("# Samples") != "1024" {
		t.Errorf("unexpected values %v", result.Fields)
	}

	if _, err := FromConfig([]config.PipelineStage{{Name: "pii_redact"}}, "-", testLogger); err == nil {
		t.Error("expected error for unknown stage")
	}
}
