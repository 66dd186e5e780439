package parser

import (
	"errors"
	"testing"

	"github.com/IshaanNene/cpubench/internal/config"
	"github.com/IshaanNene/cpubench/internal/types"
)

const cpuPage = `<!DOCTYPE html>
<html>
<head><title>PassMark - Intel Core i5-3570K</title></head>
<body>
<div class="desc">
  <div class="desc-header"><span class="cpuname">Intel Core i5-3570K @ 3.40GHz</span></div>
  <p><strong>Cores</strong>: 4 <strong>Threads</strong>: 4</p>
  <p><strong>Typical TDP:</strong> 77 W<sup>3</sup></p>
  <p><strong class="bg-table-row">CPU First Seen on Charts:</strong>&nbsp;&nbsp;Q2 2012</p>
  <div class="right-desc">
    <span style="font-family: Arial, Helvetica, sans-serif;font-size: 44px;	font-weight: bold; color: #F48A18;">4689</span>
    <strong>Single Thread Rating: </strong>2050<br>
    <strong>Samples: </strong>7913*<br>
  </div>
  <a class="vendor" href="https://www.intel.com/" data-vendor="intel">Intel</a>
</div>
</body>
</html>`

func page(body string) *types.Page {
	return types.NewTextPage("https://example/cpu.php?id=828", body)
}

func TestDefaultRegistryExtractsAllColumns(t *testing.T) {
	reg, err := NewRegistry(config.DefaultExtractors())
	if err != nil {
		t.Fatalf("compile default rules: %v", err)
	}

	want := map[string]string{
		"Name":          "Intel Core i5-3570K",
		"First Seen":    "Q2 2012",
		"Single Thread": "2050",
		"Multi Thread":  "4689",
		"TDP":           "77",
		"Cores":         "4 (4)",
		"# Samples":     "7913",
	}

	p := page(cpuPage)
	for _, f := range reg {
		got, err := f.Extractor.Extract(p)
		if err != nil {
			t.Errorf("%s: unexpected error %v", f.Name, err)
			continue
		}
		if got != want[f.Name] {
			t.Errorf("%s: expected %q, got %q", f.Name, want[f.Name], got)
		}
	}
}

func TestRegistryNamesKeepOrder(t *testing.T) {
	reg, err := NewRegistry(config.DefaultExtractors())
	if err != nil {
		t.Fatal(err)
	}
	names := reg.Names()
	if names[0] != "Name" || names[len(names)-1] != "# Samples" {
		t.Errorf("unexpected order: %v", names)
	}
}

func TestRegexMissingPattern(t *testing.T) {
	ext, err := NewRegexExtractor(`<strong>Typical TDP:</strong> *(\d+) W`, 1)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ext.Extract(page("<html><body>nothing here</body></html>"))
	if !errors.Is(err, types.ErrPatternMissing) {
		t.Errorf("expected ErrPatternMissing, got %v", err)
	}
}

func TestRegexGroupSelection(t *testing.T) {
	ext, err := NewRegexExtractor(`id=(\d+)&rev=(\d+)`, 2)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ext.Extract(page("x id=12&rev=7 y"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "7" {
		t.Errorf("expected group 2 = 7, got %q", got)
	}

	whole, err := NewRegexExtractor(`\d+ W`, 0)
	if err != nil {
		t.Fatal(err)
	}
	got, _ = whole.Extract(page("TDP 65 W"))
	if got != "65 W" {
		t.Errorf("expected whole match, got %q", got)
	}
}

func TestRegexRejectsBadInput(t *testing.T) {
	if _, err := NewRegexExtractor(`(unclosed`, 1); err == nil {
		t.Error("expected compile error")
	}
	if _, err := NewRegexExtractor(`(\d+)`, 3); err == nil {
		t.Error("expected error for out of range group")
	}
	if _, err := NewCompositeExtractor(`\d+`, "%s"); err == nil {
		t.Error("expected error for composite without groups")
	}
}

func TestCompositeWithoutFormat(t *testing.T) {
	ext, err := NewCompositeExtractor(`(\d+)x(\d+)`, "")
	if err != nil {
		t.Fatal(err)
	}
	got, err := ext.Extract(page("1920x1080"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "1920 1080" {
		t.Errorf("expected space joined groups, got %q", got)
	}
}

func TestCSSExtractor(t *testing.T) {
	p := page(cpuPage)

	got, err := NewCSSExtractor("span.cpuname", "").Extract(p)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Intel Core i5-3570K @ 3.40GHz" {
		t.Errorf("unexpected text %q", got)
	}

	got, err = NewCSSExtractor("a.vendor", "data-vendor").Extract(p)
	if err != nil {
		t.Fatal(err)
	}
	if got != "intel" {
		t.Errorf("unexpected attribute %q", got)
	}

	if _, err := NewCSSExtractor("a.vendor", "title").Extract(p); !errors.Is(err, types.ErrPatternMissing) {
		t.Errorf("missing attribute should be ErrPatternMissing, got %v", err)
	}
	if _, err := NewCSSExtractor("div.gone", "").Extract(p); !errors.Is(err, types.ErrPatternMissing) {
		t.Errorf("missing element should be ErrPatternMissing, got %v", err)
	}
}

func TestXPathExtractor(t *testing.T) {
	p := page(cpuPage)

	ext, err := NewXPathExtractor(`//span[@class="cpuname"]`, "")
	if err != nil {
		t.Fatal(err)
	}
	got, err := ext.Extract(p)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Intel Core i5-3570K @ 3.40GHz" {
		t.Errorf("unexpected text %q", got)
	}

	href, err := NewXPathExtractor(`//a[@class="vendor"]`, "href")
	if err != nil {
		t.Fatal(err)
	}
	got, err = href.Extract(p)
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://www.intel.com/" {
		t.Errorf("unexpected href %q", got)
	}

	gone, _ := NewXPathExtractor(`//table`, "")
	if _, err := gone.Extract(p); !errors.Is(err, types.ErrPatternMissing) {
		t.Errorf("expected ErrPatternMissing, got %v", err)
	}

	if _, err := NewXPathExtractor(`//span[`, ""); err == nil {
		t.Error("expected compile error for bad xpath")
	}
}

func TestNewExtractorUnknownType(t *testing.T) {
	_, err := NewExtractor(config.ExtractorRule{Name: "X", Type: "json"})
	if !errors.Is(err, types.ErrUnknownExtractor) {
		t.Errorf("expected ErrUnknownExtractor, got %v", err)
	}
}
