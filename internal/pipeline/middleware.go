package pipeline

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/IshaanNene/cpubench/internal/types"
)

// --- Value Cleaning Middleware ---

// HTMLSanitizeMiddleware strips tags, decodes entities and collapses
// whitespace in every value. Regex captures on raw HTML often carry
// "&nbsp;" or a stray <sup>.
type HTMLSanitizeMiddleware struct {
	stripRe *regexp.Regexp
}

func NewHTMLSanitizeMiddleware() *HTMLSanitizeMiddleware {
	return &HTMLSanitizeMiddleware{
		stripRe: regexp.MustCompile(`<[^>]*>`),
	}
}

func (m *HTMLSanitizeMiddleware) Name() string { return "html_sanitize" }

func (m *HTMLSanitizeMiddleware) Process(rec *types.Record) (*types.Record, error) {
	for key, s := range rec.Fields {
		if s == "" {
			continue
		}
		cleaned := m.stripRe.ReplaceAllString(s, "")
		cleaned = html.UnescapeString(cleaned)
		cleaned = strings.Join(strings.Fields(cleaned), " ")
		rec.Set(key, cleaned)
	}
	return rec, nil
}

// NumberNormalizeMiddleware removes thousands separators and any non-digit
// decoration from numeric columns ("7,913*" becomes "7913"). Values with no
// digits are left alone.
type NumberNormalizeMiddleware struct {
	Columns     []string
	Placeholder string
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

func (m *NumberNormalizeMiddleware) Name() string { return "number_normalize" }

func (m *NumberNormalizeMiddleware) Process(rec *types.Record) (*types.Record, error) {
	for _, col := range m.Columns {
		s, ok := rec.Lookup(col)
		if !ok || s == "" || s == m.Placeholder {
			continue
		}
		numeric := nonNumeric.ReplaceAllString(s, "")
		if strings.IndexFunc(numeric, func(r rune) bool { return r >= '0' && r <= '9' }) < 0 {
			continue
		}
		rec.Set(col, numeric)
	}
	return rec, nil
}

// FieldValidateMiddleware replaces values that do not match a pattern with
// the placeholder.
type FieldValidateMiddleware struct {
	columns     []string
	re          *regexp.Regexp
	placeholder string
}

func NewFieldValidateMiddleware(columns []string, pattern, placeholder string) (*FieldValidateMiddleware, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid validation regex %q: %w", pattern, err)
	}
	return &FieldValidateMiddleware{
		columns:     columns,
		re:          re,
		placeholder: placeholder,
	}, nil
}

func (m *FieldValidateMiddleware) Name() string { return "field_validate" }

func (m *FieldValidateMiddleware) Process(rec *types.Record) (*types.Record, error) {
	for _, col := range m.columns {
		s, ok := rec.Lookup(col)
		if !ok || s == m.placeholder {
			continue
		}
		if !m.re.MatchString(s) {
			rec.Set(col, m.placeholder)
		}
	}
	return rec, nil
}
