package parser

import (
	"fmt"

	"github.com/IshaanNene/cpubench/internal/config"
	"github.com/IshaanNene/cpubench/internal/types"
)

// Extractor derives a single column value from a fetched page.
// It returns types.ErrPatternMissing when the page has nothing to extract.
type Extractor interface {
	Extract(page *types.Page) (string, error)
}

// Field pairs a column name with the extractor that fills it.
type Field struct {
	Name      string
	Extractor Extractor
}

// Registry is the ordered list of columns extracted from every page.
// Its order is the table's column order.
type Registry []Field

// Names returns the column names in registry order.
func (r Registry) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// NewRegistry compiles extractor rules into a Registry.
func NewRegistry(rules []config.ExtractorRule) (Registry, error) {
	reg := make(Registry, 0, len(rules))
	for _, rule := range rules {
		ext, err := NewExtractor(rule)
		if err != nil {
			return nil, fmt.Errorf("extractor %q: %w", rule.Name, err)
		}
		reg = append(reg, Field{Name: rule.Name, Extractor: ext})
	}
	return reg, nil
}

// NewExtractor builds the extractor variant named by rule.Type.
func NewExtractor(rule config.ExtractorRule) (Extractor, error) {
	switch rule.Type {
	case "regex":
		return NewRegexExtractor(rule.Pattern, rule.Group)
	case "composite":
		return NewCompositeExtractor(rule.Pattern, rule.Format)
	case "css":
		return NewCSSExtractor(rule.Selector, rule.Attribute), nil
	case "xpath":
		return NewXPathExtractor(rule.Selector, rule.Attribute)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownExtractor, rule.Type)
	}
}
