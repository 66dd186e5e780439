package parser

import (
	"strings"

	"github.com/IshaanNene/cpubench/internal/types"
)

// CSSExtractor reads the first element matching a CSS selector via goquery.
type CSSExtractor struct {
	selector  string
	attribute string
}

// NewCSSExtractor creates a CSS extractor. An empty attribute (or "text")
// reads the element text; any other value reads that attribute.
func NewCSSExtractor(selector, attribute string) *CSSExtractor {
	return &CSSExtractor{selector: selector, attribute: attribute}
}

// Extract implements Extractor.
func (e *CSSExtractor) Extract(page *types.Page) (string, error) {
	doc, err := page.Document()
	if err != nil {
		return "", err
	}

	sel := doc.Find(e.selector).First()
	if sel.Length() == 0 {
		return "", types.ErrPatternMissing
	}

	switch e.attribute {
	case "", "text":
		return strings.TrimSpace(sel.Text()), nil
	case "html":
		h, err := sel.Html()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(h), nil
	default:
		val, ok := sel.Attr(e.attribute)
		if !ok {
			return "", types.ErrPatternMissing
		}
		return strings.TrimSpace(val), nil
	}
}
