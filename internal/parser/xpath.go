package parser

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"

	"github.com/IshaanNene/cpubench/internal/types"
)

// XPathExtractor reads the first node matching an XPath expression.
type XPathExtractor struct {
	expr      *xpath.Expr
	attribute string
}

// NewXPathExtractor compiles expr up front so a typo fails at startup
// instead of on every page.
func NewXPathExtractor(expr, attribute string) (*XPathExtractor, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return &XPathExtractor{expr: compiled, attribute: attribute}, nil
}

// Extract implements Extractor.
func (e *XPathExtractor) Extract(page *types.Page) (string, error) {
	doc, err := page.Node()
	if err != nil {
		return "", err
	}

	node := htmlquery.QuerySelector(doc, e.expr)
	if node == nil {
		return "", types.ErrPatternMissing
	}

	switch e.attribute {
	case "", "text":
		return strings.TrimSpace(htmlquery.InnerText(node)), nil
	case "html":
		return strings.TrimSpace(htmlquery.OutputHTML(node, false)), nil
	default:
		if !hasAttr(node.Attr, e.attribute) {
			return "", types.ErrPatternMissing
		}
		return strings.TrimSpace(htmlquery.SelectAttr(node, e.attribute)), nil
	}
}

func hasAttr(attrs []html.Attribute, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}
