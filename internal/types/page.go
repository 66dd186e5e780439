package types

import (
	"bytes"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Page is a fetched processor page.
type Page struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the raw response body bytes.
	Body []byte

	// FetchDuration is how long the fetch took.
	FetchDuration time.Duration

	doc  *goquery.Document
	node *html.Node
}

// NewPage creates a Page from an http.Response and its already-read body.
func NewPage(url string, httpResp *http.Response, body []byte, duration time.Duration) *Page {
	return &Page{
		URL:           url,
		StatusCode:    httpResp.StatusCode,
		Body:          body,
		FetchDuration: duration,
	}
}

// NewBrowserPage creates a Page from headless browser output.
func NewBrowserPage(url string, body []byte, duration time.Duration) *Page {
	return &Page{
		URL:           url,
		StatusCode:    http.StatusOK,
		Body:          body,
		FetchDuration: duration,
	}
}

// NewTextPage wraps raw page text, for pages that did not come from a fetcher.
func NewTextPage(url, text string) *Page {
	return &Page{
		URL:        url,
		StatusCode: http.StatusOK,
		Body:       []byte(text),
	}
}

// Text returns the body as a string.
func (p *Page) Text() string {
	return string(p.Body)
}

// Document returns a parsed goquery document, lazily initializing it.
// A Page is owned by a single merge, so no locking is done.
func (p *Page) Document() (*goquery.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, err
	}
	p.doc = doc
	return doc, nil
}

// Node returns the parsed HTML tree used for XPath queries.
func (p *Page) Node() (*html.Node, error) {
	if p.node != nil {
		return p.node, nil
	}
	node, err := htmlquery.Parse(bytes.NewReader(p.Body))
	if err != nil {
		return nil, err
	}
	p.node = node
	return node, nil
}
