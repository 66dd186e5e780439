package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/IshaanNene/cpubench/internal/types"
)

// RegexExtractor returns one capture group of the first match.
type RegexExtractor struct {
	re    *regexp.Regexp
	group int
}

// NewRegexExtractor compiles pattern. A group of 0 selects the first capture
// group, or the whole match when the pattern has no groups.
func NewRegexExtractor(pattern string, group int) (*RegexExtractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	if group == 0 && re.NumSubexp() > 0 {
		group = 1
	}
	if group > re.NumSubexp() {
		return nil, fmt.Errorf("regex %q has %d groups, group %d requested", pattern, re.NumSubexp(), group)
	}
	return &RegexExtractor{re: re, group: group}, nil
}

// Extract implements Extractor.
func (e *RegexExtractor) Extract(page *types.Page) (string, error) {
	match := e.re.FindStringSubmatch(page.Text())
	if match == nil {
		return "", types.ErrPatternMissing
	}
	return strings.TrimSpace(match[e.group]), nil
}

// CompositeExtractor joins all capture groups of the first match through a
// format string, e.g. "%s (%s)" for cores and threads.
type CompositeExtractor struct {
	re     *regexp.Regexp
	format string
}

// NewCompositeExtractor compiles pattern. An empty format joins groups with spaces.
func NewCompositeExtractor(pattern, format string) (*CompositeExtractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	if re.NumSubexp() == 0 {
		return nil, fmt.Errorf("composite regex %q has no capture groups", pattern)
	}
	return &CompositeExtractor{re: re, format: format}, nil
}

// Extract implements Extractor.
func (e *CompositeExtractor) Extract(page *types.Page) (string, error) {
	match := e.re.FindStringSubmatch(page.Text())
	if match == nil {
		return "", types.ErrPatternMissing
	}
	groups := match[1:]
	if e.format == "" {
		return strings.TrimSpace(strings.Join(groups, " ")), nil
	}
	args := make([]any, len(groups))
	for i, g := range groups {
		args[i] = g
	}
	return strings.TrimSpace(fmt.Sprintf(e.format, args...)), nil
}
