package config

import (
	"fmt"
	"net/url"
	"regexp"
)

// Reserved column names appended after the extractor columns.
const (
	ColumnLink    = "Link"
	ColumnUpdated = "Updated"
	ColumnName    = "Name"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := ValidateURL(cfg.Crawl.LinkBase); err != nil {
		return fmt.Errorf("crawl.link_base: %w", err)
	}
	if cfg.Crawl.StalenessWindow < 0 {
		return fmt.Errorf("crawl.staleness_window must be >= 0")
	}
	if cfg.Crawl.Concurrency < 0 {
		return fmt.Errorf("crawl.concurrency must be >= 0, got %d", cfg.Crawl.Concurrency)
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if r := cfg.Fetcher.ProxyRotation; r != "" && r != "round_robin" && r != "random" {
		return fmt.Errorf("fetcher.proxy_rotation must be 'round_robin' or 'random', got %q", r)
	}
	for i, p := range cfg.Fetcher.Proxies {
		if _, err := url.Parse(p); err != nil {
			return fmt.Errorf("fetcher.proxies[%d]: %w", i, err)
		}
	}

	if len(cfg.Extractors) == 0 {
		return fmt.Errorf("at least one extractor is required")
	}
	seen := make(map[string]bool, len(cfg.Extractors))
	for i, rule := range cfg.Extractors {
		if err := validateRule(rule); err != nil {
			return fmt.Errorf("extractors[%d]: %w", i, err)
		}
		if seen[rule.Name] {
			return fmt.Errorf("extractors[%d]: duplicate name %q", i, rule.Name)
		}
		seen[rule.Name] = true
	}
	if !seen[ColumnName] {
		return fmt.Errorf("an extractor named %q is required", ColumnName)
	}

	if len(cfg.Processors) == 0 {
		return fmt.Errorf("at least one processor is required")
	}
	ids := make(map[string]bool, len(cfg.Processors))
	for i, p := range cfg.Processors {
		if p.ID == "" {
			return fmt.Errorf("processors[%d]: id is required", i)
		}
		if ids[p.ID] {
			return fmt.Errorf("processors[%d]: duplicate id %q", i, p.ID)
		}
		ids[p.ID] = true
	}

	for i, stage := range cfg.Pipeline {
		if err := validateStage(stage); err != nil {
			return fmt.Errorf("pipeline[%d]: %w", i, err)
		}
	}

	if cfg.Storage.TablePath == "" {
		return fmt.Errorf("storage.table_path is required")
	}
	if cfg.Storage.Mongo.URI != "" && (cfg.Storage.Mongo.Database == "" || cfg.Storage.Mongo.Collection == "") {
		return fmt.Errorf("storage.mongo needs database and collection when uri is set")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

func validateRule(rule ExtractorRule) error {
	if rule.Name == "" {
		return fmt.Errorf("name is required")
	}
	if rule.Name == ColumnLink || rule.Name == ColumnUpdated {
		return fmt.Errorf("name %q is reserved", rule.Name)
	}
	switch rule.Type {
	case "regex", "composite":
		if rule.Pattern == "" {
			return fmt.Errorf("%s rule %q needs a pattern", rule.Type, rule.Name)
		}
	case "css", "xpath":
		if rule.Selector == "" {
			return fmt.Errorf("%s rule %q needs a selector", rule.Type, rule.Name)
		}
	default:
		return fmt.Errorf("rule %q has unknown type %q (valid: regex, composite, css, xpath)", rule.Name, rule.Type)
	}
	if rule.Group < 0 {
		return fmt.Errorf("rule %q: group must be >= 0", rule.Name)
	}
	return nil
}

func validateStage(stage PipelineStage) error {
	switch stage.Name {
	case "html_sanitize", "trim":
	case "number_normalize", "required_fields":
		if len(stage.Columns) == 0 {
			return fmt.Errorf("%s needs columns", stage.Name)
		}
	case "field_validate":
		if len(stage.Columns) == 0 || stage.Pattern == "" {
			return fmt.Errorf("field_validate needs columns and a pattern")
		}
		if _, err := regexp.Compile(stage.Pattern); err != nil {
			return fmt.Errorf("field_validate: %w", err)
		}
	default:
		return fmt.Errorf("unknown stage %q", stage.Name)
	}
	return nil
}

// ValidateURL checks if a URL string is usable as a link base.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
