package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for cpubench.
type Config struct {
	Crawl      CrawlConfig     `mapstructure:"crawl"      yaml:"crawl"`
	Fetcher    FetcherConfig   `mapstructure:"fetcher"    yaml:"fetcher"`
	Extractors []ExtractorRule `mapstructure:"extractors" yaml:"extractors"`
	Processors []Processor     `mapstructure:"processors" yaml:"processors"`
	Pipeline   []PipelineStage `mapstructure:"pipeline"   yaml:"pipeline"`
	Storage    StorageConfig   `mapstructure:"storage"    yaml:"storage"`
	Logging    LoggingConfig   `mapstructure:"logging"    yaml:"logging"`
}

// CrawlConfig controls the fetch-and-merge run.
type CrawlConfig struct {
	LinkBase        string        `mapstructure:"link_base"        yaml:"link_base"`
	StalenessWindow time.Duration `mapstructure:"staleness_window" yaml:"staleness_window"`
	Placeholder     string        `mapstructure:"placeholder"      yaml:"placeholder"`
	Concurrency     int           `mapstructure:"concurrency"      yaml:"concurrency"` // 0 = one task per processor
	Force           bool          `mapstructure:"force"            yaml:"force"`
	Only            []string      `mapstructure:"only"             yaml:"only"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"` // http, browser
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`
	Stealth         bool          `mapstructure:"stealth"           yaml:"stealth"`
	WindowSize      string        `mapstructure:"window_size"       yaml:"window_size"`

	// Proxies are rotated per request; empty means the environment proxy.
	Proxies       []string `mapstructure:"proxies"        yaml:"proxies"`
	ProxyRotation string   `mapstructure:"proxy_rotation" yaml:"proxy_rotation"` // round_robin, random

	// DetectChallenges treats CAPTCHA and bot-check pages as unreadable.
	DetectChallenges bool `mapstructure:"detect_challenges" yaml:"detect_challenges"`
}

// ExtractorRule defines how one table column is derived from a page.
type ExtractorRule struct {
	Name      string `mapstructure:"name"      yaml:"name"`
	Type      string `mapstructure:"type"      yaml:"type"` // regex, composite, css, xpath
	Pattern   string `mapstructure:"pattern"   yaml:"pattern"`
	Group     int    `mapstructure:"group"     yaml:"group"`
	Format    string `mapstructure:"format"    yaml:"format"`
	Selector  string `mapstructure:"selector"  yaml:"selector"`
	Attribute string `mapstructure:"attribute" yaml:"attribute"`
}

// Processor is a seeded table row: the site's processor id and its expected name.
type Processor struct {
	ID   string `mapstructure:"id"   yaml:"id"`
	Name string `mapstructure:"name" yaml:"name"`
}

// PipelineStage configures one value-cleaning step applied to freshly
// extracted columns before they are merged.
type PipelineStage struct {
	Name    string   `mapstructure:"name"    yaml:"name"` // html_sanitize, trim, number_normalize, field_validate, required_fields
	Columns []string `mapstructure:"columns" yaml:"columns"`
	Pattern string   `mapstructure:"pattern" yaml:"pattern"`
}

// StorageConfig controls where the table is persisted.
type StorageConfig struct {
	TablePath string      `mapstructure:"table_path" yaml:"table_path"`
	JSONPath  string      `mapstructure:"json_path"  yaml:"json_path"`
	Mongo     MongoConfig `mapstructure:"mongo"      yaml:"mongo"`
}

// MongoConfig configures the optional MongoDB mirror.
type MongoConfig struct {
	URI        string        `mapstructure:"uri"        yaml:"uri"`
	Database   string        `mapstructure:"database"   yaml:"database"`
	Collection string        `mapstructure:"collection" yaml:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"    yaml:"timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"` // stderr, stdout or a file path
}

// DefaultLinkBase is the processor page prefix on cpubenchmark.net.
const DefaultLinkBase = "https://www.cpubenchmark.net/cpu.php?id="

// DefaultExtractors returns the column rules for cpubenchmark.net processor pages.
func DefaultExtractors() []ExtractorRule {
	return []ExtractorRule{
		{Name: "Name", Type: "regex", Pattern: `<span class="cpuname"> *([^@<]*) *(@[^<]*)?</span>`, Group: 1},
		{Name: "First Seen", Type: "regex", Pattern: `<strong class="bg-table-row">CPU First Seen on Charts:</strong>(&nbsp;)*([^<]*)</p>`, Group: 2},
		{Name: "Single Thread", Type: "regex", Pattern: `<strong> *Single Thread Rating: *</strong> *(\d+)<br/?>`, Group: 1},
		{Name: "Multi Thread", Type: "regex", Pattern: "<span style=\"font-family: Arial, Helvetica, sans-serif;font-size: 44px;\tfont-weight: bold; color: #F48A18;\">(\\d+)</span>", Group: 1},
		{Name: "TDP", Type: "regex", Pattern: `<strong>Typical TDP:</strong> *(\d+) *W(<sup>\d+</sup>)?</p>`, Group: 1},
		{Name: "Cores", Type: "composite", Pattern: `<strong>Cores:?</strong>:? *(\d+) *<strong>Threads:?</strong>:? *(\d+) *</p>`, Format: "%s (%s)"},
		{Name: "# Samples", Type: "regex", Pattern: `<strong> *Samples: *</strong> *(\d+)\s*\*?\s*<br/?>`, Group: 1},
	}
}

// DefaultProcessors returns the built-in seed list.
func DefaultProcessors() []Processor {
	return []Processor{
		{ID: "1850", Name: "Intel Core i5-3337U"},
		{ID: "828", Name: "Intel Core i5-3570K"},
		{ID: "3447", Name: "Intel Core i5-8365U"},
		{ID: "3560", Name: "Intel Core i3-1005G1"},
		{ID: "3877", Name: "Intel Core i3-1115G4 @ 3.00GHz"},
		{ID: "3725", Name: "AMD Ryzen 5 4600U"},
		{ID: "3708", Name: "AMD Ryzen 5 4600H"},
		{ID: "4141", Name: "AMD Ryzen 5 5500U"},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			LinkBase:        DefaultLinkBase,
			StalenessWindow: 7 * 24 * time.Hour,
			Placeholder:     "-",
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			RequestTimeout:  30 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
			WindowSize:       "1920,1080",
			ProxyRotation:    "round_robin",
			DetectChallenges: true,
		},
		Extractors: DefaultExtractors(),
		Processors: DefaultProcessors(),
		Pipeline:   []PipelineStage{{Name: "html_sanitize"}},
		Storage: StorageConfig{
			TablePath: "processors.csv",
			Mongo: MongoConfig{
				Database:   "cpubench",
				Collection: "processors",
				Timeout:    10 * time.Second,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// ExtractorNames returns the configured column names in order.
func (c *Config) ExtractorNames() []string {
	names := make([]string, len(c.Extractors))
	for i, rule := range c.Extractors {
		names[i] = rule.Name
	}
	return names
}
