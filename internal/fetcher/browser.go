package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/cpubench/internal/config"
	"github.com/IshaanNene/cpubench/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod.
// It is meant for pages that sit behind a JavaScript challenge.
type BrowserFetcher struct {
	browser *rod.Browser
	cfg     *config.FetcherConfig
	logger  *slog.Logger
}

// NewBrowserFetcher launches a headless Chromium and connects to it.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:    &cfg.Fetcher,
		logger: logger.With("component", "browser_fetcher"),
	}

	launchURL, err := bf.launchBrowser()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	bf.browser = browser

	bf.logger.Info("browser fetcher ready", "stealth", bf.cfg.Stealth)
	return bf, nil
}

// launchBrowser starts a Chromium instance with appropriate flags.
func (bf *BrowserFetcher) launchBrowser() (string, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	if bf.cfg.WindowSize != "" {
		l = l.Set("window-size", bf.cfg.WindowSize)
	}
	if len(bf.cfg.Proxies) > 0 {
		// Chromium takes a single proxy per process.
		l = l.Proxy(bf.cfg.Proxies[0])
	}

	return l.Launch()
}

// Fetch navigates to url and returns the rendered page content.
// Rod does not expose the document status code, so rendered pages are
// reported as 200.
func (bf *BrowserFetcher) Fetch(ctx context.Context, url string) (*types.Page, error) {
	start := time.Now()

	page, err := bf.newPage()
	if err != nil {
		return nil, &types.FetchError{URL: url, Err: err}
	}
	defer page.Close()

	page = page.Context(ctx)

	if len(bf.cfg.UserAgents) > 0 {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: bf.cfg.UserAgents[0],
		})
		if err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	if err := page.Timeout(bf.cfg.RequestTimeout).Navigate(url); err != nil {
		return nil, &types.FetchError{URL: url, Err: err}
	}

	if err := page.Timeout(bf.cfg.RequestTimeout).WaitStable(300 * time.Millisecond); err != nil {
		bf.logger.Warn("page stability timeout, continuing", "url", url, "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: url, Err: fmt.Errorf("%w: %v", types.ErrPayload, err)}
	}

	duration := time.Since(start)
	bf.logger.Info("got response", "status", 200, "url", url)
	bf.logger.Debug("browser fetch complete",
		"url", url,
		"size", len(html),
		"duration", duration,
	)

	if bf.cfg.DetectChallenges {
		if err := challengeError(url, 200, html); err != nil {
			return nil, err
		}
	}

	return types.NewBrowserPage(url, []byte(html), duration), nil
}

// newPage opens a blank tab, patched against automation detection when
// stealth is enabled.
func (bf *BrowserFetcher) newPage() (*rod.Page, error) {
	if bf.cfg.Stealth {
		page, err := stealth.Page(bf.browser)
		if err != nil {
			return nil, fmt.Errorf("stealth page: %w", err)
		}
		return page, nil
	}
	return bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
}

// Close shuts down the browser.
func (bf *BrowserFetcher) Close() error {
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
