package fetcher

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"sync/atomic"
)

// ProxyManager rotates requests over a fixed list of proxies.
type ProxyManager struct {
	proxies  []*url.URL
	rotation string
	index    atomic.Int64
	logger   *slog.Logger
}

// NewProxyManager parses the proxy URLs. rotation is "round_robin" (default)
// or "random".
func NewProxyManager(rawURLs []string, rotation string, logger *slog.Logger) (*ProxyManager, error) {
	pm := &ProxyManager{
		proxies:  make([]*url.URL, 0, len(rawURLs)),
		rotation: rotation,
		logger:   logger.With("component", "proxy_manager"),
	}

	for _, rawURL := range rawURLs {
		u, err := url.Parse(rawURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q", rawURL)
		}
		pm.proxies = append(pm.proxies, u)
	}

	pm.logger.Info("proxy manager initialized", "count", len(pm.proxies), "rotation", rotation)
	return pm, nil
}

// ProxyFunc returns an http.Transport-compatible proxy function.
func (pm *ProxyManager) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		proxy := pm.Next()
		if proxy != nil {
			pm.logger.Debug("using proxy", "proxy", proxy.Host, "url", req.URL.String())
		}
		return proxy, nil
	}
}

// Next returns the next proxy URL, or nil for a direct connection.
func (pm *ProxyManager) Next() *url.URL {
	if len(pm.proxies) == 0 {
		return nil
	}
	switch pm.rotation {
	case "random":
		return pm.proxies[rand.Intn(len(pm.proxies))]
	default: // round_robin
		idx := (pm.index.Add(1) - 1) % int64(len(pm.proxies))
		return pm.proxies[idx]
	}
}

// Count returns the number of proxies.
func (pm *ProxyManager) Count() int {
	return len(pm.proxies)
}
