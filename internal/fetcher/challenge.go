package fetcher

import (
	"fmt"
	"strings"

	"github.com/IshaanNene/cpubench/internal/types"
)

// ChallengeType identifies a bot check served instead of the real page.
type ChallengeType string

const (
	ChallengeReCaptcha  ChallengeType = "recaptcha"
	ChallengeHCaptcha   ChallengeType = "hcaptcha"
	ChallengeTurnstile  ChallengeType = "turnstile"
	ChallengeCloudflare ChallengeType = "cloudflare"
)

// DetectChallenge checks a page body for common CAPTCHA and interstitial
// markers. It returns "" for an ordinary page.
func DetectChallenge(html string) ChallengeType {
	htmlLower := strings.ToLower(html)
	hasSiteKey := extractBetween(html, `data-sitekey="`, `"`) != ""

	switch {
	case hasSiteKey && strings.Contains(htmlLower, "g-recaptcha"):
		return ChallengeReCaptcha
	case hasSiteKey && strings.Contains(htmlLower, "h-captcha"):
		return ChallengeHCaptcha
	case hasSiteKey && strings.Contains(htmlLower, "cf-turnstile"):
		return ChallengeTurnstile
	case strings.Contains(htmlLower, "<title>just a moment...</title>"),
		strings.Contains(htmlLower, "cf-browser-verification"),
		strings.Contains(htmlLower, "challenge-platform"):
		return ChallengeCloudflare
	}
	return ""
}

// challengeError returns a payload error when body is a bot check.
func challengeError(url string, status int, body string) error {
	kind := DetectChallenge(body)
	if kind == "" {
		return nil
	}
	return &types.FetchError{
		URL:        url,
		StatusCode: status,
		Err:        fmt.Errorf("%w: %w (%s)", types.ErrPayload, types.ErrChallenge, kind),
	}
}

// extractBetween extracts a substring between two delimiters.
func extractBetween(s, start, end string) string {
	idx := strings.Index(s, start)
	if idx < 0 {
		return ""
	}
	s = s[idx+len(start):]
	idx = strings.Index(s, end)
	if idx < 0 {
		return ""
	}
	return s[:idx]
}
