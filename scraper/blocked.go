package scraper

import (
	"regexp"
	"strings"
)

// BlockDetector detects bot walls and CAPTCHAs in partner search pages. A
// blocked page is treated exactly like an empty search result.
type BlockDetector struct {
	botPatterns     []*regexp.Regexp
	captchaPatterns []*regexp.Regexp
	errorPatterns   []*regexp.Regexp
}

// NewBlockDetector creates a new block detector
func NewBlockDetector() *BlockDetector {
	return &BlockDetector{
		botPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)access denied`),
			regexp.MustCompile(`(?i)bot detected`),
			regexp.MustCompile(`(?i)please verify you are human`),
			regexp.MustCompile(`(?i)security check`),
			regexp.MustCompile(`(?i)checking your browser`),
			regexp.MustCompile(`(?i)ddos protection`),
			regexp.MustCompile(`(?i)cloudflare`),
			regexp.MustCompile(`(?i)too many requests`),
			regexp.MustCompile(`(?i)rate limit`),
		},
		captchaPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)captcha`),
			regexp.MustCompile(`(?i)recaptcha`),
			regexp.MustCompile(`(?i)hcaptcha`),
			regexp.MustCompile(`(?i)turnstile`),
			regexp.MustCompile(`(?i)verify you are human`),
		},
		errorPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)403 forbidden`),
			regexp.MustCompile(`(?i)429 too many requests`),
			regexp.MustCompile(`(?i)503 service unavailable`),
			regexp.MustCompile(`(?i)site temporarily unavailable`),
		},
	}
}

// Blocked checks whether the page content indicates a bot wall, CAPTCHA or
// hard HTTP error page, and returns the matched reason.
func (bd *BlockDetector) Blocked(html string) (bool, string) {
	content := strings.ToLower(html)

	for _, pattern := range bd.captchaPatterns {
		if pattern.MatchString(content) {
			return true, "CAPTCHA detected: " + pattern.String()
		}
	}
	for _, pattern := range bd.botPatterns {
		if pattern.MatchString(content) {
			return true, "bot wall: " + pattern.String()
		}
	}
	for _, pattern := range bd.errorPatterns {
		if pattern.MatchString(content) {
			return true, "error page: " + pattern.String()
		}
	}

	return false, ""
}
