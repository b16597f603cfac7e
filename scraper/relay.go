package scraper

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RelayResponse is the answer to one cross-origin fetch. HTML is empty when
// the fetch failed for any reason; the pipeline treats that as "no results",
// never as an error.
type RelayResponse struct {
	URL  string
	HTML string
}

// FetchRelay is the privileged fetch capability the pipeline uses to reach
// partner sites.
type FetchRelay interface {
	FindPrice(ctx context.Context, url string) RelayResponse
}

// HTTPRelay fetches partner pages with a plain HTTP client. Good enough for
// server-rendered shops; JS-heavy shops need the browser relay.
type HTTPRelay struct {
	client *http.Client
}

func NewHTTPRelay(timeout time.Duration) *HTTPRelay {
	return &HTTPRelay{
		client: &http.Client{Timeout: timeout},
	}
}

func (r *HTTPRelay) FindPrice(ctx context.Context, url string) RelayResponse {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("Relay: failed to build request for %s: %v", url, err)
		return RelayResponse{URL: url}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,da;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		log.Printf("Relay: fetch failed for %s: %v", url, err)
		return RelayResponse{URL: url}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Relay: %s returned status %d", url, resp.StatusCode)
		return RelayResponse{URL: url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		log.Printf("Relay: failed to read body for %s: %v", url, err)
		return RelayResponse{URL: url}
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return RelayResponse{URL: finalURL, HTML: string(body)}
}

// BrowserRelay fetches partner pages through a headless browser, so pages
// that render their prices client-side still produce parseable HTML.
type BrowserRelay struct {
	browser *rod.Browser
}

// NewBrowserRelay launches the headless browser once and reuses it for all
// fetches.
func NewBrowserRelay() (*BrowserRelay, error) {
	// Configure launcher - use system Chromium in Docker, auto-detect locally
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)

	if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
		l = l.Bin("/usr/bin/chromium-browser")
		log.Printf("Using system Chromium in Docker environment")
	} else {
		log.Printf("Using auto-detected Chromium (local environment)")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, err
	}
	log.Printf("Using browser at: %s", url)

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, err
	}

	return &BrowserRelay{browser: browser}, nil
}

func (r *BrowserRelay) FindPrice(ctx context.Context, url string) RelayResponse {
	page, err := r.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		log.Printf("Relay: failed to open page %s: %v", url, err)
		return RelayResponse{URL: url}
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.WaitLoad(); err != nil {
		log.Printf("Relay: page load failed for %s: %v", url, err)
		return RelayResponse{URL: url}
	}

	html, err := page.HTML()
	if err != nil {
		log.Printf("Relay: failed to read HTML for %s: %v", url, err)
		return RelayResponse{URL: url}
	}

	finalURL := url
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}
	return RelayResponse{URL: finalURL, HTML: html}
}

// Close shuts the browser down.
func (r *BrowserRelay) Close() error {
	return r.browser.Close()
}
