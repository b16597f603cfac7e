package scraper

import (
	"context"
	"log"
	"net/url"
	"sync"
	"time"

	"crossprice/config"
	"crossprice/models"
)

// PartnerPage is one partner's raw search-result page for an identifier.
type PartnerPage struct {
	Partner config.PartnerConfig
	URL     string
	HTML    string
}

// Fetcher runs the partner search fan-out over a relay.
type Fetcher struct {
	relay    FetchRelay
	partners []config.PartnerConfig
	timeout  time.Duration
}

func NewFetcher(relay FetchRelay, partners []config.PartnerConfig, timeout time.Duration) *Fetcher {
	return &Fetcher{relay: relay, partners: partners, timeout: timeout}
}

// FetchPartnerPages queries every partner concurrently for the identifier and
// waits for all branches. A failed branch yields a page with empty HTML; one
// partner being down never affects the others. Results keep partner order.
func (f *Fetcher) FetchPartnerPages(ctx context.Context, identifier models.SearchIdentifier) []PartnerPage {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	pages := make([]PartnerPage, len(f.partners))
	var wg sync.WaitGroup

	for i, partner := range f.partners {
		wg.Add(1)
		go func(i int, partner config.PartnerConfig) {
			defer wg.Done()

			searchURL := partner.SearchURL + url.QueryEscape(identifier.Value)
			resp := f.relay.FindPrice(ctx, searchURL)
			if resp.HTML == "" {
				log.Printf("Fetcher: %s returned no content for %s", partner.Name, identifier.Value)
			}
			pages[i] = PartnerPage{Partner: partner, URL: resp.URL, HTML: resp.HTML}
		}(i, partner)
	}

	wg.Wait()
	return pages
}
