package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"crossprice/config"
	"crossprice/models"
)

// Engine runs the full comparison pipeline for one page: identity extraction,
// partner fan-out, parsing, reconciliation and rendering.
type Engine struct {
	fetcher  *Fetcher
	blocked  *BlockDetector
	renderer *Renderer
}

// PageInput is a raw page handed to the pipeline.
type PageInput struct {
	URL  string
	HTML string
}

func NewEngine(relay FetchRelay, partners []config.PartnerConfig, fetchTimeout time.Duration) *Engine {
	return &Engine{
		fetcher:  NewFetcher(relay, partners, fetchTimeout),
		blocked:  NewBlockDetector(),
		renderer: NewRenderer(),
	}
}

// Compare runs one comparison for the given page within a session. The
// returned report includes the rendered HTML fragment. A run superseded by a
// navigation returns ErrStaleRun and its result must be discarded.
func (e *Engine) Compare(ctx context.Context, sess *Session, page PageInput) (*models.ComparisonReport, error) {
	generation := sess.Generation()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}

	identity := ExtractIdentity(doc)
	if identity.IsEmpty() {
		return nil, ErrNoIdentity
	}

	identifier, _ := identity.SearchIdentifier()
	if !sess.MarkProcessed(identifier.Key()) {
		return nil, ErrAlreadyProcessed
	}

	pagePrice := ExtractCurrentPrice(doc)

	log.Printf("Pipeline: comparing %s (%s %s) on %s", identity.Name, identifier.Type, identifier.Value, page.URL)

	quotes := e.searchOnce(ctx, identifier)

	// One fallback transition: a GTIN search that hit nothing anywhere
	// retries once with the MPN, labeled so the result is attributable.
	if !AnyFound(quotes) && identifier.Type == models.IdentifierGTIN && identity.MPN != "" {
		fallback := models.SearchIdentifier{
			Value: identity.MPN,
			Type:  models.IdentifierGTINViaMPN,
		}
		if sess.MarkProcessed(fallback.Key()) {
			log.Printf("Pipeline: GTIN %s found nothing, falling back to MPN %s", identifier.Value, identity.MPN)
			identifier = fallback
			quotes = e.searchOnce(ctx, identifier)
		}
	}

	quotes = Reconcile(quotes, pagePrice)

	report := &models.ComparisonReport{
		PageURL:     page.URL,
		Identity:    identity,
		Identifier:  identifier,
		PagePrice:   pagePrice,
		Quotes:      quotes,
		AnyFound:    AnyFound(quotes),
		GeneratedAt: time.Now(),
	}

	fragment, err := e.renderer.Fragment(report)
	if err != nil {
		return nil, err
	}
	report.HTML = fragment

	if sess.Stale(generation) {
		return nil, ErrStaleRun
	}

	return report, nil
}

func (e *Engine) searchOnce(ctx context.Context, identifier models.SearchIdentifier) []models.PriceQuote {
	pages := e.fetcher.FetchPartnerPages(ctx, identifier)

	quotes := make([]models.PriceQuote, 0, len(pages))
	for _, page := range pages {
		quotes = append(quotes, ParsePartnerPrice(page, e.blocked))
	}
	return quotes
}

// Renderer exposes the engine's renderer for page-level insertion.
func (e *Engine) Renderer() *Renderer {
	return e.renderer
}
