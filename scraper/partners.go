package scraper

import (
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"crossprice/config"
	"crossprice/models"
)

var (
	prefixedPriceRegex = regexp.MustCompile(`€\s*\d+(?:[.,]\d+)*`)
	genericPriceRegex  = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
)

// ParsePartnerPrice turns one partner search page into a quote. Every failure
// mode collapses to a not-found quote; the only distinction the caller ever
// sees is found versus not found.
func ParsePartnerPrice(page PartnerPage, blocked *BlockDetector) models.PriceQuote {
	partner := page.Partner
	quote := models.PriceQuote{
		Source:     partner.ID,
		StoreName:  partner.Name,
		ProductURL: page.URL,
		Status:     models.QuoteNotFound,
	}

	if page.HTML == "" {
		return quote
	}

	if isBlocked, reason := blocked.Blocked(page.HTML); isBlocked {
		log.Printf("Parser: %s page looks blocked (%s), treating as no result", partner.Name, reason)
		return quote
	}

	if partner.NoResultsMarker != "" && strings.Contains(page.HTML, partner.NoResultsMarker) {
		return quote
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		log.Printf("Parser: failed to parse %s page: %v", partner.Name, err)
		return quote
	}

	if link := canonicalProductLink(doc, partner, page.URL); link != "" {
		quote.ProductURL = link
	}

	rawText := firstPriceText(doc, partner.PriceSelectors)
	if rawText == "" {
		return quote
	}
	quote.RawText = rawText

	priceText := matchPriceToken(rawText, partner.PricePattern)
	if priceText == "" {
		return quote
	}

	money, err := ParseMoneyString(priceText)
	if err != nil {
		return quote
	}

	value := money.Value
	if partner.VATMultiplier > 1 {
		value = round2(value * partner.VATMultiplier)
	}

	currency := models.Currency(partner.Currency)
	quote.Value = value
	quote.Currency = currency
	quote.ValueEUR = value
	if currency == models.CurrencyDKK {
		quote.ValueEUR = ToEUR(value)
	}
	quote.Status = models.QuoteFound

	return quote
}

// canonicalProductLink prefers the first product link on the result page over
// the search URL itself, resolved against the page URL.
func canonicalProductLink(doc *goquery.Document, partner config.PartnerConfig, pageURL string) string {
	if partner.LinkSelector == "" {
		return ""
	}

	href, ok := doc.Find(partner.LinkSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	href = strings.TrimSpace(href)

	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func firstPriceText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

func matchPriceToken(text string, pattern config.PricePattern) string {
	switch pattern {
	case config.PriceCurrencyPrefixed:
		return prefixedPriceRegex.FindString(text)
	default:
		return genericPriceRegex.FindString(text)
	}
}
