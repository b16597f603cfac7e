package scraper

import (
	"crossprice/models"
)

// Plausibility thresholds for partner quotes relative to the page's own
// price. Quotes outside the band are almost always a search hit on the wrong
// product (a spare part, a bundle), so they are demoted instead of shown.
const (
	MismatchHighRatio = 1.8
	MismatchLowRatio  = 0.2
)

// Reconcile demotes quotes that are implausible against the page price. Only
// resolved quotes are ever demoted; when the page price is unknown every
// quote passes through untouched.
func Reconcile(quotes []models.PriceQuote, pagePrice models.PagePrice) []models.PriceQuote {
	if !pagePrice.Found || pagePrice.Price <= 0 {
		return quotes
	}

	referenceEUR := pagePrice.Price
	if pagePrice.Currency == models.CurrencyDKK {
		referenceEUR = ToEUR(pagePrice.Price)
	}
	if referenceEUR <= 0 {
		return quotes
	}

	for i := range quotes {
		if !quotes[i].Resolved() {
			continue
		}

		ratio := quotes[i].ValueEUR / referenceEUR
		switch {
		case ratio > MismatchHighRatio:
			quotes[i].Status = models.QuoteMismatch
			quotes[i].Mismatch = models.MismatchUp
		case ratio < MismatchLowRatio:
			quotes[i].Status = models.QuoteMismatch
			quotes[i].Mismatch = models.MismatchDown
		}
	}

	return quotes
}

// AnyFound reports whether at least one quote survived as found.
func AnyFound(quotes []models.PriceQuote) bool {
	for _, q := range quotes {
		if q.Status == models.QuoteFound {
			return true
		}
	}
	return false
}
