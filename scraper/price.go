package scraper

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"crossprice/config"
	"crossprice/models"
)

// offerNode is the subset of schema.org Offer fields the price reader uses.
type offerNode struct {
	Price         json.RawMessage `json:"price"`
	PriceCurrency string          `json:"priceCurrency"`
	LowPrice      json.RawMessage `json:"lowPrice"`
}

// ExtractCurrentPrice reads the page's own price: structured data first, then
// the generic price selector list. A page without a readable price is normal
// and only disables the plausibility check downstream.
func ExtractCurrentPrice(doc *goquery.Document) models.PagePrice {
	if price, ok := priceFromJSONLD(doc); ok {
		return price
	}

	for _, selector := range config.PagePriceSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}

		text := strings.TrimSpace(sel.Text())
		if content, ok := sel.Attr("content"); ok && strings.TrimSpace(content) != "" {
			text = strings.TrimSpace(content)
		}
		if text == "" {
			continue
		}

		money, err := ParseMoneyString(text)
		if err != nil {
			continue
		}
		return models.PagePrice{Price: money.Value, Currency: money.Currency, Found: true}
	}

	return models.PagePrice{}
}

func priceFromJSONLD(doc *goquery.Document) (models.PagePrice, bool) {
	product, ok := findProductJSONLD(doc)
	if !ok || len(product.Offers) == 0 {
		return models.PagePrice{}, false
	}

	var offers []offerNode
	var single offerNode
	if err := json.Unmarshal(product.Offers, &single); err == nil {
		offers = append(offers, single)
	} else if err := json.Unmarshal(product.Offers, &offers); err != nil {
		return models.PagePrice{}, false
	}

	for _, offer := range offers {
		raw := offer.Price
		if len(raw) == 0 {
			raw = offer.LowPrice
		}
		value, ok := parseOfferPrice(raw)
		if !ok || value <= 0 {
			continue
		}

		currency := models.CurrencyEUR
		if strings.EqualFold(offer.PriceCurrency, "DKK") {
			currency = models.CurrencyDKK
		}
		return models.PagePrice{Price: value, Currency: currency, Found: true}, true
	}

	return models.PagePrice{}, false
}

// parseOfferPrice handles price as either a JSON number or a string.
func parseOfferPrice(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, true
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if money, err := ParseMoneyString(text); err == nil {
			return money.Value, true
		}
	}
	return 0, false
}
