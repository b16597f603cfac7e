package config

// Selector tables in this file are configuration data, not logic. They come
// from the known layouts of the handful of sites the comparison targets and
// are the pieces expected to rot and be swapped as those sites change.

// PricePattern selects how a partner's price text is matched.
type PricePattern string

const (
	// PriceCurrencyPrefixed expects a €-prefixed token, e.g. "€12.34".
	PriceCurrencyPrefixed PricePattern = "currency_prefixed"
	// PriceGenericNumeric accepts any numeric token, e.g. "12,34".
	PriceGenericNumeric PricePattern = "generic"
)

// PartnerConfig describes one partner shop: how to build its search URL and
// how to pull a price and product link out of its search-result HTML.
type PartnerConfig struct {
	ID   string
	Name string

	// SearchURL is the base-plus-query-param template; the identifier is
	// appended URL-escaped.
	SearchURL string

	// HostKeyword identifies this partner in a page URL, so a shop never
	// gets compared against itself.
	HostKeyword string

	// PriceSelectors are tried in order; the first element with non-empty
	// text wins.
	PriceSelectors []string

	// LinkSelector locates the canonical product link in the result page.
	// When it matches, that link is preferred over the search URL.
	LinkSelector string

	// NoResultsMarker short-circuits parsing to NotFound when present in
	// the page body.
	NoResultsMarker string

	// VATMultiplier compensates a tax-inclusive/exclusive mismatch between
	// source markets. 0 or 1 means no adjustment.
	VATMultiplier float64

	// Currency is the currency the partner lists prices in.
	Currency string

	PricePattern PricePattern
}

// Partners returns the fixed partner set the pipeline queries.
func Partners() []PartnerConfig {
	return []PartnerConfig{
		{
			ID:          "bike-discount",
			Name:        "Bike-Discount",
			SearchURL:   "https://www.bike-discount.de/en/search?sSearch=",
			HostKeyword: "bike-discount",
			PriceSelectors: []string{
				".price--default",
				`[data-test="product-price"]`,
				".price",
			},
			LinkSelector:    ".product--title",
			NoResultsMarker: "No results for",
			// German listings exclude local VAT; 5% levels the field.
			VATMultiplier: 1.05,
			Currency:      "EUR",
			PricePattern:  PriceCurrencyPrefixed,
		},
		{
			ID:          "bike-components",
			Name:        "Bike-Components",
			SearchURL:   "https://www.bike-components.de/en/s/?keywords=",
			HostKeyword: "bike-components",
			PriceSelectors: []string{
				".price.site-price",
			},
			LinkSelector: ".product-tile__link",
			Currency:     "EUR",
			PricePattern: PriceGenericNumeric,
		},
		{
			ID:          "cykelgear",
			Name:        "Cykelgear",
			SearchURL:   "https://cykelgear.dk/search?q=",
			HostKeyword: "cykelgear",
			PriceSelectors: []string{
				`.text-lg.md\:text-xl.leading-5.font-semibold.text-orange.whitespace-nowrap`,
				`.text-lg.md\:text-xl.leading-5.font-semibold.text-orange`,
			},
			LinkSelector: ".product-tile__link",
			Currency:     "DKK",
			PricePattern: PriceGenericNumeric,
		},
	}
}

// SelectorStrategy is one entry of a prioritized extraction list: a CSS
// selector plus the attributes to read before falling back to element text.
type SelectorStrategy struct {
	Selector   string
	Attributes []string
}

// GTINStrategies is the prioritized GTIN/EAN discovery list.
var GTINStrategies = []SelectorStrategy{
	{Selector: `[itemprop="gtin13"]`, Attributes: []string{"content"}},
	{Selector: `[itemprop="gtin"]`, Attributes: []string{"content"}},
	{Selector: `[itemprop="gtin14"]`, Attributes: []string{"content"}},
	{Selector: `[itemprop="gtin12"]`, Attributes: []string{"content"}},
	{Selector: `[itemprop="gtin8"]`, Attributes: []string{"content"}},
	{Selector: `meta[property="product:ean"]`, Attributes: []string{"content"}},
	{Selector: `meta[property="og:ean"]`, Attributes: []string{"content"}},
	{Selector: `meta[name="gtin"]`, Attributes: []string{"content"}},
	{Selector: `meta[name="ean"]`, Attributes: []string{"content"}},
	{Selector: ".netz-ean", Attributes: []string{"data-ean"}},
	{Selector: "[data-ean]", Attributes: []string{"data-ean"}},
	{Selector: "[data-gtin]", Attributes: []string{"data-gtin"}},
	{Selector: "[data-barcode]", Attributes: []string{"data-barcode"}},
	{Selector: `span[itemprop="productID"]`, Attributes: []string{"content"}},
	{Selector: ".ean-code"},
	{Selector: ".product-ean"},
	{Selector: ".gtin-code"},
	{Selector: ".product-gtin"},
	{Selector: ".barcode-number"},
}

// MPNStrategies is the fallback identifier list, used when no GTIN resolves.
var MPNStrategies = []SelectorStrategy{
	{Selector: `[itemprop="mpn"]`, Attributes: []string{"content"}},
	{Selector: `[itemprop="sku"]`, Attributes: []string{"content"}},
	{Selector: "[data-sku]", Attributes: []string{"data-sku"}},
	{Selector: ".product-id"},
	{Selector: ".netz-ean", Attributes: []string{"data-ean"}},
	{Selector: `span[itemprop="productID"]`, Attributes: []string{"content"}},
}

// NameSelectors locate the product display name, in priority order.
var NameSelectors = []string{
	"h1.product-title",
	`h1[itemprop="name"]`,
	".product--title",
	".product-details h1",
	"h1",
}

// PagePriceSelectors locate the current page's own price.
var PagePriceSelectors = []string{
	`[itemprop="price"]`,
	`meta[property="product:price:amount"]`,
	`[property="og:price:amount"]`,
	".price .amount",
	".product-price",
	".price--default",
	".current-price",
	".actual-price",
	".sale-price",
	"#netz-price",
	".price.site-price",
}
