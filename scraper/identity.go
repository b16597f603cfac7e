package scraper

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"crossprice/config"
	"crossprice/models"
)

var (
	gtinDigitsRegex   = regexp.MustCompile(`^\d{8,14}$`)
	freeTextGTINRegex = regexp.MustCompile(`\b\d{8,14}\b`)
	dataLayerSKURegex = regexp.MustCompile(`"sku"\s*:\s*"([^"]+)"`)
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	nonDigitRegex     = regexp.MustCompile(`\D`)
)

// ValidateGTIN accepts digit-only strings of 8 to 14 characters. No checksum
// validation; malformed codes just produce empty partner searches.
func ValidateGTIN(candidate string) bool {
	return gtinDigitsRegex.MatchString(strings.TrimSpace(candidate))
}

// normalizeGTIN strips everything but digits ("EAN: 4006381333931" is a
// common attribute shape) and validates what remains.
func normalizeGTIN(raw string) (string, bool) {
	digits := nonDigitRegex.ReplaceAllString(raw, "")
	if ValidateGTIN(digits) {
		return digits, true
	}
	return "", false
}

// ExtractIdentity resolves the product identity of the given page document.
// GTIN discovery runs first (structured data, then selector strategies, then
// a free-text digit scan); MPN is always attempted so the fallback search has
// something to work with. An empty identity is a valid result.
func ExtractIdentity(doc *goquery.Document) models.ProductIdentity {
	identity := models.ProductIdentity{
		Name: extractProductName(doc),
	}

	if gtin := extractGTINFromJSONLD(doc); gtin != "" {
		identity.GTIN = gtin
	} else if gtin := runStrategies(doc, config.GTINStrategies, normalizeGTIN); gtin != "" {
		identity.GTIN = gtin
	} else if gtin := scanFreeTextGTIN(doc); gtin != "" {
		identity.GTIN = gtin
	}

	identity.MPN = extractMPN(doc)

	return identity
}

// runStrategies evaluates an ordered strategy list and returns the first
// value the extractor accepts, normalized by it. Attributes are checked
// before the element text.
func runStrategies(doc *goquery.Document, strategies []config.SelectorStrategy, extract func(string) (string, bool)) string {
	for _, strategy := range strategies {
		var found string
		doc.Find(strategy.Selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			for _, attr := range strategy.Attributes {
				if raw, ok := sel.Attr(attr); ok {
					if v, ok := extract(raw); ok {
						found = v
						return false
					}
				}
			}
			if v, ok := extract(sel.Text()); ok {
				found = v
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// productNode is the subset of schema.org Product fields the extractor reads.
type productNode struct {
	Type   json.RawMessage `json:"@type"`
	Graph  []productNode   `json:"@graph"`
	Name   string          `json:"name"`
	GTIN13 string          `json:"gtin13"`
	GTIN   string          `json:"gtin"`
	GTIN14 string          `json:"gtin14"`
	GTIN12 string          `json:"gtin12"`
	GTIN8  string          `json:"gtin8"`
	MPN    string          `json:"mpn"`
	SKU    string          `json:"sku"`
	Offers json.RawMessage `json:"offers"`
}

func (p productNode) isProduct() bool {
	var single string
	if err := json.Unmarshal(p.Type, &single); err == nil {
		return strings.EqualFold(single, "Product")
	}
	var multi []string
	if err := json.Unmarshal(p.Type, &multi); err == nil {
		for _, t := range multi {
			if strings.EqualFold(t, "Product") {
				return true
			}
		}
	}
	return false
}

func (p productNode) firstGTIN() string {
	for _, candidate := range []string{p.GTIN13, p.GTIN, p.GTIN14, p.GTIN12, p.GTIN8} {
		if v, ok := normalizeGTIN(candidate); ok {
			return v
		}
	}
	return ""
}

// findProductJSONLD walks every ld+json script on the page and returns the
// first node typed as a Product. Scripts can hold a single object, an array,
// or an @graph wrapper; malformed JSON is skipped.
func findProductJSONLD(doc *goquery.Document) (productNode, bool) {
	var result productNode
	var found bool

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}

		var nodes []productNode
		var single productNode
		if err := json.Unmarshal([]byte(raw), &single); err == nil {
			nodes = append(nodes, single)
			nodes = append(nodes, single.Graph...)
		} else if err := json.Unmarshal([]byte(raw), &nodes); err != nil {
			return true
		}

		for _, node := range nodes {
			if node.isProduct() {
				result = node
				found = true
				return false
			}
		}
		return true
	})

	return result, found
}

func extractGTINFromJSONLD(doc *goquery.Document) string {
	product, ok := findProductJSONLD(doc)
	if !ok {
		return ""
	}
	return product.firstGTIN()
}

// scanFreeTextGTIN is the last-resort digit scan: elements whose class names
// suggest barcode content first, then the whole body text for a standalone
// 8-14 digit token.
func scanFreeTextGTIN(doc *goquery.Document) string {
	var found string
	doc.Find(`[class*="ean"], [class*="gtin"], [class*="barcode"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if m := freeTextGTINRegex.FindString(sel.Text()); m != "" {
			found = m
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	return freeTextGTINRegex.FindString(doc.Find("body").Text())
}

func extractMPN(doc *goquery.Document) string {
	if product, ok := findProductJSONLD(doc); ok {
		if mpn := strings.TrimSpace(product.MPN); mpn != "" {
			return mpn
		}
		if sku := strings.TrimSpace(product.SKU); sku != "" {
			return sku
		}
	}

	nonEmpty := func(raw string) (string, bool) {
		v := strings.TrimSpace(raw)
		return v, v != ""
	}
	if mpn := runStrategies(doc, config.MPNStrategies, nonEmpty); mpn != "" {
		return mpn
	}

	// Some shops only expose the SKU inside an inline dataLayer script.
	var fromScript string
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if m := dataLayerSKURegex.FindStringSubmatch(sel.Text()); len(m) == 2 {
			fromScript = strings.TrimSpace(m[1])
			return false
		}
		return true
	})
	return fromScript
}

func extractProductName(doc *goquery.Document) string {
	if product, ok := findProductJSONLD(doc); ok {
		if name := collapseWhitespace(product.Name); name != "" {
			return name
		}
	}

	for _, selector := range config.NameSelectors {
		text := collapseWhitespace(doc.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
