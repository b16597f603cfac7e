package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crossprice/models"
)

func TestExtractCurrentPriceFromJSONLD(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@type":"Product","name":"Cassette","offers":{"price":"1299.00","priceCurrency":"DKK"}}
		</script>
	</head><body></body></html>`

	price := ExtractCurrentPrice(parseDoc(t, html))

	assert.True(t, price.Found)
	assert.InDelta(t, 1299.00, price.Price, 0.001)
	assert.Equal(t, models.CurrencyDKK, price.Currency)
}

func TestExtractCurrentPriceJSONLDNumericPrice(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@type":"Product","offers":[{"price":49.95,"priceCurrency":"EUR"}]}
		</script>
	</head><body></body></html>`

	price := ExtractCurrentPrice(parseDoc(t, html))

	assert.True(t, price.Found)
	assert.InDelta(t, 49.95, price.Price, 0.001)
	assert.Equal(t, models.CurrencyEUR, price.Currency)
}

func TestExtractCurrentPriceFromMetaContent(t *testing.T) {
	html := `<html><head>
		<meta itemprop="price" content="49,95">
	</head><body></body></html>`

	price := ExtractCurrentPrice(parseDoc(t, html))

	assert.True(t, price.Found)
	assert.InDelta(t, 49.95, price.Price, 0.001)
	assert.Equal(t, models.CurrencyEUR, price.Currency)
}

func TestExtractCurrentPriceFromSelectorText(t *testing.T) {
	html := `<html><body>
		<div class="product-price">199,00 kr</div>
	</body></html>`

	price := ExtractCurrentPrice(parseDoc(t, html))

	assert.True(t, price.Found)
	assert.InDelta(t, 199.00, price.Price, 0.001)
	assert.Equal(t, models.CurrencyDKK, price.Currency)
}

func TestExtractCurrentPriceMissing(t *testing.T) {
	price := ExtractCurrentPrice(parseDoc(t, `<html><body><h1>No price here</h1></body></html>`))

	assert.False(t, price.Found)
}
