package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestValidateGTIN(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"12345678", true},
		{"4053008504806", true},
		{"12345678901234", true},
		{"1234567", false},
		{"123456789012345", false},
		{"12ab5678", false},
		{"", false},
		{" 12345678 ", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidateGTIN(tt.input), "input %q", tt.input)
	}
}

func TestExtractIdentityFromJSONLD(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@type":"Product","name":"Shimano XT Cassette","gtin13":"4053008504806","mpn":"CS-M8100"}
		</script>
	</head><body><h1>Different Heading</h1></body></html>`

	identity := ExtractIdentity(parseDoc(t, html))

	assert.Equal(t, "4053008504806", identity.GTIN)
	assert.Equal(t, "CS-M8100", identity.MPN)
	assert.Equal(t, "Shimano XT Cassette", identity.Name)
}

func TestExtractIdentityJSONLDGraph(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@graph":[{"@type":"WebSite","name":"shop"},{"@type":"Product","name":"Brake Pads","gtin":"87654321","sku":"BP-01"}]}
		</script>
	</head><body></body></html>`

	identity := ExtractIdentity(parseDoc(t, html))

	assert.Equal(t, "87654321", identity.GTIN)
	assert.Equal(t, "BP-01", identity.MPN)
}

func TestExtractIdentityFromSelectors(t *testing.T) {
	html := `<html><body>
		<h1 class="product-title">Chain Lube</h1>
		<span itemprop="gtin13" content="12345678901231"></span>
		<span itemprop="mpn" content="CL-500"></span>
	</body></html>`

	identity := ExtractIdentity(parseDoc(t, html))

	assert.Equal(t, "12345678901231", identity.GTIN)
	assert.Equal(t, "CL-500", identity.MPN)
	assert.Equal(t, "Chain Lube", identity.Name)
}

func TestExtractIdentityNormalizesAttributeNoise(t *testing.T) {
	html := `<html><body>
		<h1>Derailleur</h1>
		<span itemprop="gtin13" content="EAN: 4006381333931"></span>
	</body></html>`

	identity := ExtractIdentity(parseDoc(t, html))

	assert.Equal(t, "4006381333931", identity.GTIN)
}

func TestExtractIdentityBodyTextScan(t *testing.T) {
	html := `<html><body>
		<h1>Derailleur</h1>
		<p>Barcode number 4006381333931 printed on the box.</p>
	</body></html>`

	identity := ExtractIdentity(parseDoc(t, html))

	assert.Equal(t, "4006381333931", identity.GTIN)
}

func TestExtractIdentityBodyScanIgnoresLongDigitRuns(t *testing.T) {
	html := `<html><body>
		<h1>Derailleur</h1>
		<p>order 1234567890123456 confirmed</p>
	</body></html>`

	identity := ExtractIdentity(parseDoc(t, html))

	assert.Empty(t, identity.GTIN)
}

func TestExtractIdentityFreeTextScan(t *testing.T) {
	html := `<html><body>
		<h1>Tyre 28"</h1>
		<div class="product-ean">EAN: 12345678</div>
	</body></html>`

	identity := ExtractIdentity(parseDoc(t, html))

	assert.Equal(t, "12345678", identity.GTIN)
}

func TestExtractIdentityDataLayerSKU(t *testing.T) {
	html := `<html><body>
		<h1>Saddle</h1>
		<script>dataLayer.push({"ecommerce":{"sku": "SDL-77","price":"49.00"}});</script>
	</body></html>`

	identity := ExtractIdentity(parseDoc(t, html))

	assert.Empty(t, identity.GTIN)
	assert.Equal(t, "SDL-77", identity.MPN)
}

func TestExtractIdentityEmptyPage(t *testing.T) {
	identity := ExtractIdentity(parseDoc(t, `<html><body><p>nothing here</p></body></html>`))

	assert.True(t, identity.IsEmpty())
}

func TestExtractIdentityNameWhitespaceCollapse(t *testing.T) {
	html := `<html><body><h1>
		Super
		   Bike   2000
	</h1></body></html>`

	identity := ExtractIdentity(parseDoc(t, html))

	assert.Equal(t, "Super Bike 2000", identity.Name)
}

func TestSearchIdentifierPrefersGTIN(t *testing.T) {
	identity := ExtractIdentity(parseDoc(t, `<html><body>
		<span itemprop="gtin13" content="40530085048">ok</span>
		<span itemprop="mpn" content="M-1">ok</span>
	</body></html>`))

	identifier, ok := identity.SearchIdentifier()
	require.True(t, ok)
	assert.Equal(t, "40530085048", identifier.Value)
}
