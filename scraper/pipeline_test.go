package scraper

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossprice/config"
	"crossprice/models"
)

// fakeRelay serves canned HTML for URLs containing a key, empty otherwise.
type fakeRelay struct {
	pages map[string]string
}

func (f *fakeRelay) FindPrice(ctx context.Context, url string) RelayResponse {
	for key, html := range f.pages {
		if strings.Contains(url, key) {
			return RelayResponse{URL: url, HTML: html}
		}
	}
	return RelayResponse{URL: url}
}

const productPage = `<html><head>
	<script type="application/ld+json">
	{"@type":"Product","name":"Shimano XT Cassette","gtin13":"4053008504806","mpn":"CS-M8100","offers":{"price":"150.00","priceCurrency":"EUR"}}
	</script>
</head><body><h1>Shimano XT Cassette</h1></body></html>`

const bikeDiscountHit = `<html><body>
	<a class="product--title" href="/en/shimano-xt"></a>
	<div class="price--default">€140,00</div>
</body></html>`

func testEngine(relay FetchRelay) *Engine {
	return NewEngine(relay, config.Partners(), 2*time.Second)
}

func TestCompareFullRun(t *testing.T) {
	relay := &fakeRelay{pages: map[string]string{
		"sSearch=4053008504806": bikeDiscountHit,
	}}
	engine := testEngine(relay)
	sess := NewSession("https://example-shop.com/p/1")

	report, err := engine.Compare(context.Background(), sess, PageInput{
		URL:  "https://example-shop.com/p/1",
		HTML: productPage,
	})
	require.NoError(t, err)

	assert.Equal(t, models.IdentifierGTIN, report.Identifier.Type)
	assert.Equal(t, "4053008504806", report.Identifier.Value)
	assert.True(t, report.AnyFound)
	assert.Len(t, report.Quotes, len(config.Partners()))
	assert.Contains(t, report.HTML, "price-comparison-table")

	var found int
	for _, q := range report.Quotes {
		if q.Status == models.QuoteFound {
			found++
			// 140.00 with the 5% VAT adjustment
			assert.InDelta(t, 147.00, q.ValueEUR, 0.001)
		}
	}
	assert.Equal(t, 1, found)
}

func TestCompareDedupWithinSession(t *testing.T) {
	engine := testEngine(&fakeRelay{})
	sess := NewSession("https://example-shop.com/p/1")
	page := PageInput{URL: "https://example-shop.com/p/1", HTML: productPage}

	_, err := engine.Compare(context.Background(), sess, page)
	require.NoError(t, err)

	_, err = engine.Compare(context.Background(), sess, page)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestCompareRunsAgainAfterNavigation(t *testing.T) {
	engine := testEngine(&fakeRelay{})
	sess := NewSession("https://example-shop.com/p/1")
	page := PageInput{URL: "https://example-shop.com/p/1", HTML: productPage}

	_, err := engine.Compare(context.Background(), sess, page)
	require.NoError(t, err)

	sess.Navigate("https://example-shop.com/p/2")
	page.URL = "https://example-shop.com/p/2"

	_, err = engine.Compare(context.Background(), sess, page)
	assert.NoError(t, err)
}

func TestCompareNoIdentity(t *testing.T) {
	engine := testEngine(&fakeRelay{})
	sess := NewSession("https://example-shop.com/p/1")

	_, err := engine.Compare(context.Background(), sess, PageInput{
		URL:  "https://example-shop.com/p/1",
		HTML: `<html><body><p>nothing identifiable</p></body></html>`,
	})
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestCompareFallsBackToMPN(t *testing.T) {
	// GTIN searches return nothing anywhere, the MPN search hits
	relay := &fakeRelay{pages: map[string]string{
		"CS-M8100": bikeDiscountHit,
	}}
	engine := testEngine(relay)
	sess := NewSession("https://example-shop.com/p/1")

	report, err := engine.Compare(context.Background(), sess, PageInput{
		URL:  "https://example-shop.com/p/1",
		HTML: productPage,
	})
	require.NoError(t, err)

	assert.Equal(t, models.IdentifierGTINViaMPN, report.Identifier.Type)
	assert.Equal(t, "CS-M8100", report.Identifier.Value)
	assert.True(t, report.AnyFound)
}

func TestCompareFallbackRunsAtMostOnce(t *testing.T) {
	engine := testEngine(&fakeRelay{})
	sess := NewSession("https://example-shop.com/p/1")
	page := PageInput{URL: "https://example-shop.com/p/1", HTML: productPage}

	// First run consumes both the GTIN key and the fallback MPN key
	report, err := engine.Compare(context.Background(), sess, page)
	require.NoError(t, err)
	assert.Equal(t, models.IdentifierGTINViaMPN, report.Identifier.Type)
	assert.False(t, report.AnyFound)

	// A page exposing only the same MPN now dedups against the fallback run
	mpnOnlyPage := `<html><body>
		<h1>Shimano XT Cassette</h1>
		<span itemprop="mpn" content="CS-M8100"></span>
	</body></html>`
	_, err = engine.Compare(context.Background(), sess, PageInput{URL: page.URL, HTML: mpnOnlyPage})
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestCompareStaleRunDiscarded(t *testing.T) {
	// The relay navigates the session away mid-run
	sess := NewSession("https://example-shop.com/p/1")
	relay := &navigatingRelay{sess: sess}
	engine := testEngine(relay)

	_, err := engine.Compare(context.Background(), sess, PageInput{
		URL:  "https://example-shop.com/p/1",
		HTML: productPage,
	})
	assert.ErrorIs(t, err, ErrStaleRun)
}

type navigatingRelay struct {
	sess *Session
}

func (r *navigatingRelay) FindPrice(ctx context.Context, url string) RelayResponse {
	r.sess.Navigate("https://example-shop.com/p/other")
	return RelayResponse{URL: url}
}
