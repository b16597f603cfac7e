package scraper

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"crossprice/models"
)

// fragmentMarker is the CSS class that marks an already-rendered comparison
// in a page. Its presence makes insertion a no-op.
const fragmentMarker = "price-comparison-table"

const comparisonTemplate = `<div class="{{.Marker}}">
<p class="price-comparison-heading">Price comparison{{if .Identifier}} ({{.IdentifierType}}: {{.Identifier}}){{end}}</p>
{{if .AnyFound}}<table>
<thead><tr><th>Website</th><th>Price</th><th>Converted Price</th><th>Link</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{.Store}}</td><td>{{.Price}}</td><td>{{.Converted}}</td><td>{{if .URL}}<a href="{{.URL}}" class="track-click" data-store="{{.Store}}" data-url="{{.URL}}" data-name="{{.ProductName}}" data-price="{{.Price}}" data-gtin="{{.GTIN}}" data-mpn="{{.MPN}}" target="_blank" rel="noopener">View</a>{{else}}-{{end}}</td></tr>
{{end}}</tbody>
</table>{{else}}<p class="price-comparison-empty">No matches found on partner shops.</p>{{end}}
</div>`

// fragmentRow carries, besides the display columns, the data-* payload the
// extension reads back when reporting an outbound click.
type fragmentRow struct {
	Store       string
	Price       string
	Converted   string
	URL         string
	ProductName string
	GTIN        string
	MPN         string
}

type fragmentData struct {
	Marker         string
	Identifier     string
	IdentifierType string
	AnyFound       bool
	Rows           []fragmentRow
}

// Renderer builds the comparison HTML fragment and inserts it into pages.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("comparison").Parse(comparisonTemplate)),
	}
}

// Fragment renders the comparison fragment for one report. Quotes from the
// shop the page itself belongs to are skipped, so a shop never sees itself in
// its own comparison.
func (r *Renderer) Fragment(report *models.ComparisonReport) (string, error) {
	data := fragmentData{
		Marker:         fragmentMarker,
		Identifier:     report.Identifier.Value,
		IdentifierType: string(report.Identifier.Type),
		AnyFound:       report.AnyFound,
	}

	for _, quote := range report.Quotes {
		if hostKeywordInURL(quote.Source, report.PageURL) {
			continue
		}

		row := fragmentRow{
			Store:       quote.StoreName,
			ProductName: report.Identity.Name,
			GTIN:        report.Identity.GTIN,
			MPN:         report.Identity.MPN,
		}
		switch quote.Status {
		case models.QuoteFound:
			row.Price = formatNative(quote)
			row.Converted = formatConverted(quote)
			row.URL = AddUTMParameters(quote.ProductURL, report)
		case models.QuoteMismatch:
			if quote.Mismatch == models.MismatchUp {
				row.Price = "No match (mismatch ↑)"
			} else {
				row.Price = "No match (mismatch ↓)"
			}
			row.Converted = "-"
		default:
			row.Price = "No match"
			row.Converted = "-"
		}
		data.Rows = append(data.Rows, row)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render comparison fragment: %w", err)
	}
	return buf.String(), nil
}

func hostKeywordInURL(source, pageURL string) bool {
	return source != "" && strings.Contains(strings.ToLower(pageURL), strings.ToLower(source))
}

func formatNative(q models.PriceQuote) string {
	if q.Currency == models.CurrencyDKK {
		return fmt.Sprintf("%.2f kr", q.Value)
	}
	return fmt.Sprintf("€%.2f", q.Value)
}

func formatConverted(q models.PriceQuote) string {
	if q.Currency == models.CurrencyDKK {
		return fmt.Sprintf("€%.2f", q.ValueEUR)
	}
	return fmt.Sprintf("%.2f kr", ToDKK(q.ValueEUR))
}

// AddUTMParameters tags an outbound partner link with campaign parameters and
// a random tracking id.
func AddUTMParameters(rawURL string, report *models.ComparisonReport) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	q := parsed.Query()
	q.Set("utm_source", "Price Comparison Extension")
	q.Set("utm_medium", "price_comparison")
	q.Set("utm_campaign", "product_search")
	if report.Identity.Name != "" {
		q.Set("utm_content", report.Identity.Name)
	}
	if report.Identifier.Value != "" {
		q.Set("utm_term", report.Identifier.Value)
	}
	q.Set("ref", "crossprice")
	q.Set("tracking_id", newTrackingID())
	parsed.RawQuery = q.Encode()

	return parsed.String()
}

func newTrackingID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "tid_fallback"
	}
	return hex.EncodeToString(b)
}

// insertion anchors, most specific first
var insertAnchors = []string{
	`[itemprop="mpn"]`,
	`[itemprop="sku"]`,
	"h1",
}

// InsertFragment places the fragment into the page HTML right after the
// product heading area, or at the top of the body when no anchor exists. The
// second return value is false when the page already carries a fragment, in
// which case the original HTML comes back untouched.
func (r *Renderer) InsertFragment(pageHTML, fragment string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		log.Printf("Renderer: failed to parse page for insertion: %v", err)
		return pageHTML, false
	}

	if doc.Find("."+fragmentMarker).Length() > 0 {
		return pageHTML, false
	}

	inserted := false
	for _, anchor := range insertAnchors {
		sel := doc.Find(anchor).First()
		if sel.Length() > 0 {
			sel.AfterHtml(fragment)
			inserted = true
			break
		}
	}
	if !inserted {
		doc.Find("body").PrependHtml(fragment)
	}

	html, err := doc.Html()
	if err != nil {
		log.Printf("Renderer: failed to serialize page after insertion: %v", err)
		return pageHTML, false
	}
	return html, true
}
