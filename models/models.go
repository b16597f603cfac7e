package models

import (
	"strings"
	"time"
)

// Currency is one of the two currencies the comparison handles.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyDKK Currency = "DKK"
)

// IdentifierType tags which kind of product identifier a search used.
type IdentifierType string

const (
	IdentifierGTIN IdentifierType = "GTIN"
	IdentifierMPN  IdentifierType = "MPN"
	// IdentifierGTINViaMPN marks a search that fell back to MPN after the
	// GTIN search returned nothing on every partner.
	IdentifierGTINViaMPN IdentifierType = "MPN (via GTIN)"
)

// ProductIdentity holds the identifiers discovered on the current page.
// It is resolved once per page load and not mutated afterwards.
type ProductIdentity struct {
	GTIN string `json:"gtin,omitempty"`
	MPN  string `json:"mpn,omitempty"`
	Name string `json:"name,omitempty"`
}

// IsEmpty reports whether no identifier at all was found. This is a valid
// outcome that halts the pipeline, not an error.
func (p ProductIdentity) IsEmpty() bool {
	return p.GTIN == "" && p.MPN == ""
}

// SearchIdentifier returns the identifier to search with, preferring GTIN.
func (p ProductIdentity) SearchIdentifier() (SearchIdentifier, bool) {
	if p.GTIN != "" {
		return SearchIdentifier{Value: p.GTIN, Type: IdentifierGTIN}, true
	}
	if p.MPN != "" {
		return SearchIdentifier{Value: p.MPN, Type: IdentifierMPN}, true
	}
	return SearchIdentifier{}, false
}

// SearchIdentifier is the value currently being searched plus its type tag.
// Its key is the dedup unit for a session.
type SearchIdentifier struct {
	Value string         `json:"value"`
	Type  IdentifierType `json:"type"`
}

// Key returns the dedup key for the processed-set. The fallback label maps
// to the same key space as a plain MPN search so the two cannot run twice.
func (s SearchIdentifier) Key() string {
	t := s.Type
	if t == IdentifierGTINViaMPN {
		t = IdentifierMPN
	}
	return string(t) + ":" + strings.TrimSpace(s.Value)
}

// QuoteStatus classifies the outcome of one partner lookup.
type QuoteStatus string

const (
	QuoteFound    QuoteStatus = "found"
	QuoteNotFound QuoteStatus = "not_found"
	QuoteMismatch QuoteStatus = "mismatch"
)

// MismatchDirection says which way an implausible price deviates.
type MismatchDirection string

const (
	MismatchUp   MismatchDirection = "up"
	MismatchDown MismatchDirection = "down"
)

// PriceQuote is one partner's answer for the searched identifier. It is
// produced by the partner parser, annotated once by reconciliation
// (found -> mismatch), and never mutated after rendering.
type PriceQuote struct {
	Source     string            `json:"source"`
	StoreName  string            `json:"store_name"`
	RawText    string            `json:"raw_text,omitempty"`
	Value      float64           `json:"value,omitempty"`
	ValueEUR   float64           `json:"value_eur,omitempty"`
	Currency   Currency          `json:"currency,omitempty"`
	ProductURL string            `json:"product_url,omitempty"`
	Status     QuoteStatus       `json:"status"`
	Mismatch   MismatchDirection `json:"mismatch,omitempty"`
}

// Resolved reports whether the quote carries a usable numeric price.
func (q PriceQuote) Resolved() bool {
	return q.Status == QuoteFound && q.Value > 0
}

// PagePrice is the current page's own price, when one could be extracted.
type PagePrice struct {
	Price    float64  `json:"price"`
	Currency Currency `json:"currency"`
	Found    bool     `json:"found"`
}

// ComparisonReport is the result of one full pipeline run. It is rebuilt
// fresh on every run and never persisted in place; snapshots go to the
// comparison_history table.
type ComparisonReport struct {
	PageURL     string           `json:"page_url"`
	Identity    ProductIdentity  `json:"identity"`
	Identifier  SearchIdentifier `json:"identifier"`
	PagePrice   PagePrice        `json:"page_price"`
	Quotes      []PriceQuote     `json:"quotes"`
	AnyFound    bool             `json:"any_found"`
	HTML        string           `json:"html"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// ClickEvent mirrors the tracking sink contract: one outbound-link click on
// the rendered comparison table.
type ClickEvent struct {
	ID           int       `json:"id,omitempty" db:"id"`
	Store        string    `json:"store" db:"store"`
	ProductURL   string    `json:"productUrl" db:"product_url"`
	ProductName  string    `json:"productName" db:"product_name"`
	Price        string    `json:"price" db:"price"`
	GTIN         string    `json:"gtin" db:"gtin"`
	MPN          string    `json:"mpn" db:"mpn"`
	ReferringURL string    `json:"referringUrl" db:"referring_url"`
	CreatedAt    time.Time `json:"created_at,omitempty" db:"created_at"`
}

// ComparisonSnapshot is a persisted summary of one pipeline run.
type ComparisonSnapshot struct {
	ID             int       `json:"id" db:"id"`
	PageURL        string    `json:"page_url" db:"page_url"`
	Identifier     string    `json:"identifier" db:"identifier"`
	IdentifierType string    `json:"identifier_type" db:"identifier_type"`
	ProductName    string    `json:"product_name" db:"product_name"`
	PagePriceEUR   float64   `json:"page_price_eur" db:"page_price_eur"`
	QuotesFound    int       `json:"quotes_found" db:"quotes_found"`
	QuotesMismatch int       `json:"quotes_mismatch" db:"quotes_mismatch"`
	QuotesNotFound int       `json:"quotes_not_found" db:"quotes_not_found"`
	CheckedAt      time.Time `json:"checked_at" db:"checked_at"`
}

// CompareRequest is the body of a compare call. HTML is optional; when it is
// empty the service fetches the page through the relay itself.
type CompareRequest struct {
	URL  string `json:"url" validate:"required,url"`
	HTML string `json:"html,omitempty"`
}

// AddWatchRequest registers a page for scheduled re-comparison.
type AddWatchRequest struct {
	URL string `json:"url" validate:"required,url"`
}
