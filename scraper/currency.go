package scraper

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"crossprice/models"
)

// EURToDKKRate is the fixed conversion rate used for display. Live FX is out
// of scope; a stale rate only shifts the converted column, never the verdicts.
const EURToDKKRate = 7.45

// ErrNoPrice means a text fragment contained no parseable price. It is an
// expected outcome for partner pages, not a failure.
var ErrNoPrice = errors.New("no price found in text")

// ErrNoIdentity means the page exposed neither GTIN nor MPN.
var ErrNoIdentity = errors.New("no product identifier found on page")

// ErrAlreadyProcessed means this identifier already ran in the session.
var ErrAlreadyProcessed = errors.New("identifier already processed in this session")

// ErrStaleRun means a navigation happened while the run was in flight and its
// result must be discarded.
var ErrStaleRun = errors.New("comparison run superseded by navigation")

// Money is a parsed amount plus the currency it was quoted in.
type Money struct {
	Value    float64
	Currency models.Currency
}

// ToDKK converts a EUR amount to DKK at the fixed rate. Converters never
// round; formatting happens at render time.
func ToDKK(eur float64) float64 {
	return eur * EURToDKKRate
}

// ToEUR converts a DKK amount to EUR at the fixed rate.
func ToEUR(dkk float64) float64 {
	return dkk / EURToDKKRate
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var (
	fromPrefixRegex = regexp.MustCompile(`(?i)^\s*(from|fra|ab)\s+`)
	numberRegex     = regexp.MustCompile(`\d+(?:[.,\s]\d+)*`)
)

// ParseMoneyString extracts a numeric amount and currency from free-form
// price text like "12,34 €", "1.234,56 kr" or "from €89.99".
//
// The separator heuristic: a comma followed by exactly two trailing digits is
// a decimal comma (European style), so dots before it are thousands
// separators. Otherwise commas are thousands separators.
func ParseMoneyString(text string) (Money, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return Money{}, ErrNoPrice
	}

	cleaned = fromPrefixRegex.ReplaceAllString(cleaned, "")

	currency := models.CurrencyEUR
	lower := strings.ToLower(cleaned)
	if strings.Contains(lower, "kr") || strings.Contains(lower, "dkk") {
		currency = models.CurrencyDKK
	}

	match := numberRegex.FindString(cleaned)
	if match == "" {
		return Money{}, ErrNoPrice
	}

	value, err := parseLocaleNumber(match)
	if err != nil {
		return Money{}, ErrNoPrice
	}

	return Money{Value: value, Currency: currency}, nil
}

func parseLocaleNumber(raw string) (float64, error) {
	s := strings.ReplaceAll(raw, " ", "")

	lastComma := strings.LastIndex(s, ",")
	if lastComma >= 0 && len(s)-lastComma-1 == 2 {
		// Decimal comma: "1.234,56" -> "1234.56"
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		// Comma as thousands separator: "1,234.56" -> "1234.56"
		s = strings.ReplaceAll(s, ",", "")
	}

	return strconv.ParseFloat(s, 64)
}
