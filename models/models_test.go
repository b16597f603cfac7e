package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchIdentifierKey(t *testing.T) {
	gtin := SearchIdentifier{Value: "12345678", Type: IdentifierGTIN}
	mpn := SearchIdentifier{Value: "ABC-1", Type: IdentifierMPN}
	fallback := SearchIdentifier{Value: "ABC-1", Type: IdentifierGTINViaMPN}

	assert.Equal(t, "GTIN:12345678", gtin.Key())
	assert.Equal(t, "MPN:ABC-1", mpn.Key())
	// The fallback shares the plain MPN key space so both cannot run twice
	assert.Equal(t, mpn.Key(), fallback.Key())
}

func TestProductIdentitySearchIdentifier(t *testing.T) {
	both := ProductIdentity{GTIN: "12345678", MPN: "ABC-1"}
	identifier, ok := both.SearchIdentifier()
	assert.True(t, ok)
	assert.Equal(t, IdentifierGTIN, identifier.Type)
	assert.Equal(t, "12345678", identifier.Value)

	mpnOnly := ProductIdentity{MPN: "ABC-1"}
	identifier, ok = mpnOnly.SearchIdentifier()
	assert.True(t, ok)
	assert.Equal(t, IdentifierMPN, identifier.Type)

	empty := ProductIdentity{Name: "named but unidentified"}
	_, ok = empty.SearchIdentifier()
	assert.False(t, ok)
	assert.True(t, empty.IsEmpty())
}

func TestPriceQuoteResolved(t *testing.T) {
	assert.True(t, PriceQuote{Status: QuoteFound, Value: 10}.Resolved())
	assert.False(t, PriceQuote{Status: QuoteFound}.Resolved())
	assert.False(t, PriceQuote{Status: QuoteMismatch, Value: 10}.Resolved())
	assert.False(t, PriceQuote{Status: QuoteNotFound}.Resolved())
}

func TestCompareTaskLifecycle(t *testing.T) {
	task := NewCompareTask("https://shop.example/p/1")

	assert.Equal(t, TaskStatusQueued, task.Status)
	assert.True(t, task.IsActive())
	assert.False(t, task.IsCompleted())

	task.Start()
	assert.Equal(t, TaskStatusProcessing, task.Status)

	task.Complete(&ComparisonReport{PageURL: task.PageURL})
	assert.Equal(t, TaskStatusCompleted, task.Status)
	assert.True(t, task.IsCompleted())
	assert.NotNil(t, task.Result)

	failed := NewCompareTask("https://shop.example/p/2")
	failed.Start()
	failed.Fail("boom")
	assert.Equal(t, TaskStatusFailed, failed.Status)
	assert.Equal(t, "boom", failed.Error)
}
