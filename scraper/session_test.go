package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionDedup(t *testing.T) {
	sess := NewSession("https://example.com/product/1")

	assert.True(t, sess.MarkProcessed("GTIN:12345678"))
	assert.False(t, sess.MarkProcessed("GTIN:12345678"))
	assert.True(t, sess.MarkProcessed("MPN:ABC-1"))
}

func TestSessionNavigateClearsDedup(t *testing.T) {
	sess := NewSession("https://example.com/product/1")
	sess.MarkProcessed("GTIN:12345678")

	sess.Navigate("https://example.com/product/2")

	assert.Equal(t, "https://example.com/product/2", sess.CurrentURL())
	assert.True(t, sess.MarkProcessed("GTIN:12345678"))
}

func TestSessionGenerationStaleness(t *testing.T) {
	sess := NewSession("https://example.com/product/1")
	gen := sess.Generation()

	assert.False(t, sess.Stale(gen))

	sess.Navigate("https://example.com/product/2")

	assert.True(t, sess.Stale(gen))
	assert.False(t, sess.Stale(sess.Generation()))
}
