package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http", cfg.RelayMode)
	assert.Equal(t, 8*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 10, cfg.IdentityRetryLimit)
	assert.Equal(t, time.Second, cfg.IdentityRetryDelay)
	assert.False(t, cfg.RequireAPIKey)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RELAY_MODE", "browser")
	t.Setenv("FETCH_TIMEOUT", "15s")
	t.Setenv("IDENTITY_RETRY_LIMIT", "3")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "browser", cfg.RelayMode)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 3, cfg.IdentityRetryLimit)
	assert.Equal(t, 2.5, cfg.RateLimit)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "soon")
	t.Setenv("IDENTITY_RETRY_LIMIT", "many")

	cfg := Load()

	assert.Equal(t, 8*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 10, cfg.IdentityRetryLimit)
}

func TestPartnersConfiguration(t *testing.T) {
	partners := Partners()
	assert.Len(t, partners, 3)

	byID := make(map[string]PartnerConfig)
	for _, p := range partners {
		assert.NotEmpty(t, p.SearchURL)
		assert.NotEmpty(t, p.PriceSelectors)
		assert.NotEmpty(t, p.HostKeyword)
		byID[p.ID] = p
	}

	assert.Equal(t, 1.05, byID["bike-discount"].VATMultiplier)
	assert.Equal(t, PriceCurrencyPrefixed, byID["bike-discount"].PricePattern)
	assert.Equal(t, "No results for", byID["bike-discount"].NoResultsMarker)
	assert.Equal(t, "DKK", byID["cykelgear"].Currency)
	assert.Equal(t, "EUR", byID["bike-components"].Currency)
}
