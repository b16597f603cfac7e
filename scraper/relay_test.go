package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHTTPRelayReturnsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	relay := NewHTTPRelay(2 * time.Second)
	resp := relay.FindPrice(context.Background(), server.URL+"/search?q=123")

	assert.Contains(t, resp.HTML, "ok")
	assert.Equal(t, server.URL+"/search?q=123", resp.URL)
}

func TestHTTPRelayErrorsCollapseToEmptyHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	relay := NewHTTPRelay(2 * time.Second)

	resp := relay.FindPrice(context.Background(), server.URL)
	assert.Empty(t, resp.HTML)

	// Unreachable host is the same outcome, never an error
	resp = relay.FindPrice(context.Background(), "http://127.0.0.1:1/nope")
	assert.Empty(t, resp.HTML)
}

func TestHTTPRelayFollowsRedirects(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		w.Write([]byte("<html><body>moved</body></html>"))
	}))
	defer server.Close()

	relay := NewHTTPRelay(2 * time.Second)
	resp := relay.FindPrice(context.Background(), server.URL+"/old")

	assert.Contains(t, resp.HTML, "moved")
	assert.Equal(t, server.URL+"/new", resp.URL)
}
