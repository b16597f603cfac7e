package scraper

import (
	"sync"
)

// Session scopes one browsing context: the dedup set of identifiers already
// compared, the current page URL, and a generation counter. Navigating bumps
// the generation, so a comparison still in flight for the previous page can
// detect it is stale and discard its result.
type Session struct {
	mu         sync.Mutex
	processed  map[string]bool
	currentURL string
	generation uint64
}

func NewSession(url string) *Session {
	return &Session{
		processed:  make(map[string]bool),
		currentURL: url,
	}
}

// Navigate records a page change: the dedup set is cleared and the
// generation advances, invalidating in-flight runs.
func (s *Session) Navigate(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed = make(map[string]bool)
	s.currentURL = url
	s.generation++
}

// MarkProcessed claims a dedup key. It returns false when the key was already
// claimed in this session, which means the identifier must not run again.
func (s *Session) MarkProcessed(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processed[key] {
		return false
	}
	s.processed[key] = true
	return true
}

// Generation returns the current generation counter.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Stale reports whether a run started at the given generation has been
// superseded by a navigation.
func (s *Session) Stale(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation != generation
}

// CurrentURL returns the session's current page URL.
func (s *Session) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}
