package scheduler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"crossprice/config"
	"crossprice/models"
	"crossprice/repository"
	"crossprice/scraper"
)

// Watch is one page kept under scheduled re-comparison. Each watch owns its
// own session, so dedup state and navigation tracking stay per-page.
type Watch struct {
	ID         string                   `json:"id"`
	PageURL    string                   `json:"page_url"`
	Session    *scraper.Session         `json:"-"`
	LastReport *models.ComparisonReport `json:"last_report,omitempty"`
	LastRunAt  time.Time                `json:"last_run_at,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
}

// PageWatcher polls watched pages on a cron schedule and re-runs the
// comparison pipeline when a page changed or moved.
type PageWatcher struct {
	cron           *cron.Cron
	relay          scraper.FetchRelay
	engine         *scraper.Engine
	comparisonRepo *repository.ComparisonRepository
	cfg            *config.Config

	mutex   sync.RWMutex
	watches map[string]*Watch
}

func NewPageWatcher(relay scraper.FetchRelay, engine *scraper.Engine, comparisonRepo *repository.ComparisonRepository, cfg *config.Config) *PageWatcher {
	return &PageWatcher{
		cron:           cron.New(cron.WithSeconds()),
		relay:          relay,
		engine:         engine,
		comparisonRepo: comparisonRepo,
		cfg:            cfg,
		watches:        make(map[string]*Watch),
	}
}

// Start schedules the watch cycle
func (pw *PageWatcher) Start() {
	_, err := pw.cron.AddFunc(pw.cfg.WatchSpec, pw.runAll)
	if err != nil {
		log.Printf("Failed to schedule page watcher: %v", err)
		return
	}

	pw.cron.Start()
	log.Printf("Page watcher scheduled with spec %q", pw.cfg.WatchSpec)
}

// Stop stops the watch cycle
func (pw *PageWatcher) Stop() {
	if pw.cron != nil {
		pw.cron.Stop()
	}
}

// AddWatch registers a page and runs its first comparison in the background.
func (pw *PageWatcher) AddWatch(pageURL string) *Watch {
	watch := &Watch{
		ID:        newWatchID(),
		PageURL:   pageURL,
		Session:   scraper.NewSession(pageURL),
		CreatedAt: time.Now(),
	}

	pw.mutex.Lock()
	pw.watches[watch.ID] = watch
	pw.mutex.Unlock()

	log.Printf("👀 Watching %s (watch %s)", pageURL, watch.ID)
	go pw.runWatch(watch)

	return watch
}

// RemoveWatch drops a watch. Returns false when the ID is unknown.
func (pw *PageWatcher) RemoveWatch(id string) bool {
	pw.mutex.Lock()
	defer pw.mutex.Unlock()

	if _, ok := pw.watches[id]; !ok {
		return false
	}
	delete(pw.watches, id)
	log.Printf("Stopped watching %s", id)
	return true
}

// GetWatch returns one watch by ID
func (pw *PageWatcher) GetWatch(id string) (*Watch, bool) {
	pw.mutex.RLock()
	defer pw.mutex.RUnlock()
	watch, ok := pw.watches[id]
	return watch, ok
}

// ListWatches returns all registered watches
func (pw *PageWatcher) ListWatches() []*Watch {
	pw.mutex.RLock()
	defer pw.mutex.RUnlock()

	watches := make([]*Watch, 0, len(pw.watches))
	for _, watch := range pw.watches {
		watches = append(watches, watch)
	}
	return watches
}

func (pw *PageWatcher) runAll() {
	watches := pw.ListWatches()
	if len(watches) == 0 {
		return
	}

	log.Printf("Running %d watched pages", len(watches))
	for _, watch := range watches {
		go pw.runWatch(watch)
	}
}

// runWatch fetches the watched page and re-runs the pipeline. A page that
// redirected somewhere new counts as a navigation: the session resets before
// the run. Pages that expose no identifier yet are retried a bounded number
// of times, then the cycle gives up quietly until the next schedule tick.
func (pw *PageWatcher) runWatch(watch *Watch) {
	ctx := context.Background()

	resp := pw.relay.FindPrice(ctx, watch.PageURL)
	if resp.HTML == "" {
		log.Printf("Watcher: no content for %s, skipping cycle", watch.PageURL)
		return
	}

	if resp.URL != "" && canonicalURL(resp.URL) != canonicalURL(watch.Session.CurrentURL()) {
		watch.Session.Navigate(resp.URL)
		time.Sleep(pw.cfg.SettleDelay)
	}

	pageHTML := resp.HTML
	for attempt := 1; ; attempt++ {
		report, err := pw.engine.Compare(ctx, watch.Session, scraper.PageInput{URL: resp.URL, HTML: pageHTML})
		if err == nil {
			pw.recordRun(watch, report)
			return
		}

		switch {
		case errors.Is(err, scraper.ErrAlreadyProcessed):
			// Nothing changed since the last cycle.
			return
		case errors.Is(err, scraper.ErrStaleRun):
			return
		case errors.Is(err, scraper.ErrNoIdentity):
			if attempt >= pw.cfg.IdentityRetryLimit {
				log.Printf("Watcher: no identifier on %s after %d attempts, giving up until next cycle", watch.PageURL, attempt)
				return
			}
			time.Sleep(pw.cfg.IdentityRetryDelay)
			refetch := pw.relay.FindPrice(ctx, watch.PageURL)
			if refetch.HTML != "" {
				pageHTML = refetch.HTML
			}
		default:
			log.Printf("Watcher: comparison failed for %s: %v", watch.PageURL, err)
			return
		}
	}
}

func (pw *PageWatcher) recordRun(watch *Watch, report *models.ComparisonReport) {
	watch.LastReport = report
	watch.LastRunAt = time.Now()

	snapshot := SnapshotFromReport(report)
	if err := pw.comparisonRepo.AddSnapshot(snapshot); err != nil {
		log.Printf("Watcher: failed to persist snapshot for %s: %v", watch.PageURL, err)
	}
}

// SnapshotFromReport summarizes a report for the comparison_history table.
func SnapshotFromReport(report *models.ComparisonReport) *models.ComparisonSnapshot {
	snapshot := &models.ComparisonSnapshot{
		PageURL:        report.PageURL,
		Identifier:     report.Identifier.Value,
		IdentifierType: string(report.Identifier.Type),
		ProductName:    report.Identity.Name,
		CheckedAt:      report.GeneratedAt,
	}

	if report.PagePrice.Found {
		snapshot.PagePriceEUR = report.PagePrice.Price
		if report.PagePrice.Currency == models.CurrencyDKK {
			snapshot.PagePriceEUR = scraper.ToEUR(report.PagePrice.Price)
		}
	}

	for _, quote := range report.Quotes {
		switch quote.Status {
		case models.QuoteFound:
			snapshot.QuotesFound++
		case models.QuoteMismatch:
			snapshot.QuotesMismatch++
		default:
			snapshot.QuotesNotFound++
		}
	}

	return snapshot
}

// canonicalURL strips the query and fragment so tracking parameters do not
// register as navigations.
func canonicalURL(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimRight(raw, "/")
}

func newWatchID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "watch_" + time.Now().Format("20060102150405")
	}
	return "watch_" + hex.EncodeToString(b)
}
