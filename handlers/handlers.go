package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"crossprice/config"
	"crossprice/models"
	"crossprice/repository"
	"crossprice/scheduler"
	"crossprice/scraper"
	"crossprice/services"
)

type Handlers struct {
	engine         *scraper.Engine
	relay          scraper.FetchRelay
	watcher        *scheduler.PageWatcher
	taskManager    *scheduler.TaskManager
	clickRepo      *repository.ClickRepository
	comparisonRepo *repository.ComparisonRepository
	tracker        *services.TrackingService
	cfg            *config.Config
}

func NewHandlers(engine *scraper.Engine, relay scraper.FetchRelay, watcher *scheduler.PageWatcher, clickRepo *repository.ClickRepository, comparisonRepo *repository.ComparisonRepository, tracker *services.TrackingService, cfg *config.Config) *Handlers {
	h := &Handlers{
		engine:         engine,
		relay:          relay,
		watcher:        watcher,
		clickRepo:      clickRepo,
		comparisonRepo: comparisonRepo,
		tracker:        tracker,
		cfg:            cfg,
	}

	h.taskManager = scheduler.NewTaskManager(h.compareByURL, cfg.MaxWorkers)

	return h
}

// Close stops the background workers
func (h *Handlers) Close() {
	if h.taskManager != nil {
		h.taskManager.Stop()
	}
}

// compareByURL runs a full comparison for a page URL (used by TaskManager)
func (h *Handlers) compareByURL(pageURL string) (*models.ComparisonReport, error) {
	ctx := context.Background()

	resp := h.relay.FindPrice(ctx, pageURL)
	if resp.HTML == "" {
		return nil, errors.New("page could not be fetched")
	}

	sess := scraper.NewSession(pageURL)
	report, err := h.engine.Compare(ctx, sess, scraper.PageInput{URL: pageURL, HTML: resp.HTML})
	if err != nil {
		return nil, err
	}

	h.persistSnapshot(report)
	return report, nil
}

func (h *Handlers) persistSnapshot(report *models.ComparisonReport) {
	snapshot := scheduler.SnapshotFromReport(report)
	if err := h.comparisonRepo.AddSnapshot(snapshot); err != nil {
		log.Printf("Failed to persist comparison snapshot: %v", err)
	}
}

// HealthCheck returns service health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "crossprice",
		"version":   "1.0.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// Compare runs a synchronous comparison for one page. When the request omits
// the page HTML the service fetches it through the relay first.
func (h *Handlers) Compare(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	pageHTML := req.HTML
	if pageHTML == "" {
		resp := h.relay.FindPrice(r.Context(), req.URL)
		if resp.HTML == "" {
			writeError(w, http.StatusBadGateway, "Page could not be fetched")
			return
		}
		pageHTML = resp.HTML
	}

	sess := scraper.NewSession(req.URL)
	report, err := h.engine.Compare(r.Context(), sess, scraper.PageInput{URL: req.URL, HTML: pageHTML})
	if err != nil {
		if errors.Is(err, scraper.ErrNoIdentity) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"status":  "no_identifier",
				"message": "No GTIN or MPN found on page",
				"url":     req.URL,
			})
			return
		}
		log.Printf("Comparison failed for %s: %v", req.URL, err)
		writeError(w, http.StatusInternalServerError, "Comparison failed")
		return
	}

	h.persistSnapshot(report)
	writeJSON(w, http.StatusOK, report)
}

// CompareAsync queues a comparison task and returns immediately
func (h *Handlers) CompareAsync(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	task := h.taskManager.SubmitTask(req.URL)
	writeJSON(w, http.StatusAccepted, task)
}

// GetTaskStatus returns a task by ID
func (h *Handlers) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]

	task, exists := h.taskManager.GetTask(taskID)
	if !exists {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// GetTaskStats returns task manager statistics
func (h *Handlers) GetTaskStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.taskManager.GetStats())
}

// AddWatch registers a page for scheduled re-comparison
func (h *Handlers) AddWatch(w http.ResponseWriter, r *http.Request) {
	var req models.AddWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	watch := h.watcher.AddWatch(req.URL)
	writeJSON(w, http.StatusCreated, watch)
}

// ListWatches returns all registered watches
func (h *Handlers) ListWatches(w http.ResponseWriter, r *http.Request) {
	watches := h.watcher.ListWatches()
	if watches == nil {
		watches = []*scheduler.Watch{}
	}
	writeJSON(w, http.StatusOK, watches)
}

// GetWatch returns one watch by ID
func (h *Handlers) GetWatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	watch, ok := h.watcher.GetWatch(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Watch not found")
		return
	}

	writeJSON(w, http.StatusOK, watch)
}

// RemoveWatch drops a watch
func (h *Handlers) RemoveWatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if !h.watcher.RemoveWatch(id) {
		writeError(w, http.StatusNotFound, "Watch not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "id": id})
}

// TrackClick stores an outbound-link click and forwards it to the external
// tracking endpoint when one is configured.
func (h *Handlers) TrackClick(w http.ResponseWriter, r *http.Request) {
	var event models.ClickEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if event.Store == "" || event.ProductURL == "" {
		writeError(w, http.StatusBadRequest, "store and productUrl are required")
		return
	}

	stored, err := h.clickRepo.AddClickEvent(&event)
	if err != nil {
		log.Printf("Failed to store click event: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to store click event")
		return
	}

	h.tracker.Forward(*stored)

	writeJSON(w, http.StatusCreated, map[string]interface{}{"status": "recorded", "id": stored.ID})
}

// GetClicks returns recent click events
func (h *Handlers) GetClicks(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 100)

	events, err := h.clickRepo.GetClickEvents(limit)
	if err != nil {
		log.Printf("Failed to get click events: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get click events")
		return
	}

	if events == nil {
		events = []models.ClickEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetComparisonHistory returns past comparison runs, optionally for one page
func (h *Handlers) GetComparisonHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	pageURL := r.URL.Query().Get("url")

	var history []models.ComparisonSnapshot
	var err error
	if pageURL != "" {
		history, err = h.comparisonRepo.GetHistoryForURL(pageURL, limit)
	} else {
		history, err = h.comparisonRepo.GetRecentSnapshots(limit)
	}
	if err != nil {
		log.Printf("Failed to get comparison history: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get comparison history")
		return
	}

	if history == nil {
		history = []models.ComparisonSnapshot{}
	}
	writeJSON(w, http.StatusOK, history)
}

// GetClickStats returns click counts per store
func (h *Handlers) GetClickStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.clickRepo.GetClickCountByStore()
	if err != nil {
		log.Printf("Failed to get click stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get click stats")
		return
	}

	writeJSON(w, http.StatusOK, counts)
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
