package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"strings"
	"time"

	"crossprice/config"
	"crossprice/database"
	"crossprice/handlers"
	"crossprice/middleware"
	"crossprice/repository"
	"crossprice/scheduler"
	"crossprice/scraper"
	"crossprice/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

var startTime = time.Now()

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Create tables
	if err := database.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	// Initialize repositories
	clickRepo := repository.NewClickRepository()
	comparisonRepo := repository.NewComparisonRepository()

	// Select the fetch relay
	var relay scraper.FetchRelay
	if cfg.RelayMode == "browser" {
		browserRelay, err := scraper.NewBrowserRelay()
		if err != nil {
			log.Fatalf("Failed to start browser relay: %v", err)
		}
		defer browserRelay.Close()
		relay = browserRelay
		log.Println("Using headless browser relay")
	} else {
		relay = scraper.NewHTTPRelay(cfg.FetchTimeout)
		log.Println("Using HTTP relay")
	}

	// Comparison engine over the configured partner set
	engine := scraper.NewEngine(relay, config.Partners(), cfg.FetchTimeout)

	// Page watcher for scheduled re-comparison
	watcher := scheduler.NewPageWatcher(relay, engine, comparisonRepo, cfg)
	watcher.Start()
	defer watcher.Stop()

	// Tracking forwarder
	tracker := services.NewTrackingService(cfg.TrackingEndpoint)

	// Initialize handlers
	h := handlers.NewHandlers(engine, relay, watcher, clickRepo, comparisonRepo, tracker, cfg)
	defer h.Close()

	// Setup router
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimit))
	r.Use(middleware.APIKeyMiddleware(cfg.RequireAPIKey))

	// Health and monitoring endpoints
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/metrics", getMetrics).Methods("GET")
	r.HandleFunc("/status", getStatus).Methods("GET")

	// API v1 routes
	apiV1 := r.PathPrefix("/api/v1").Subrouter()

	// Comparison
	apiV1.HandleFunc("/compare", h.Compare).Methods("POST")
	apiV1.HandleFunc("/compare-async", h.CompareAsync).Methods("POST")

	// Task management
	apiV1.HandleFunc("/tasks/stats", h.GetTaskStats).Methods("GET")
	apiV1.HandleFunc("/tasks/{id}", h.GetTaskStatus).Methods("GET")

	// Watch sessions
	apiV1.HandleFunc("/watches", h.AddWatch).Methods("POST")
	apiV1.HandleFunc("/watches", h.ListWatches).Methods("GET")
	apiV1.HandleFunc("/watches/{id}", h.GetWatch).Methods("GET")
	apiV1.HandleFunc("/watches/{id}", h.RemoveWatch).Methods("DELETE")

	// Click tracking
	apiV1.HandleFunc("/track", h.TrackClick).Methods("POST")
	apiV1.HandleFunc("/clicks", h.GetClicks).Methods("GET")
	apiV1.HandleFunc("/clicks/stats", h.GetClickStats).Methods("GET")

	// Comparison history
	apiV1.HandleFunc("/history", h.GetComparisonHistory).Methods("GET")

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Printf("🌐 Server starting on port %s", cfg.Port)
	log.Printf("📋 API Documentation:")
	log.Printf("   GET  /health - Health check")
	log.Printf("   GET  /metrics - System metrics")
	log.Printf("   GET  /status - Detailed status")
	log.Printf("   POST /api/v1/compare - Run price comparison for a page")
	log.Printf("   POST /api/v1/compare-async - Queue a comparison task")
	log.Printf("   POST /api/v1/watches - Watch a page for changes")
	log.Printf("   POST /api/v1/track - Record an outbound click")

	// Start server
	log.Fatal(http.ListenAndServe(cfg.Host+":"+cfg.Port, c.Handler(r)))
}

func getMetrics(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	metrics := map[string]interface{}{
		"timestamp":    time.Now(),
		"uptime":       time.Since(startTime).String(),
		"goroutines":   runtime.NumGoroutine(),
		"memory_usage": fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
	}

	writeJSON(w, http.StatusOK, metrics)
}

func getStatus(w http.ResponseWriter, r *http.Request) {
	clickRepo := repository.NewClickRepository()
	counts, err := clickRepo.GetClickCountByStore()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get click stats")
		return
	}

	totalClicks := 0
	for _, count := range counts {
		totalClicks += count
	}

	status := map[string]interface{}{
		"timestamp":       time.Now(),
		"uptime":          time.Since(startTime).String(),
		"partners":        len(config.Partners()),
		"total_clicks":    totalClicks,
		"clicks_by_store": counts,
		"system_health":   "healthy",
	}

	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
