// prospector-service — profile discovery and scraping pipeline.
//
// Runs authenticated people searches against the source site through a
// driven browser, dedupes results against per-operator view history, and
// deep-extracts selected profiles. Exposes an HTTP API used by the CRM
// Gateway:
//   - POST /search           — paginated people search with dedup + quota
//   - POST /profiles/extract — deep per-profile extraction
//
// Publishes EVENT_SEARCH_COMPLETED / EVENT_PROFILE_EXTRACTED to Redis for
// Gateway SSE forward.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salespilot/prospector-service/internal/browser"
	"salespilot/prospector-service/internal/config"
	"salespilot/prospector-service/internal/db"
	"salespilot/prospector-service/internal/dedup"
	"salespilot/prospector-service/internal/profile"
	"salespilot/prospector-service/internal/scheduler"
	"salespilot/prospector-service/internal/search"
	"salespilot/prospector-service/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[prospector] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[prospector] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[prospector] PostgreSQL: %v", err)
	}
	defer pool.Close()

	profiles := store.NewPostgresProfileStore(pool)
	if err := profiles.EnsureSchema(ctx); err != nil {
		log.Fatalf("[prospector] Schema: %v", err)
	}
	log.Println("[prospector] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[prospector] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[prospector] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[prospector] Redis connected ✓")

	// ── Pipeline ─────────────────────────────────────────────────────────────
	sessions := store.NewRedisSessionStore(rdb)
	launcher := browser.NewLauncher(cfg.Headless, cfg.ChromePath, cfg.NavTimeout)
	gate := browser.NewOperatorGate()
	index := dedup.NewIndex(profiles)

	orch := search.NewOrchestrator(
		sessions, index, launcher, search.NewPageExtractor(cfg.SourceBaseURL),
		gate, rdb, cfg.SourceBaseURL, cfg.SearchQuota, cfg.SearchMaxPages,
	)
	extractor := profile.NewExtractor(
		sessions, profiles, launcher, gate, rdb, cfg.FallbackContactEmail,
	)

	// ── Retention scheduler ──────────────────────────────────────────────────
	sched := scheduler.New(profiles, cfg.HistoryRetentionDays)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[prospector] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	search.NewHandler(orch).RegisterRoutes(mux)
	profile.NewHandler(extractor).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: mux,
		// Searches drive a paced browser for minutes; no write timeout.
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[prospector] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[prospector] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[prospector] Shutting down…")
	cancel() // tears down in-flight driven browser sessions

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[prospector] Shutdown error: %v", err)
	}
	log.Println("[prospector] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "prospector-service",
		"version": version,
	})
}
