// Package scheduler wires up the cron job that purges old view-history rows.
// Retention is maintenance only: the search pipeline itself never deletes
// history.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"salespilot/prospector-service/internal/store"
)

// Scheduler wraps robfig/cron and manages the retention loop.
type Scheduler struct {
	cron          *cron.Cron
	profiles      store.ProfileStore
	retentionDays int
}

// New creates a Scheduler purging history older than retentionDays.
// A retention of 0 disables the job entirely.
func New(profiles store.ProfileStore, retentionDays int) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithLogger(cron.DefaultLogger)),
		profiles:      profiles,
		retentionDays: retentionDays,
	}
}

// Start registers the purge job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.retentionDays == 0 {
		log.Println("[scheduler] History retention disabled — purge job not registered")
		return nil
	}

	if _, err := s.cron.AddFunc("@daily", func() { s.runPurge(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — purging view history older than %d day(s) daily", s.retentionDays)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runPurge(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
	purged, err := s.profiles.PurgeViewedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[scheduler] View-history purge error: %v", err)
		return
	}
	log.Printf("[scheduler] View-history purge complete — removed %d row(s) older than %s",
		purged, cutoff.Format(time.RFC3339))
}
