// Package scheduler runs periodic housekeeping jobs.
package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/identity/internal/database/codes"
	"github.com/mrlokans/identity/internal/database/sessions"
)

// CleanupScheduler periodically deletes expired sessions and verification
// codes. Pure housekeeping: validity checks are lazy and never depend on the
// sweep having run, this just keeps dead rows from piling up.
type CleanupScheduler struct {
	sessions *sessions.Repository
	codes    *codes.Repository

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

// NewCleanupScheduler creates a new scheduler instance.
func NewCleanupScheduler(sessionRepo *sessions.Repository, codeRepo *codes.Repository) *CleanupScheduler {
	return &CleanupScheduler{
		sessions: sessionRepo,
		codes:    codeRepo,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the sweep on the given cron schedule.
func (s *CleanupScheduler) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(schedule, s.Sweep)
	if err != nil {
		return err
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("Cleanup scheduler started with schedule %q", schedule)
	return nil
}

// Stop halts the scheduler. A sweep in flight finishes.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cron.Remove(s.entryID)
	s.cron.Stop()
	s.isRunning = false
	log.Printf("Cleanup scheduler stopped")
}

// Sweep deletes every expired session and verification code. Exposed so it
// can be invoked directly in tests and on demand.
func (s *CleanupScheduler) Sweep() {
	now := time.Now()

	deletedSessions, err := s.sessions.DeleteExpired(now)
	if err != nil {
		log.Printf("cleanup: delete expired sessions: %v", err)
	}

	deletedCodes, err := s.codes.DeleteExpired(now)
	if err != nil {
		log.Printf("cleanup: delete expired verification codes: %v", err)
	}

	if deletedSessions > 0 || deletedCodes > 0 {
		log.Printf("cleanup: removed %d expired session(s), %d expired code(s)", deletedSessions, deletedCodes)
	}
}
