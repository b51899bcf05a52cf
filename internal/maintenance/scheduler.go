// Package maintenance keeps the message log bounded and the database file
// compact.
package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/ircbot/internal/database"
	"github.com/yourusername/ircbot/internal/output"
)

// vacuumTimeout bounds a single VACUUM; large files can take a while
const vacuumTimeout = 5 * time.Minute

// Scheduler applies the message retention policy when started and then,
// every interval, again followed by a VACUUM
type Scheduler struct {
	db            *database.DB
	logger        output.Logger
	interval      time.Duration
	retentionDays int

	mu         sync.Mutex
	running    bool
	done       chan struct{}
	wg         sync.WaitGroup
	lastVacuum time.Time
}

// New creates a scheduler. retentionDays <= 0 keeps all messages; an
// interval <= 0 disables the periodic run.
func New(db *database.DB, logger output.Logger, interval time.Duration, retentionDays int) *Scheduler {
	return &Scheduler{
		db:            db,
		logger:        logger,
		interval:      interval,
		retentionDays: retentionDays,
	}
}

// Start runs the retention cleanup once and begins the periodic loop
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.done = make(chan struct{})

	if err := s.cleanup(); err != nil {
		s.logger.Error("Message cleanup failed: %v", err)
	}

	if s.interval > 0 {
		s.logger.Info("Starting database maintenance (every %v)", s.interval)
		s.wg.Add(1)
		go s.run(s.done)
	}
	return nil
}

// Stop ends the periodic loop, waiting for a pass in progress
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is not running")
	}
	s.running = false
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// IsRunning reports whether Start was called without a matching Stop
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastVacuum returns when the last VACUUM completed; zero if none has
func (s *Scheduler) LastVacuum() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastVacuum
}

func (s *Scheduler) run(done <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := s.RunOnce(context.Background()); err != nil {
				s.logger.Error("Database maintenance failed: %v", err)
			}
		}
	}
}

// RunOnce applies the retention policy and then vacuums the database
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if err := s.cleanup(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, vacuumTimeout)
	defer cancel()

	start := time.Now()
	if err := s.db.Vacuum(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.lastVacuum = time.Now()
	s.mu.Unlock()
	s.logger.Success("VACUUM completed in %.2f seconds", time.Since(start).Seconds())
	return nil
}

func (s *Scheduler) cleanup() error {
	if s.retentionDays <= 0 {
		return nil
	}
	_, err := s.db.CleanupOldMessages(s.retentionDays, s.logger)
	return err
}
