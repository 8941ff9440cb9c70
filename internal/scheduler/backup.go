package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librium/internal/backup"
	"github.com/mrlokans/librium/internal/config"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// BackupCreator takes a database snapshot.
type BackupCreator interface {
	Create(ctx context.Context, name string) (*backup.Snapshot, error)
}

// BackupScheduler takes periodic snapshots of the catalog.
type BackupScheduler struct {
	creator BackupCreator
	cfg     config.Backup

	cron        *cron.Cron
	entryID     cron.EntryID
	mu          sync.RWMutex
	isRunning   bool
	isBackingUp bool
	ctx         context.Context
}

// NewBackupScheduler creates a new scheduler instance
func NewBackupScheduler(creator BackupCreator, cfg config.Backup) *BackupScheduler {
	return &BackupScheduler{
		creator: creator,
		cfg:     cfg,
		cron:    cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler if scheduled backups are enabled
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Info().Msg("Backup scheduler disabled")
		return nil
	}

	if err := ValidateSchedule(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, s.run)
	if err != nil {
		return fmt.Errorf("failed to schedule backup job: %w", err)
	}
	s.entryID = entryID
	s.ctx = ctx

	s.cron.Start()
	s.isRunning = true

	log.Info().Str("schedule", s.cfg.Schedule).Time("next_run", s.cron.Entry(entryID).Next).Msg("Backup scheduler started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	// Wait for a running backup to complete
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)

	log.Info().Msg("Backup scheduler stopped")
}

// IsRunning returns whether the scheduler is active
func (s *BackupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsBackingUp returns whether a backup is currently in progress
func (s *BackupScheduler) IsBackingUp() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isBackingUp
}

// NextRun returns when the next backup will occur
func (s *BackupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

func (s *BackupScheduler) run() {
	s.mu.Lock()
	if s.isBackingUp {
		s.mu.Unlock()
		log.Warn().Msg("Scheduled backup skipped, previous one still running")
		return
	}
	s.isBackingUp = true
	ctx := s.ctx
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isBackingUp = false
		s.mu.Unlock()
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := s.creator.Create(ctx, ""); err != nil {
		log.Error().Err(err).Msg("Scheduled backup failed")
	}
}
