package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librium/internal/backup"
)

// BackupCreator takes a database snapshot.
type BackupCreator interface {
	Create(ctx context.Context, name string) (*backup.Snapshot, error)
}

// CreateBackupTask snapshots the catalog database. An empty Name gets a
// timestamped one.
type CreateBackupTask struct {
	Name string `json:"name"`
}

// Config returns the queue configuration for backup tasks.
func (t CreateBackupTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "create_backup",
		MaxAttempts: 2,
		Backoff:     30 * time.Second,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CreateBackupProcessor creates a processor function for CreateBackupTask.
func CreateBackupProcessor(creator BackupCreator) backlite.QueueProcessor[CreateBackupTask] {
	return func(ctx context.Context, task CreateBackupTask) error {
		if creator == nil {
			return fmt.Errorf("backup service not configured")
		}

		snap, err := creator.Create(ctx, task.Name)
		if err != nil {
			return fmt.Errorf("create backup: %w", err)
		}

		log.Info().Str("name", snap.Name).Str("size", snap.SizeHuman).Msg("Backup task finished")
		return nil
	}
}

// NewCreateBackupQueue creates a backlite queue for backup tasks.
func NewCreateBackupQueue(creator BackupCreator) backlite.Queue {
	return backlite.NewQueue(CreateBackupProcessor(creator))
}
