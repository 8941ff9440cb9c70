package scheduler

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librium/internal/backup"
	"github.com/mrlokans/librium/internal/config"
)

type countingCreator struct {
	calls atomic.Int32
}

func (c *countingCreator) Create(ctx context.Context, name string) (*backup.Snapshot, error) {
	c.calls.Add(1)
	return &backup.Snapshot{Name: "scheduled"}, nil
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("every night"))
	assert.Error(t, ValidateSchedule("0 0 3 * * *"))
}

func TestBackupScheduler_Disabled(t *testing.T) {
	s := NewBackupScheduler(&countingCreator{}, config.Backup{Enabled: false, Schedule: "0 3 * * *"})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRun())
}

func TestBackupScheduler_InvalidSchedule(t *testing.T) {
	s := NewBackupScheduler(&countingCreator{}, config.Backup{Enabled: true, Schedule: "nope"})

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestBackupScheduler_StartStop(t *testing.T) {
	s := NewBackupScheduler(&countingCreator{}, config.Backup{Enabled: true, Schedule: "0 3 * * *"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())
	next := s.NextRun()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())

	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestBackupScheduler_RunCallsCreator(t *testing.T) {
	creator := &countingCreator{}
	s := NewBackupScheduler(creator, config.Backup{Enabled: true, Schedule: "0 3 * * *"})

	s.run()

	assert.Equal(t, int32(1), creator.calls.Load())
	assert.False(t, s.IsBackingUp())
}
