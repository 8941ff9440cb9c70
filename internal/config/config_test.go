package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8189), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxIdleTime)
	assert.Equal(t, DefaultPagination(), cfg.Pagination)
	assert.Equal(t, DefaultBackupDir, cfg.Backup.Dir)
	assert.False(t, cfg.Backup.Enabled)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/catalog.db")
	t.Setenv("PAGE_SIZE_BOOKS", "50")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "3")
	t.Setenv("BACKUP_ENABLED", "true")

	cfg := NewConfig()

	assert.Equal(t, "/tmp/catalog.db", cfg.Database.Path)
	assert.Equal(t, 50, cfg.Pagination.Books)
	assert.Equal(t, 15, cfg.Pagination.Authors)
	assert.Equal(t, 3, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Backup.Enabled)
}
