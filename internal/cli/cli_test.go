package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librium/internal/config"
	"github.com/mrlokans/librium/internal/database/books"
	"github.com/mrlokans/librium/internal/entrypoint"
	"github.com/mrlokans/librium/internal/services"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Database:   config.Database{Path: filepath.Join(dir, "cli.db")},
		Backup:     config.Backup{Dir: filepath.Join(dir, "backups")},
		Pagination: config.DefaultPagination(),
	}
}

func seed(t *testing.T, cfg *config.Config, titles ...string) {
	t.Helper()
	app, err := entrypoint.NewApp(cfg)
	require.NoError(t, err)
	defer app.Close()
	for _, title := range titles {
		_, err := app.Books.Create(context.Background(), services.NewBookRequest{
			NewBook: books.NewBook{Title: title, FormatID: 1},
		})
		require.NoError(t, err)
	}
}

func TestBackupAndRestoreCommands(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg, "Before")

	backupCmd := NewBackupCommand(cfg)
	require.NoError(t, backupCmd.ParseFlags([]string{"-name", "snap"}))
	require.NoError(t, backupCmd.Run())
	assert.FileExists(t, filepath.Join(cfg.Backup.Dir, "snap.sqlite"))

	seed(t, cfg, "After")

	restoreCmd := NewRestoreCommand(cfg)
	require.NoError(t, restoreCmd.ParseFlags([]string{"snap"}))
	require.NoError(t, restoreCmd.Run())

	app, err := entrypoint.NewApp(cfg)
	require.NoError(t, err)
	defer app.Close()
	all, err := app.Books.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Before", all[0].Title)
}

func TestRestoreCommand_RequiresName(t *testing.T) {
	cmd := NewRestoreCommand(testConfig(t))
	assert.Error(t, cmd.ParseFlags(nil))
}

func TestExportCommand(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg, "Dune", "Emma")

	out := filepath.Join(t.TempDir(), "books.json")
	cmd := NewExportCommand(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"-format", "json", "-out", out}))
	require.NoError(t, cmd.Run())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Dune"`)
	assert.Contains(t, string(data), `"title": "Emma"`)
}

func TestExportCommand_ParseFlags(t *testing.T) {
	t.Run("unknown format", func(t *testing.T) {
		cmd := NewExportCommand(testConfig(t))
		assert.Error(t, cmd.ParseFlags([]string{"-format", "pdf"}))
	})

	t.Run("xlsx needs an output file", func(t *testing.T) {
		cmd := NewExportCommand(testConfig(t))
		assert.Error(t, cmd.ParseFlags([]string{"-format", "xlsx"}))
	})

	t.Run("db flag overrides config", func(t *testing.T) {
		cfg := testConfig(t)
		cmd := NewExportCommand(cfg)
		require.NoError(t, cmd.ParseFlags([]string{"-db", "/tmp/other.db"}))
		assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	})
}
