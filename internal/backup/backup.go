// Package backup takes and restores whole-database snapshots using the SQLite
// online backup API. Snapshots are plain SQLite files named <name>.sqlite.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librium/internal/entities"
)

// Extension is appended to every snapshot name.
const Extension = ".sqlite"

// ErrInvalidName rejects names that would escape the backup directory.
var ErrInvalidName = errors.New("invalid backup name")

// Store is the live database a snapshot is taken from and restored into.
// *database.Database implements it.
type Store interface {
	Shared(ctx context.Context, fn func(sqlDB *sql.DB) error) error
	Exclusive(ctx context.Context, fn func(sqlDB *sql.DB) error) error
}

// Snapshot describes one backup file.
type Snapshot struct {
	Name      string    `json:"name"`
	Path      string    `json:"-"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
	Modified  time.Time `json:"modified"`
	Age       string    `json:"age"`
}

// Service creates, lists and restores snapshots in one directory.
type Service struct {
	store Store
	dir   string
	now   func() time.Time
}

func NewService(store Store, dir string) *Service {
	return &Service{store: store, dir: dir, now: time.Now}
}

// Dir is the directory snapshots live in.
func (s *Service) Dir() string {
	return s.dir
}

// Create writes a snapshot of the live database. An empty name gets a
// timestamped one. An existing snapshot with the same name is replaced.
func (s *Service) Create(ctx context.Context, name string) (*Snapshot, error) {
	if strings.TrimSpace(name) == "" {
		name = "backup-" + s.now().UTC().Format("20060102-150405")
	}
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	err = s.store.Shared(ctx, func(live *sql.DB) error {
		snapshot, err := openFile(path)
		if err != nil {
			return err
		}
		defer snapshot.Close()
		return copyDatabase(ctx, snapshot, live)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create backup %s: %w", name, err)
	}

	snap, err := s.stat(path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("name", snap.Name).Str("size", snap.SizeHuman).Msg("Backup created")
	return snap, nil
}

// Restore replaces the live database contents with a snapshot. No transaction
// runs while the copy is in progress and every later one sees the restored state.
func (s *Service) Restore(ctx context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("backup %s: %w", name, entities.ErrNotFound)
		}
		return err
	}

	err = s.store.Exclusive(ctx, func(live *sql.DB) error {
		snapshot, err := openFile(path)
		if err != nil {
			return err
		}
		defer snapshot.Close()
		return copyDatabase(ctx, live, snapshot)
	})
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("Restore failed")
		return fmt.Errorf("failed to restore backup %s: %w", name, err)
	}

	log.Info().Str("name", name).Msg("Backup restored")
	return nil
}

// List returns the snapshots, newest first.
func (s *Service) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Extension {
			continue
		}
		snap, err := s.stat(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snap)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Modified.After(snapshots[j].Modified)
	})
	return snapshots, nil
}

func (s *Service) path(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), Extension)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name+Extension), nil
}

func (s *Service) stat(path string) (*Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Name:      strings.TrimSuffix(filepath.Base(path), Extension),
		Path:      path,
		Size:      info.Size(),
		SizeHuman: humanize.Bytes(uint64(info.Size())),
		Modified:  info.ModTime(),
		Age:       humanize.Time(info.ModTime()),
	}, nil
}

func openFile(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// copyDatabase copies the main schema of src into dst in one backup step.
func copyDatabase(ctx context.Context, dst, src *sql.DB) error {
	dstConn, err := dst.Conn(ctx)
	if err != nil {
		return err
	}
	defer dstConn.Close()

	srcConn, err := src.Conn(ctx)
	if err != nil {
		return err
	}
	defer srcConn.Close()

	return dstConn.Raw(func(dstDriver interface{}) error {
		return srcConn.Raw(func(srcDriver interface{}) error {
			to, ok := dstDriver.(*sqlite3.SQLiteConn)
			if !ok {
				return fmt.Errorf("unexpected destination driver %T", dstDriver)
			}
			from, ok := srcDriver.(*sqlite3.SQLiteConn)
			if !ok {
				return fmt.Errorf("unexpected source driver %T", srcDriver)
			}

			b, err := to.Backup("main", from, "main")
			if err != nil {
				return err
			}
			if _, err := b.Step(-1); err != nil {
				b.Close()
				return err
			}
			return b.Finish()
		})
	})
}
