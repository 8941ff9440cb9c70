package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/librium/internal/config"
	"github.com/mrlokans/librium/internal/entrypoint"
)

// BackupCommand writes a snapshot of the catalog database.
type BackupCommand struct {
	cfg  *config.Config
	Name string
	List bool
}

func NewBackupCommand(cfg *config.Config) *BackupCommand {
	return &BackupCommand{cfg: cfg}
}

func (cmd *BackupCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)

	fs.StringVar(&cmd.cfg.Database.Path, "db", cmd.cfg.Database.Path, "Path to the catalog database")
	fs.StringVar(&cmd.cfg.Backup.Dir, "dir", cmd.cfg.Backup.Dir, "Directory holding the snapshots")
	fs.StringVar(&cmd.Name, "name", "", "Snapshot name (default: timestamped)")
	fs.BoolVar(&cmd.List, "list", false, "List existing snapshots instead of creating one")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s backup [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Snapshot the catalog database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s backup\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s backup -name before-cleanup\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s backup -list\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *BackupCommand) Run() error {
	app, err := entrypoint.NewApp(cmd.cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if cmd.List {
		snapshots, err := app.Backups.List()
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			fmt.Printf("No snapshots in %s\n", app.Backups.Dir())
			return nil
		}
		for _, s := range snapshots {
			fmt.Printf("%-32s %10s  %s\n", s.Name, s.SizeHuman, s.Age)
		}
		return nil
	}

	snapshot, err := app.Backups.Create(context.Background(), cmd.Name)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s (%s) at %s\n", snapshot.Name, snapshot.SizeHuman, snapshot.Path)
	return nil
}
