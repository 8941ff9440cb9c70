package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/librium/internal/config"
	"github.com/mrlokans/librium/internal/entrypoint"
)

// RestoreCommand replaces the catalog with a snapshot.
type RestoreCommand struct {
	cfg  *config.Config
	Name string
}

func NewRestoreCommand(cfg *config.Config) *RestoreCommand {
	return &RestoreCommand{cfg: cfg}
}

func (cmd *RestoreCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)

	fs.StringVar(&cmd.cfg.Database.Path, "db", cmd.cfg.Database.Path, "Path to the catalog database")
	fs.StringVar(&cmd.cfg.Backup.Dir, "dir", cmd.cfg.Backup.Dir, "Directory holding the snapshots")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s restore [options] <name>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Replace the catalog database with a snapshot. Stop the server first.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("snapshot name is required")
	}
	cmd.Name = fs.Arg(0)
	return nil
}

func (cmd *RestoreCommand) Run() error {
	app, err := entrypoint.NewApp(cmd.cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Backups.Restore(context.Background(), cmd.Name); err != nil {
		return err
	}
	fmt.Printf("Restored %s into %s\n", cmd.Name, cmd.cfg.Database.Path)
	return nil
}
