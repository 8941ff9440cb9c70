package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/librium/internal/config"
	"github.com/mrlokans/librium/internal/entrypoint"
	"github.com/mrlokans/librium/internal/exporters"
)

// ExportCommand writes every live book to a file.
type ExportCommand struct {
	cfg    *config.Config
	Format string
	Output string
}

func NewExportCommand(cfg *config.Config) *ExportCommand {
	return &ExportCommand{cfg: cfg}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)

	fs.StringVar(&cmd.cfg.Database.Path, "db", cmd.cfg.Database.Path, "Path to the catalog database")
	fs.StringVar(&cmd.Format, "format", "csv", "Output format: csv, json, xlsx or md")
	fs.StringVar(&cmd.Output, "out", "", "Output file (default: stdout, not allowed for xlsx)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export the catalog, one row per book.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s export -format json > books.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s export -format xlsx -out books.xlsx\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := exporters.New(cmd.Format); err != nil {
		fs.Usage()
		return err
	}
	if cmd.Output == "" && cmd.Format == "xlsx" {
		return fmt.Errorf("-out is required for xlsx")
	}
	return nil
}

func (cmd *ExportCommand) Run() error {
	exporter, err := exporters.New(cmd.Format)
	if err != nil {
		return err
	}

	app, err := entrypoint.NewApp(cmd.cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	books, err := app.Books.All(context.Background())
	if err != nil {
		return err
	}

	out := os.Stdout
	if cmd.Output != "" {
		f, err := os.Create(cmd.Output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", cmd.Output, err)
		}
		defer f.Close()
		out = f
	}

	result, err := exporter.Export(out, books)
	if err != nil {
		return err
	}
	if cmd.Output != "" {
		fmt.Printf("Exported %d books to %s\n", result.BooksProcessed, cmd.Output)
	}
	return nil
}
