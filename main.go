package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librium/internal/cli"
	"github.com/mrlokans/librium/internal/config"
	"github.com/mrlokans/librium/internal/entrypoint"
	"github.com/mrlokans/librium/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// A missing .env is fine; the environment alone is enough.
	envErr := godotenv.Load()

	cfg := config.NewConfig()
	logging.Setup(cfg.Log)
	if envErr != nil {
		log.Debug().Msg("No .env file loaded, using process environment")
	}

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		entrypoint.Run(cfg, Version)
		return
	}

	var cmd command
	switch os.Args[1] {
	case "backup":
		cmd = cli.NewBackupCommand(cfg)
	case "restore":
		cmd = cli.NewRestoreCommand(cfg)
	case "export":
		cmd = cli.NewExportCommand(cfg)
	case "version":
		fmt.Printf("librium %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve     Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  backup    Snapshot the catalog database, or list snapshots\n")
	fmt.Fprintf(os.Stderr, "  restore   Replace the catalog database with a snapshot\n")
	fmt.Fprintf(os.Stderr, "  export    Export the catalog as csv, json, xlsx or md\n")
	fmt.Fprintf(os.Stderr, "  version   Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
