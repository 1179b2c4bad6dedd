// Package cmd contains the command-line entry points for the jonnen service.
//
// Design: following the pattern used by standard Go CLI tools, all application
// logic is contained in the cmd package, leaving main.go as a minimal entry point.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/jonnen/jonnen/internal/log"
)

// Version information (injected at build time via ldflags).
var (
	Version   = "0.0.1"
	BuildTime = "unknown"
)

// Execute is the main entry point for the jonnen CLI.
// It handles flag parsing and command routing.
func Execute() error {
	// Handle special flags before full initialization so --version and --help
	// work even if config is invalid
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			printVersion()
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		}
	}

	logger := initLogger()
	slog.SetDefault(logger)

	// Environment file, if present; explicit environment still wins
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	if len(os.Args) < 2 {
		printHelp()
		return nil
	}

	switch os.Args[1] {
	case "serve":
		return runServe()
	case "migrate":
		return runMigrate()
	case "useradd":
		return runUserAdd()
	default:
		printHelp()
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// initLogger creates the process-wide structured logger.
// JONNEN_LOG_LEVEL picks the level; JONNEN_LOG_FORMAT=json switches to JSON.
func initLogger() *slog.Logger {
	return log.New(log.Config{
		Level: log.ParseLevel(os.Getenv("JONNEN_LOG_LEVEL")),
		JSON:  os.Getenv("JONNEN_LOG_FORMAT") == "json",
	})
}

func printVersion() {
	fmt.Printf("jonnen %s (built %s)\n", Version, BuildTime)
}

func printHelp() {
	fmt.Print(`jonnen - to-do orders API

Usage:
  jonnen serve [addr]       start the HTTP API server
  jonnen migrate            apply pending database migrations
  jonnen useradd -name N    create a user and print its API key
  jonnen useradd -category C  create a category
  jonnen version            print version information

Configuration comes from ./config.yaml, a .env file, and environment
variables; DB_URL/DATABASE_URL overrides the postgres_* settings.
`)
}
