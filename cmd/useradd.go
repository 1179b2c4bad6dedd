package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonnen/jonnen/internal/config"
	"github.com/jonnen/jonnen/internal/todo"
)

// runUserAdd provisions users and categories out-of-band. The HTTP API never
// creates either; this command is the supported way to mint an API key.
func runUserAdd() error {
	addFlags := flag.NewFlagSet("useradd", flag.ContinueOnError)
	addFlags.SetOutput(os.Stderr)

	name := addFlags.String("name", "", "user name to create (prints the generated API key)")
	category := addFlags.String("category", "", "category name to create")

	args := []string{}
	if len(os.Args) > 2 {
		args = os.Args[2:]
	}
	if err := addFlags.Parse(args); err != nil {
		return fmt.Errorf("parsing useradd flags: %w", err)
	}

	if *name == "" && *category == "" {
		return fmt.Errorf("useradd requires -name or -category")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, cleanup, err := newDBPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	store := todo.New(pool, slog.Default())

	if *name != "" {
		apiKey := uuid.NewString()
		id, err := store.CreateUser(ctx, *name, apiKey)
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		fmt.Printf("created user %d (%s)\napi_key: %s\n", id, *name, apiKey)
	}

	if *category != "" {
		id, err := store.CreateCategory(ctx, *category)
		if err != nil {
			return fmt.Errorf("creating category: %w", err)
		}
		fmt.Printf("created category %d (%s)\n", id, *category)
	}

	return nil
}
