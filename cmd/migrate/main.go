// Command migrate applies the embedded goose migrations to DATABASE_URL.
//
// Usage:
//
//	migrate [up|down|status|reset]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/blogback/blogback/internal/config"
	"github.com/blogback/blogback/internal/repository"
)

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		timeout     = flag.Duration("timeout", 5*time.Minute, "Maximum time for the whole run")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] up|down|status|reset\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cmd, err := parseCommand(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL, repository.PoolOptions{MaxConns: 2, MinConns: 1})
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", config.SanitizeError(err, *databaseURL))
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.Migrate(ctx, cmd); err != nil {
		fmt.Fprintln(os.Stderr, config.ErrRedacted(err, *databaseURL))
		os.Exit(1)
	}
}

// parseCommand maps the positional argument to a migrate command. No argument means up.
func parseCommand(args []string) (repository.MigrateCommand, error) {
	if len(args) == 0 {
		return repository.MigrateUp, nil
	}
	if len(args) > 1 {
		return "", fmt.Errorf("expected one command, got %d", len(args))
	}
	switch cmd := repository.MigrateCommand(args[0]); cmd {
	case repository.MigrateUp, repository.MigrateDown, repository.MigrateStatus, repository.MigrateReset:
		return cmd, nil
	default:
		return "", fmt.Errorf("unknown command %q", args[0])
	}
}
