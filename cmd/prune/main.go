package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/meur/dattebayo/internal/config"
	"github.com/meur/dattebayo/internal/storage"
)

// prune deletes persisted preferences of sessions that have not saved
// anything for a while.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	olderThan := flag.Duration("older-than", 90*24*time.Hour, "Delete preferences not updated within this window")
	dryRun := flag.Bool("dry-run", false, "Only report the cutoff")
	flag.Parse()

	cutoff := time.Now().Add(-*olderThan)
	if *dryRun {
		log.Printf("Would delete preferences last updated before %s", cutoff.Format(time.RFC3339))
		return
	}

	n, err := run(context.Background(), *dbPath, cutoff)
	if err != nil {
		log.Fatalf("Failed to prune: %v", err)
	}
	log.Printf("Pruned %d stored entries older than %s", n, cutoff.Format(time.RFC3339))
}

// run deletes entries older than cutoff. The store is closed before run
// returns, also on failure.
func run(ctx context.Context, dbPath string, cutoff time.Time) (int64, error) {
	store, err := storage.New(dbPath)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	return store.DeleteBefore(ctx, cutoff)
}
