package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anselmoalexandre/tivi/internal/config"
	"github.com/anselmoalexandre/tivi/internal/database"
	"github.com/anselmoalexandre/tivi/internal/database/settings"
	syncsvc "github.com/anselmoalexandre/tivi/internal/sync"
	"github.com/anselmoalexandre/tivi/internal/tokenstore"
	"github.com/anselmoalexandre/tivi/internal/trakt"
)

// SyncCommand refreshes the local library from the catalog API.
type SyncCommand struct {
	DatabasePath string
	ShowID       int64
	WatchedOnly  bool
	Timeout      time.Duration
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand() *SyncCommand {
	return &SyncCommand{}
}

// ParseFlags parses command line flags
func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.Int64Var(&cmd.ShowID, "show", 0, "Refresh a single show by its catalog ID instead of the whole library")
	fs.BoolVar(&cmd.WatchedOnly, "watched-only", false, "Only pull the watch history (skip the followed-shows refresh)")
	fs.DurationVar(&cmd.Timeout, "timeout", 10*time.Minute, "Abort the sync after this duration")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Refresh followed shows and the watch history from the catalog.\n\n")
		fmt.Fprintf(os.Stderr, "This command:\n")
		fmt.Fprintf(os.Stderr, "  1. Pulls metadata and episodes for every followed show\n")
		fmt.Fprintf(os.Stderr, "  2. Pulls the signed-in user's watch history (requires 'auth' first)\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sync\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -show 140911\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -watched-only\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the sync command
func (cmd *SyncCommand) Run() error {
	fmt.Println("Tivi Catalog Sync")
	fmt.Println("=================")

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	cfg := config.NewConfig()

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	tokens, err := tokenstore.New(settings.NewRepository(db.DB), tokenstore.Config{
		EncryptionKey: cfg.Auth.TokenEncryptionKey,
		KeyFilePath:   cfg.Auth.TokenKeyFilePath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}

	client := trakt.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.ClientID)
	service := syncsvc.NewService(db.DB, client, tokens)

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	fmt.Printf("Database: %s\n", cmd.DatabasePath)

	if cmd.ShowID != 0 {
		fmt.Printf("\nRefreshing show %d...\n", cmd.ShowID)
		if err := service.SyncShow(ctx, cmd.ShowID); err != nil {
			return fmt.Errorf("show refresh failed: %w", err)
		}
		fmt.Println("Show refreshed.")
		return nil
	}

	if !cmd.WatchedOnly {
		fmt.Println("\nRefreshing followed shows...")
		if err := service.SyncLibrary(ctx); err != nil {
			return fmt.Errorf("library refresh failed: %w", err)
		}
		if progress, err := service.ShowProgress(); err == nil {
			fmt.Printf("Refreshed %d shows.\n", progress.TotalItems)
		}
	}

	fmt.Println("\nPulling watch history...")
	if err := service.SyncWatched(ctx); err != nil {
		if errors.Is(err, syncsvc.ErrNotAuthenticated) {
			fmt.Println("Skipped: no catalog token stored. Run the 'auth' command first.")
			return nil
		}
		return fmt.Errorf("watch history pull failed: %w", err)
	}
	if progress, err := service.WatchedProgress(); err == nil {
		fmt.Printf("Pulled history for %d shows.\n", progress.TotalItems)
	}

	fmt.Println("\nSync complete.")
	return nil
}
