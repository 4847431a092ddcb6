package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anselmoalexandre/tivi/internal/config"
	"github.com/anselmoalexandre/tivi/internal/database"
	"github.com/anselmoalexandre/tivi/internal/database/settings"
	"github.com/anselmoalexandre/tivi/internal/database/users"
	syncsvc "github.com/anselmoalexandre/tivi/internal/sync"
	"github.com/anselmoalexandre/tivi/internal/tokenstore"
	"github.com/anselmoalexandre/tivi/internal/trakt"
)

// AuthCommand stores, inspects or removes the catalog access token.
type AuthCommand struct {
	DatabasePath string
	Token        string
	Logout       bool
	Status       bool
}

// NewAuthCommand creates a new AuthCommand
func NewAuthCommand() *AuthCommand {
	return &AuthCommand{}
}

// ParseFlags parses command line flags
func (cmd *AuthCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("auth", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.Token, "token", "", "Catalog access token to validate and store")
	fs.BoolVar(&cmd.Logout, "logout", false, "Remove the stored token and cached profile")
	fs.BoolVar(&cmd.Status, "status", false, "Show the current sign-in state")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s auth [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Manage the catalog sign-in. The token is encrypted before it is stored.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s auth -token <access-token>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s auth -status\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s auth -logout\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the auth command
func (cmd *AuthCommand) Run() error {
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

	usersRepo := users.NewRepository(db.DB)

	switch {
	case cmd.Logout:
		if err := tokens.ClearToken(); err != nil {
			return fmt.Errorf("failed to remove token: %w", err)
		}
		if err := usersRepo.DeleteMe(); err != nil {
			fmt.Printf("Warning: could not remove cached profile: %v\n", err)
		}
		fmt.Println("Logged out.")
		return nil

	case cmd.Token != "":
		client := trakt.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.ClientID)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		fmt.Println("Validating token with the catalog...")
		if err := client.ValidateToken(ctx, cmd.Token); err != nil {
			return fmt.Errorf("token validation failed: %w", err)
		}

		if err := tokens.SetToken(cmd.Token); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}

		service := syncsvc.NewService(db.DB, client, tokens)
		if err := service.SyncUserProfile(ctx); err != nil {
			fmt.Printf("Warning: profile sync failed: %v\n", err)
		} else if me, err := usersRepo.GetMe(); err == nil {
			fmt.Printf("Signed in as %s.\n", me.Username)
			return nil
		}

		fmt.Println("Signed in.")
		return nil

	default:
		// No action flag: report status
		if !tokens.IsLoggedIn() {
			fmt.Println("Not signed in.")
			return nil
		}
		if me, err := usersRepo.GetMe(); err == nil {
			fmt.Printf("Signed in as %s.\n", me.Username)
		} else {
			fmt.Println("Signed in (profile not synced yet).")
		}
		return nil
	}
}
