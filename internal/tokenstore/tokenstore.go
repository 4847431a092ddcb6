// Package tokenstore provides secure storage for the catalog API token using
// ChaCha20-Poly1305 encryption. The token is sealed and kept in the settings
// table; authentication state is observable so interested components react to
// sign-in and sign-out immediately.
package tokenstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/anselmoalexandre/tivi/internal/crypto"
	"github.com/anselmoalexandre/tivi/internal/database/settings"
	"github.com/anselmoalexandre/tivi/internal/entities"
	"github.com/anselmoalexandre/tivi/internal/observe"
)

const (
	// EnvEncryptionKey is the environment variable for the encryption key
	EnvEncryptionKey = "TOKEN_ENCRYPTION_KEY"

	// DefaultKeyFileName is the default name for the key file
	DefaultKeyFileName = ".tivi-token-key"
)

// ErrNoToken is returned when no catalog token has been stored.
var ErrNoToken = errors.New("no catalog token stored")

// AuthState reflects whether a catalog token is currently stored.
type AuthState string

const (
	AuthStateLoggedOut AuthState = "logged_out"
	AuthStateLoggedIn  AuthState = "logged_in"
)

// Config holds configuration for the token store
type Config struct {
	// EncryptionKey is the base64-encoded 32-byte encryption key.
	// If empty, will try to load from environment or key file.
	EncryptionKey string

	// KeyFilePath is the path to the encryption key file.
	// If empty, defaults to ~/.tivi-token-key.
	KeyFilePath string
}

// TokenStore seals the catalog token at rest and tracks auth state.
type TokenStore struct {
	repo      *settings.Repository
	encryptor *crypto.Encryptor
	authState *observe.Value[AuthState]
}

// New creates a TokenStore over the settings repository. The encryption key
// is resolved from the config, the environment, or a generated key file.
func New(repo *settings.Repository, cfg Config) (*TokenStore, error) {
	key, err := resolveEncryptionKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encryption key: %w", err)
	}

	encryptor, err := crypto.NewEncryptorFromBase64(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	s := &TokenStore{
		repo:      repo,
		encryptor: encryptor,
	}

	initial := AuthStateLoggedOut
	if s.hasToken() {
		initial = AuthStateLoggedIn
	}
	s.authState = observe.NewValueOf(initial)

	return s, nil
}

// resolveEncryptionKey determines the encryption key from various sources
func resolveEncryptionKey(cfg Config) (string, error) {
	// Priority 1: Explicitly provided key
	if cfg.EncryptionKey != "" {
		return cfg.EncryptionKey, nil
	}

	// Priority 2: Environment variable
	if envKey := os.Getenv(EnvEncryptionKey); envKey != "" {
		return envKey, nil
	}

	// Priority 3: Key file
	keyFilePath := cfg.KeyFilePath
	if keyFilePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		keyFilePath = filepath.Join(homeDir, DefaultKeyFileName)
	}

	if data, err := os.ReadFile(keyFilePath); err == nil {
		return string(data), nil
	}

	// Generate new key and save it with restricted permissions
	newKey, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newKey), 0600); err != nil {
		return "", fmt.Errorf("failed to save encryption key to %s: %w", keyFilePath, err)
	}

	return newKey, nil
}

// SetToken seals the token and stores it, flipping auth state to logged in.
func (s *TokenStore) SetToken(token string) error {
	if token == "" {
		return errors.New("token must not be empty")
	}

	sealed, err := s.encryptor.Encrypt(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	if err := s.repo.SetSetting(entities.SettingKeyCatalogToken, sealed); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	s.authState.Set(AuthStateLoggedIn)
	return nil
}

// GetToken retrieves and unseals the stored token.
// Returns ErrNoToken when the user is not signed in.
func (s *TokenStore) GetToken() (string, error) {
	setting, err := s.repo.GetSetting(entities.SettingKeyCatalogToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	token, err := s.encryptor.Decrypt(setting.Value)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}
	if token == "" {
		return "", ErrNoToken
	}

	return token, nil
}

// ClearToken removes the stored token and flips auth state to logged out.
func (s *TokenStore) ClearToken() error {
	if err := s.repo.DeleteSetting(entities.SettingKeyCatalogToken); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	s.authState.Set(AuthStateLoggedOut)
	return nil
}

// IsLoggedIn reports whether a token is currently stored.
func (s *TokenStore) IsLoggedIn() bool {
	state, _ := s.authState.Get()
	return state == AuthStateLoggedIn
}

// ObserveAuthState returns the observable authentication state.
func (s *TokenStore) ObserveAuthState() *observe.Value[AuthState] {
	return s.authState
}

func (s *TokenStore) hasToken() bool {
	setting, err := s.repo.GetSetting(entities.SettingKeyCatalogToken)
	return err == nil && setting.Value != ""
}
