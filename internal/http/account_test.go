package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anselmoalexandre/tivi/internal/config"
	"github.com/anselmoalexandre/tivi/internal/crypto"
	"github.com/anselmoalexandre/tivi/internal/database"
	"github.com/anselmoalexandre/tivi/internal/database/settings"
	"github.com/anselmoalexandre/tivi/internal/database/users"
	syncsvc "github.com/anselmoalexandre/tivi/internal/sync"
	"github.com/anselmoalexandre/tivi/internal/tokenstore"
	"github.com/anselmoalexandre/tivi/internal/trakt"
)

type accountFixture struct {
	router    *gin.Engine
	tokens    *tokenstore.TokenStore
	usersRepo *users.Repository
}

func setupAccountTest(t *testing.T) (*accountFixture, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_account_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/settings" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer valid-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user": {"username": "amara", "name": "Amara K", "vip": true}}`))
	}))

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	tokens, err := tokenstore.New(settings.NewRepository(db.DB), tokenstore.Config{EncryptionKey: key})
	require.NoError(t, err)

	client := trakt.NewClient(catalog.URL, "client-id")
	service := syncsvc.NewService(db.DB, client, tokens)
	usersRepo := users.NewRepository(db.DB)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sessions, err := NewSessionManager(sqlDB, config.Auth{SessionLifetime: time.Hour})
	require.NoError(t, err)

	controller := NewAccountController(client, tokens, usersRepo, service, sessions)

	router := gin.New()
	router.Use(sessions.SessionLoadSave())
	router.POST("/api/account/login", controller.Login)
	router.GET("/api/account", controller.Profile)
	router.DELETE("/api/account", controller.Logout)

	f := &accountFixture{router: router, tokens: tokens, usersRepo: usersRepo}
	cleanup := func() {
		catalog.Close()
		db.Close()
		os.Remove(dbPath)
	}
	return f, cleanup
}

func TestAccountController_Login(t *testing.T) {
	t.Run("stores token and starts a session", func(t *testing.T) {
		f, cleanup := setupAccountTest(t)
		defer cleanup()

		body := []byte(`{"token": "valid-token"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/account/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "amara")
		assert.True(t, f.tokens.IsLoggedIn())

		token, err := f.tokens.GetToken()
		require.NoError(t, err)
		assert.Equal(t, "valid-token", token)

		cookies := w.Result().Cookies()
		var found bool
		for _, c := range cookies {
			if c.Name == "session" && c.Value != "" {
				found = true
			}
		}
		assert.True(t, found, "expected a session cookie to be set")
	})

	t.Run("rejects a token the catalog refuses", func(t *testing.T) {
		f, cleanup := setupAccountTest(t)
		defer cleanup()

		body := []byte(`{"token": "wrong-token"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/account/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, f.tokens.IsLoggedIn())
	})

	t.Run("rejects missing token field", func(t *testing.T) {
		f, cleanup := setupAccountTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/account/login", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAccountController_Profile(t *testing.T) {
	t.Run("returns the synced profile", func(t *testing.T) {
		f, cleanup := setupAccountTest(t)
		defer cleanup()

		body := []byte(`{"token": "valid-token"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/account/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		f.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/api/account", nil)
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "amara")
	})

	t.Run("requires a stored token", func(t *testing.T) {
		f, cleanup := setupAccountTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/account", nil)
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAccountController_Logout(t *testing.T) {
	f, cleanup := setupAccountTest(t)
	defer cleanup()

	body := []byte(`{"token": "valid-token"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/account/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/account", nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, f.tokens.IsLoggedIn())

	_, err := f.usersRepo.GetMe()
	assert.Error(t, err)
}
