package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anselmoalexandre/tivi/internal/crypto"
	"github.com/anselmoalexandre/tivi/internal/database"
	"github.com/anselmoalexandre/tivi/internal/database/followedshows"
	"github.com/anselmoalexandre/tivi/internal/database/settings"
	"github.com/anselmoalexandre/tivi/internal/database/shows"
	"github.com/anselmoalexandre/tivi/internal/database/users"
	"github.com/anselmoalexandre/tivi/internal/entities"
	"github.com/anselmoalexandre/tivi/internal/presenter"
	"github.com/anselmoalexandre/tivi/internal/settingsstore"
	"github.com/anselmoalexandre/tivi/internal/tokenstore"
)

func setupLibraryTest(t *testing.T) (*gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_library_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	tokens, err := tokenstore.New(settings.NewRepository(db.DB), tokenstore.Config{EncryptionKey: key})
	require.NoError(t, err)

	store := settingsstore.New(settings.NewRepository(db.DB))
	showsRepo := shows.NewRepository(db.DB)
	followedRepo := followedshows.NewRepository(db.DB)

	show := &entities.Show{TraktID: 1390, Title: "Better Call Saul"}
	require.NoError(t, showsRepo.UpsertShow(show))
	require.NoError(t, followedRepo.Follow(show.ID))

	p := presenter.NewLibraryPresenter(tokens, users.NewRepository(db.DB), showsRepo, store, nil, nil, 20)
	p.Start()

	controller := NewLibraryController(p)
	router := gin.New()
	router.GET("/api/library", controller.GetState)
	router.POST("/api/library/events", controller.DispatchEvent)
	router.POST("/api/library/load-more", controller.LoadMore)

	cleanup := func() {
		p.Close()
		db.Close()
		os.Remove(dbPath)
	}
	return router, cleanup
}

func getLibraryState(t *testing.T, router *gin.Engine) presenter.LibraryViewState {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/library", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var state presenter.LibraryViewState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func TestLibraryController_GetState(t *testing.T) {
	router, cleanup := setupLibraryTest(t)
	defer cleanup()

	require.Eventually(t, func() bool {
		return len(getLibraryState(t, router).Items.Items) == 1
	}, 3*time.Second, 10*time.Millisecond)

	state := getLibraryState(t, router)
	assert.False(t, state.Authorized)
	assert.True(t, state.FollowedActive)
	assert.Equal(t, "Better Call Saul", state.Items.Items[0].Show.Title)
}

func TestLibraryController_DispatchEvent(t *testing.T) {
	t.Run("filter event narrows the listing", func(t *testing.T) {
		router, cleanup := setupLibraryTest(t)
		defer cleanup()

		body := []byte(`{"type": "change_filter", "filter": "no such show"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/library/events", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusAccepted, w.Code)

		require.Eventually(t, func() bool {
			state := getLibraryState(t, router)
			return state.Filter == "no such show" && len(state.Items.Items) == 0
		}, 3*time.Second, 10*time.Millisecond)
	})

	t.Run("rejects unknown event type", func(t *testing.T) {
		router, cleanup := setupLibraryTest(t)
		defer cleanup()

		body := []byte(`{"type": "explode"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/library/events", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects unknown sort option", func(t *testing.T) {
		router, cleanup := setupLibraryTest(t)
		defer cleanup()

		body := []byte(`{"type": "change_sort", "sort": "by_vibes"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/library/events", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLibraryController_LoadMore(t *testing.T) {
	router, cleanup := setupLibraryTest(t)
	defer cleanup()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/library/load-more", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)
}
