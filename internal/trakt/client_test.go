package trakt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(serverURL string) *Client {
	return NewClient(serverURL, "test-client-id")
}

func TestClient_ValidateToken(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{
			name:       "valid token",
			statusCode: http.StatusOK,
		},
		{
			name:       "invalid token",
			statusCode: http.StatusUnauthorized,
			wantErr:    ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer test-token" {
					t.Errorf("expected Authorization header 'Bearer test-token', got %s", r.Header.Get("Authorization"))
				}
				if r.Header.Get("trakt-api-key") != "test-client-id" {
					t.Errorf("expected trakt-api-key header, got %s", r.Header.Get("trakt-api-key"))
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			err := testClient(server.URL).ValidateToken(context.Background(), "test-token")
			if tt.wantErr == nil && err != nil {
				t.Fatalf("ValidateToken failed: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClient_UserProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/settings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"username": "amara",
				"name":     "Amara K",
				"vip":      true,
			},
		})
	}))
	defer server.Close()

	user, err := testClient(server.URL).UserProfile(context.Background(), "test-token")
	if err != nil {
		t.Fatalf("UserProfile failed: %v", err)
	}
	if user.Username != "amara" {
		t.Errorf("expected username amara, got %s", user.Username)
	}
	if !user.VIP {
		t.Error("expected VIP flag")
	}
}

func TestClient_Show(t *testing.T) {
	aired := time.Date(2022, 9, 21, 0, 0, 0, 0, time.UTC)
	show := ShowData{
		IDs:        IDs{Trakt: 140911, Tmdb: 83867},
		Title:      "Andor",
		Network:    "Disney+",
		Status:     "returning series",
		Runtime:    40,
		FirstAired: &aired,
		Rating:     8.2,
		Votes:      4521,
		Images: []ImageData{
			{Kind: "poster", URL: "https://img/poster.jpg", Rating: 9.1},
			{Kind: "backdrop", URL: "https://img/backdrop.jpg", Rating: 7.4},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shows/140911" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(show)
	}))
	defer server.Close()

	got, err := testClient(server.URL).Show(context.Background(), "test-token", 140911)
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if got.Title != "Andor" {
		t.Errorf("expected title Andor, got %s", got.Title)
	}
	if len(got.Images) != 2 {
		t.Errorf("expected 2 images, got %d", len(got.Images))
	}
}

func TestClient_Show_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Show(context.Background(), "test-token", 1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_Seasons(t *testing.T) {
	seasons := []SeasonData{
		{
			Number: 1,
			Episodes: []EpisodeData{
				{IDs: IDs{Trakt: 1}, Season: 1, Number: 1, Title: "Kassa"},
				{IDs: IDs{Trakt: 2}, Season: 1, Number: 2, Title: "That Would Be Me"},
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shows/140911/seasons" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("extended") != "episodes" {
			t.Errorf("expected extended=episodes, got %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(seasons)
	}))
	defer server.Close()

	got, err := testClient(server.URL).Seasons(context.Background(), "test-token", 140911)
	if err != nil {
		t.Fatalf("Seasons failed: %v", err)
	}
	if len(got) != 1 || len(got[0].Episodes) != 2 {
		t.Fatalf("unexpected seasons payload: %+v", got)
	}
}

func TestClient_WatchedShows(t *testing.T) {
	watchedAt := time.Date(2024, 3, 2, 20, 15, 0, 0, time.UTC)
	watched := []WatchedShowData{
		{Plays: 12, LastWatchedAt: &watchedAt, Show: ShowData{IDs: IDs{Trakt: 1390}, Title: "Better Call Saul"}},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sync/watched/shows" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(watched)
	}))
	defer server.Close()

	got, err := testClient(server.URL).WatchedShows(context.Background(), "test-token")
	if err != nil {
		t.Fatalf("WatchedShows failed: %v", err)
	}
	if len(got) != 1 || got[0].Plays != 12 {
		t.Fatalf("unexpected watched payload: %+v", got)
	}
}

func TestClient_TrendingShows_PagingParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "3" || r.URL.Query().Get("limit") != "25" {
			t.Errorf("unexpected paging query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]TrendingShowData{
			{Watchers: 901, Show: ShowData{IDs: IDs{Trakt: 87083}, Title: "Severance"}},
		})
	}))
	defer server.Close()

	got, err := testClient(server.URL).TrendingShows(context.Background(), "test-token", 3, 25)
	if err != nil {
		t.Fatalf("TrendingShows failed: %v", err)
	}
	if len(got) != 1 || got[0].Show.Title != "Severance" {
		t.Fatalf("unexpected trending payload: %+v", got)
	}
}

func TestClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ShowData{Title: "Chernobyl"})
	}))
	defer server.Close()

	got, err := testClient(server.URL).Show(context.Background(), "test-token", 74848)
	if err != nil {
		t.Fatalf("Show failed after retry: %v", err)
	}
	if got.Title != "Chernobyl" {
		t.Errorf("expected Chernobyl, got %s", got.Title)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestClient_DoesNotRetryAuthErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := testClient(server.URL).WatchedShows(context.Background(), "bad-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", calls.Load())
	}
}

func TestCalculateRetryDelay(t *testing.T) {
	if d := calculateRetryDelay(1); d != 2*time.Second {
		t.Errorf("expected 2s, got %v", d)
	}
	if d := calculateRetryDelay(10); d != maxRetryDelay {
		t.Errorf("expected cap at %v, got %v", maxRetryDelay, d)
	}
}
