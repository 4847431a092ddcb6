// Package trakt interfaces with the Trakt media-catalog API.
package trakt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is the production Trakt API endpoint.
	DefaultBaseURL = "https://api.trakt.tv"

	apiVersion = "2"

	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Client interfaces with the Trakt API
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
}

// NewClient creates a new Trakt API client. An empty baseURL falls back to
// the production endpoint.
func NewClient(baseURL, clientID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  baseURL,
		clientID: clientID,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// IDs carries the cross-catalog identifiers of a show or episode.
type IDs struct {
	Trakt int64 `json:"trakt"`
	Tmdb  int64 `json:"tmdb"`
}

// UserData represents a user profile from the Trakt API
type UserData struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	VIP      bool   `json:"vip"`
	Images   struct {
		Avatar struct {
			Full string `json:"full"`
		} `json:"avatar"`
	} `json:"images"`
}

// ImageData represents a show artwork entry
type ImageData struct {
	Kind   string  `json:"kind"` // "backdrop" or "poster"
	URL    string  `json:"url"`
	Rating float64 `json:"rating"`
}

// ShowData represents a show summary from the Trakt API
type ShowData struct {
	IDs        IDs         `json:"ids"`
	Title      string      `json:"title"`
	Overview   string      `json:"overview"`
	Network    string      `json:"network"`
	Status     string      `json:"status"`
	Runtime    int         `json:"runtime"`
	FirstAired *time.Time  `json:"first_aired"`
	Rating     float64     `json:"rating"`
	Votes      int         `json:"votes"`
	Images     []ImageData `json:"images"`
}

// EpisodeData represents an episode from the Trakt API
type EpisodeData struct {
	IDs        IDs        `json:"ids"`
	Season     int        `json:"season"`
	Number     int        `json:"number"`
	Title      string     `json:"title"`
	Overview   string     `json:"overview"`
	FirstAired *time.Time `json:"first_aired"`
}

// SeasonData represents a season with its episodes
type SeasonData struct {
	IDs      IDs           `json:"ids"`
	Number   int           `json:"number"`
	Title    string        `json:"title"`
	Episodes []EpisodeData `json:"episodes"`
}

// WatchedShowData represents an entry in the user's watch history
type WatchedShowData struct {
	Plays         int        `json:"plays"`
	LastWatchedAt *time.Time `json:"last_watched_at"`
	Show          ShowData   `json:"show"`
}

// TrendingShowData represents a trending show entry
type TrendingShowData struct {
	Watchers int      `json:"watchers"`
	Show     ShowData `json:"show"`
}

// ValidateToken checks if a token is valid by fetching the user settings
func (c *Client) ValidateToken(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, "/users/settings", token)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// UserProfile fetches the signed-in user's profile
func (c *Client) UserProfile(ctx context.Context, token string) (*UserData, error) {
	var wrapper struct {
		User UserData `json:"user"`
	}
	if err := c.get(ctx, "/users/settings", token, &wrapper); err != nil {
		return nil, err
	}
	return &wrapper.User, nil
}

// Show fetches a show summary, including artwork, by its Trakt ID
func (c *Client) Show(ctx context.Context, token string, traktID int64) (*ShowData, error) {
	var show ShowData
	path := fmt.Sprintf("/shows/%d?extended=full,images", traktID)
	if err := c.get(ctx, path, token, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

// Seasons fetches all seasons of a show with their episodes
func (c *Client) Seasons(ctx context.Context, token string, traktID int64) ([]SeasonData, error) {
	var seasons []SeasonData
	path := fmt.Sprintf("/shows/%d/seasons?extended=episodes", traktID)
	if err := c.get(ctx, path, token, &seasons); err != nil {
		return nil, err
	}
	return seasons, nil
}

// WatchedShows fetches the signed-in user's watch history
func (c *Client) WatchedShows(ctx context.Context, token string) ([]WatchedShowData, error) {
	var watched []WatchedShowData
	if err := c.get(ctx, "/sync/watched/shows", token, &watched); err != nil {
		return nil, err
	}
	return watched, nil
}

// TrendingShows fetches a page of currently trending shows
func (c *Client) TrendingShows(ctx context.Context, token string, page, limit int) ([]TrendingShowData, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	u, err := url.Parse("/shows/trending")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	var trending []TrendingShowData
	if err := c.get(ctx, u.String(), token, &trending); err != nil {
		return nil, err
	}
	return trending, nil
}

// get performs a GET request with bounded retries on rate limits and 5xx
func (c *Client) get(ctx context.Context, path, token string, out any) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateRetryDelay(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = c.doRequest(ctx, path, token, out)
		if lastErr == nil {
			return nil
		}

		// Only retry on rate limits or server errors
		if !isRetryableError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, path, token string, out any) error {
	req, err := c.newRequest(ctx, path, token)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrInvalidToken
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, path, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", apiVersion)
	req.Header.Set("trakt-api-key", c.clientID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func calculateRetryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if err == ErrRateLimited {
		return true
	}
	if _, ok := err.(*ServerError); ok {
		return true
	}
	return false
}
