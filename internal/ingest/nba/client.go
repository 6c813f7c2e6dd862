package nba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const (
	BaseURL = "https://stats.nba.com/stats"

	maxRetries   = 3
	retryDelay   = 2 * time.Second
	requestDelay = 600 * time.Millisecond
)

// Client talks to the NBA stats API. The API throttles aggressively and
// rejects requests without browser-like headers, so every call carries the
// full header set and the client spaces requests out.
type Client struct {
	baseURL    string
	httpClient *http.Client
	lastCall   time.Time
}

// New creates a stats API client with a custom base URL
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClient creates a stats API client with default settings
func NewClient() *Client {
	return New(BaseURL)
}

// FetchLeagueGames fetches per-team game rows from leaguegamefinder. Each
// game appears as two rows, one per participant. Empty date bounds fetch the
// whole season.
func (c *Client) FetchLeagueGames(ctx context.Context, season string, dateFrom, dateTo time.Time) (*statsResponse, error) {
	params := url.Values{}
	params.Set("LeagueID", "00")
	params.Set("SeasonType", "Regular Season")
	if season != "" {
		params.Set("Season", season)
	}
	if !dateFrom.IsZero() {
		params.Set("DateFrom", dateFrom.Format("01/02/2006"))
	}
	if !dateTo.IsZero() {
		params.Set("DateTo", dateTo.Format("01/02/2006"))
	}

	return c.fetch(ctx, "leaguegamefinder", params)
}

// FetchTeamStats fetches the league dashboard row per team for a season
func (c *Client) FetchTeamStats(ctx context.Context, season string) (*statsResponse, error) {
	params := url.Values{}
	params.Set("LeagueID", "00")
	params.Set("Season", season)
	params.Set("SeasonType", "Regular Season")
	params.Set("MeasureType", "Base")
	params.Set("PerMode", "PerGame")

	return c.fetch(ctx, "leaguedashteamstats", params)
}

// fetch makes a GET request with retries. Transient failures back off
// linearly: the wait grows with each attempt.
func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) (*statsResponse, error) {
	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.throttle(ctx); err != nil {
			return nil, err
		}

		resp, err := c.doRequest(ctx, fullURL)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt < maxRetries {
			wait := retryDelay * time.Duration(attempt)
			log.Printf("[nba-client] ⚠ Attempt %d/%d for %s failed: %v (retrying in %s)",
				attempt, maxRetries, endpoint, err, wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("%s failed after %d attempts: %w", endpoint, maxRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (*statsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	// The API returns 403 without these
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-nba-stats-origin", "stats")
	req.Header.Set("x-nba-stats-token", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &parsed, nil
}

// throttle enforces the minimum gap between requests
func (c *Client) throttle(ctx context.Context) error {
	if c.lastCall.IsZero() {
		c.lastCall = time.Now()
		return nil
	}

	elapsed := time.Since(c.lastCall)
	if elapsed < requestDelay {
		select {
		case <-time.After(requestDelay - elapsed):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.lastCall = time.Now()
	return nil
}
