package catalog

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Config holds catalog client settings.
type Config struct {
	// BaseURL of the Gutendex search endpoint.
	BaseURL string
	// RequestTimeout is the hard deadline for one upstream call.
	RequestTimeout time.Duration
	// CacheTTL bounds how long one cached result page stays valid.
	CacheTTL time.Duration
	// RequestsPerSecond and Burst bound the outbound request rate.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns production settings for the public Gutendex API.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://gutendex.com/books",
		RequestTimeout:    5 * time.Second,
		CacheTTL:          time.Hour,
		RequestsPerSecond: 2.0,
		Burst:             4,
	}
}

// Circuit breaker settings: open after a run of upstream failures, probe
// again after the cooldown.
const (
	breakerFailureThreshold = 5
	breakerCooldown         = 30 * time.Second
)

// Client fetches book records from the external catalog. Fetch never
// returns an error: upstream trouble of any kind degrades to an empty
// result so a slow or broken catalog can never fail a user request.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]Record]
	cache   *Cache
	logger  *slog.Logger
}

// NewClient creates a catalog client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	settings := gobreaker.Settings{
		Name:    "catalog",
		Timeout: breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker[[]Record](settings),
		cache:   NewCache(cfg.CacheTTL),
		logger:  logger,
	}
}

// Cache exposes the client's cache for administrative resets and tests.
func (c *Client) Cache() *Cache {
	return c.cache
}

// cacheKey builds a deterministic key from the full parameter tuple so
// identical logical requests always hit the same slot. Missing query and
// topic normalize to the empty string.
func cacheKey(query string, page, limit int, topic string) string {
	return fmt.Sprintf("q=%s|page=%d|limit=%d|topic=%s", query, page, limit, topic)
}

// Fetch returns up to limit catalog records for the given query and/or
// topic. A valid cache entry is returned without touching the network.
// Timeouts, non-2xx statuses, malformed responses, and an open breaker
// all yield an empty slice with a non-fatal log line.
func (c *Client) Fetch(ctx context.Context, query string, page, limit int, topic string) []Record {
	key := cacheKey(query, page, limit, topic)

	if records, ok := c.cache.Get(key); ok {
		return records
	}

	records, err := c.breaker.Execute(func() ([]Record, error) {
		return c.search(ctx, query, page, limit, topic)
	})
	if err != nil {
		c.logger.Warn("catalog fetch failed, degrading to empty result",
			"query", query,
			"topic", topic,
			"page", page,
			"error", err,
		)
		return []Record{}
	}

	c.cache.Set(key, records)
	return records
}

// search performs one upstream call under the hard request timeout.
func (c *Client) search(ctx context.Context, query string, page, limit int, topic string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	// The limiter wait runs under the same deadline as the call itself so
	// nothing here can block indefinitely.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	if topic != "" {
		params.Set("topic", topic)
	}
	if query != "" {
		params.Set("search", query)
	}
	params.Set("page", strconv.Itoa(page))

	searchURL := c.cfg.BaseURL + "?" + params.Encode()

	c.logger.Debug("searching catalog",
		"query", query,
		"topic", topic,
		"url", searchURL,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	results := searchResp.Results
	if len(results) > limit {
		results = results[:limit]
	}

	records := make([]Record, 0, len(results))
	for i := range results {
		records = append(records, mapRecord(&results[i]))
	}

	c.logger.Debug("catalog search results",
		"query", query,
		"topic", topic,
		"count", len(records),
	)

	return records, nil
}

// mapRecord converts a raw result into a Record. Missing author and cover
// fields become nil, never an error.
func mapRecord(r *searchResult) Record {
	record := Record{
		ID:       strconv.FormatInt(r.ID, 10),
		Title:    r.Title,
		Subjects: r.Subjects,
	}
	if len(r.Authors) > 0 && r.Authors[0].Name != "" {
		name := r.Authors[0].Name
		record.Author = &name
	}
	if cover, ok := r.Formats[coverFormat]; ok && cover != "" {
		record.CoverURL = &cover
	}
	if record.Subjects == nil {
		record.Subjects = []string{}
	}
	return record
}
