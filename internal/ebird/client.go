package ebird

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/featherquest/featherquest-go/internal/conf"
	"github.com/featherquest/featherquest-go/internal/errors"
	"github.com/featherquest/featherquest-go/internal/logging"
)

// Package-level logger specific to the ebird service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	loggerOnce      sync.Once
)

func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		serviceLevelVar.Set(slog.LevelDebug)
		var err error
		logger, _, err = logging.NewFileLogger("logs/ebird.log", "ebird", serviceLevelVar)
		if err != nil || logger == nil {
			// Fallback to a disabled handler to prevent nil panics
			fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
			logger = slog.New(fbHandler).With("service", "ebird")
		}
	})
	return logger
}

// Client provides methods for interacting with the eBird API
type Client struct {
	config      Config
	httpClient  *http.Client
	cache       *cache.Cache
	rateLimiter *time.Ticker
	mu          sync.Mutex
	lastRequest time.Time
	debug       bool

	// Metrics
	metrics struct {
		apiCalls    int64
		cacheHits   int64
		cacheMisses int64
		apiErrors   int64
		mu          sync.Mutex
	}
}

// NewClient creates a new eBird API client
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.Newf("eBird API key is required").
			Category(errors.CategoryConfiguration).
			Component("ebird").
			Build()
	}

	// Use defaults for missing config values
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultConfig().CacheTTL
	}
	if config.RateLimitMS == 0 {
		config.RateLimitMS = DefaultConfig().RateLimitMS
	}

	settings := conf.GetSettings()
	debug := settings != nil && settings.Debug

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache:       cache.New(config.CacheTTL, config.CacheTTL*2),
		rateLimiter: time.NewTicker(time.Duration(config.RateLimitMS) * time.Millisecond),
		debug:       debug,
	}

	getLogger().Info("eBird client initialized",
		"base_url", config.BaseURL,
		"cache_ttl", config.CacheTTL,
		"rate_limit_ms", config.RateLimitMS,
		"api_key_configured", config.APIKey != "")

	return client, nil
}

// FromSettings builds a client Config from the application settings.
func FromSettings(settings *conf.Settings) Config {
	return Config{
		APIKey:      settings.EBird.APIKey,
		BaseURL:     settings.EBird.BaseURL,
		Timeout:     settings.EBird.Timeout,
		CacheTTL:    settings.EBird.CacheTTL,
		RateLimitMS: settings.EBird.RateLimitMS,
	}
}

// Close cleans up client resources
func (c *Client) Close() {
	c.rateLimiter.Stop()
	getLogger().Info("Closing eBird client")
}

// GetNearbyHotspots retrieves birding hotspots within distKm kilometers of the
// given coordinates. Failures are reported to the caller, never retried here.
func (c *Client) GetNearbyHotspots(ctx context.Context, lat, lng float64, distKm int) ([]HotspotLocation, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	requestURL := fmt.Sprintf("%s/ref/hotspot/geo?lat=%.4f&lng=%.4f&dist=%d&fmt=json",
		c.config.BaseURL, lat, lng, distKm)

	var hotspots []HotspotLocation
	if err := c.doRequest(reqCtx, http.MethodGet, requestURL, &hotspots); err != nil {
		return nil, err
	}
	return hotspots, nil
}

// GetRecentSightings retrieves recent bird observations within distKm kilometers
// of the given coordinates, looking back the given number of days.
func (c *Client) GetRecentSightings(ctx context.Context, lat, lng float64, distKm, backDays int) ([]BirdSighting, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	requestURL := fmt.Sprintf("%s/data/obs/geo/recent?lat=%.4f&lng=%.4f&dist=%d&back=%d",
		c.config.BaseURL, lat, lng, distKm, backDays)

	var sightings []BirdSighting
	if err := c.doRequest(reqCtx, http.MethodGet, requestURL, &sightings); err != nil {
		return nil, err
	}
	return sightings, nil
}

// SearchSpecies searches the eBird taxonomy for species matching the free-text
// query. Results are cached for the configured TTL.
func (c *Client) SearchSpecies(ctx context.Context, query string) ([]BirdSpecies, error) {
	cacheKey := fmt.Sprintf("species_search:%s", strings.ToLower(query))

	if cached, found := c.cache.Get(cacheKey); found {
		if species, ok := cached.([]BirdSpecies); ok {
			c.metrics.mu.Lock()
			c.metrics.cacheHits++
			c.metrics.mu.Unlock()

			getLogger().Debug("eBird species search cache hit",
				"cache_key", cacheKey,
				"matches", len(species))
			return species, nil
		}
	}

	c.metrics.mu.Lock()
	c.metrics.cacheMisses++
	c.metrics.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	requestURL := fmt.Sprintf("%s/ref/taxonomy/find/%s", c.config.BaseURL, url.PathEscape(query))

	var species []BirdSpecies
	if err := c.doRequest(reqCtx, http.MethodGet, requestURL, &species); err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, species, cache.DefaultExpiration)

	getLogger().Debug("eBird species search cached",
		"cache_key", cacheKey,
		"matches", len(species))

	return species, nil
}

// doRequest performs an HTTP request with rate limiting and auth
func (c *Client) doRequest(ctx context.Context, method, requestURL string, result any) error {
	// Rate limiting
	c.mu.Lock()
	select {
	case <-c.rateLimiter.C:
	case <-ctx.Done():
		c.mu.Unlock()
		return errors.New(ctx.Err()).
			Category(errors.CategoryCancellation).
			Context("url", requestURL).
			Component("ebird").
			Build()
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	start := time.Now()

	c.metrics.mu.Lock()
	c.metrics.apiCalls++
	c.metrics.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, method, requestURL, http.NoBody)
	if err != nil {
		c.trackError()
		return errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			Context("method", method).
			Context("url", requestURL).
			Component("ebird").
			Build()
	}

	// Add authentication header
	req.Header.Set("X-eBirdApiToken", c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	if c.debug {
		getLogger().Debug("eBird API request",
			"method", method,
			"url", requestURL,
			"has_api_key", c.config.APIKey != "")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.trackError()
		getLogger().Error("eBird API request failed",
			"error", err,
			"method", method,
			"url", requestURL)
		return errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			Context("method", method).
			Context("url", requestURL).
			Component("ebird").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		c.trackError()
		getLogger().Error("Failed to read response body",
			"error", err,
			"url", requestURL,
			"status_code", resp.StatusCode)
		return errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", requestURL).
			Context("status_code", resp.StatusCode).
			Component("ebird").
			Build()
	}

	if resp.StatusCode >= 400 {
		c.trackError()

		var apiErr Error
		if err := json.Unmarshal(bodyBytes, &apiErr); err != nil || apiErr.Detail == "" {
			apiErr.Detail = strings.TrimSpace(string(bodyBytes))
		}
		apiErr.Status = resp.StatusCode

		// Authentication failures get a pointed log line, they mean a bad API key
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			getLogger().Error("eBird API authentication failed",
				"status_code", resp.StatusCode,
				"url", requestURL,
				"has_api_key", c.config.APIKey != "",
				"message", "Check your eBird API key in the configuration")
		} else {
			getLogger().Warn("eBird API error response",
				"status_code", resp.StatusCode,
				"error_detail", apiErr.Detail,
				"url", requestURL)
		}

		return errors.Newf("eBird API error (status %d): %s", resp.StatusCode, apiErr.Detail).
			Category(getErrorCategory(resp.StatusCode)).
			Context("status_code", resp.StatusCode).
			Context("url", requestURL).
			Component("ebird").
			Build()
	}

	if result != nil {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			responsePreview := string(bodyBytes)
			if len(responsePreview) > 500 {
				responsePreview = responsePreview[:500] + "..."
			}
			getLogger().Error("Failed to parse eBird API response",
				"error", err,
				"url", requestURL,
				"response_size", len(bodyBytes),
				"response_preview", responsePreview)
			return errors.Newf("failed to parse response: %w", err).
				Category(errors.CategoryFileParsing).
				Context("url", requestURL).
				Context("response_size", len(bodyBytes)).
				Component("ebird").
				Build()
		}
	}

	if c.debug {
		getLogger().Debug("eBird API response",
			"status_code", resp.StatusCode,
			"url", requestURL,
			"duration_ms", time.Since(start).Milliseconds(),
			"response_size", len(bodyBytes))
	}

	return nil
}

func (c *Client) trackError() {
	c.metrics.mu.Lock()
	c.metrics.apiErrors++
	c.metrics.mu.Unlock()
}

// ClearCache clears all cached data
func (c *Client) ClearCache() {
	c.cache.Flush()
	getLogger().Info("eBird cache cleared")
}

// Metrics represents eBird client performance counters
type Metrics struct {
	APICalls    int64 `json:"api_calls"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	APIErrors   int64 `json:"api_errors"`
}

// GetMetrics returns current client metrics
func (c *Client) GetMetrics() Metrics {
	c.metrics.mu.Lock()
	defer c.metrics.mu.Unlock()

	return Metrics{
		APICalls:    c.metrics.apiCalls,
		CacheHits:   c.metrics.cacheHits,
		CacheMisses: c.metrics.cacheMisses,
		APIErrors:   c.metrics.apiErrors,
	}
}

// getErrorCategory determines the appropriate error category based on HTTP status code
func getErrorCategory(statusCode int) errors.ErrorCategory {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.CategoryConfiguration
	case http.StatusTooManyRequests:
		return errors.CategoryLimit
	case http.StatusNotFound:
		return errors.CategoryNotFound
	default:
		return errors.CategoryNetwork
	}
}
