package gbif

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/tphakala/pathotrack/internal/errors"
	"github.com/tphakala/pathotrack/internal/logging"
)

// Package-level logger specific to gbif service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	// Define log file path relative to working directory
	logFilePath := filepath.Join("logs", "gbif.log")
	initialLevel := slog.LevelDebug
	serviceLevelVar.Set(initialLevel)

	// Initialize the service-specific file logger
	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "gbif", serviceLevelVar)
	if err != nil {
		// Fallback: Log error to standard log and disable service file logging
		log.Printf("Failed to initialize gbif file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "gbif")
		closeLogger = func() error { return nil }
	}
}

// Client provides methods for interacting with the GBIF species API
type Client struct {
	config      Config
	httpClient  *http.Client
	cache       *cache.Cache // nil when caching is disabled
	rateLimiter *time.Ticker
	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a new GBIF API client. Response caching is enabled
// when config.CacheTTL is non-zero; tests disable it to intercept every
// request.
func NewClient(config Config) *Client {
	// Use defaults for missing config values
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.RateLimitMS == 0 {
		config.RateLimitMS = DefaultConfig().RateLimitMS
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: time.NewTicker(time.Duration(config.RateLimitMS) * time.Millisecond),
	}
	if config.CacheTTL > 0 {
		client.cache = cache.New(config.CacheTTL, config.CacheTTL*2)
		logger.Info("Caching enabled for GBIF API", "cache_ttl", config.CacheTTL)
	} else {
		logger.Info("Caching disabled for GBIF API")
	}

	return client
}

// Close cleans up client resources
func (c *Client) Close() {
	c.rateLimiter.Stop()
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing gbif logger: %v", err)
		}
	}
}

// Match queries the backbone name matching service for a scientific name.
func (c *Client) Match(ctx context.Context, name string) (*MatchResult, error) {
	cacheKey := "match:" + name
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			if result, ok := cached.(*MatchResult); ok {
				logger.Debug("GBIF match cache hit", "name", name)
				return result, nil
			}
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s/species/match?name=%s", c.config.BaseURL, url.QueryEscape(name))

	var result MatchResult
	if err := c.doRequest(reqCtx, reqURL, &result); err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, &result, cache.DefaultExpiration)
	}
	return &result, nil
}

// Usage fetches a name usage by its backbone key.
func (c *Client) Usage(ctx context.Context, key int64) (*UsageResult, error) {
	cacheKey := fmt.Sprintf("usage:%d", key)
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			if result, ok := cached.(*UsageResult); ok {
				logger.Debug("GBIF usage cache hit", "key", key)
				return result, nil
			}
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s/species/%d", c.config.BaseURL, key)

	var result UsageResult
	if err := c.doRequest(reqCtx, reqURL, &result); err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, &result, cache.DefaultExpiration)
	}
	return &result, nil
}

// doRequest performs a rate-limited GET request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, reqURL string, result any) error {
	// Rate limiting
	c.mu.Lock()
	select {
	case <-c.rateLimiter.C:
	case <-ctx.Done():
		c.mu.Unlock()
		return ctx.Err()
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", reqURL).
			Component("gbif").
			Build()
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("GBIF API request failed", "error", err, "url", reqURL)
		return errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", reqURL).
			Component("gbif").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", reqURL).
			Context("status_code", resp.StatusCode).
			Component("gbif").
			Build()
	}

	if resp.StatusCode >= 400 {
		var apiErr Error
		if err := json.Unmarshal(bodyBytes, &apiErr); err != nil || apiErr.Detail == "" {
			apiErr.Detail = strings.TrimSpace(string(bodyBytes))
		}
		logger.Warn("GBIF API error response",
			"status_code", resp.StatusCode,
			"detail", apiErr.Detail,
			"url", reqURL)
		return errors.Newf("GBIF API error (status %d): %s", resp.StatusCode, apiErr.Detail).
			Category(errorCategory(resp.StatusCode)).
			Context("status_code", resp.StatusCode).
			Context("url", reqURL).
			Component("gbif").
			Build()
	}

	if result != nil {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			logger.Error("Failed to parse GBIF API response",
				"error", err,
				"url", reqURL,
				"response_size", len(bodyBytes))
			return errors.Newf("failed to parse response: %w", err).
				Category(errors.CategoryFileParsing).
				Context("url", reqURL).
				Component("gbif").
				Build()
		}
	}

	logger.Debug("GBIF API request successful",
		"url", reqURL,
		"duration_ms", time.Since(start).Milliseconds(),
		"response_size", len(bodyBytes))

	return nil
}

// errorCategory determines the appropriate error category based on HTTP status code
func errorCategory(statusCode int) errors.ErrorCategory {
	switch statusCode {
	case http.StatusTooManyRequests:
		return errors.CategoryLimit
	case http.StatusNotFound:
		return errors.CategoryNotFound
	default:
		return errors.CategoryNetwork
	}
}
