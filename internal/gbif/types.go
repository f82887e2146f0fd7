// Package gbif provides a client for the GBIF species API and a resolver
// that canonicalizes free-text organism names against the GBIF backbone.
package gbif

import "time"

// NameUsage identifies a name usage in the GBIF backbone
type NameUsage struct {
	Key           int64  `json:"key"`
	CanonicalName string `json:"canonicalName"`
	Status        string `json:"status"` // ACCEPTED, SYNONYM, DOUBTFUL, ...
	Rank          string `json:"rank,omitempty"`
}

// MatchDiagnostics carries match quality information
type MatchDiagnostics struct {
	Confidence int    `json:"confidence"` // 0-100
	MatchType  string `json:"matchType,omitempty"`
	Note       string `json:"note,omitempty"`
}

// MatchResult represents a backbone match response
type MatchResult struct {
	Usage         *NameUsage       `json:"usage,omitempty"`
	AcceptedUsage *NameUsage       `json:"acceptedUsage,omitempty"`
	Diagnostics   MatchDiagnostics `json:"diagnostics"`
	Synonym       bool             `json:"synonym,omitempty"`
}

// UsageResult represents a by-key name usage lookup response
type UsageResult struct {
	Usage *NameUsage `json:"usage,omitempty"`
}

// Config holds configuration for the GBIF client
type Config struct {
	BaseURL     string        `json:"base_url"`
	Timeout     time.Duration `json:"timeout"`
	CacheTTL    time.Duration `json:"cache_ttl"`     // 0 disables response caching
	RateLimitMS int           `json:"rate_limit_ms"` // milliseconds between requests
}

// DefaultConfig returns the default GBIF client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://api.gbif.org/v1",
		Timeout:     30 * time.Second,
		CacheTTL:    24 * time.Hour,
		RateLimitMS: 100,
	}
}

// Error represents a GBIF API error response
type Error struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}
