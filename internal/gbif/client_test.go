package gbif

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/pathotrack/internal/errors"
)

func TestMatchDecodesBackboneResponse(t *testing.T) {
	server := setupMockServer(t, map[string]mockResponse{
		"/species/match?name=Rattus+rattus": {
			status: 200,
			body: `{
				"usage": {"key": 2439261, "canonicalName": "Rattus rattus", "status": "ACCEPTED"},
				"diagnostics": {"confidence": 99, "matchType": "EXACT"}
			}`,
		},
	})
	client := setupTestClient(t, server)

	result, err := client.Match(context.Background(), "Rattus rattus")
	require.NoError(t, err)
	require.NotNil(t, result.Usage)
	assert.Equal(t, "Rattus rattus", result.Usage.CanonicalName)
	assert.Equal(t, 99, result.Diagnostics.Confidence)
}

func TestMatchCachesResponses(t *testing.T) {
	server := setupMockServer(t, map[string]mockResponse{
		"/species/match?name=Mus+musculus": {
			status: 200,
			body:   `{"usage": {"key": 1, "canonicalName": "Mus musculus", "status": "ACCEPTED"}, "diagnostics": {"confidence": 98}}`,
		},
	})
	client := NewClient(Config{
		BaseURL:     server.URL,
		RateLimitMS: 1,
		CacheTTL:    time.Hour,
	})
	t.Cleanup(client.rateLimiter.Stop)

	first, err := client.Match(context.Background(), "Mus musculus")
	require.NoError(t, err)

	second, err := client.Match(context.Background(), "Mus musculus")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestMissingEndpointCarriesNotFoundCategory(t *testing.T) {
	server := setupMockServer(t, map[string]mockResponse{})
	client := setupTestClient(t, server)

	_, err := client.Match(context.Background(), "Nosuchthing")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
}

func TestUsageLookup(t *testing.T) {
	server := setupMockServer(t, map[string]mockResponse{
		"/species/2439223": {
			status: 200,
			body:   `{"usage": {"key": 2439223, "canonicalName": "Oligoryzomys utiaritensis", "status": "ACCEPTED"}}`,
		},
	})
	client := setupTestClient(t, server)

	result, err := client.Usage(context.Background(), 2439223)
	require.NoError(t, err)
	require.NotNil(t, result.Usage)
	assert.Equal(t, "Oligoryzomys utiaritensis", result.Usage.CanonicalName)
}

func TestServerErrorCarriesNetworkCategory(t *testing.T) {
	server := setupMockServer(t, map[string]mockResponse{
		"/species/match?name=Rattus": {
			status: 503,
			body:   `{"title": "Service Unavailable", "status": 503, "detail": "backbone offline"}`,
		},
	})
	client := setupTestClient(t, server)

	_, err := client.Match(context.Background(), "Rattus")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNetwork))
}
