package gbif

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockResponse represents a mocked HTTP response
type mockResponse struct {
	status int
	body   string
}

// setupTestClient creates a test client pointed at the given server,
// with caching disabled so every request reaches the server.
func setupTestClient(tb testing.TB, server *httptest.Server) *Client {
	tb.Helper()

	client := NewClient(Config{
		BaseURL:     server.URL,
		RateLimitMS: 1, // Fast for tests
	})

	if tt, ok := tb.(*testing.T); ok {
		tt.Cleanup(func() {
			client.rateLimiter.Stop()
		})
	}

	return client
}

// setupMockServer creates a mock server with predefined responses keyed by
// request path (plus raw query when present).
func setupMockServer(tb testing.TB, responses map[string]mockResponse) *httptest.Server {
	tb.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}

		w.Header().Set("Content-Type", "application/json")
		if response, ok := responses[key]; ok {
			w.WriteHeader(response.status)
			_, _ = w.Write([]byte(response.body))
			return
		}

		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"title": "Not Found", "status": 404, "detail": "Endpoint not found"}`))
	}))

	tb.Cleanup(server.Close)
	return server
}
