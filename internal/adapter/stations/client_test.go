package stations

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-indicator-etl/internal/observability"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    testMetrics(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Resolve_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/stations/USW00023183", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		resp := stationResponse{
			ID:        "USW00023183",
			Name:      "PHOENIX AIRPORT",
			Network:   "GHCND",
			Latitude:  33.4277,
			Longitude: -112.0038,
			Elevation: 337.4,
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	info, err := c.Resolve(context.Background(), "USW00023183")
	require.NoError(t, err)

	assert.Equal(t, "PHOENIX AIRPORT", info.Name)
	assert.Equal(t, "GHCND", info.Network)
	assert.InDelta(t, 33.4277, info.Lat, 1e-6)
	assert.InDelta(t, -112.0038, info.Lon, 1e-6)
	assert.InDelta(t, 337.4, info.Elevation, 1e-6)
}

func TestClient_Resolve_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	info, err := c.Resolve(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Empty(t, info.Name)
}

func TestClient_Resolve_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Resolve(context.Background(), "USW00023183")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_Resolve_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Resolve(context.Background(), "USW00023183")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Resolve_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := testClient(srv.URL)
	_, err := c.Resolve(ctx, "USW00023183")
	require.Error(t, err)
}
