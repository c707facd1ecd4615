package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/climate-indicator-etl/internal/adapter/http"
	"github.com/couchcryptid/climate-indicator-etl/internal/domain"
	"github.com/couchcryptid/climate-indicator-etl/internal/store"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockLister struct {
	values []domain.IndicatorValue
	err    error
	opts   store.QueryOptions
}

func (m *mockLister) ListValues(_ context.Context, opts store.QueryOptions) ([]domain.IndicatorValue, error) {
	m.opts = opts
	return m.values, m.err
}

func newTestServer(readyErr error, lister httpadapter.ValueLister) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, lister, slog.Default())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"), nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestIndicatorsEndpoint(t *testing.T) {
	lister := &mockLister{
		values: []domain.IndicatorValue{
			{
				ID:          "tx_days_above-1122334455667788",
				Indicator:   "tx_days_above",
				Station:     "USW00023183",
				Variable:    "tasmax",
				PeriodStart: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
				Value:       20,
				Unit:        "d",
			},
		},
	}
	srv := newTestServer(nil, lister)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/v1/indicators?station=USW00023183&indicator=tx_days_above&limit=5", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "USW00023183", lister.opts.Station)
	assert.Equal(t, "tx_days_above", lister.opts.Indicator)
	assert.Equal(t, 5, lister.opts.Limit)

	var body struct {
		Count  int                     `json:"count"`
		Values []domain.IndicatorValue `json:"values"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, 20.0, body.Values[0].Value)
}

func TestIndicatorsEndpointBadParams(t *testing.T) {
	srv := newTestServer(nil, &mockLister{})

	for _, target := range []string{
		"/v1/indicators?limit=zero",
		"/v1/indicators?limit=-1",
		"/v1/indicators?from=yesterday",
		"/v1/indicators?to=2001-13-99",
	} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestIndicatorsEndpointWithoutStore(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/indicators", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIndicatorsEndpointQueryError(t *testing.T) {
	srv := newTestServer(nil, &mockLister{err: fmt.Errorf("db locked")})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/indicators", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
