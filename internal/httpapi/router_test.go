package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abdulachik/hashtrend/internal/metrics"
	"github.com/abdulachik/hashtrend/internal/scheduler"
	"github.com/abdulachik/hashtrend/internal/trend"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refTime = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func reader(cache *trend.Cache) *trend.Service {
	return trend.NewService(trend.ServiceConfig{Cache: cache})
}

func warmCache() *trend.Service {
	cache := trend.NewCache()
	cache.Publish(trend.NewSnapshot(refTime, []trend.ScoredLabel{
		{Label: "golang", Score: 2.5},
		{Label: "rust", Score: 1.25},
	}))
	return reader(cache)
}

func serve(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandleTrends(t *testing.T) {
	t.Run("warm", func(t *testing.T) {
		srv := NewServer(Config{Trends: warmCache()})

		rec := serve(t, srv, "/api/trends")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body trendsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, []string{"golang", "rust"}, body.Labels)
	})

	t.Run("cold start returns empty list", func(t *testing.T) {
		srv := NewServer(Config{Trends: reader(trend.NewCache())})

		rec := serve(t, srv, "/api/trends")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"labels":[]}`, rec.Body.String())
	})
}

func TestHandleScores(t *testing.T) {
	t.Run("warm", func(t *testing.T) {
		srv := NewServer(Config{Trends: warmCache()})

		rec := serve(t, srv, "/api/trends/scores")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"computed_at": "2024-03-10T12:00:00Z",
			"trends": [
				{"label": "golang", "score": 2.5},
				{"label": "rust", "score": 1.25}
			]
		}`, rec.Body.String())
	})

	t.Run("cold start", func(t *testing.T) {
		srv := NewServer(Config{Trends: reader(trend.NewCache())})

		rec := serve(t, srv, "/api/trends/scores")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"computed_at": null, "trends": []}`, rec.Body.String())
	})
}

func TestHandleHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		health := scheduler.NewHealth(clockwork.NewFakeClockAt(refTime))
		health.SetHealthy(scheduler.ComponentSource, "read 2 items")
		health.SetHealthy(scheduler.ComponentRefresh, "published 2 labels")
		srv := NewServer(Config{Trends: warmCache(), Health: health})

		rec := serve(t, srv, "/health")
		require.Equal(t, http.StatusOK, rec.Code)

		var body healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "ok", body.Status)
		assert.True(t, body.Ready)
		assert.Len(t, body.Components, 2)
		assert.True(t, body.Components[scheduler.ComponentSource].Healthy)
	})

	t.Run("cold cache is unavailable", func(t *testing.T) {
		srv := NewServer(Config{Trends: reader(trend.NewCache()), Health: scheduler.NewHealth(nil)})

		rec := serve(t, srv, "/health")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("failing source while serving stale", func(t *testing.T) {
		health := scheduler.NewHealth(clockwork.NewFakeClockAt(refTime))
		health.SetHealthy(scheduler.ComponentSource, "ok")
		health.SetUnhealthy(scheduler.ComponentSource, trend.ErrSourceUnavailable)
		srv := NewServer(Config{Trends: warmCache(), Health: health})

		rec := serve(t, srv, "/health")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "unhealthy", body.Status)
		assert.True(t, body.Ready)

		src := body.Components[scheduler.ComponentSource]
		assert.False(t, src.Healthy)
		assert.Equal(t, trend.ErrSourceUnavailable.Error(), src.Message)
		require.NotNil(t, src.LastSuccess)
		assert.True(t, refTime.Equal(*src.LastSuccess))
	})
}

func TestMetricsRoute(t *testing.T) {
	t.Run("mounted", func(t *testing.T) {
		srv := NewServer(Config{Trends: warmCache(), Metrics: metrics.Handler()})

		rec := serve(t, srv, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "hashtrend_")
	})

	t.Run("absent", func(t *testing.T) {
		srv := NewServer(Config{Trends: warmCache()})

		rec := serve(t, srv, "/metrics")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
