package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorhouse/site/internal/catalog"
	"github.com/floorhouse/site/internal/services"
)

func TestRouterHealthz(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	now := start
	health := NewHealthHandlers(WithHealthClock(func() time.Time { return now }))
	now = start.Add(90 * time.Second)

	rec := doRequest(t, NewRouter(WithHealthHandlers(health)), http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	decodeBody(t, rec, &payload)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "1m30s", payload["uptime"])
}

func TestRouterReadyzWithoutCatalog(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, NewRouter(), http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var payload map[string]any
	decodeBody(t, rec, &payload)
	assert.Equal(t, "catalog_unavailable", payload["error"])
}

func TestRouterReadyzReportsCounts(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestSite(t, siteOptions{}), http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Status      string         `json:"status"`
		Products    int            `json:"products"`
		Treatments  int            `json:"treatments"`
		Collections map[string]int `json:"collections"`
	}
	decodeBody(t, rec, &payload)
	assert.Equal(t, "ready", payload.Status)
	assert.Equal(t, 20, payload.Products)
	assert.Equal(t, 6, payload.Treatments)
	assert.Equal(t, 7, payload.Collections["oak"])
	assert.Equal(t, 3, payload.Collections["hybrid-wood"])
}

func TestRouterReadyzReportsTreatmentMetadata(t *testing.T) {
	t.Parallel()

	store, err := catalog.Load(context.Background(), catalog.EmbeddedSource())
	require.NoError(t, err)
	svc, err := services.NewCatalogService(services.CatalogServiceDeps{Catalog: store})
	require.NoError(t, err)
	router := NewRouter(WithHealthHandlers(NewHealthHandlers(
		WithHealthCatalog(svc),
		WithHealthTreatmentMetadata(store),
	)))

	rec := doRequest(t, router, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		TreatmentMetadata catalog.Metadata `json:"treatmentMetadata"`
	}
	decodeBody(t, rec, &payload)
	assert.Equal(t, 6, payload.TreatmentMetadata.TotalCount)
	require.NotNil(t, payload.TreatmentMetadata.LastSorted)
	assert.True(t, payload.TreatmentMetadata.LastSorted.Equal(time.Date(2026, 9, 30, 8, 0, 0, 0, time.UTC)))

	withoutMeta := doRequest(t, newTestSite(t, siteOptions{}), http.MethodGet, "/readyz", "", nil)
	assert.NotContains(t, withoutMeta.Body.String(), "treatmentMetadata")
}

func TestRouterJSONNotFound(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, NewRouter(), http.MethodGet, "/api/v1/unknown", "", map[string]string{"X-Request-Id": "req-42"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var payload map[string]any
	decodeBody(t, rec, &payload)
	assert.Equal(t, "route_not_found", payload["error"])
	assert.Equal(t, "req-42", payload["request_id"])
}

func TestRouterPublicNotImplemented(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, NewRouter(), http.MethodGet, "/api/v1/public/collections", "", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, NewRouter(), http.MethodPost, "/healthz", "", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var payload map[string]any
	decodeBody(t, rec, &payload)
	assert.Equal(t, "method_not_allowed", payload["error"])
}
