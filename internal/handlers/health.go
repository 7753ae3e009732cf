package handlers

import (
	"net/http"
	"time"

	"github.com/floorhouse/site/internal/catalog"
	"github.com/floorhouse/site/internal/domain"
	"github.com/floorhouse/site/internal/platform/httpx"
	"github.com/floorhouse/site/internal/services"
)

// HealthHandlers serves liveness and readiness checks.
type HealthHandlers struct {
	catalog    services.CatalogService
	treatments TreatmentMetadataSource
	started    time.Time
	clock      func() time.Time
}

// TreatmentMetadataSource exposes the metadata loaded with the treatments.
type TreatmentMetadataSource interface {
	TreatmentMetadata() catalog.Metadata
}

// HealthOption customises HealthHandlers.
type HealthOption func(*HealthHandlers)

// WithHealthCatalog sets the catalog whose counts /readyz reports.
func WithHealthCatalog(svc services.CatalogService) HealthOption {
	return func(h *HealthHandlers) {
		h.catalog = svc
	}
}

// WithHealthTreatmentMetadata adds the treatments metadata to /readyz.
func WithHealthTreatmentMetadata(src TreatmentMetadataSource) HealthOption {
	return func(h *HealthHandlers) {
		h.treatments = src
	}
}

// WithHealthClock injects a custom clock.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// NewHealthHandlers constructs the health handlers.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.started = h.clock()
	return h
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	now := h.clock()
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    now.Sub(h.started).Round(time.Second).String(),
		"timestamp": now.UTC().Format(time.RFC3339),
	})
}

// Readyz reports ready once a catalog is attached, with per-collection counts.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "catalog is not loaded", http.StatusServiceUnavailable))
		return
	}
	collections := domain.Collections()
	counts := make(map[string]int, len(collections))
	for _, c := range collections {
		counts[string(c)] = h.catalog.ProductCountByCollection(c)
	}
	payload := map[string]any{
		"status":      "ready",
		"products":    h.catalog.TotalProductCount(),
		"treatments":  len(h.catalog.AllTreatments()),
		"collections": counts,
	}
	if h.treatments != nil {
		payload["treatmentMetadata"] = h.treatments.TreatmentMetadata()
	}
	httpx.WriteJSON(w, http.StatusOK, payload)
}
