package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/floorhouse/site/internal/domain"
	"github.com/floorhouse/site/internal/platform/httpx"
	"github.com/floorhouse/site/internal/platform/requestctx"
	"github.com/floorhouse/site/internal/routing"
	"github.com/floorhouse/site/internal/services"
)

const defaultCatalogMaxAge = 5 * time.Minute

// CatalogHandlers exposes the read-only catalog as JSON.
type CatalogHandlers struct {
	catalog services.CatalogService
	images  ImageURLResolver
	enum    *routing.Enumerator
	maxAge  time.Duration
}

// CatalogOption customises construction of CatalogHandlers.
type CatalogOption func(*CatalogHandlers)

// WithCatalogService injects the catalog service dependency.
func WithCatalogService(svc services.CatalogService) CatalogOption {
	return func(h *CatalogHandlers) {
		h.catalog = svc
	}
}

// WithCatalogImages sets the resolver used for image URLs.
func WithCatalogImages(images ImageURLResolver) CatalogOption {
	return func(h *CatalogHandlers) {
		if images != nil {
			h.images = images
		}
	}
}

// WithCatalogEnumerator sets the enumerator behind /static-params.
func WithCatalogEnumerator(enum *routing.Enumerator) CatalogOption {
	return func(h *CatalogHandlers) {
		h.enum = enum
	}
}

// WithCatalogMaxAge sets the Cache-Control max-age for catalog responses.
func WithCatalogMaxAge(d time.Duration) CatalogOption {
	return func(h *CatalogHandlers) {
		h.maxAge = d
	}
}

// NewCatalogHandlers constructs handlers for public catalog endpoints.
func NewCatalogHandlers(opts ...CatalogOption) *CatalogHandlers {
	h := &CatalogHandlers{images: passthroughImages{}, maxAge: defaultCatalogMaxAge}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.enum == nil && h.catalog != nil {
		h.enum = routing.NewEnumerator(h.catalog, nil)
	}
	return h
}

// Routes registers public catalog endpoints against the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/collections", h.listCollections)
	r.Get("/collections/{collection}/products", h.listProducts)
	r.Get("/collections/{collection}/products/{slug}", h.getProduct)
	r.Get("/products/sku/{sku}", h.getProductBySKU)
	r.Get("/treatments", h.listTreatments)
	r.Get("/treatments/{slug}", h.getTreatment)
	r.Get("/static-params", h.staticParams)
}

type patternSummary struct {
	Pattern domain.ProductPattern `json:"pattern"`
	Count   int                   `json:"count"`
}

type collectionSummary struct {
	Collection domain.CollectionType `json:"collection"`
	Count      int                   `json:"count"`
	Patterns   []patternSummary      `json:"patterns"`
}

func (h *CatalogHandlers) listCollections(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	collections := domain.Collections()
	items := make([]collectionSummary, 0, len(collections))
	for _, c := range collections {
		summary := collectionSummary{Collection: c, Count: h.catalog.ProductCountByCollection(c)}
		for _, p := range domain.AllowedPatterns(c) {
			summary.Patterns = append(summary.Patterns, patternSummary{
				Pattern: p,
				Count:   h.catalog.ProductCountByCollectionAndPattern(c, p),
			})
		}
		items = append(items, summary)
	}
	writeCachedJSON(w, r, map[string]any{"collections": items}, h.maxAge)
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	collection, ok := collectionParam(r)
	if !ok {
		writeNotFound(w, r, "collection")
		return
	}
	locale, ok := localeQuery(r)
	if !ok {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_locale", "unsupported locale", http.StatusBadRequest))
		return
	}

	products := h.catalog.ProductsByCollection(collection)
	if raw := strings.TrimSpace(r.URL.Query().Get("pattern")); raw != "" {
		if !routing.IsValidPattern(raw) {
			httpx.WriteError(r.Context(), w, httpx.NewError("invalid_pattern", "unknown pattern", http.StatusBadRequest))
			return
		}
		products = h.catalog.ProductsByCollectionAndPattern(collection, domain.ProductPattern(raw))
	}

	items, err := buildProductPayloads(h.images, products, locale)
	if err != nil {
		writeAssetError(w, r, err)
		return
	}
	writeCachedJSON(w, r, map[string]any{
		"collection": collection,
		"count":      len(items),
		"products":   items,
	}, h.maxAge)
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	collection, ok := collectionParam(r)
	if !ok {
		writeNotFound(w, r, "collection")
		return
	}
	locale, ok := localeQuery(r)
	if !ok {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_locale", "unsupported locale", http.StatusBadRequest))
		return
	}
	product, found := h.catalog.ProductBySlug(collection, chi.URLParam(r, "slug"))
	if !found {
		writeNotFound(w, r, "product")
		return
	}
	h.writeProduct(w, r, product, locale)
}

func (h *CatalogHandlers) getProductBySKU(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	locale, ok := localeQuery(r)
	if !ok {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_locale", "unsupported locale", http.StatusBadRequest))
		return
	}
	product, found := h.catalog.FindProductBySku(chi.URLParam(r, "sku"))
	if !found {
		writeNotFound(w, r, "product")
		return
	}
	h.writeProduct(w, r, product, locale)
}

func (h *CatalogHandlers) writeProduct(w http.ResponseWriter, r *http.Request, product domain.Product, locale domain.Locale) {
	payload, err := buildProductPayload(h.images, product, locale)
	if err != nil {
		writeAssetError(w, r, err)
		return
	}
	writeCachedJSON(w, r, map[string]any{"product": payload}, h.maxAge)
}

func (h *CatalogHandlers) listTreatments(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	locale, ok := localeQuery(r)
	if !ok {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_locale", "unsupported locale", http.StatusBadRequest))
		return
	}
	treatments := h.catalog.AllTreatments()
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		category, ok := domain.ParseTreatmentCategory(raw)
		if !ok {
			httpx.WriteError(r.Context(), w, httpx.NewError("invalid_category", "unknown treatment category", http.StatusBadRequest))
			return
		}
		treatments = h.catalog.TreatmentsByCategory(category)
	}

	items := make([]treatmentPayload, 0, len(treatments))
	for _, t := range treatments {
		payload, err := buildTreatmentPayload(h.images, t, locale)
		if err != nil {
			writeAssetError(w, r, err)
			return
		}
		items = append(items, payload)
	}
	writeCachedJSON(w, r, map[string]any{"count": len(items), "treatments": items}, h.maxAge)
}

func (h *CatalogHandlers) getTreatment(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	locale, ok := localeQuery(r)
	if !ok {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_locale", "unsupported locale", http.StatusBadRequest))
		return
	}
	treatment, found := h.catalog.TreatmentBySlug(chi.URLParam(r, "slug"))
	if !found {
		writeNotFound(w, r, "treatment")
		return
	}
	payload, err := buildTreatmentPayload(h.images, treatment, locale)
	if err != nil {
		writeAssetError(w, r, err)
		return
	}
	writeCachedJSON(w, r, map[string]any{"treatment": payload}, h.maxAge)
}

func (h *CatalogHandlers) staticParams(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("template"))
	if name == "" {
		writeCachedJSON(w, r, map[string]any{"params": nonNilParams(h.enum.All())}, h.maxAge)
		return
	}
	tpl, ok := routing.TemplateByName(name)
	if !ok {
		writeNotFound(w, r, "template")
		return
	}
	writeCachedJSON(w, r, map[string]any{
		"template": tpl.Name,
		"level":    tpl.Level.String(),
		"params":   nonNilParams(h.enum.Params(tpl)),
	}, h.maxAge)
}

func (h *CatalogHandlers) ready(w http.ResponseWriter, r *http.Request) bool {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return false
	}
	return true
}

func collectionParam(r *http.Request) (domain.CollectionType, bool) {
	raw := chi.URLParam(r, "collection")
	if !routing.IsValidCollection(raw) {
		return "", false
	}
	return domain.CollectionType(raw), true
}

// localeQuery reads ?locale=, defaulting to the request locale.
func localeQuery(r *http.Request) (domain.Locale, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("locale"))
	if raw == "" {
		return requestctx.Locale(r.Context()), true
	}
	return domain.ParseLocale(raw)
}

func nonNilParams(in []routing.Params) []routing.Params {
	if in == nil {
		return []routing.Params{}
	}
	return in
}

func writeNotFound(w http.ResponseWriter, r *http.Request, resource string) {
	httpx.WriteError(r.Context(), w, httpx.NewError(resource+"_not_found", resource+" not found", http.StatusNotFound))
}

func writeAssetError(w http.ResponseWriter, r *http.Request, err error) {
	requestctx.Logger(r.Context()).Error("image url resolution failed", zap.Error(err))
	httpx.WriteError(r.Context(), w, httpx.NewError("asset_resolution_failed", "image urls unavailable", http.StatusInternalServerError))
}
