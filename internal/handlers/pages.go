package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/floorhouse/site/internal/cms"
	"github.com/floorhouse/site/internal/domain"
	"github.com/floorhouse/site/internal/i18n"
	"github.com/floorhouse/site/internal/platform/requestctx"
	"github.com/floorhouse/site/internal/routing"
	"github.com/floorhouse/site/internal/seo"
	"github.com/floorhouse/site/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "collection", "pattern", "product", "treatments", "content", "notfound"}

// ContentPages serves rendered static pages. *cms.Store implements it.
type ContentPages interface {
	Page(slug string, locale domain.Locale) (cms.Page, error)
}

// PageHandlers renders the locale-prefixed HTML site.
type PageHandlers struct {
	catalog   services.CatalogService
	content   ContentPages
	bundle    *i18n.Bundle
	images    ImageURLResolver
	baseURL   string
	maxAge    time.Duration
	templates map[string]*template.Template
}

// PageOption customises construction of PageHandlers.
type PageOption func(*PageHandlers)

// WithPageCatalog injects the catalog service dependency.
func WithPageCatalog(svc services.CatalogService) PageOption {
	return func(h *PageHandlers) {
		h.catalog = svc
	}
}

// WithPageContent injects the static content pages.
func WithPageContent(content ContentPages) PageOption {
	return func(h *PageHandlers) {
		h.content = content
	}
}

// WithPageImages sets the resolver used for image URLs.
func WithPageImages(images ImageURLResolver) PageOption {
	return func(h *PageHandlers) {
		if images != nil {
			h.images = images
		}
	}
}

// WithPageBaseURL sets the absolute origin used for canonical and hreflang links.
func WithPageBaseURL(baseURL string) PageOption {
	return func(h *PageHandlers) {
		h.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithPageMaxAge sets the Cache-Control max-age for rendered pages.
func WithPageMaxAge(d time.Duration) PageOption {
	return func(h *PageHandlers) {
		h.maxAge = d
	}
}

// NewPageHandlers parses the embedded templates and applies options.
func NewPageHandlers(bundle *i18n.Bundle, opts ...PageOption) (*PageHandlers, error) {
	if bundle == nil {
		return nil, errors.New("page handlers: i18n bundle is required")
	}
	h := &PageHandlers{
		bundle: bundle,
		images: passthroughImages{},
		maxAge: defaultCatalogMaxAge,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.catalog == nil {
		return nil, errors.New("page handlers: catalog service is required")
	}

	funcs := template.FuncMap{"t": bundle.T}
	h.templates = make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("page handlers: parse %s: %w", name, err)
		}
		h.templates[name] = tpl
	}
	return h, nil
}

// Routes registers the root redirect and the locale-prefixed pages.
func (h *PageHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.redirectToLocale)
	r.Route("/{locale}", func(lr chi.Router) {
		lr.Use(h.localeMiddleware)
		lr.Get("/", h.home)
		lr.Get("/treatments", h.treatments)
		lr.Get("/pages/{slug}", h.contentPage)
		lr.Get("/{collection}", h.collection)
		lr.Get("/{collection}/{pattern}", h.pattern)
		lr.Get("/{collection}/{pattern}/{slug}", h.product)
	})
}

func (h *PageHandlers) redirectToLocale(w http.ResponseWriter, r *http.Request) {
	locale := h.bundle.Resolve(r.Header.Get("Accept-Language"))
	w.Header().Add("Vary", "Accept-Language")
	http.Redirect(w, r, "/"+string(locale), http.StatusFound)
}

// localeMiddleware rejects unknown locale segments before any handler runs.
func (h *PageHandlers) localeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "locale")
		if !routing.IsValidLocale(raw) {
			h.notFound(w, r.WithContext(requestctx.WithLocale(r.Context(), h.bundle.Fallback())))
			return
		}
		locale := domain.Locale(raw)
		w.Header().Set("Content-Language", raw)
		next.ServeHTTP(w, r.WithContext(requestctx.WithLocale(r.Context(), locale)))
	})
}

type pageData struct {
	Locale      domain.Locale
	Meta        seo.Meta
	JSONLD      []template.JS
	Collections []domain.CollectionType
	Data        any
}

func (h *PageHandlers) newPageData(r *http.Request, path, title, description string) pageData {
	locale := requestctx.Locale(r.Context())
	return pageData{
		Locale: locale,
		Meta: seo.Meta{
			Title:       title,
			Description: description,
			Canonical:   seo.LocalizedURL(h.baseURL, locale, path),
			Alternates:  seo.Alternates(h.baseURL, path, h.bundle.Locales()),
		},
		Collections: domain.Collections(),
	}
}

func (h *PageHandlers) title(locale domain.Locale, parts ...string) string {
	parts = append(parts, h.bundle.T(locale, "site.name"))
	return strings.Join(parts, " | ")
}

type collectionCard struct {
	Collection domain.CollectionType
	Count      int
}

func (h *PageHandlers) home(w http.ResponseWriter, r *http.Request) {
	locale := requestctx.Locale(r.Context())
	collections := domain.Collections()
	cards := make([]collectionCard, 0, len(collections))
	for _, c := range collections {
		cards = append(cards, collectionCard{Collection: c, Count: h.catalog.ProductCountByCollection(c)})
	}
	data := h.newPageData(r, "", h.title(locale, h.bundle.T(locale, "site.tagline")), h.bundle.T(locale, "site.tagline"))
	data.JSONLD = append(data.JSONLD, template.JS(seo.JSON(seo.Organization(h.bundle.T(locale, "site.name"), h.baseURL, ""))))
	data.Data = struct{ Collections []collectionCard }{cards}
	h.render(w, r, http.StatusOK, "home", data)
}

func (h *PageHandlers) collection(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "collection")
	if !routing.IsValidCollection(raw) {
		h.notFound(w, r)
		return
	}
	locale := requestctx.Locale(r.Context())
	collection := domain.CollectionType(raw)

	patterns := make([]patternSummary, 0)
	for _, p := range domain.AllowedPatterns(collection) {
		patterns = append(patterns, patternSummary{Pattern: p, Count: h.catalog.ProductCountByCollectionAndPattern(collection, p)})
	}
	label := h.bundle.T(locale, "collection."+raw)
	data := h.newPageData(r, "/"+raw, h.title(locale, label), label)
	data.JSONLD = append(data.JSONLD, template.JS(seo.JSON(seo.BreadcrumbList([]seo.BreadcrumbItem{
		{Name: h.bundle.T(locale, "nav.home"), Item: seo.LocalizedURL(h.baseURL, locale, "")},
		{Name: label, Item: data.Meta.Canonical},
	}))))
	data.Data = struct {
		Collection domain.CollectionType
		Patterns   []patternSummary
	}{collection, patterns}
	h.render(w, r, http.StatusOK, "collection", data)
}

func (h *PageHandlers) pattern(w http.ResponseWriter, r *http.Request) {
	rawCollection, rawPattern := chi.URLParam(r, "collection"), chi.URLParam(r, "pattern")
	if !routing.IsValidCollection(rawCollection) || !routing.IsValidPattern(rawPattern) {
		h.notFound(w, r)
		return
	}
	locale := requestctx.Locale(r.Context())
	collection, pattern := domain.CollectionType(rawCollection), domain.ProductPattern(rawPattern)

	products, err := buildProductPayloads(h.images, h.patternProducts(collection, pattern), locale)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	collectionLabel := h.bundle.T(locale, "collection."+rawCollection)
	patternLabel := h.bundle.T(locale, "pattern."+rawPattern)
	data := h.newPageData(r, "/"+rawCollection+"/"+rawPattern, h.title(locale, patternLabel, collectionLabel), collectionLabel+" "+patternLabel)
	data.JSONLD = append(data.JSONLD, template.JS(seo.JSON(seo.BreadcrumbList([]seo.BreadcrumbItem{
		{Name: h.bundle.T(locale, "nav.home"), Item: seo.LocalizedURL(h.baseURL, locale, "")},
		{Name: collectionLabel, Item: seo.LocalizedURL(h.baseURL, locale, "/"+rawCollection)},
		{Name: patternLabel, Item: data.Meta.Canonical},
	}))))
	data.Data = struct {
		Collection domain.CollectionType
		Pattern    domain.ProductPattern
		Products   []productPayload
	}{collection, pattern, products}
	h.render(w, r, http.StatusOK, "pattern", data)
}

func (h *PageHandlers) patternProducts(collection domain.CollectionType, pattern domain.ProductPattern) []services.Product {
	switch collection {
	case domain.CollectionOak:
		return services.OakProductsByPattern(h.catalog, pattern)
	case domain.CollectionHybridWood:
		return services.HybridWoodProductsByPattern(h.catalog, pattern)
	default:
		return h.catalog.ProductsByCollectionAndPattern(collection, pattern)
	}
}

func (h *PageHandlers) product(w http.ResponseWriter, r *http.Request) {
	rawCollection, rawPattern := chi.URLParam(r, "collection"), chi.URLParam(r, "pattern")
	if !routing.IsValidCollection(rawCollection) || !routing.IsValidPattern(rawPattern) {
		h.notFound(w, r)
		return
	}
	locale := requestctx.Locale(r.Context())
	product, ok := h.catalog.ProductBySlug(domain.CollectionType(rawCollection), chi.URLParam(r, "slug"))
	if !ok {
		h.notFound(w, r)
		return
	}
	if string(product.Pattern) != rawPattern {
		http.Redirect(w, r, productPath(product, locale), http.StatusMovedPermanently)
		return
	}

	payload, err := buildProductPayload(h.images, product, locale)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	path := strings.TrimPrefix(payload.Path, "/"+string(locale))
	title := payload.SEO.Title
	if title == "" {
		title = h.title(locale, payload.Name)
	}
	description := payload.SEO.Description
	if description == "" {
		description = payload.Description
	}
	data := h.newPageData(r, path, title, description)
	collectionLabel := h.bundle.T(locale, "collection."+rawCollection)
	patternLabel := h.bundle.T(locale, "pattern."+rawPattern)
	data.JSONLD = append(data.JSONLD,
		template.JS(seo.JSON(seo.Product(seo.ProductInput{
			Name:        payload.Name,
			Description: payload.Description,
			URL:         data.Meta.Canonical,
			Images:      payload.Images,
			SKU:         payload.SKU,
			Price:       product.Price,
		}))),
		template.JS(seo.JSON(seo.BreadcrumbList([]seo.BreadcrumbItem{
			{Name: h.bundle.T(locale, "nav.home"), Item: seo.LocalizedURL(h.baseURL, locale, "")},
			{Name: collectionLabel, Item: seo.LocalizedURL(h.baseURL, locale, "/"+rawCollection)},
			{Name: patternLabel, Item: seo.LocalizedURL(h.baseURL, locale, "/"+rawCollection+"/"+rawPattern)},
			{Name: payload.Name, Item: data.Meta.Canonical},
		}))),
	)
	data.Data = struct{ Product productPayload }{payload}
	h.render(w, r, http.StatusOK, "product", data)
}

type treatmentGroup struct {
	Category   domain.TreatmentCategory
	Treatments []treatmentPayload
}

func (h *PageHandlers) treatments(w http.ResponseWriter, r *http.Request) {
	locale := requestctx.Locale(r.Context())
	var groups []treatmentGroup
	for _, category := range domain.TreatmentCategories() {
		items := h.catalog.TreatmentsByCategory(category)
		if len(items) == 0 {
			continue
		}
		group := treatmentGroup{Category: category}
		for _, t := range items {
			payload, err := buildTreatmentPayload(h.images, t, locale)
			if err != nil {
				h.serverError(w, r, err)
				return
			}
			group.Treatments = append(group.Treatments, payload)
		}
		groups = append(groups, group)
	}
	label := h.bundle.T(locale, "nav.treatments")
	data := h.newPageData(r, "/treatments", h.title(locale, label), label)
	data.Data = struct{ Groups []treatmentGroup }{groups}
	h.render(w, r, http.StatusOK, "treatments", data)
}

func (h *PageHandlers) contentPage(w http.ResponseWriter, r *http.Request) {
	if h.content == nil {
		h.notFound(w, r)
		return
	}
	locale := requestctx.Locale(r.Context())
	slug := chi.URLParam(r, "slug")
	page, err := h.content.Page(slug, locale)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			h.notFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}
	title := page.SEO.Title
	if title == "" {
		title = h.title(locale, page.Title)
	}
	description := page.SEO.Description
	if description == "" {
		description = page.Summary
	}
	data := h.newPageData(r, "/pages/"+slug, title, description)
	data.Data = struct{ Page cms.Page }{page}
	h.render(w, r, http.StatusOK, "content", data)
}

// NotFound renders the localized 404 page for paths no route matched. The
// locale comes from the first path segment when it names one.
func (h *PageHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	locale := h.bundle.Fallback()
	first, _, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if l, ok := domain.ParseLocale(first); ok {
		locale = l
	}
	h.notFound(w, r.WithContext(requestctx.WithLocale(r.Context(), locale)))
}

func (h *PageHandlers) notFound(w http.ResponseWriter, r *http.Request) {
	locale := requestctx.Locale(r.Context())
	data := h.newPageData(r, "", h.title(locale, h.bundle.T(locale, "error.not_found")), "")
	data.Meta.Canonical = ""
	data.Meta.Alternates = nil
	h.render(w, r, http.StatusNotFound, "notfound", data)
}

func (h *PageHandlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	requestctx.Logger(r.Context()).Error("page render failed", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *PageHandlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	tpl, ok := h.templates[name]
	if !ok {
		h.serverError(w, r, fmt.Errorf("template %s not registered", name))
		return
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.serverError(w, r, fmt.Errorf("execute %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status == http.StatusOK {
		w.Header().Set("Cache-Control", cacheControl(h.maxAge))
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
