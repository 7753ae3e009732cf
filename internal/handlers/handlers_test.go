package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/floorhouse/site/internal/catalog"
	"github.com/floorhouse/site/internal/cms"
	"github.com/floorhouse/site/internal/i18n"
	"github.com/floorhouse/site/internal/routing"
	"github.com/floorhouse/site/internal/services"
)

const testBaseURL = "https://floorhouse.example"

func embeddedCatalog(t *testing.T) services.CatalogService {
	t.Helper()
	store, err := catalog.Load(context.Background(), catalog.EmbeddedSource())
	require.NoError(t, err)
	svc, err := services.NewCatalogService(services.CatalogServiceDeps{Catalog: store})
	require.NoError(t, err)
	return svc
}

type siteOptions struct {
	contact   services.ContactService
	assistant services.AssistantService
	formOpts  []FormOption
}

func newTestSite(t *testing.T, opts siteOptions) http.Handler {
	t.Helper()
	svc := embeddedCatalog(t)
	bundle, err := i18n.Default()
	require.NoError(t, err)
	enum := routing.NewEnumerator(svc, bundle.Locales())

	pages, err := NewPageHandlers(bundle,
		WithPageCatalog(svc),
		WithPageContent(cms.Default()),
		WithPageBaseURL(testBaseURL),
	)
	require.NoError(t, err)

	catalogHandlers := NewCatalogHandlers(WithCatalogService(svc), WithCatalogEnumerator(enum))
	formOpts := append([]FormOption{
		WithContactService(opts.contact),
		WithAssistantService(opts.assistant),
	}, opts.formOpts...)
	forms := NewFormHandlers(formOpts...)
	sitemap := NewSitemapHandler(enum, testBaseURL, []string{"about"}, time.Time{}, time.Minute)

	return NewRouter(
		WithHealthHandlers(NewHealthHandlers(WithHealthCatalog(svc))),
		WithPublicRoutes(CombineRegistrars(catalogHandlers.Routes, forms.Routes)),
		WithPageRoutes(pages.Routes),
		WithSitemap(sitemap.ServeHTTP),
		WithNotFoundPage(pages.NotFound),
	)
}

func doRequest(t *testing.T, h http.Handler, method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}
