package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorhouse/site/internal/routing"
)

type listProductsResponse struct {
	Collection string           `json:"collection"`
	Count      int              `json:"count"`
	Products   []productPayload `json:"products"`
}

func TestCatalogListCollections(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestSite(t, siteOptions{}), http.MethodGet, "/api/v1/public/collections", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Header().Get("ETag"), `W/"`)

	var payload struct {
		Collections []collectionSummary `json:"collections"`
	}
	decodeBody(t, rec, &payload)
	require.Len(t, payload.Collections, 6)
	oak := payload.Collections[0]
	assert.Equal(t, "oak", string(oak.Collection))
	assert.Equal(t, 7, oak.Count)
	require.Len(t, oak.Patterns, 4)
	assert.Equal(t, patternSummary{Pattern: "plank", Count: 3}, oak.Patterns[0])
}

func TestCatalogListProductsByPattern(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, siteOptions{})
	rec := doRequest(t, site, http.MethodGet, "/api/v1/public/collections/oak/products?pattern=plank", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload listProductsResponse
	decodeBody(t, rec, &payload)
	require.Equal(t, 3, payload.Count)
	slugs := []string{payload.Products[0].Slug, payload.Products[1].Slug, payload.Products[2].Slug}
	assert.Equal(t, []string{"natural-oak-plank", "smoked-oak-plank", "white-oiled-oak-plank"}, slugs)

	first := payload.Products[0]
	assert.Equal(t, "89.50", first.Price)
	assert.Equal(t, "EUR", first.Currency)
	assert.Equal(t, "flr-1001-main.jpg", first.MainImage)
	assert.Equal(t, "flr-1001-room.jpg", first.HoverImage)
	assert.Equal(t, "/en/oak/plank/natural-oak-plank", first.Path)
}

func TestCatalogListProductsValidatesSegments(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, siteOptions{})

	rec := doRequest(t, site, http.MethodGet, "/api/v1/public/collections/bamboo/products", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, site, http.MethodGet, "/api/v1/public/collections/oak/products?pattern=spiral", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, site, http.MethodGet, "/api/v1/public/collections/oak/products?locale=de", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A known pattern that oak does not carry is an empty list, not an error.
	rec = doRequest(t, site, http.MethodGet, "/api/v1/public/collections/oak/products?pattern=dorpen", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var payload listProductsResponse
	decodeBody(t, rec, &payload)
	assert.Equal(t, 0, payload.Count)
	assert.NotNil(t, payload.Products)
}

func TestCatalogGetProduct(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, siteOptions{})
	rec := doRequest(t, site, http.MethodGet, "/api/v1/public/collections/oak/products/smoked-oak-plank?locale=bg", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Product productPayload `json:"product"`
	}
	decodeBody(t, rec, &payload)
	assert.Equal(t, "FLR-1002", payload.Product.SKU)
	assert.Equal(t, "Дъб дъска опушен", payload.Product.Name)
	assert.Equal(t, "/bg/oak/plank/smoked-oak-plank", payload.Product.Path)

	rec = doRequest(t, site, http.MethodGet, "/api/v1/public/collections/custom-oak/products/smoked-oak-plank", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogGetProductBySKU(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, siteOptions{})
	rec := doRequest(t, site, http.MethodGet, "/api/v1/public/products/sku/40112", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Product productPayload `json:"product"`
	}
	decodeBody(t, rec, &payload)
	assert.Equal(t, "hy-wood", string(payload.Product.Collection))

	rec = doRequest(t, site, http.MethodGet, "/api/v1/public/products/sku/flr-1001", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogConditionalGet(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, siteOptions{})
	first := doRequest(t, site, http.MethodGet, "/api/v1/public/treatments", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := doRequest(t, site, http.MethodGet, "/api/v1/public/treatments", "", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())
}

func TestCatalogTreatments(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, siteOptions{})
	rec := doRequest(t, site, http.MethodGet, "/api/v1/public/treatments?category=smoked", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Count      int                `json:"count"`
		Treatments []treatmentPayload `json:"treatments"`
	}
	decodeBody(t, rec, &payload)
	require.Equal(t, 1, payload.Count)
	assert.Equal(t, "smoked-light", payload.Treatments[0].Slug)

	rec = doRequest(t, site, http.MethodGet, "/api/v1/public/treatments?category=purple", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, site, http.MethodGet, "/api/v1/public/treatments/ebony", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, site, http.MethodGet, "/api/v1/public/treatments/mahogany", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogStaticParams(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, siteOptions{})
	rec := doRequest(t, site, http.MethodGet, "/api/v1/public/static-params?template=hybrid-wood-product", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Template string           `json:"template"`
		Level    string           `json:"level"`
		Params   []routing.Params `json:"params"`
	}
	decodeBody(t, rec, &payload)
	assert.Equal(t, "hybrid-wood-product", payload.Template)
	// 3 hybrid wood products in 2 locales.
	require.Len(t, payload.Params, 6)
	assert.Equal(t, "/en/hybrid-wood/plank/natural-hybrid-plank", payload.Params[0].Path())

	rec = doRequest(t, site, http.MethodGet, "/api/v1/public/static-params", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, site, http.MethodGet, "/api/v1/public/static-params?template=nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
