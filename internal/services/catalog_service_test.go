package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorhouse/site/internal/catalog"
	domain "github.com/floorhouse/site/internal/domain"
)

func testProduct(collection domain.CollectionType, pattern domain.ProductPattern, sku, slug string) domain.Product {
	return domain.Product{
		SKU:        sku,
		Slug:       slug,
		Collection: collection,
		Pattern:    pattern,
		Price:      decimal.RequireFromString("75.00"),
		Images:     []string{sku + ".jpg"},
		I18n: map[domain.Locale]domain.ProductContent{
			domain.LocaleEN: {Name: slug, Description: "Oak floor " + slug},
		},
	}
}

func newTestService(t *testing.T, containers map[domain.CollectionType]catalog.ProductContainer, treatments ...domain.Treatment) CatalogService {
	t.Helper()
	store, err := catalog.NewStore(containers, catalog.TreatmentContainer{Treatments: treatments})
	require.NoError(t, err)
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: store})
	require.NoError(t, err)
	return svc
}

func embeddedService(t *testing.T) CatalogService {
	t.Helper()
	store, err := catalog.Load(context.Background(), catalog.EmbeddedSource())
	require.NoError(t, err)
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: store})
	require.NoError(t, err)
	return svc
}

func TestNewCatalogServiceRequiresRepository(t *testing.T) {
	t.Parallel()

	_, err := NewCatalogService(CatalogServiceDeps{})
	assert.ErrorIs(t, err, ErrCatalogRepositoryMissing)
}

func TestOakProductsByPatternPreservesOrder(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, map[domain.CollectionType]catalog.ProductContainer{
		domain.CollectionOak: {Products: []domain.Product{
			testProduct(domain.CollectionOak, domain.PatternPlank, "FLR-0001", "plank-a"),
			testProduct(domain.CollectionOak, domain.PatternHerringbone, "FLR-0002", "herringbone-a"),
			testProduct(domain.CollectionOak, domain.PatternPlank, "FLR-0003", "plank-b"),
			testProduct(domain.CollectionOak, domain.PatternHerringbone, "FLR-0004", "herringbone-b"),
			testProduct(domain.CollectionOak, domain.PatternPlank, "FLR-0005", "plank-c"),
		}},
	})

	got := OakProductsByPattern(svc, domain.PatternPlank)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"plank-a", "plank-b", "plank-c"}, []string{got[0].Slug, got[1].Slug, got[2].Slug})
	assert.Equal(t, 3, svc.ProductCountByCollectionAndPattern(domain.CollectionOak, domain.PatternPlank))
	assert.Empty(t, OakProductsByPattern(svc, domain.PatternChevron))
}

func TestHybridWoodProductsByPatternIgnoresOtherCollections(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, map[domain.CollectionType]catalog.ProductContainer{
		domain.CollectionOak: {Products: []domain.Product{
			testProduct(domain.CollectionOak, domain.PatternPlank, "FLR-0001", "oak-plank"),
		}},
		domain.CollectionHybridWood: {Products: []domain.Product{
			testProduct(domain.CollectionHybridWood, domain.PatternPlank, "FLR-0101", "hybrid-plank-a"),
			testProduct(domain.CollectionHybridWood, domain.PatternFishbone, "FLR-0102", "hybrid-fishbone"),
			testProduct(domain.CollectionHybridWood, domain.PatternPlank, "FLR-0103", "hybrid-plank-b"),
		}},
	})

	got := HybridWoodProductsByPattern(svc, domain.PatternPlank)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"hybrid-plank-a", "hybrid-plank-b"}, []string{got[0].Slug, got[1].Slug})
	fishbone := HybridWoodProductsByPattern(svc, domain.PatternFishbone)
	require.Len(t, fishbone, 1)
	assert.Equal(t, "FLR-0102", fishbone[0].SKU)
}

func TestProductBySlugNotFound(t *testing.T) {
	t.Parallel()

	svc := embeddedService(t)
	p, ok := svc.ProductBySlug(domain.CollectionHybridWood, "nonexistent-slug")
	assert.False(t, ok)
	assert.Empty(t, p.SKU)

	_, ok = svc.ProductBySku(domain.CollectionHybridWood, "FLR-9999")
	assert.False(t, ok)
}

func TestLookupsAreCaseSensitive(t *testing.T) {
	t.Parallel()

	svc := embeddedService(t)
	_, ok := svc.ProductBySlug(domain.CollectionOak, "natural-oak-plank")
	require.True(t, ok)
	_, ok = svc.ProductBySlug(domain.CollectionOak, "Natural-Oak-Plank")
	assert.False(t, ok)
	_, ok = svc.ProductBySlug(domain.CollectionOak, " natural-oak-plank")
	assert.False(t, ok)
	_, ok = svc.FindProductBySku("flr-1001")
	assert.False(t, ok)
}

func TestUndeclaredPatternStillReturned(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, map[domain.CollectionType]catalog.ProductContainer{
		domain.CollectionHybridWood: {Products: []domain.Product{
			testProduct(domain.CollectionHybridWood, domain.PatternHerringbone, "FLR-3100", "hybrid-herringbone"),
		}},
	})

	got := svc.ProductsByCollectionAndPattern(domain.CollectionHybridWood, domain.PatternHerringbone)
	require.Len(t, got, 1)
	assert.Equal(t, "hybrid-herringbone", got[0].Slug)
}

func TestFindUsesCollectionOrder(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, map[domain.CollectionType]catalog.ProductContainer{
		domain.CollectionClickVinyl: {Products: []domain.Product{
			testProduct(domain.CollectionClickVinyl, domain.PatternTegelClick, "FLR-5000", "shared-slug"),
		}},
		domain.CollectionHybridWood: {Products: []domain.Product{
			testProduct(domain.CollectionHybridWood, domain.PatternPlank, "FLR-3000", "shared-slug"),
		}},
	})

	p, ok := svc.FindProductBySlug("shared-slug")
	require.True(t, ok)
	assert.Equal(t, domain.CollectionHybridWood, p.Collection)

	p, ok = svc.FindProductBySku("FLR-5000")
	require.True(t, ok)
	assert.Equal(t, domain.CollectionClickVinyl, p.Collection)

	all := svc.AllProducts()
	require.Len(t, all, 2)
	assert.Equal(t, domain.CollectionHybridWood, all[0].Collection)
	assert.Equal(t, domain.CollectionClickVinyl, all[1].Collection)
}

func TestCustomOrder(t *testing.T) {
	t.Parallel()

	store, err := catalog.NewStore(map[domain.CollectionType]catalog.ProductContainer{
		domain.CollectionOak: {Products: []domain.Product{
			testProduct(domain.CollectionOak, domain.PatternPlank, "FLR-0001", "shared"),
		}},
		domain.CollectionCustomOak: {Products: []domain.Product{
			testProduct(domain.CollectionCustomOak, domain.PatternPlank, "FLR-2000", "shared"),
		}},
	}, catalog.TreatmentContainer{})
	require.NoError(t, err)

	svc, err := NewCatalogService(CatalogServiceDeps{
		Catalog: store,
		Order:   []domain.CollectionType{domain.CollectionCustomOak, domain.CollectionOak},
	})
	require.NoError(t, err)

	p, ok := svc.FindProductBySlug("shared")
	require.True(t, ok)
	assert.Equal(t, domain.CollectionCustomOak, p.Collection)
}

func TestCatalogProperties(t *testing.T) {
	t.Parallel()

	svc := embeddedService(t)
	total := 0
	for _, c := range domain.Collections() {
		products := svc.ProductsByCollection(c)
		assert.Equal(t, len(products), svc.ProductCountByCollection(c), "count for %s", c)
		total += len(products)

		skus := map[string]bool{}
		slugs := map[string]bool{}
		for _, p := range products {
			assert.False(t, skus[p.SKU], "duplicate sku %s in %s", p.SKU, c)
			assert.False(t, slugs[p.Slug], "duplicate slug %s in %s", p.Slug, c)
			skus[p.SKU] = true
			slugs[p.Slug] = true
		}
		for _, pattern := range domain.Patterns() {
			assert.Equal(t,
				len(svc.ProductsByCollectionAndPattern(c, pattern)),
				svc.ProductCountByCollectionAndPattern(c, pattern))
		}
	}

	all := svc.AllProducts()
	assert.Len(t, all, total)
	assert.Equal(t, total, svc.TotalProductCount())
	for _, p := range all {
		_, validCollection := domain.ParseCollection(string(p.Collection))
		_, validPattern := domain.ParsePattern(string(p.Pattern))
		assert.True(t, validCollection)
		assert.True(t, validPattern)

		got, ok := svc.ProductBySlug(p.Collection, p.Slug)
		require.True(t, ok)
		assert.Equal(t, p, got)

		got, ok = svc.ProductBySku(p.Collection, p.SKU)
		require.True(t, ok)
		assert.Equal(t, p, got)
	}
}

func TestTreatmentLookups(t *testing.T) {
	t.Parallel()

	name := func(n string) map[domain.Locale]domain.TreatmentContent {
		return map[domain.Locale]domain.TreatmentContent{domain.LocaleEN: {Name: n}}
	}
	svc := newTestService(t, nil,
		domain.Treatment{Slug: "natural-oil", Category: domain.TreatmentNatural, Images: []string{"n.jpg"}, I18n: name("Natural")},
		domain.Treatment{Slug: "ebony", Category: domain.TreatmentBlack, Images: []string{"e.jpg"}, I18n: name("Ebony")},
		domain.Treatment{Slug: "raw", Category: domain.TreatmentNatural, Images: []string{"r.jpg"}, I18n: name("Raw")},
	)

	assert.Len(t, svc.AllTreatments(), 3)
	natural := svc.TreatmentsByCategory(domain.TreatmentNatural)
	require.Len(t, natural, 2)
	assert.Equal(t, "natural-oil", natural[0].Slug)
	assert.Equal(t, "raw", natural[1].Slug)
	assert.Equal(t, 2, svc.TreatmentCountByCategory(domain.TreatmentNatural))
	assert.Empty(t, svc.TreatmentsByCategory(domain.TreatmentGrey))

	tr, ok := svc.TreatmentBySlug("ebony")
	require.True(t, ok)
	assert.Equal(t, domain.TreatmentBlack, tr.Category)
	_, ok = svc.TreatmentBySlug("Ebony")
	assert.False(t, ok)
}
