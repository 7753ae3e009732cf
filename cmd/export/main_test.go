package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/floorhouse/site/internal/catalog"
	"github.com/floorhouse/site/internal/routing"
)

var fixedClock = func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) }

func TestRunWritesArtifacts(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	err := run(context.Background(), []string{"-out", out, "-base-url", "https://floorhouse.example"}, zap.NewNop(), fixedClock)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(out, staticParamsFile))
	require.NoError(t, err)
	var params staticParams
	require.NoError(t, json.Unmarshal(raw, &params))

	assert.Equal(t, []string{"en", "bg"}, params.Locales)
	assert.True(t, params.GeneratedAt.Equal(fixedClock()))
	require.Len(t, params.Templates, len(routing.Templates()))

	var oakProduct *templateParams
	for i := range params.Templates {
		if params.Templates[i].Name == "oak-product" {
			oakProduct = &params.Templates[i]
		}
	}
	require.NotNil(t, oakProduct)
	assert.Equal(t, "slug", oakProduct.Level)
	assert.Contains(t, oakProduct.Params, routing.Params{Locale: "en", Collection: "oak", Pattern: "plank", Slug: "natural-oak-plank"})
	assert.Contains(t, oakProduct.Params, routing.Params{Locale: "bg", Collection: "oak", Pattern: "herringbone", Slug: "grey-oak-herringbone"})
	assert.Len(t, params.Products, 2*20)

	sitemap, err := os.ReadFile(filepath.Join(out, sitemapFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(sitemap), "<?xml"))
	assert.Contains(t, string(sitemap), "<loc>https://floorhouse.example/en/oak/plank/natural-oak-plank</loc>")
	assert.Contains(t, string(sitemap), "<loc>https://floorhouse.example/bg/pages/about</loc>")
}

func TestRunListsUndeclaredPatternProducts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := `{
  "metadata": {"totalCount": 2},
  "products": [
    {"sku": "FLR-2001", "slug": "plain-oak-plank", "collection": "oak", "pattern": "plank", "price": 10, "images": ["a.jpg"], "i18n": {"en": {"name": "Plain"}}},
    {"sku": "FLR-2002", "slug": "oak-tegel", "collection": "oak", "pattern": "tegel-click", "price": 12, "images": ["b.jpg"], "i18n": {"en": {"name": "Tegel"}}}
  ]
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oak.json"), []byte(data), 0o644))

	out := t.TempDir()
	require.NoError(t, run(context.Background(), []string{"-out", out, "-catalog-dir", dir}, zap.NewNop(), fixedClock))

	raw, err := os.ReadFile(filepath.Join(out, staticParamsFile))
	require.NoError(t, err)
	var params staticParams
	require.NoError(t, json.Unmarshal(raw, &params))

	undeclared := routing.Params{Locale: "en", Collection: "oak", Pattern: "tegel-click", Slug: "oak-tegel"}
	for _, tpl := range params.Templates {
		assert.NotContains(t, tpl.Params, undeclared, tpl.Name)
	}
	assert.Contains(t, params.Products, undeclared)
	assert.Contains(t, params.Products, routing.Params{Locale: "bg", Collection: "oak", Pattern: "plank", Slug: "plain-oak-plank"})
	assert.Len(t, params.Products, 4)
}

func TestRunFailsOnInvalidCatalog(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := `{
  "metadata": {"totalCount": 2},
  "products": [
    {"sku": "FLR-1", "slug": "one", "collection": "oak", "pattern": "plank", "price": 10, "images": ["a.jpg"], "i18n": {"en": {"name": "One"}}},
    {"sku": "FLR-1", "slug": "two", "collection": "oak", "pattern": "plank", "price": 10, "images": ["b.jpg"], "i18n": {"en": {"name": "Two"}}}
  ]
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oak.json"), []byte(data), 0o644))

	out := t.TempDir()
	err := run(context.Background(), []string{"-out", out, "-catalog-dir", dir}, zap.NewNop(), fixedClock)
	require.Error(t, err)

	var invalid *catalog.ValidationError
	require.True(t, errors.As(err, &invalid), "expected validation error, got %v", err)
	assert.NotEmpty(t, invalid.Problems)

	_, statErr := os.Stat(filepath.Join(out, staticParamsFile))
	assert.True(t, os.IsNotExist(statErr))
}

func TestParseFlagsRejectsUnknownFlag(t *testing.T) {
	t.Parallel()

	_, err := parseFlags([]string{"-bogus"}, &strings.Builder{})
	require.Error(t, err)
}
