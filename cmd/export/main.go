// Command export validates the catalog and writes the artifacts used for
// ahead-of-time page generation: the static route parameters per page
// template and the sitemap. It can also publish the validated catalog to
// Firestore so the site can serve it with SITE_CATALOG_SOURCE=firestore.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/floorhouse/site/internal/catalog"
	"github.com/floorhouse/site/internal/cms"
	"github.com/floorhouse/site/internal/i18n"
	"github.com/floorhouse/site/internal/platform/config"
	pfirestore "github.com/floorhouse/site/internal/platform/firestore"
	"github.com/floorhouse/site/internal/platform/observability"
	"github.com/floorhouse/site/internal/routing"
	"github.com/floorhouse/site/internal/seo"
	"github.com/floorhouse/site/internal/services"
)

const (
	staticParamsFile = "static-params.json"
	sitemapFile      = "sitemap.xml"
)

type options struct {
	outDir         string
	baseURL        string
	catalogDir     string
	publishProject string
}

type templateParams struct {
	Name       string           `json:"name"`
	Collection string           `json:"collection"`
	Level      string           `json:"level"`
	Params     []routing.Params `json:"params"`
}

type staticParams struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Locales     []string         `json:"locales"`
	Templates   []templateParams `json:"templates"`
	// Products holds a page record for every loaded product, including those
	// whose pattern no template declares.
	Products []routing.Params `json:"products"`
}

func main() {
	logger, err := observability.NewLogger("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(context.Background(), os.Args[1:], logger.Named("export"), time.Now); err != nil {
		var invalid *catalog.ValidationError
		if errors.As(err, &invalid) {
			logger.Error("catalog validation failed", zap.Strings("problems", invalid.Problems))
		} else {
			logger.Error("export failed", zap.Error(err))
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.outDir, "out", "dist", "directory to write artifacts into")
	fs.StringVar(&opts.baseURL, "base-url", "https://www.floorhouse.bg", "absolute site origin used in the sitemap")
	fs.StringVar(&opts.catalogDir, "catalog-dir", "", "read catalog JSON from this directory instead of the embedded data")
	fs.StringVar(&opts.publishProject, "publish-project", "", "publish the validated catalog to Firestore in this project")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.outDir == "" {
		return options{}, errors.New("export: -out is required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, logger *zap.Logger, clock func() time.Time) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	src := catalog.EmbeddedSource()
	if opts.catalogDir != "" {
		src = catalog.DirSource(opts.catalogDir)
	}
	store, err := catalog.Load(ctx, src, catalog.WithLogger(logger))
	if err != nil {
		return err
	}
	svc, err := services.NewCatalogService(services.CatalogServiceDeps{Catalog: store})
	if err != nil {
		return err
	}

	bundle, err := i18n.Default()
	if err != nil {
		return err
	}
	enum := routing.NewEnumerator(svc, bundle.Locales())
	now := clock().UTC()

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("export: create %s: %w", opts.outDir, err)
	}
	if err := writeStaticParams(filepath.Join(opts.outDir, staticParamsFile), enum, now); err != nil {
		return err
	}

	slugs, err := cms.Default().Slugs()
	if err != nil {
		return err
	}
	sitemap := seo.SiteSitemap(opts.baseURL, enum, slugs, now)
	if err := writeFile(filepath.Join(opts.outDir, sitemapFile), sitemap); err != nil {
		return err
	}
	logger.Info("export written",
		zap.String("out", opts.outDir),
		zap.Int("products", svc.TotalProductCount()),
		zap.Int("sitemapEntries", sitemap.Len()),
	)

	if opts.publishProject != "" {
		client, err := pfirestore.NewClient(ctx, config.FirestoreConfig{ProjectID: opts.publishProject})
		if err != nil {
			return err
		}
		defer client.Close()
		if err := catalog.NewFirestoreSource(client).Publish(ctx, store); err != nil {
			return err
		}
		logger.Info("catalog published", zap.String("project", opts.publishProject))
	}
	return nil
}

func buildStaticParams(enum *routing.Enumerator, now time.Time) staticParams {
	out := staticParams{GeneratedAt: now}
	for _, locale := range enum.Locales() {
		out.Locales = append(out.Locales, string(locale))
	}
	for _, tpl := range routing.Templates() {
		out.Templates = append(out.Templates, templateParams{
			Name:       tpl.Name,
			Collection: string(tpl.Collection),
			Level:      tpl.Level.String(),
			Params:     enum.Params(tpl),
		})
	}
	out.Products = enum.ProductParams()
	return out
}

func writeStaticParams(path string, enum *routing.Enumerator, now time.Time) error {
	data, err := json.MarshalIndent(buildStaticParams(enum, now), "", "  ")
	if err != nil {
		return fmt.Errorf("export: encode static params: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

func writeFile(path string, w io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	if _, err := w.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return f.Close()
}
