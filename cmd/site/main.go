package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	cloudstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/floorhouse/site/internal/catalog"
	"github.com/floorhouse/site/internal/cms"
	"github.com/floorhouse/site/internal/handlers"
	"github.com/floorhouse/site/internal/i18n"
	"github.com/floorhouse/site/internal/platform/assistant"
	"github.com/floorhouse/site/internal/platform/config"
	pfirestore "github.com/floorhouse/site/internal/platform/firestore"
	"github.com/floorhouse/site/internal/platform/jobs"
	"github.com/floorhouse/site/internal/platform/observability"
	"github.com/floorhouse/site/internal/platform/requestctx"
	"github.com/floorhouse/site/internal/platform/secrets"
	platformstorage "github.com/floorhouse/site/internal/platform/storage"
	"github.com/floorhouse/site/internal/repositories"
	"github.com/floorhouse/site/internal/routing"
	"github.com/floorhouse/site/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("site")
	ctx = requestctx.WithLogger(ctx, logger)

	projectID, err := config.Lookup("SITE_GCP_PROJECT_ID")
	if err != nil {
		logger.Fatal("failed to read environment values", zap.Error(err))
	}

	var loadOpts []config.Option
	if projectID != "" {
		resolver, err := secrets.NewResolver(ctx, projectID, secrets.WithLogger(logger.Named("secrets")))
		if err != nil {
			logger.Fatal("failed to initialise secret resolver", zap.Error(err))
		}
		defer func() {
			if err := resolver.Close(); err != nil {
				logger.Warn("secret resolver close error", zap.Error(err))
			}
		}()
		loadOpts = append(loadOpts, config.WithSecretResolver(resolver))
	}

	cfg, err := config.Load(ctx, loadOpts...)
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Fatal("invalid configuration", zap.Strings("fields", invalid.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	store, err := loadCatalog(ctx, logger.Named("catalog"), cfg)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsUnavailable() {
			logger.Fatal("catalog backend unavailable", zap.Error(err))
		}
		logger.Fatal("failed to load catalog", zap.String("source", cfg.Catalog.Source), zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{Catalog: store})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	publisher, closePublisher, err := newContactPublisher(ctx, logger.Named("contact"), cfg)
	if err != nil {
		logger.Fatal("failed to initialise contact publisher", zap.Error(err))
	}
	defer closePublisher()

	contactService, err := services.NewContactService(services.ContactServiceDeps{
		Publisher: publisher,
		Catalog:   catalogService,
		Logger:    logger.Named("contact"),
	})
	if err != nil {
		logger.Fatal("failed to initialise contact service", zap.Error(err))
	}

	assistantDeps := services.AssistantServiceDeps{
		Catalog: catalogService,
		TopK:    cfg.Assistant.TopK,
		Logger:  logger.Named("assistant"),
	}
	if cfg.Assistant.Endpoint != "" {
		client, err := assistant.NewClient(cfg.Assistant.Endpoint,
			assistant.WithToken(cfg.Assistant.AuthToken),
			assistant.WithTimeout(cfg.Assistant.Timeout),
		)
		if err != nil {
			logger.Fatal("failed to initialise assistant client", zap.Error(err))
		}
		assistantDeps.Answerer = client
	} else {
		logger.Info("assistant endpoint not configured; answering with retrieval only")
	}
	assistantService, err := services.NewAssistantService(assistantDeps)
	if err != nil {
		logger.Fatal("failed to initialise assistant service", zap.Error(err))
	}

	images, closeImages, err := newImageResolver(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialise image resolver", zap.Error(err))
	}
	defer closeImages()

	bundle, err := i18n.Default()
	if err != nil {
		logger.Fatal("failed to load translations", zap.Error(err))
	}
	content := cms.Default()
	contentSlugs, err := content.Slugs()
	if err != nil {
		logger.Fatal("failed to list content pages", zap.Error(err))
	}
	enumerator := routing.NewEnumerator(catalogService, bundle.Locales())

	pages, err := handlers.NewPageHandlers(bundle,
		handlers.WithPageCatalog(catalogService),
		handlers.WithPageContent(content),
		handlers.WithPageImages(images),
		handlers.WithPageBaseURL(cfg.Server.BaseURL),
		handlers.WithPageMaxAge(cfg.Server.CacheMaxAge),
	)
	if err != nil {
		logger.Fatal("failed to initialise page handlers", zap.Error(err))
	}
	catalogHandlers := handlers.NewCatalogHandlers(
		handlers.WithCatalogService(catalogService),
		handlers.WithCatalogImages(images),
		handlers.WithCatalogEnumerator(enumerator),
		handlers.WithCatalogMaxAge(cfg.Server.CacheMaxAge),
	)
	formHandlers := handlers.NewFormHandlers(
		handlers.WithContactService(contactService),
		handlers.WithAssistantService(assistantService),
		handlers.WithFormRateLimits(cfg.RateLimits.ContactPerMinute, cfg.RateLimits.AssistantPerMinute, cfg.RateLimits.Burst),
	)
	sitemap := handlers.NewSitemapHandler(enumerator, cfg.Server.BaseURL, contentSlugs, startedAt, cfg.Server.CacheMaxAge)
	health := handlers.NewHealthHandlers(
		handlers.WithHealthCatalog(catalogService),
		handlers.WithHealthTreatmentMetadata(store),
		handlers.WithHealthClock(time.Now),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger.Named("http")),
			observability.TraceMiddleware(cfg.ProjectID),
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(),
		),
		handlers.WithHealthHandlers(health),
		handlers.WithPublicRoutes(handlers.CombineRegistrars(catalogHandlers.Routes, formHandlers.Routes)),
		handlers.WithPageRoutes(pages.Routes),
		handlers.WithSitemap(sitemap.ServeHTTP),
		handlers.WithNotFoundPage(pages.NotFound),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("server starting",
			zap.String("catalogSource", cfg.Catalog.Source),
			zap.Int("products", catalogService.TotalProductCount()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// The catalog is immutable once loaded, so a Firestore client is only held
// for the duration of the read.
func loadCatalog(ctx context.Context, logger *zap.Logger, cfg config.Config) (*catalog.Store, error) {
	var src catalog.Source
	switch cfg.Catalog.Source {
	case config.CatalogSourceDir:
		src = catalog.DirSource(cfg.Catalog.Dir)
	case config.CatalogSourceFirestore:
		client, err := pfirestore.NewClient(ctx, cfg.Firestore)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("firestore close error", zap.Error(err))
			}
		}()
		src = catalog.NewFirestoreSource(client)
	default:
		src = catalog.EmbeddedSource()
	}
	return catalog.Load(ctx, src, catalog.WithLogger(logger))
}

func newContactPublisher(ctx context.Context, logger *zap.Logger, cfg config.Config) (services.ContactPublisher, func(), error) {
	if cfg.Contact.Topic == "" {
		logger.Info("contact topic not configured; submissions are logged only")
		return jobs.NewLogContactPublisher(logger), func() {}, nil
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("pubsub: create client: %w", err)
	}
	topic := client.Topic(cfg.Contact.Topic)
	publisher, err := jobs.NewPubSubContactPublisher(topic)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return publisher, func() {
		topic.Stop()
		if err := client.Close(); err != nil {
			logger.Warn("pubsub close error", zap.Error(err))
		}
	}, nil
}

func newImageResolver(ctx context.Context, cfg config.Config) (*platformstorage.ImageResolver, func(), error) {
	if !cfg.Assets.Signed {
		resolver, err := platformstorage.NewImageResolver(cfg.Assets.BaseURL)
		return resolver, func() {}, err
	}
	client, err := cloudstorage.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: create client: %w", err)
	}
	resolver, err := platformstorage.NewImageResolver(cfg.Assets.BaseURL,
		platformstorage.WithSigner(client.Bucket(cfg.Assets.Bucket), cfg.Assets.SignedURLTTL),
	)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return resolver, func() { _ = client.Close() }, nil
}
