package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/floorhouse/site/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

type routerConfig struct {
	basePath    string
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers

	public       RouteRegistrar
	pages        RouteRegistrar
	sitemap      http.HandlerFunc
	notFoundPage http.HandlerFunc
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const (
	defaultAPIPrefix  = "/api/v1"
	defaultTimeout    = 60 * time.Second
	errorNotFoundCode = "route_not_found"
)

// NewRouter constructs the chi router with shared middleware, the public API
// group and the locale-prefixed page routes.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		basePath: defaultAPIPrefix,
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Timeout(defaultTimeout),
		},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()

	if cfg.health == nil {
		cfg.health = NewHealthHandlers()
	}

	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if cfg.notFoundPage != nil && !isAPIPath(req.URL.Path, cfg.basePath) {
			cfg.notFoundPage(w, req)
			return
		}
		httpx.WriteError(req.Context(), w, httpx.NewError(errorNotFoundCode, fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)
	if cfg.sitemap != nil {
		r.Get("/sitemap.xml", cfg.sitemap)
	}

	r.Route(cfg.basePath, func(api chi.Router) {
		api.Route("/public", func(group chi.Router) {
			if cfg.public != nil {
				cfg.public(group)
				return
			}
			registerNotImplemented(group, "public")
		})
	})

	if cfg.pages != nil {
		cfg.pages(r)
	}

	return r
}

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithHealthHandlers overrides the handlers used for /healthz and /readyz endpoints.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithPublicRoutes configures the registrar responsible for public API endpoints.
func WithPublicRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.public = reg
	}
}

// WithPageRoutes configures the registrar for server-rendered pages.
func WithPageRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.pages = reg
	}
}

// WithSitemap serves /sitemap.xml.
func WithSitemap(h http.HandlerFunc) Option {
	return func(cfg *routerConfig) {
		cfg.sitemap = h
	}
}

// WithNotFoundPage renders unmatched non-API paths with h instead of the
// JSON error envelope.
func WithNotFoundPage(h http.HandlerFunc) Option {
	return func(cfg *routerConfig) {
		cfg.notFoundPage = h
	}
}

func isAPIPath(path, basePath string) bool {
	return path == basePath || strings.HasPrefix(path, basePath+"/")
}

// CombineRegistrars runs each non-nil registrar against the same router.
func CombineRegistrars(regs ...RouteRegistrar) RouteRegistrar {
	return func(r chi.Router) {
		for _, reg := range regs {
			if reg != nil {
				reg(r)
			}
		}
	}
}

func registerNotImplemented(r chi.Router, name string) {
	handler := func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("not_implemented", fmt.Sprintf("%s routes not implemented", name), http.StatusNotImplemented))
	}
	r.HandleFunc("/*", handler)
	r.HandleFunc("/", handler)
}
