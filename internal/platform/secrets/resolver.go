package secrets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultVersion  = "latest"
	metricNamespace = "github.com/floorhouse/site/internal/platform/secrets"
	sourceRemote    = "secret_manager"
)

// ErrNotFound is returned when the referenced secret or version does not exist.
var ErrNotFound = errors.New("secrets: secret not found")

type secretManagerClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// Resolver resolves secret:// references against Secret Manager and caches
// the results for the lifetime of the process.
type Resolver struct {
	client     secretManagerClient
	ownsClient bool
	projectID  string
	logger     *zap.Logger

	latency          metric.Float64Histogram
	latencyEnabled   bool
	cacheHits        metric.Int64Counter
	cacheHitsEnabled bool

	mu    sync.RWMutex
	cache map[string]string
}

type resolverConfig struct {
	client     secretManagerClient
	clientOpts []option.ClientOption
	logger     *zap.Logger
	meter      metric.Meter
}

// Option customises Resolver construction.
type Option func(*resolverConfig)

// WithLogger sets the logger used for diagnostic output.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *resolverConfig) {
		cfg.logger = logger
	}
}

// WithClientOptions passes options to the Secret Manager client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(cfg *resolverConfig) {
		cfg.clientOpts = append(cfg.clientOpts, opts...)
	}
}

// WithMeter injects a custom OpenTelemetry meter.
func WithMeter(m metric.Meter) Option {
	return func(cfg *resolverConfig) {
		cfg.meter = m
	}
}

func withClient(client secretManagerClient) Option {
	return func(cfg *resolverConfig) {
		cfg.client = client
	}
}

// NewResolver builds a Resolver for projectID. References may override the
// project with a `project` query parameter.
func NewResolver(ctx context.Context, projectID string, opts ...Option) (*Resolver, error) {
	cfg := resolverConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	meter := cfg.meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(metricNamespace)
	}

	latency, latencyErr := meter.Float64Histogram(
		"secrets.fetch.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds for Secret Manager lookups"),
	)
	if latencyErr != nil {
		cfg.logger.Warn("secrets: unable to register latency metric", zap.Error(latencyErr))
	}
	cacheHits, cacheErr := meter.Int64Counter(
		"secrets.fetch.cache_hits",
		metric.WithDescription("Count of cache hits when resolving secrets"),
	)
	if cacheErr != nil {
		cfg.logger.Warn("secrets: unable to register cache hit metric", zap.Error(cacheErr))
	}

	r := &Resolver{
		client:           cfg.client,
		projectID:        strings.TrimSpace(projectID),
		logger:           cfg.logger,
		latency:          latency,
		latencyEnabled:   latencyErr == nil,
		cacheHits:        cacheHits,
		cacheHitsEnabled: cacheErr == nil,
		cache:            make(map[string]string),
	}
	if r.client == nil {
		client, err := secretmanager.NewClient(ctx, cfg.clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("secrets: create client: %w", err)
		}
		r.client = client
		r.ownsClient = true
	}
	return r, nil
}

// Close releases the Secret Manager client when owned by the resolver.
func (r *Resolver) Close() error {
	if r == nil || !r.ownsClient || r.client == nil {
		return nil
	}
	return r.client.Close()
}

// ResolveSecret implements config.SecretResolver.
func (r *Resolver) ResolveSecret(ctx context.Context, ref string) (string, error) {
	resource, err := r.resourceName(ref)
	if err != nil {
		return "", err
	}

	r.mu.RLock()
	value, ok := r.cache[resource]
	r.mu.RUnlock()
	if ok {
		r.recordCacheHit(ctx, resource)
		return value, nil
	}

	start := time.Now()
	resp, err := r.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: resource})
	r.recordLatency(ctx, time.Since(start), sourceRemote, err)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", fmt.Errorf("%w: %s", ErrNotFound, resource)
		}
		return "", fmt.Errorf("secrets: access %s: %w", resource, err)
	}
	if resp.GetPayload() == nil {
		return "", fmt.Errorf("secrets: empty payload for %s", resource)
	}
	value = string(resp.GetPayload().GetData())

	r.mu.Lock()
	r.cache[resource] = value
	r.mu.Unlock()

	r.logger.Debug("secret resolved", zap.String("resource", resource))
	return value, nil
}

func (r *Resolver) recordLatency(ctx context.Context, d time.Duration, source string, err error) {
	if !r.latencyEnabled {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("source", source),
	}
	if err != nil {
		attrs = append(attrs, attribute.String("error", status.Code(err).String()))
	}
	r.latency.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributes(attrs...))
}

func (r *Resolver) recordCacheHit(ctx context.Context, resource string) {
	if !r.cacheHitsEnabled {
		return
	}
	r.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("secret", resource)))
}

// resourceName maps secret://name[?version=v&project=p] onto a Secret Manager
// version resource. Path separators in the name become underscores because
// secret IDs are flat.
func (r *Resolver) resourceName(ref string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("secrets: invalid reference %q: %w", ref, err)
	}
	if u.Scheme != "secret" {
		return "", fmt.Errorf("secrets: unsupported scheme %q", u.Scheme)
	}
	name := strings.Trim(u.Host+u.Path, "/")
	if name == "" {
		return "", fmt.Errorf("secrets: missing secret name in %q", ref)
	}
	name = strings.ReplaceAll(name, "/", "_")

	query := u.Query()
	project := strings.TrimSpace(query.Get("project"))
	if project == "" {
		project = r.projectID
	}
	if project == "" {
		return "", fmt.Errorf("secrets: no project for %q", ref)
	}
	version := strings.TrimSpace(query.Get("version"))
	if version == "" {
		version = defaultVersion
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", project, name, version), nil
}
