package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile            = ".env"
	defaultPort               = "8080"
	defaultBaseURL            = "http://localhost:8080"
	defaultReadTimeout        = 10 * time.Second
	defaultWriteTimeout       = 30 * time.Second
	defaultIdleTimeout        = 120 * time.Second
	defaultShutdownTimeout    = 15 * time.Second
	defaultCatalogSource      = CatalogSourceEmbedded
	defaultAssetsBaseURL      = "https://storage.googleapis.com/floorhouse-assets"
	defaultSignedURLTTL       = 15 * time.Minute
	defaultAssistantTimeout   = 20 * time.Second
	defaultAssistantTopK      = 5
	defaultContactPerMinute   = 5
	defaultAssistantPerMinute = 20
	defaultRateLimitBurst     = 3
	defaultCacheMaxAge        = 5 * time.Minute
)

// Catalog sources understood by the loader.
const (
	CatalogSourceEmbedded  = "embedded"
	CatalogSourceDir       = "dir"
	CatalogSourceFirestore = "firestore"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	ProjectID  string
	Server     ServerConfig
	Catalog    CatalogConfig
	Firestore  FirestoreConfig
	Assets     AssetsConfig
	Contact    ContactConfig
	Assistant  AssistantConfig
	RateLimits RateLimitConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	BaseURL         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CacheMaxAge     time.Duration
}

// CatalogConfig selects where product data is read from at startup.
type CatalogConfig struct {
	Source string
	Dir    string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// AssetsConfig controls how image filenames become URLs.
type AssetsConfig struct {
	BaseURL      string
	Bucket       string
	Signed       bool
	SignedURLTTL time.Duration
}

// ContactConfig configures delivery of contact form submissions.
type ContactConfig struct {
	Topic string
}

// AssistantConfig configures the chat assistant backend.
type AssistantConfig struct {
	Endpoint  string
	AuthToken string
	Timeout   time.Duration
	TopK      int
}

// RateLimitConfig controls per-client throttling of write endpoints.
type RateLimitConfig struct {
	ContactPerMinute   int
	AssistantPerMinute int
	Burst              int
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

func defaultOptions(opts []Option) loaderOptions {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return options
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map. Values in the map take
// precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets the resolver used for secret:// and sm:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

// Lookup returns a single value using the same precedence as Load. It lets
// callers read bootstrap settings (such as the project used by the secret
// resolver) before the full configuration is available.
func Lookup(key string, opts ...Option) (string, error) {
	options := defaultOptions(opts)
	lookup, err := newLookup(options)
	if err != nil {
		return "", err
	}
	value, _ := lookup(key)
	return strings.TrimSpace(value), nil
}

// Load assembles the site configuration from defaults, the .env file, the
// process environment, explicit overrides and secret references.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := defaultOptions(opts)
	lookup, err := newLookup(options)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ProjectID: stringWithDefault(lookup, "SITE_GCP_PROJECT_ID", ""),
		Server: ServerConfig{
			Port:            stringWithDefault(lookup, "SITE_SERVER_PORT", defaultPort),
			BaseURL:         strings.TrimRight(stringWithDefault(lookup, "SITE_BASE_URL", defaultBaseURL), "/"),
			ReadTimeout:     durationWithDefault(lookup, "SITE_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    durationWithDefault(lookup, "SITE_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     durationWithDefault(lookup, "SITE_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: durationWithDefault(lookup, "SITE_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
			CacheMaxAge:     durationWithDefault(lookup, "SITE_CACHE_MAX_AGE", defaultCacheMaxAge),
		},
		Catalog: CatalogConfig{
			Source: strings.ToLower(stringWithDefault(lookup, "SITE_CATALOG_SOURCE", defaultCatalogSource)),
			Dir:    stringWithDefault(lookup, "SITE_CATALOG_DIR", ""),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "SITE_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost: stringWithDefault(lookup, "SITE_FIRESTORE_EMULATOR_HOST", ""),
		},
		Assets: AssetsConfig{
			BaseURL:      strings.TrimRight(stringWithDefault(lookup, "SITE_ASSETS_BASE_URL", defaultAssetsBaseURL), "/"),
			Bucket:       stringWithDefault(lookup, "SITE_ASSETS_BUCKET", ""),
			Signed:       boolWithDefault(lookup, "SITE_ASSETS_SIGNED", false),
			SignedURLTTL: durationWithDefault(lookup, "SITE_ASSETS_SIGNED_TTL", defaultSignedURLTTL),
		},
		Contact: ContactConfig{
			Topic: stringWithDefault(lookup, "SITE_CONTACT_TOPIC", ""),
		},
		Assistant: AssistantConfig{
			Endpoint:  stringWithDefault(lookup, "SITE_ASSISTANT_ENDPOINT", ""),
			AuthToken: stringWithDefault(lookup, "SITE_ASSISTANT_AUTH_TOKEN", ""),
			Timeout:   durationWithDefault(lookup, "SITE_ASSISTANT_TIMEOUT", defaultAssistantTimeout),
			TopK:      intWithDefault(lookup, "SITE_ASSISTANT_TOP_K", defaultAssistantTopK),
		},
		RateLimits: RateLimitConfig{
			ContactPerMinute:   intWithDefault(lookup, "SITE_RATELIMIT_CONTACT_PER_MIN", defaultContactPerMinute),
			AssistantPerMinute: intWithDefault(lookup, "SITE_RATELIMIT_ASSISTANT_PER_MIN", defaultAssistantPerMinute),
			Burst:              intWithDefault(lookup, "SITE_RATELIMIT_BURST", defaultRateLimitBurst),
		},
	}

	// Firestore project defaults to the site project when unspecified.
	if cfg.Firestore.ProjectID == "" {
		cfg.Firestore.ProjectID = cfg.ProjectID
	}

	resolved, err := resolveSecret(ctx, cfg.Assistant.AuthToken, options.secret)
	if err != nil {
		return Config{}, err
	}
	cfg.Assistant.AuthToken = resolved

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newLookup(options loaderOptions) (func(string) (string, bool), error) {
	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}
	return func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if !isSecretReference(value) {
		return value, nil
	}
	normalized := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: normalized, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, normalized)
	if err != nil {
		return "", &SecretError{Ref: normalized, Err: err}
	}
	return secret, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if !strings.HasPrefix(cfg.Server.BaseURL, "http://") && !strings.HasPrefix(cfg.Server.BaseURL, "https://") {
		missing = append(missing, "Server.BaseURL")
	}
	switch cfg.Catalog.Source {
	case CatalogSourceEmbedded:
	case CatalogSourceDir:
		if cfg.Catalog.Dir == "" {
			missing = append(missing, "Catalog.Dir")
		}
	case CatalogSourceFirestore:
		if cfg.Firestore.ProjectID == "" {
			missing = append(missing, "Firestore.ProjectID")
		}
	default:
		missing = append(missing, "Catalog.Source")
	}
	if cfg.Assets.Signed {
		if cfg.Assets.Bucket == "" {
			missing = append(missing, "Assets.Bucket")
		}
		if cfg.Assets.SignedURLTTL <= 0 {
			missing = append(missing, "Assets.SignedURLTTL")
		}
	}
	if cfg.Contact.Topic != "" && cfg.ProjectID == "" {
		missing = append(missing, "ProjectID")
	}
	if cfg.Assistant.TopK <= 0 {
		missing = append(missing, "Assistant.TopK")
	}
	if cfg.RateLimits.ContactPerMinute <= 0 {
		missing = append(missing, "RateLimits.ContactPerMinute")
	}
	if cfg.RateLimits.AssistantPerMinute <= 0 {
		missing = append(missing, "RateLimits.AssistantPerMinute")
	}
	if cfg.RateLimits.Burst <= 0 {
		missing = append(missing, "RateLimits.Burst")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func isSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://") || strings.HasPrefix(trimmed, "sm://")
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "sm://") {
		return "secret://" + strings.TrimPrefix(trimmed, "sm://")
	}
	return trimmed
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
