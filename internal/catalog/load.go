package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/floorhouse/site/internal/domain"
	"github.com/floorhouse/site/internal/platform/storage"
)

// ErrSourceMissing is returned when Load is called without a source.
var ErrSourceMissing = errors.New("catalog: source is required")

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	skuPattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*$`)
)

// ValidationError lists every problem found in the catalog data.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "catalog: invalid data"
	}
	return fmt.Sprintf("catalog: %d invalid record(s): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

type loadOptions struct {
	logger *zap.Logger
}

// LoadOption customises Load.
type LoadOption func(*loadOptions)

// WithLogger sets the logger used for non-fatal data warnings.
func WithLogger(logger *zap.Logger) LoadOption {
	return func(o *loadOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Load reads every collection and the treatments from src and builds the store.
// Any returned error means the data must not be served.
func Load(ctx context.Context, src Source, opts ...LoadOption) (*Store, error) {
	if src == nil {
		return nil, ErrSourceMissing
	}
	collections := domain.Collections()
	containers := make(map[domain.CollectionType]ProductContainer, len(collections))
	for _, collection := range collections {
		container, err := src.Collection(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("catalog: load %s: %w", collection, err)
		}
		containers[collection] = container
	}
	treatments, err := src.Treatments(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: load treatments: %w", err)
	}
	return NewStore(containers, treatments, opts...)
}

// NewStore validates the given containers and builds a Store from them.
func NewStore(containers map[domain.CollectionType]ProductContainer, treatments TreatmentContainer, opts ...LoadOption) (*Store, error) {
	options := loadOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	logger := options.logger

	var problems []string
	for key := range containers {
		if _, ok := domain.ParseCollection(string(key)); !ok {
			problems = append(problems, fmt.Sprintf("unknown collection container %q", key))
		}
	}

	collections := domain.Collections()
	store := &Store{
		products:       make(map[domain.CollectionType][]domain.Product, len(collections)),
		metadata:       make(map[domain.CollectionType]Metadata, len(collections)),
		treatmentIndex: make(map[string]int, len(treatments.Treatments)),
		treatmentMeta:  treatments.Metadata,
	}

	for _, collection := range collections {
		container := containers[collection]
		problems = append(problems, validateProducts(collection, container.Products, logger)...)
		if container.Metadata.TotalCount != 0 && container.Metadata.TotalCount != len(container.Products) {
			logger.Warn("catalog metadata count differs from products",
				zap.String("collection", string(collection)),
				zap.Int("metadata_total", container.Metadata.TotalCount),
				zap.Int("products", len(container.Products)),
			)
		}
		store.products[collection] = cloneSlice(container.Products)
		store.metadata[collection] = container.Metadata
	}

	problems = append(problems, validateTreatments(treatments.Treatments)...)
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	store.treatments = cloneSlice(treatments.Treatments)
	for i, t := range store.treatments {
		store.treatmentIndex[t.Slug] = i
	}

	logger.Info("catalog loaded",
		zap.Int("products", totalProducts(store)),
		zap.Int("treatments", len(store.treatments)),
	)
	return store, nil
}

func validateProducts(collection domain.CollectionType, products []domain.Product, logger *zap.Logger) []string {
	var problems []string
	skus := make(map[string]struct{}, len(products))
	slugs := make(map[string]struct{}, len(products))

	for i, p := range products {
		ref := fmt.Sprintf("%s[%d] sku=%q", collection, i, p.SKU)
		add := func(format string, args ...any) {
			problems = append(problems, ref+": "+fmt.Sprintf(format, args...))
		}

		if p.Collection != collection {
			add("collection %q does not match container", p.Collection)
		}
		if !skuPattern.MatchString(p.SKU) {
			add("invalid sku")
		} else if _, dup := skus[p.SKU]; dup {
			add("duplicate sku")
		}
		skus[p.SKU] = struct{}{}

		if !slugPattern.MatchString(p.Slug) {
			add("invalid slug %q", p.Slug)
		} else if _, dup := slugs[p.Slug]; dup {
			add("duplicate slug %q", p.Slug)
		}
		slugs[p.Slug] = struct{}{}

		if _, ok := domain.ParsePattern(string(p.Pattern)); !ok {
			add("unknown pattern %q", p.Pattern)
		} else if !domain.PatternAllowed(collection, p.Pattern) {
			logger.Warn("product pattern not declared for collection",
				zap.String("collection", string(collection)),
				zap.String("pattern", string(p.Pattern)),
				zap.String("sku", p.SKU),
			)
		}
		if p.InstallationSystem != "" {
			if _, ok := domain.ParseInstallationSystem(string(p.InstallationSystem)); !ok {
				add("unknown installation system %q", p.InstallationSystem)
			}
		}
		if p.Price.IsNegative() {
			add("negative price %s", p.Price.String())
		}
		if len(p.Images) == 0 {
			add("no images")
		} else if _, _, err := p.DisplayImagePair(); err != nil {
			add("%v", err)
		}
		for j, name := range p.Images {
			if err := storage.ValidateFileName(name); err != nil {
				add("images[%d] %q: %v", j, name, err)
			}
		}
		for locale := range p.I18n {
			if _, ok := domain.ParseLocale(string(locale)); !ok {
				add("unknown locale %q", locale)
			}
		}
		if content, ok := p.I18n[domain.DefaultLocale]; !ok || strings.TrimSpace(content.Name) == "" {
			add("missing %s name", domain.DefaultLocale)
		}
	}
	return problems
}

func validateTreatments(treatments []domain.Treatment) []string {
	var problems []string
	slugs := make(map[string]struct{}, len(treatments))
	for i, t := range treatments {
		ref := fmt.Sprintf("treatments[%d] slug=%q", i, t.Slug)
		if !slugPattern.MatchString(t.Slug) {
			problems = append(problems, ref+": invalid slug")
		} else if _, dup := slugs[t.Slug]; dup {
			problems = append(problems, ref+": duplicate slug")
		}
		slugs[t.Slug] = struct{}{}
		if _, ok := domain.ParseTreatmentCategory(string(t.Category)); !ok {
			problems = append(problems, fmt.Sprintf("%s: unknown category %q", ref, t.Category))
		}
		if len(t.Images) == 0 {
			problems = append(problems, ref+": no images")
		}
		for j, name := range t.Images {
			if err := storage.ValidateFileName(name); err != nil {
				problems = append(problems, fmt.Sprintf("%s: images[%d] %q: %v", ref, j, name, err))
			}
		}
		if content, ok := t.I18n[domain.DefaultLocale]; !ok || strings.TrimSpace(content.Name) == "" {
			problems = append(problems, fmt.Sprintf("%s: missing %s name", ref, domain.DefaultLocale))
		}
	}
	return problems
}

func totalProducts(s *Store) int {
	total := 0
	for _, products := range s.products {
		total += len(products)
	}
	return total
}
