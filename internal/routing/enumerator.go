package routing

import (
	"net/url"
	"strings"

	"github.com/floorhouse/site/internal/domain"
)

// Params is one set of route parameters for a statically generated page.
type Params struct {
	Locale     domain.Locale         `json:"locale"`
	Collection domain.CollectionType `json:"collection"`
	Pattern    domain.ProductPattern `json:"pattern"`
	Slug       string                `json:"slug,omitempty"`
}

// Path renders the site path for p.
func (p Params) Path() string {
	segments := []string{string(p.Locale), string(p.Collection), string(p.Pattern)}
	if p.Slug != "" {
		segments = append(segments, p.Slug)
	}
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(segments, "/")
}

// ProductLister is the catalog view needed to enumerate product pages.
type ProductLister interface {
	ProductsByCollection(collection domain.CollectionType) []domain.Product
}

// Enumerator produces route parameters for ahead-of-time page generation.
// Output order is locale, then declared pattern order, then catalog order.
type Enumerator struct {
	catalog ProductLister
	locales []domain.Locale
}

// NewEnumerator returns an Enumerator over catalog. A nil or empty locales
// list uses domain.Locales().
func NewEnumerator(catalog ProductLister, locales []domain.Locale) *Enumerator {
	if len(locales) == 0 {
		locales = domain.Locales()
	} else {
		locales = append([]domain.Locale(nil), locales...)
	}
	return &Enumerator{catalog: catalog, locales: locales}
}

// Locales returns the locales the enumerator expands over.
func (e *Enumerator) Locales() []domain.Locale {
	return append([]domain.Locale(nil), e.locales...)
}

// PatternParams emits one record per locale and declared pattern.
func (e *Enumerator) PatternParams(tpl PageTemplate) []Params {
	seen := make(map[string]struct{})
	var out []Params
	for _, locale := range e.locales {
		for _, pattern := range tpl.Patterns {
			out = appendUnique(out, seen, Params{Locale: locale, Collection: tpl.Collection, Pattern: pattern})
		}
	}
	return out
}

// SlugParams emits one record per locale and product whose pattern the
// template declares.
func (e *Enumerator) SlugParams(tpl PageTemplate) []Params {
	products := e.catalog.ProductsByCollection(tpl.Collection)
	seen := make(map[string]struct{})
	var out []Params
	for _, locale := range e.locales {
		for _, pattern := range tpl.Patterns {
			for _, p := range products {
				if p.Pattern != pattern {
					continue
				}
				out = appendUnique(out, seen, Params{
					Locale:     locale,
					Collection: tpl.Collection,
					Pattern:    pattern,
					Slug:       p.Slug,
				})
			}
		}
	}
	return out
}

// Params dispatches on the template level.
func (e *Enumerator) Params(tpl PageTemplate) []Params {
	switch tpl.Level {
	case PatternLevel:
		return e.PatternParams(tpl)
	case SlugLevel:
		return e.SlugParams(tpl)
	default:
		return nil
	}
}

// All enumerates every registered template in order.
func (e *Enumerator) All() []Params {
	seen := make(map[string]struct{})
	var out []Params
	for _, tpl := range Templates() {
		for _, p := range e.Params(tpl) {
			out = appendUnique(out, seen, p)
		}
	}
	return out
}

// ProductParams emits a product page record for every product in the
// catalog, per locale, regardless of which patterns templates declare.
func (e *Enumerator) ProductParams() []Params {
	seen := make(map[string]struct{})
	var out []Params
	for _, locale := range e.locales {
		for _, c := range domain.Collections() {
			for _, p := range e.catalog.ProductsByCollection(c) {
				out = appendUnique(out, seen, Params{Locale: locale, Collection: c, Pattern: p.Pattern, Slug: p.Slug})
			}
		}
	}
	return out
}

func appendUnique(out []Params, seen map[string]struct{}, p Params) []Params {
	key := p.Path()
	if _, ok := seen[key]; ok {
		return out
	}
	seen[key] = struct{}{}
	return append(out, p)
}
