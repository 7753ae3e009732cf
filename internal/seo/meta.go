package seo

import (
	"strings"

	"github.com/floorhouse/site/internal/domain"
)

// Alternate is one hreflang link.
type Alternate struct {
	Hreflang string
	Href     string
}

// Meta holds head metadata for a rendered page.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Alternates  []Alternate
	JSONLD      []string
}

// LocalizedURL joins baseURL, the locale and a locale-less path.
func LocalizedURL(baseURL string, locale domain.Locale, path string) string {
	base := strings.TrimRight(baseURL, "/")
	path = strings.TrimRight(path, "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + "/" + string(locale) + path
}

// Alternates returns hreflang links for path in every locale plus x-default,
// which points at the default locale.
func Alternates(baseURL, path string, locales []domain.Locale) []Alternate {
	out := make([]Alternate, 0, len(locales)+1)
	for _, l := range locales {
		out = append(out, Alternate{Hreflang: string(l), Href: LocalizedURL(baseURL, l, path)})
	}
	out = append(out, Alternate{Hreflang: "x-default", Href: LocalizedURL(baseURL, domain.DefaultLocale, path)})
	return out
}
