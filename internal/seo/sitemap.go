package seo

import (
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/floorhouse/site/internal/domain"
	"github.com/floorhouse/site/internal/routing"
)

const (
	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNS   = "http://www.w3.org/1999/xhtml"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	XHTMLNS string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string      `xml:"loc"`
	LastMod    string      `xml:"lastmod,omitempty"`
	Alternates []xhtmlLink `xml:"xhtml:link"`
}

type xhtmlLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// Sitemap collects locale-less site paths and renders them once per locale.
type Sitemap struct {
	baseURL string
	locales []domain.Locale
	lastMod time.Time
	paths   []string
	seen    map[string]struct{}
}

// NewSitemap starts a sitemap for baseURL. A nil locales list uses
// domain.Locales().
func NewSitemap(baseURL string, locales []domain.Locale, lastMod time.Time) *Sitemap {
	if len(locales) == 0 {
		locales = domain.Locales()
	}
	return &Sitemap{
		baseURL: strings.TrimRight(baseURL, "/"),
		locales: append([]domain.Locale(nil), locales...),
		lastMod: lastMod,
		seen:    map[string]struct{}{},
	}
}

// Add registers a locale-less path such as "/oak/plank". Duplicates are ignored.
func (s *Sitemap) Add(path string) {
	path = strings.TrimRight(path, "/")
	if _, ok := s.seen[path]; ok {
		return
	}
	s.seen[path] = struct{}{}
	s.paths = append(s.paths, path)
}

// AddParams registers the locale-less form of each enumerated route.
func (s *Sitemap) AddParams(params []routing.Params) {
	for _, p := range params {
		s.Add(strings.TrimPrefix(p.Path(), "/"+string(p.Locale)))
	}
}

// Len reports the number of <url> entries the sitemap will render.
func (s *Sitemap) Len() int {
	return len(s.paths) * len(s.locales)
}

// WriteTo renders the sitemap XML.
func (s *Sitemap) WriteTo(w io.Writer) (int64, error) {
	set := urlSet{NS: sitemapNS, XHTMLNS: xhtmlNS}
	lastMod := ""
	if !s.lastMod.IsZero() {
		lastMod = s.lastMod.UTC().Format("2006-01-02")
	}
	for _, path := range s.paths {
		var links []xhtmlLink
		for _, alt := range Alternates(s.baseURL, path, s.locales) {
			links = append(links, xhtmlLink{Rel: "alternate", Hreflang: alt.Hreflang, Href: alt.Href})
		}
		for _, l := range s.locales {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        LocalizedURL(s.baseURL, l, path),
				LastMod:    lastMod,
				Alternates: links,
			})
		}
	}

	cw := &countingWriter{w: w}
	if _, err := io.WriteString(cw, xml.Header); err != nil {
		return cw.n, err
	}
	enc := xml.NewEncoder(cw)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return cw.n, err
	}
	if err := enc.Flush(); err != nil {
		return cw.n, err
	}
	_, err := io.WriteString(cw, "\n")
	return cw.n, err
}

// SiteSitemap adds the fixed pages, the enumerated catalog pages and the
// content pages in that order.
func SiteSitemap(baseURL string, enum *routing.Enumerator, contentSlugs []string, lastMod time.Time) *Sitemap {
	sm := NewSitemap(baseURL, enum.Locales(), lastMod)
	sm.Add("")
	for _, c := range domain.Collections() {
		sm.Add("/" + string(c))
	}
	sm.AddParams(enum.All())
	sm.AddParams(enum.ProductParams())
	sm.Add("/treatments")
	for _, slug := range contentSlugs {
		sm.Add("/pages/" + slug)
	}
	return sm
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
