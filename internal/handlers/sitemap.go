package handlers

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/floorhouse/site/internal/platform/requestctx"
	"github.com/floorhouse/site/internal/routing"
	"github.com/floorhouse/site/internal/seo"
)

// SitemapHandler renders /sitemap.xml once and serves the cached bytes.
// The catalog is immutable for the life of the process.
type SitemapHandler struct {
	enum         *routing.Enumerator
	baseURL      string
	contentSlugs []string
	lastMod      time.Time
	maxAge       time.Duration

	once sync.Once
	body []byte
	err  error
}

// NewSitemapHandler constructs the sitemap endpoint.
func NewSitemapHandler(enum *routing.Enumerator, baseURL string, contentSlugs []string, lastMod time.Time, maxAge time.Duration) *SitemapHandler {
	return &SitemapHandler{
		enum:         enum,
		baseURL:      baseURL,
		contentSlugs: append([]string(nil), contentSlugs...),
		lastMod:      lastMod,
		maxAge:       maxAge,
	}
}

// ServeHTTP writes the sitemap XML.
func (h *SitemapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		var buf bytes.Buffer
		_, h.err = seo.SiteSitemap(h.baseURL, h.enum, h.contentSlugs, h.lastMod).WriteTo(&buf)
		h.body = buf.Bytes()
	})
	if h.err != nil {
		requestctx.Logger(r.Context()).Error("sitemap render failed", zap.Error(h.err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	etag := weakETag(h.body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", cacheControl(h.maxAge))
	if matchesETag(r, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(h.body)
}
