package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/floorhouse/site/internal/platform/httpx"
)

// writeCachedJSON writes payload with a weak ETag and public Cache-Control,
// answering 304 when the client already holds the representation.
func writeCachedJSON(w http.ResponseWriter, r *http.Request, payload any, maxAge time.Duration) {
	body, err := json.Marshal(payload)
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.ErrInternal)
		return
	}
	etag := weakETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", cacheControl(maxAge))
	if matchesETag(r, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

func weakETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `W/"` + hex.EncodeToString(sum[:12]) + `"`
}

func cacheControl(maxAge time.Duration) string {
	if maxAge <= 0 {
		return "no-cache"
	}
	return fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
}

func matchesETag(r *http.Request, etag string) bool {
	if etag == "" || r == nil {
		return false
	}
	raw := r.Header.Get("If-None-Match")
	if strings.TrimSpace(raw) == "" {
		return false
	}
	for _, candidate := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(candidate)
		if trimmed == "*" || trimmed == etag || "W/"+trimmed == etag {
			return true
		}
	}
	return false
}
