package storage

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/floorhouse/site/internal/domain"
)

const defaultSignedURLExpiry = 15 * time.Minute

var errNoBaseURL = errors.New("storage: public base URL is required")

// URLSigner signs object URLs. *storage.BucketHandle implements it.
type URLSigner interface {
	SignedURL(object string, opts *storage.SignedURLOptions) (string, error)
}

// ImageResolver turns catalog image filenames into fully qualified URLs,
// either under a public base URL or as short-lived signed URLs.
type ImageResolver struct {
	baseURL *url.URL
	signer  URLSigner
	expiry  time.Duration
	now     func() time.Time
}

// ImageResolverOption customises an ImageResolver.
type ImageResolverOption func(*ImageResolver)

// WithSigner signs every URL with signer instead of using the public base.
func WithSigner(signer URLSigner, expiry time.Duration) ImageResolverOption {
	return func(r *ImageResolver) {
		r.signer = signer
		if expiry > 0 {
			r.expiry = expiry
		}
	}
}

// WithClock injects a custom clock.
func WithClock(clock func() time.Time) ImageResolverOption {
	return func(r *ImageResolver) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewImageResolver builds a resolver rooted at baseURL.
func NewImageResolver(baseURL string, opts ...ImageResolverOption) (*ImageResolver, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errNoBaseURL
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("storage: invalid base URL %q", baseURL)
	}
	r := &ImageResolver{baseURL: parsed, expiry: defaultSignedURLExpiry, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// ProductImageURL returns the URL of one of a product's images.
func (r *ImageResolver) ProductImageURL(p domain.Product, fileName string) (string, error) {
	object, err := BuildObjectPath(PurposeProduct, PathParams{
		Collection: string(p.Collection),
		Pattern:    string(p.Pattern),
		SKU:        p.SKU,
		FileName:   fileName,
	})
	if err != nil {
		return "", err
	}
	return r.objectURL(object)
}

// ProductImageURLs resolves every image of p in order.
func (r *ImageResolver) ProductImageURLs(p domain.Product) ([]string, error) {
	out := make([]string, 0, len(p.Images))
	for _, name := range p.Images {
		u, err := r.ProductImageURL(p, name)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// TreatmentImageURL returns the URL of one of a treatment's images.
func (r *ImageResolver) TreatmentImageURL(t domain.Treatment, fileName string) (string, error) {
	object, err := BuildObjectPath(PurposeTreatment, PathParams{
		Category: string(t.Category),
		Slug:     t.Slug,
		FileName: fileName,
	})
	if err != nil {
		return "", err
	}
	return r.objectURL(object)
}

func (r *ImageResolver) objectURL(object string) (string, error) {
	if r.signer != nil {
		signed, err := r.signer.SignedURL(object, &storage.SignedURLOptions{
			Method:  http.MethodGet,
			Scheme:  storage.SigningSchemeV4,
			Expires: r.now().Add(r.expiry),
		})
		if err != nil {
			return "", fmt.Errorf("storage: sign %s: %w", object, err)
		}
		return signed, nil
	}
	u := *r.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + object
	return u.String(), nil
}
