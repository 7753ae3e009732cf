package storage

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/storage"

	"github.com/floorhouse/site/internal/domain"
)

type fakeSigner struct {
	objects []string
	opts    *storage.SignedURLOptions
	err     error
}

func (f *fakeSigner) SignedURL(object string, opts *storage.SignedURLOptions) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.objects = append(f.objects, object)
	f.opts = opts
	return "https://signed.example/" + object + "?sig=1", nil
}

func sampleProduct() domain.Product {
	return domain.Product{
		SKU:        "FLR-1001",
		Collection: domain.CollectionOak,
		Pattern:    domain.PatternPlank,
		Images:     []string{"main.jpg", "hover image.jpg"},
	}
}

func TestImageResolverPublicURLs(t *testing.T) {
	resolver, err := NewImageResolver("https://cdn.example/assets/")
	if err != nil {
		t.Fatalf("NewImageResolver returned error: %v", err)
	}

	urls, err := resolver.ProductImageURLs(sampleProduct())
	if err != nil {
		t.Fatalf("ProductImageURLs returned error: %v", err)
	}
	want := []string{
		"https://cdn.example/assets/products/oak/plank/FLR-1001/main.jpg",
		"https://cdn.example/assets/products/oak/plank/FLR-1001/hover%20image.jpg",
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("url %d: expected %s, got %s", i, want[i], urls[i])
		}
	}

	u, err := resolver.TreatmentImageURL(domain.Treatment{Slug: "ebony", Category: domain.TreatmentBlack}, "ebony.jpg")
	if err != nil {
		t.Fatalf("TreatmentImageURL returned error: %v", err)
	}
	if u != "https://cdn.example/assets/treatments/black/ebony/ebony.jpg" {
		t.Errorf("unexpected treatment url %s", u)
	}
}

func TestImageResolverSignsWhenConfigured(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	signer := &fakeSigner{}
	resolver, err := NewImageResolver("https://cdn.example", WithSigner(signer, 5*time.Minute), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewImageResolver returned error: %v", err)
	}

	u, err := resolver.ProductImageURL(sampleProduct(), "main.jpg")
	if err != nil {
		t.Fatalf("ProductImageURL returned error: %v", err)
	}
	if u != "https://signed.example/products/oak/plank/FLR-1001/main.jpg?sig=1" {
		t.Fatalf("unexpected signed url %s", u)
	}
	if !signer.opts.Expires.Equal(now.Add(5 * time.Minute)) {
		t.Fatalf("unexpected expiry %s", signer.opts.Expires)
	}
	if signer.opts.Method != "GET" {
		t.Fatalf("expected GET, got %s", signer.opts.Method)
	}

	signer.err = errors.New("iam denied")
	if _, err := resolver.ProductImageURL(sampleProduct(), "main.jpg"); err == nil {
		t.Fatal("expected signing error")
	}
}

func TestNewImageResolverRejectsBadBase(t *testing.T) {
	for _, base := range []string{"", "cdn.example", "://bad"} {
		if _, err := NewImageResolver(base); err == nil {
			t.Errorf("expected error for %q", base)
		}
	}
}
