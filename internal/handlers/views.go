package handlers

import (
	"github.com/floorhouse/site/internal/domain"
	"github.com/floorhouse/site/internal/format"
	"github.com/floorhouse/site/internal/routing"
)

// ImageURLResolver turns catalog image filenames into URLs.
// *storage.ImageResolver implements it.
type ImageURLResolver interface {
	ProductImageURLs(p domain.Product) ([]string, error)
	TreatmentImageURL(t domain.Treatment, fileName string) (string, error)
}

type passthroughImages struct{}

func (passthroughImages) ProductImageURLs(p domain.Product) ([]string, error) {
	return append([]string(nil), p.Images...), nil
}

func (passthroughImages) TreatmentImageURL(_ domain.Treatment, fileName string) (string, error) {
	return fileName, nil
}

type productPayload struct {
	SKU                string                    `json:"sku"`
	Slug               string                    `json:"slug"`
	Collection         domain.CollectionType     `json:"collection"`
	Pattern            domain.ProductPattern     `json:"pattern"`
	InstallationSystem domain.InstallationSystem `json:"installationSystem,omitempty"`
	Locale             domain.Locale             `json:"locale"`
	Name               string                    `json:"name"`
	Description        string                    `json:"description"`
	Features           []string                  `json:"features"`
	Specifications     domain.Specifications     `json:"specifications"`
	SEO                domain.SEO                `json:"seo"`
	ImageAlt           string                    `json:"imageAlt,omitempty"`
	Price              string                    `json:"price"`
	PriceFormatted     string                    `json:"priceFormatted"`
	Currency           string                    `json:"currency"`
	Images             []string                  `json:"images"`
	MainImage          string                    `json:"mainImage"`
	HoverImage         string                    `json:"hoverImage,omitempty"`
	Path               string                    `json:"path"`
}

type treatmentPayload struct {
	Slug     string                   `json:"slug"`
	Category domain.TreatmentCategory `json:"category"`
	Locale   domain.Locale            `json:"locale"`
	Name     string                   `json:"name"`
	ImageAlt string                   `json:"imageAlt,omitempty"`
	Images   []string                 `json:"images"`
}

func buildProductPayload(images ImageURLResolver, p domain.Product, locale domain.Locale) (productPayload, error) {
	content, _ := p.Content(locale)
	urls, err := images.ProductImageURLs(p)
	if err != nil {
		return productPayload{}, err
	}
	payload := productPayload{
		SKU:                p.SKU,
		Slug:               p.Slug,
		Collection:         p.Collection,
		Pattern:            p.Pattern,
		InstallationSystem: p.InstallationSystem,
		Locale:             locale,
		Name:               content.Name,
		Description:        content.Description,
		Features:           append([]string{}, content.Features...),
		Specifications:     content.Specifications,
		SEO:                content.SEO,
		ImageAlt:           content.ImageAlt,
		Price:              format.OfferPrice(p.Price),
		PriceFormatted:     format.Price(p.Price, locale),
		Currency:           "EUR",
		Images:             urls,
		Path:               productPath(p, locale),
	}
	// Indices were validated at load; resolved URLs share positions with Images.
	if idx := p.MainImageIndex(); idx >= 0 && idx < len(urls) {
		payload.MainImage = urls[idx]
	}
	if p.DisplayImages != nil && p.DisplayImages.Hover != nil {
		if idx := *p.DisplayImages.Hover; idx >= 0 && idx < len(urls) {
			payload.HoverImage = urls[idx]
		}
	}
	return payload, nil
}

func buildProductPayloads(images ImageURLResolver, products []domain.Product, locale domain.Locale) ([]productPayload, error) {
	out := make([]productPayload, 0, len(products))
	for _, p := range products {
		payload, err := buildProductPayload(images, p, locale)
		if err != nil {
			return nil, err
		}
		out = append(out, payload)
	}
	return out, nil
}

func buildTreatmentPayload(images ImageURLResolver, t domain.Treatment, locale domain.Locale) (treatmentPayload, error) {
	content, _ := t.Content(locale)
	urls := make([]string, 0, len(t.Images))
	for _, name := range t.Images {
		u, err := images.TreatmentImageURL(t, name)
		if err != nil {
			return treatmentPayload{}, err
		}
		urls = append(urls, u)
	}
	return treatmentPayload{
		Slug:     t.Slug,
		Category: t.Category,
		Locale:   locale,
		Name:     content.Name,
		ImageAlt: content.ImageAlt,
		Images:   urls,
	}, nil
}

func productPath(p domain.Product, locale domain.Locale) string {
	return routing.Params{Locale: locale, Collection: p.Collection, Pattern: p.Pattern, Slug: p.Slug}.Path()
}
