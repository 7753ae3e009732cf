package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is a single flooring article as authored in the catalog data.
type Product struct {
	SKU                string                    `json:"sku"`
	Slug               string                    `json:"slug"`
	Collection         CollectionType            `json:"collection"`
	Pattern            ProductPattern            `json:"pattern"`
	InstallationSystem InstallationSystem        `json:"installationSystem,omitempty"`
	Price              decimal.Decimal           `json:"price"`
	Images             []string                  `json:"images"`
	DisplayImages      *DisplayImages            `json:"displayImages,omitempty"`
	I18n               map[Locale]ProductContent `json:"i18n"`
}

// DisplayImages picks which entries of Images are shown as main and hover.
type DisplayImages struct {
	Main  *int `json:"main,omitempty"`
	Hover *int `json:"hover,omitempty"`
}

// ProductContent is the localized copy for one product.
type ProductContent struct {
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Features       []string       `json:"features,omitempty"`
	Specifications Specifications `json:"specifications"`
	SEO            SEO            `json:"seo"`
	ImageAlt       string         `json:"imageAlt,omitempty"`
}

type Specifications struct {
	Dimensions Dimensions `json:"dimensions"`
	Appearance Appearance `json:"appearance"`
}

type Dimensions struct {
	Length    string `json:"length,omitempty"`
	Width     string `json:"width,omitempty"`
	Thickness string `json:"thickness,omitempty"`
}

type Appearance struct {
	GradeCode string `json:"gradeCode,omitempty"`
}

type SEO struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Content returns the localized content for locale, falling back to
// DefaultLocale. ok is false when neither is present.
func (p Product) Content(locale Locale) (ProductContent, bool) {
	if content, ok := p.I18n[locale]; ok {
		return content, true
	}
	content, ok := p.I18n[DefaultLocale]
	return content, ok
}

// MainImageIndex returns the index of the default image.
func (p Product) MainImageIndex() int {
	if p.DisplayImages != nil && p.DisplayImages.Main != nil {
		return *p.DisplayImages.Main
	}
	return 0
}

// DisplayImagePair resolves the main and hover filenames. hover is empty when
// no hover image is designated. An index outside Images is an error.
func (p Product) DisplayImagePair() (main, hover string, err error) {
	if len(p.Images) == 0 {
		return "", "", fmt.Errorf("product %s: no images", p.SKU)
	}
	mainIdx := p.MainImageIndex()
	if mainIdx < 0 || mainIdx >= len(p.Images) {
		return "", "", fmt.Errorf("product %s: main image index %d out of range [0,%d)", p.SKU, mainIdx, len(p.Images))
	}
	main = p.Images[mainIdx]
	if p.DisplayImages != nil && p.DisplayImages.Hover != nil {
		hoverIdx := *p.DisplayImages.Hover
		if hoverIdx < 0 || hoverIdx >= len(p.Images) {
			return "", "", fmt.Errorf("product %s: hover image index %d out of range [0,%d)", p.SKU, hoverIdx, len(p.Images))
		}
		hover = p.Images[hoverIdx]
	}
	return main, hover, nil
}
