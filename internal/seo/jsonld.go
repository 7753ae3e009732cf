package seo

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/floorhouse/site/internal/format"
)

const brandName = "Floorhouse"

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// ProductInput is the data rendered into a Product schema.
type ProductInput struct {
	Name        string
	Description string
	URL         string
	Images      []string
	SKU         string
	Price       decimal.Decimal
}

// Product returns a schema.org Product with a single EUR offer.
func Product(in ProductInput) map[string]any {
	m := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"name":        in.Name,
		"description": in.Description,
		"brand":       map[string]any{"@type": "Brand", "name": brandName},
	}
	if in.SKU != "" {
		m["sku"] = in.SKU
	}
	if len(in.Images) > 0 {
		m["image"] = append([]string(nil), in.Images...)
	}
	offer := map[string]any{
		"@type":         "Offer",
		"priceCurrency": "EUR",
		"price":         format.OfferPrice(in.Price),
		"availability":  "https://schema.org/InStock",
	}
	if in.URL != "" {
		m["url"] = in.URL
		offer["url"] = in.URL
	}
	m["offers"] = offer
	return m
}
