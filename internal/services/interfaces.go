package services

import (
	"context"

	domain "github.com/floorhouse/site/internal/domain"
)

// Product and Treatment are re-exported for handlers.
type (
	Product   = domain.Product
	Treatment = domain.Treatment
)

// CatalogService answers every catalog query used by pages and the API.
// Lookups that find nothing return ok=false or an empty slice; they never fail.
type CatalogService interface {
	ProductsByCollection(collection domain.CollectionType) []Product
	ProductsByCollectionAndPattern(collection domain.CollectionType, pattern domain.ProductPattern) []Product
	ProductBySlug(collection domain.CollectionType, slug string) (Product, bool)
	ProductBySku(collection domain.CollectionType, sku string) (Product, bool)
	FindProductBySlug(slug string) (Product, bool)
	FindProductBySku(sku string) (Product, bool)
	AllProducts() []Product

	ProductCountByCollection(collection domain.CollectionType) int
	ProductCountByCollectionAndPattern(collection domain.CollectionType, pattern domain.ProductPattern) int
	TotalProductCount() int

	AllTreatments() []Treatment
	TreatmentBySlug(slug string) (Treatment, bool)
	TreatmentsByCategory(category domain.TreatmentCategory) []Treatment
	TreatmentCountByCategory(category domain.TreatmentCategory) int
}

// ContactService accepts contact form submissions.
type ContactService interface {
	Submit(ctx context.Context, cmd ContactCommand) (ContactReceipt, error)
}

// AssistantService answers catalog questions from the chat widget.
type AssistantService interface {
	Ask(ctx context.Context, cmd AssistantQuestion) (AssistantAnswer, error)
}
