package services

import (
	"errors"

	domain "github.com/floorhouse/site/internal/domain"
	"github.com/floorhouse/site/internal/repositories"
)

// ErrCatalogRepositoryMissing indicates the repository dependency is absent.
var ErrCatalogRepositoryMissing = errors.New("catalog service: repository is not configured")

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Catalog repositories.CatalogRepository
	// Order overrides the cross-collection search order. Defaults to domain.Collections().
	Order []domain.CollectionType
}

type catalogService struct {
	repo  repositories.CatalogRepository
	order []domain.CollectionType
}

// NewCatalogService constructs the catalog lookup service.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Catalog == nil {
		return nil, ErrCatalogRepositoryMissing
	}
	order := deps.Order
	if len(order) == 0 {
		order = domain.Collections()
	} else {
		order = append([]domain.CollectionType(nil), order...)
	}
	return &catalogService{repo: deps.Catalog, order: order}, nil
}

func (s *catalogService) ProductsByCollection(collection domain.CollectionType) []Product {
	return s.repo.Products(collection)
}

func (s *catalogService) ProductsByCollectionAndPattern(collection domain.CollectionType, pattern domain.ProductPattern) []Product {
	products := s.repo.Products(collection)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Pattern == pattern {
			out = append(out, p)
		}
	}
	return out
}

func (s *catalogService) ProductBySlug(collection domain.CollectionType, slug string) (Product, bool) {
	for _, p := range s.repo.Products(collection) {
		if p.Slug == slug {
			return p, true
		}
	}
	return Product{}, false
}

func (s *catalogService) ProductBySku(collection domain.CollectionType, sku string) (Product, bool) {
	for _, p := range s.repo.Products(collection) {
		if p.SKU == sku {
			return p, true
		}
	}
	return Product{}, false
}

func (s *catalogService) FindProductBySlug(slug string) (Product, bool) {
	for _, c := range s.order {
		if p, ok := s.ProductBySlug(c, slug); ok {
			return p, true
		}
	}
	return Product{}, false
}

func (s *catalogService) FindProductBySku(sku string) (Product, bool) {
	for _, c := range s.order {
		if p, ok := s.ProductBySku(c, sku); ok {
			return p, true
		}
	}
	return Product{}, false
}

func (s *catalogService) AllProducts() []Product {
	out := make([]Product, 0, s.TotalProductCount())
	for _, c := range s.order {
		out = append(out, s.repo.Products(c)...)
	}
	return out
}

func (s *catalogService) ProductCountByCollection(collection domain.CollectionType) int {
	return s.repo.ProductCount(collection)
}

func (s *catalogService) ProductCountByCollectionAndPattern(collection domain.CollectionType, pattern domain.ProductPattern) int {
	return len(s.ProductsByCollectionAndPattern(collection, pattern))
}

func (s *catalogService) TotalProductCount() int {
	total := 0
	for _, c := range s.order {
		total += s.repo.ProductCount(c)
	}
	return total
}

func (s *catalogService) AllTreatments() []Treatment {
	return s.repo.Treatments()
}

func (s *catalogService) TreatmentBySlug(slug string) (Treatment, bool) {
	return s.repo.Treatment(slug)
}

func (s *catalogService) TreatmentsByCategory(category domain.TreatmentCategory) []Treatment {
	treatments := s.repo.Treatments()
	out := make([]Treatment, 0, len(treatments))
	for _, t := range treatments {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

func (s *catalogService) TreatmentCountByCategory(category domain.TreatmentCategory) int {
	return len(s.TreatmentsByCategory(category))
}

// OakProductsByPattern returns the oak products laid in pattern.
func OakProductsByPattern(svc CatalogService, pattern domain.ProductPattern) []Product {
	return svc.ProductsByCollectionAndPattern(domain.CollectionOak, pattern)
}

// HybridWoodProductsByPattern returns the hybrid-wood products laid in pattern.
func HybridWoodProductsByPattern(svc CatalogService, pattern domain.ProductPattern) []Product {
	return svc.ProductsByCollectionAndPattern(domain.CollectionHybridWood, pattern)
}
