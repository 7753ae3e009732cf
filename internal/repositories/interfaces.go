package repositories

import (
	domain "github.com/floorhouse/site/internal/domain"
)

// CatalogRepository is the read-only view of the loaded catalog consumed by
// the lookup services. *catalog.Store implements it.
type CatalogRepository interface {
	Products(collection domain.CollectionType) []domain.Product
	ProductCount(collection domain.CollectionType) int
	Treatments() []domain.Treatment
	Treatment(slug string) (domain.Treatment, bool)
}

// RepositoryError wraps low-level persistence failures with categorisation
// used when loading the catalog from a remote backend.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}
