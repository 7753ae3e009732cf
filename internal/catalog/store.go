package catalog

import (
	"github.com/floorhouse/site/internal/domain"
)

// Store is the immutable in-memory catalog. It is safe for concurrent reads.
// Slices handed out are copies, but the records inside share their maps and
// nested slices with the store and must be treated as read-only.
type Store struct {
	products       map[domain.CollectionType][]domain.Product
	metadata       map[domain.CollectionType]Metadata
	treatments     []domain.Treatment
	treatmentIndex map[string]int
	treatmentMeta  Metadata
}

// Products returns the products of a collection in source order.
func (s *Store) Products(collection domain.CollectionType) []domain.Product {
	if s == nil {
		return nil
	}
	return cloneSlice(s.products[collection])
}

// ProductCount returns the number of products in a collection.
func (s *Store) ProductCount(collection domain.CollectionType) int {
	if s == nil {
		return 0
	}
	return len(s.products[collection])
}

// Metadata returns the informational metadata of a collection file.
func (s *Store) Metadata(collection domain.CollectionType) Metadata {
	if s == nil {
		return Metadata{}
	}
	return s.metadata[collection]
}

// Treatments returns every treatment in source order.
func (s *Store) Treatments() []domain.Treatment {
	if s == nil {
		return nil
	}
	return cloneSlice(s.treatments)
}

// Treatment returns the treatment with the given slug.
func (s *Store) Treatment(slug string) (domain.Treatment, bool) {
	if s == nil {
		return domain.Treatment{}, false
	}
	idx, ok := s.treatmentIndex[slug]
	if !ok {
		return domain.Treatment{}, false
	}
	return s.treatments[idx], true
}

// TreatmentMetadata returns the metadata of the treatments file.
func (s *Store) TreatmentMetadata() Metadata {
	if s == nil {
		return Metadata{}
	}
	return s.treatmentMeta
}

func cloneSlice[T any](in []T) []T {
	if len(in) == 0 {
		return []T{}
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
