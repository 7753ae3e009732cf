package catalog

import (
	"time"

	"github.com/floorhouse/site/internal/domain"
)

// Metadata is informational bookkeeping carried by each data file. The
// authoritative count is always the length of the record slice.
type Metadata struct {
	TotalCount int        `json:"totalCount"`
	LastSorted *time.Time `json:"lastSorted,omitempty"`
}

// ProductContainer is the on-disk shape of one collection.
type ProductContainer struct {
	Metadata Metadata         `json:"metadata"`
	Products []domain.Product `json:"products"`
}

// TreatmentContainer is the on-disk shape of the treatment swatches.
type TreatmentContainer struct {
	Metadata   Metadata           `json:"metadata"`
	Treatments []domain.Treatment `json:"treatments"`
}
