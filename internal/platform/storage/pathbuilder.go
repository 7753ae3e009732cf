package storage

import (
	"fmt"
	"strings"
)

// AssetPurpose selects the object layout for an image.
type AssetPurpose string

const (
	PurposeProduct   AssetPurpose = "product"
	PurposeTreatment AssetPurpose = "treatment"
)

// PathParams carry the identity fields an object path is built from.
type PathParams struct {
	Collection string
	Pattern    string
	SKU        string
	Category   string
	Slug       string
	FileName   string
}

// PathBuilder composes the object path for a given asset purpose.
type PathBuilder func(PathParams) (string, error)

var pathBuilders = map[AssetPurpose]PathBuilder{
	PurposeProduct:   buildProductPath,
	PurposeTreatment: buildTreatmentPath,
}

// BuildObjectPath resolves the storage object path for the given purpose.
func BuildObjectPath(purpose AssetPurpose, params PathParams) (string, error) {
	builder, ok := pathBuilders[purpose]
	if !ok {
		return "", fmt.Errorf("storage: unsupported asset purpose %q", purpose)
	}
	return builder(params)
}

// ValidateFileName reports whether name can be used as the last segment of
// an object path.
func ValidateFileName(name string) error {
	_, err := validateSegment("fileName", name)
	return err
}

// products/{collection}/{pattern}/{sku}/{file}
func buildProductPath(params PathParams) (string, error) {
	segments, err := validateSegments(
		"collection", params.Collection,
		"pattern", params.Pattern,
		"sku", params.SKU,
		"fileName", params.FileName,
	)
	if err != nil {
		return "", err
	}
	return "products/" + strings.Join(segments, "/"), nil
}

// treatments/{category}/{slug}/{file}
func buildTreatmentPath(params PathParams) (string, error) {
	segments, err := validateSegments(
		"category", params.Category,
		"slug", params.Slug,
		"fileName", params.FileName,
	)
	if err != nil {
		return "", err
	}
	return "treatments/" + strings.Join(segments, "/"), nil
}

func validateSegments(pairs ...string) ([]string, error) {
	out := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		value, err := validateSegment(pairs[i], pairs[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

func validateSegment(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("storage: %s is required", name)
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("storage: %s contains invalid path characters", name)
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("storage: %s contains invalid traversal sequence", name)
	}
	return value, nil
}
