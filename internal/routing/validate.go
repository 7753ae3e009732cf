package routing

import "github.com/floorhouse/site/internal/domain"

// IsValidCollection reports whether x names a known collection.
func IsValidCollection(x string) bool {
	_, ok := domain.ParseCollection(x)
	return ok
}

// IsValidPattern reports whether x names a known pattern. It does not check
// that the pattern is sold in any particular collection.
func IsValidPattern(x string) bool {
	_, ok := domain.ParsePattern(x)
	return ok
}

// IsValidLocale reports whether x is a routed locale.
func IsValidLocale(x string) bool {
	_, ok := domain.ParseLocale(x)
	return ok
}
