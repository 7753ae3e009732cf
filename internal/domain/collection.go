package domain

// CollectionType identifies a product line.
type CollectionType string

const (
	CollectionOak           CollectionType = "oak"
	CollectionCustomOak     CollectionType = "custom-oak"
	CollectionHybridWood    CollectionType = "hybrid-wood"
	CollectionHyWood        CollectionType = "hy-wood"
	CollectionClickVinyl    CollectionType = "click-vinyl"
	CollectionGlueDownVinyl CollectionType = "glue-down-vinyl"
)

// collectionOrder is the fixed iteration order used whenever products from
// several collections are combined. Cross-collection lookups return the first
// match in this order.
var collectionOrder = []CollectionType{
	CollectionOak,
	CollectionCustomOak,
	CollectionHybridWood,
	CollectionHyWood,
	CollectionClickVinyl,
	CollectionGlueDownVinyl,
}

// Collections returns the collections in their fixed iteration order. The
// returned slice is a fresh copy.
func Collections() []CollectionType {
	out := make([]CollectionType, len(collectionOrder))
	copy(out, collectionOrder)
	return out
}

// ParseCollection reports whether value names a known collection.
func ParseCollection(value string) (CollectionType, bool) {
	for _, c := range collectionOrder {
		if string(c) == value {
			return c, true
		}
	}
	return "", false
}

// ProductPattern is the laying or cut style of a floor.
type ProductPattern string

const (
	PatternPlank            ProductPattern = "plank"
	PatternFishbone         ProductPattern = "fishbone"
	PatternHerringbone      ProductPattern = "herringbone"
	PatternChevron          ProductPattern = "chevron"
	PatternWalvisgraatClick ProductPattern = "walvisgraat-click"
	PatternNatuurClick      ProductPattern = "natuur-click"
	PatternLandhuisClick    ProductPattern = "landhuis-click"
	PatternTegelClick       ProductPattern = "tegel-click"
	PatternVisgraatClick    ProductPattern = "visgraat-click"
	PatternDorpen           ProductPattern = "dorpen"
	PatternHongaarsePunt    ProductPattern = "hongaarse-punt"
	PatternLandhuis         ProductPattern = "landhuis"
	PatternClassicEvo       ProductPattern = "classic-evo"
	PatternNoblessseEvo     ProductPattern = "noblessse-evo"
	PatternHerringboneEvo   ProductPattern = "herringbone-evo"
	PatternClassicOlio      ProductPattern = "classic-olio"
	PatternNoblessseOlio    ProductPattern = "noblessse-olio"
	PatternHerringboneOlio  ProductPattern = "herringbone-olio"
)

var allPatterns = []ProductPattern{
	PatternPlank,
	PatternFishbone,
	PatternHerringbone,
	PatternChevron,
	PatternWalvisgraatClick,
	PatternNatuurClick,
	PatternLandhuisClick,
	PatternTegelClick,
	PatternVisgraatClick,
	PatternDorpen,
	PatternHongaarsePunt,
	PatternLandhuis,
	PatternClassicEvo,
	PatternNoblessseEvo,
	PatternHerringboneEvo,
	PatternClassicOlio,
	PatternNoblessseOlio,
	PatternHerringboneOlio,
}

// Patterns returns every known pattern in declaration order.
func Patterns() []ProductPattern {
	out := make([]ProductPattern, len(allPatterns))
	copy(out, allPatterns)
	return out
}

// ParsePattern reports whether value names a known pattern.
func ParsePattern(value string) (ProductPattern, bool) {
	for _, p := range allPatterns {
		if string(p) == value {
			return p, true
		}
	}
	return "", false
}

// allowedPatterns lists the patterns each collection is sold in. It is
// informational: lookups and route checks do not enforce it.
var allowedPatterns = map[CollectionType][]ProductPattern{
	CollectionOak:        {PatternPlank, PatternFishbone, PatternHerringbone, PatternChevron},
	CollectionCustomOak:  {PatternPlank, PatternHerringbone, PatternChevron, PatternHongaarsePunt},
	CollectionHybridWood: {PatternPlank, PatternFishbone},
	CollectionHyWood: {
		PatternClassicEvo, PatternNoblessseEvo, PatternHerringboneEvo,
		PatternClassicOlio, PatternNoblessseOlio, PatternHerringboneOlio,
	},
	CollectionClickVinyl: {
		PatternWalvisgraatClick, PatternNatuurClick, PatternLandhuisClick,
		PatternTegelClick, PatternVisgraatClick,
	},
	CollectionGlueDownVinyl: {PatternDorpen, PatternHongaarsePunt, PatternLandhuis},
}

// AllowedPatterns returns the declared pattern set for a collection.
func AllowedPatterns(c CollectionType) []ProductPattern {
	patterns := allowedPatterns[c]
	out := make([]ProductPattern, len(patterns))
	copy(out, patterns)
	return out
}

// PatternAllowed reports whether p is declared for collection c.
func PatternAllowed(c CollectionType, p ProductPattern) bool {
	for _, candidate := range allowedPatterns[c] {
		if candidate == p {
			return true
		}
	}
	return false
}

// InstallationSystem describes how a floor is fitted.
type InstallationSystem string

const (
	InstallationClick    InstallationSystem = "click"
	InstallationGlue     InstallationSystem = "glue"
	InstallationFloating InstallationSystem = "floating"
)

// ParseInstallationSystem reports whether value names a known system.
func ParseInstallationSystem(value string) (InstallationSystem, bool) {
	switch InstallationSystem(value) {
	case InstallationClick, InstallationGlue, InstallationFloating:
		return InstallationSystem(value), true
	default:
		return "", false
	}
}
