package routing

import "github.com/floorhouse/site/internal/domain"

// Level says how deep a statically generated page goes.
type Level int

const (
	// PatternLevel pages list the products of one pattern.
	PatternLevel Level = iota + 1
	// SlugLevel pages show a single product.
	SlugLevel
)

func (l Level) String() string {
	switch l {
	case PatternLevel:
		return "pattern"
	case SlugLevel:
		return "slug"
	default:
		return "unknown"
	}
}

// PageTemplate declares which collection and patterns a page generates.
type PageTemplate struct {
	Name       string
	Collection domain.CollectionType
	Patterns   []domain.ProductPattern
	Level      Level
}

var (
	oakPatterns = []domain.ProductPattern{
		domain.PatternPlank, domain.PatternFishbone, domain.PatternHerringbone, domain.PatternChevron,
	}
	customOakPatterns = []domain.ProductPattern{
		domain.PatternPlank, domain.PatternHerringbone, domain.PatternChevron, domain.PatternHongaarsePunt,
	}
	hybridWoodPatterns = []domain.ProductPattern{
		domain.PatternPlank, domain.PatternFishbone,
	}
	hyWoodPatterns = []domain.ProductPattern{
		domain.PatternClassicEvo, domain.PatternNoblessseEvo, domain.PatternHerringboneEvo,
		domain.PatternClassicOlio, domain.PatternNoblessseOlio, domain.PatternHerringboneOlio,
	}
	clickVinylPatterns = []domain.ProductPattern{
		domain.PatternWalvisgraatClick, domain.PatternNatuurClick, domain.PatternLandhuisClick,
		domain.PatternTegelClick, domain.PatternVisgraatClick,
	}
	glueDownVinylPatterns = []domain.ProductPattern{
		domain.PatternDorpen, domain.PatternHongaarsePunt, domain.PatternLandhuis,
	}
)

var pageTemplates = []PageTemplate{
	{Name: "oak-pattern", Collection: domain.CollectionOak, Patterns: oakPatterns, Level: PatternLevel},
	{Name: "oak-product", Collection: domain.CollectionOak, Patterns: oakPatterns, Level: SlugLevel},
	{Name: "custom-oak-pattern", Collection: domain.CollectionCustomOak, Patterns: customOakPatterns, Level: PatternLevel},
	{Name: "custom-oak-product", Collection: domain.CollectionCustomOak, Patterns: customOakPatterns, Level: SlugLevel},
	{Name: "hybrid-wood-pattern", Collection: domain.CollectionHybridWood, Patterns: hybridWoodPatterns, Level: PatternLevel},
	{Name: "hybrid-wood-product", Collection: domain.CollectionHybridWood, Patterns: hybridWoodPatterns, Level: SlugLevel},
	{Name: "hy-wood-pattern", Collection: domain.CollectionHyWood, Patterns: hyWoodPatterns, Level: PatternLevel},
	{Name: "hy-wood-product", Collection: domain.CollectionHyWood, Patterns: hyWoodPatterns, Level: SlugLevel},
	{Name: "click-vinyl-pattern", Collection: domain.CollectionClickVinyl, Patterns: clickVinylPatterns, Level: PatternLevel},
	{Name: "click-vinyl-product", Collection: domain.CollectionClickVinyl, Patterns: clickVinylPatterns, Level: SlugLevel},
	{Name: "glue-down-vinyl-pattern", Collection: domain.CollectionGlueDownVinyl, Patterns: glueDownVinylPatterns, Level: PatternLevel},
	{Name: "glue-down-vinyl-product", Collection: domain.CollectionGlueDownVinyl, Patterns: glueDownVinylPatterns, Level: SlugLevel},
}

// Templates returns the page templates the site generates, in a fixed order.
func Templates() []PageTemplate {
	out := make([]PageTemplate, len(pageTemplates))
	for i, tpl := range pageTemplates {
		tpl.Patterns = append([]domain.ProductPattern(nil), tpl.Patterns...)
		out[i] = tpl
	}
	return out
}

// TemplateByName returns the template registered under name.
func TemplateByName(name string) (PageTemplate, bool) {
	for _, tpl := range Templates() {
		if tpl.Name == name {
			return tpl, true
		}
	}
	return PageTemplate{}, false
}
