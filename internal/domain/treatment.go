package domain

// TreatmentCategory groups oak finishes by color family.
type TreatmentCategory string

const (
	TreatmentNatural TreatmentCategory = "natural"
	TreatmentSmoked  TreatmentCategory = "smoked"
	TreatmentWhite   TreatmentCategory = "white"
	TreatmentGrey    TreatmentCategory = "grey"
	TreatmentBrown   TreatmentCategory = "brown"
	TreatmentBlack   TreatmentCategory = "black"
	TreatmentColored TreatmentCategory = "colored"
)

var treatmentCategories = []TreatmentCategory{
	TreatmentNatural,
	TreatmentSmoked,
	TreatmentWhite,
	TreatmentGrey,
	TreatmentBrown,
	TreatmentBlack,
	TreatmentColored,
}

// TreatmentCategories returns every category in declaration order.
func TreatmentCategories() []TreatmentCategory {
	out := make([]TreatmentCategory, len(treatmentCategories))
	copy(out, treatmentCategories)
	return out
}

// ParseTreatmentCategory reports whether value names a known category.
func ParseTreatmentCategory(value string) (TreatmentCategory, bool) {
	for _, c := range treatmentCategories {
		if string(c) == value {
			return c, true
		}
	}
	return "", false
}

// Treatment is an oak finish or color swatch.
type Treatment struct {
	Slug     string                      `json:"slug"`
	Category TreatmentCategory           `json:"category"`
	Images   []string                    `json:"images"`
	I18n     map[Locale]TreatmentContent `json:"i18n"`
}

type TreatmentContent struct {
	Name     string `json:"name"`
	ImageAlt string `json:"imageAlt,omitempty"`
}

// Content returns the localized content with DefaultLocale fallback.
func (t Treatment) Content(locale Locale) (TreatmentContent, bool) {
	if content, ok := t.I18n[locale]; ok {
		return content, true
	}
	content, ok := t.I18n[DefaultLocale]
	return content, ok
}
