package domain

// Locale is a supported content language.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleBG Locale = "bg"

	DefaultLocale = LocaleEN
)

var routingLocales = []Locale{LocaleEN, LocaleBG}

// Locales returns the fixed list of routed locales.
func Locales() []Locale {
	out := make([]Locale, len(routingLocales))
	copy(out, routingLocales)
	return out
}

// ParseLocale reports whether value is a routed locale.
func ParseLocale(value string) (Locale, bool) {
	for _, l := range routingLocales {
		if string(l) == value {
			return l, true
		}
	}
	return "", false
}
