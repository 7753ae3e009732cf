package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"golang.org/x/text/language"

	domain "github.com/floorhouse/site/internal/domain"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Bundle holds translated UI strings per locale.
type Bundle struct {
	dict     map[domain.Locale]map[string]string
	fallback domain.Locale
	locales  []domain.Locale
	matcher  language.Matcher
}

// Default loads the embedded message files for every supported locale.
func Default() (*Bundle, error) {
	return Load(embeddedLocales, "locales", domain.DefaultLocale, domain.Locales())
}

// Load reads {dir}/{locale}.json from fsys. The fallback locale must exist;
// other locales may be missing and then fall through to the fallback.
func Load(fsys fs.FS, dir string, fallback domain.Locale, supported []domain.Locale) (*Bundle, error) {
	if len(supported) == 0 {
		supported = domain.Locales()
	}
	b := &Bundle{
		dict:     map[domain.Locale]map[string]string{},
		fallback: fallback,
	}

	// The fallback goes first so the matcher prefers it on no match.
	ordered := []domain.Locale{fallback}
	for _, l := range supported {
		if l != fallback {
			ordered = append(ordered, l)
		}
	}

	tags := make([]language.Tag, 0, len(ordered))
	for _, l := range ordered {
		raw, err := fs.ReadFile(fsys, path.Join(dir, string(l)+".json"))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && l != fallback {
				b.locales = append(b.locales, l)
				tags = append(tags, language.Make(string(l)))
				continue
			}
			return nil, fmt.Errorf("load locale %s: %w", l, err)
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
		b.locales = append(b.locales, l)
		tags = append(tags, language.Make(string(l)))
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// Locales returns the supported locales, fallback first.
func (b *Bundle) Locales() []domain.Locale {
	out := make([]domain.Locale, len(b.locales))
	copy(out, b.locales)
	return out
}

// Fallback returns the configured fallback locale.
func (b *Bundle) Fallback() domain.Locale { return b.fallback }

// T returns translation for key in locale, falling back to default and finally key.
func (b *Bundle) T(locale domain.Locale, key string) string {
	if m, ok := b.dict[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Resolve chooses the best supported locale for an Accept-Language header.
func (b *Bundle) Resolve(acceptLanguage string) domain.Locale {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return b.fallback
	}
	_, idx, confidence := b.matcher.Match(prefs...)
	if confidence == language.No {
		return b.fallback
	}
	return b.locales[idx]
}
