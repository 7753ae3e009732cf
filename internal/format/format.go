package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	domain "github.com/floorhouse/site/internal/domain"
)

// Price formats an amount in euros with the locale's separators.
// Example: Price(decimal.RequireFromString("89.5"), "en") => "€ 89.50"
func Price(amount decimal.Decimal, locale domain.Locale) string {
	value, _ := amount.Round(2).Float64()
	p := message.NewPrinter(tag(locale))
	return strings.TrimSpace(p.Sprint(currency.Symbol(currency.EUR.Amount(value))))
}

// PriceISO formats an amount with the ISO currency code instead of the symbol.
func PriceISO(amount decimal.Decimal, locale domain.Locale) string {
	value, _ := amount.Round(2).Float64()
	p := message.NewPrinter(tag(locale))
	return strings.TrimSpace(p.Sprint(currency.EUR.Amount(value)))
}

// OfferPrice renders the machine-readable price used in structured data.
func OfferPrice(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Date formats time in a locale-friendly short form.
func Date(t time.Time, locale domain.Locale) string {
	switch locale {
	case domain.LocaleBG:
		return t.Format("02.01.2006")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func tag(locale domain.Locale) language.Tag {
	if _, ok := domain.ParseLocale(string(locale)); !ok {
		return language.Make(string(domain.DefaultLocale))
	}
	return language.Make(string(locale))
}
