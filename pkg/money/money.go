// Package money converts payments-platform minor units into display prices
// for the storefront's single locale (pt-BR, BRL).
package money

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Unavailable is shown in place of a price the platform did not provide.
const Unavailable = "Preço indisponível"

const symbol = "R$ "

var (
	// Locale is the fixed display locale.
	Locale = language.BrazilianPortuguese
	// Currency is the fixed display currency.
	Currency = currency.BRL

	printer = message.NewPrinter(Locale)
)

// FromMinorUnits converts an integer amount in centavos to reais.
func FromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}

// Format renders v as a pt-BR currency string: 1234.5 -> "R$ 1.234,50",
// with a no-break space after the symbol.
func Format(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + symbol + printer.Sprint(number.Decimal(v, number.Scale(2)))
}

// IsDisplayCurrency reports whether the ISO 4217 code (any case) is the
// storefront's currency.
func IsDisplayCurrency(code string) bool {
	u, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return false
	}
	return u == Currency
}
