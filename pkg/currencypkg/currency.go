// Package currencypkg provides common currency related functionality for apps.
package currencypkg

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Constants for frequently used currencies.
const (
	USD = "USD"
	EUR = "EUR"
	RUB = "RUB"
	GBP = "GBP"
	CHF = "CHF"
	JPY = "JPY"
	KRW = "KRW"
	BHD = "BHD"
)

// Unknown is the sentinel bucket for transactions whose currency code is
// missing. ISO-4217 reserves XXX for "no currency".
const Unknown = "XXX"

// scales holds the number of decimal places per ISO-4217 code. The full
// reference table lives in the currencies db table; this built-in subset
// backs seeds, tests and the Unknown bucket.
var scales = map[string]int32{
	USD:     2,
	EUR:     2,
	RUB:     2,
	GBP:     2,
	CHF:     2,
	JPY:     0,
	KRW:     0,
	BHD:     3,
	Unknown: 2,
}

// Normalize maps a raw currency code to its canonical upper-case form.
// Empty codes fall into the Unknown bucket instead of failing, so that
// historical records without a currency stay visible.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Unknown
	}

	return code
}

// Scale returns the built-in decimal scale for the given code.
func Scale(code string) (int32, bool) {
	s, ok := scales[Normalize(code)]
	return s, ok
}

// ValidCurrency validates that the request currency is a 3-letter code
// with a known scale.
var ValidCurrency validator.Func = func(fieldLevel validator.FieldLevel) bool {
	if currency, ok := fieldLevel.Field().Interface().(string); ok {
		if len(currency) != 3 {
			return false
		}

		_, known := Scale(currency)

		return known
	}

	return false
}
