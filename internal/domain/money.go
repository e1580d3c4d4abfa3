package domain

import "github.com/shopspring/decimal"

// Minor-unit exponents for supported currencies (ISO 4217). Anything not
// listed uses two decimal places.
var currencyExponents = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
}

const defaultCurrencyExponent int32 = 2

// CurrencyExponent returns the number of minor-unit digits for a currency.
func CurrencyExponent(currency string) int32 {
	if exp, ok := currencyExponents[currency]; ok {
		return exp
	}
	return defaultCurrencyExponent
}

// RoundAmount rounds an amount to the currency's minor-unit scale, half up.
// All balance comparisons go through this so that journal-derived and cached
// balances agree digit for digit.
func RoundAmount(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(CurrencyExponent(currency))
}

// AmountsEqual compares two amounts after identical rounding.
func AmountsEqual(a, b decimal.Decimal, currency string) bool {
	return RoundAmount(a, currency).Equal(RoundAmount(b, currency))
}
