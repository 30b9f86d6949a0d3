package domain

import "github.com/shopspring/decimal"

func init() {
	// Prices, totals and charge amounts go over the wire as JSON numbers.
	// Decoding still accepts quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}
