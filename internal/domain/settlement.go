package domain

import "github.com/shopspring/decimal"

// NetByCurrency maps currency code to each member's net position in
// that currency: positive means others owe them, negative means they
// owe others. Each inner map sums to exactly zero.
type NetByCurrency map[string]map[int64]decimal.Decimal

// Settlement is a single proposed transfer that reduces outstanding
// debt between two members. Settlements are computed on demand and
// never persisted.
type Settlement struct {
	From   int64           `json:"from_user_id"`
	To     int64           `json:"to_user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// Currency holds ISO-4217 reference data for one currency.
type Currency struct {
	Code        string `json:"code"`
	NumericCode int16  `json:"numeric_code"`
	Decimals    int32  `json:"decimals"`
	Symbol      string `json:"symbol,omitempty"`
	IsPopular   bool   `json:"is_popular"`
}
