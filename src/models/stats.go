package models

import "github.com/shopspring/decimal"

type Stats struct {
	Balance decimal.Decimal `json:"balance"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type CategoryTotal struct {
	Category string          `json:"name"`
	Total    decimal.Decimal `json:"spent"`
}
