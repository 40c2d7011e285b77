package domain

import "github.com/shopspring/decimal"

// Budget is a monthly spending limit for one category in one period (YYYY-MM).
type Budget struct {
	ID           string
	Category     string
	MonthlyLimit decimal.Decimal
	Spent        decimal.Decimal
	Remaining    decimal.Decimal
	Period       string
}
