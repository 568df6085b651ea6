package entity

import "github.com/shopspring/decimal"

// LineItem línea de una venta o nota crédito.
// UnitPrice, Quantity y DiscountPercent son de entrada; el resto lo calcula pricing.Calculator.
type LineItem struct {
	ProductRef      string
	ProductName     string
	UnitPrice       decimal.Decimal
	Quantity        int
	DiscountPercent decimal.Decimal // 0–100
	Gross           decimal.Decimal // UnitPrice × Quantity
	Discount        decimal.Decimal // Gross − LineTotal
	LineTotal       decimal.Decimal // base gravable de la línea
}
