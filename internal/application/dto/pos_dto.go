package dto

import "github.com/shopspring/decimal"

// CompleteSaleRequest body para POST /api/pos/sales.
// AmountTendered es obligatorio solo cuando payment_method = "efectivo".
type CompleteSaleRequest struct {
	Items          []SaleItemRequest `json:"items"`
	PaymentMethod  string            `json:"payment_method"` // efectivo|tarjeta_debito|tarjeta_credito|transferencia|nequi|daviplata
	AmountTendered *decimal.Decimal  `json:"amount_tendered,omitempty"`
	Customer       *CustomerRequest  `json:"customer,omitempty"` // omitido = consumidor final
}

// SaleItemRequest línea del carrito. Si UnitPrice va vacío se usa el precio del catálogo.
type SaleItemRequest struct {
	ProductRef      string           `json:"product_ref"`
	Quantity        int              `json:"quantity"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
}

// CustomerRequest identificación del cliente en caja.
type CustomerRequest struct {
	TaxID string `json:"tax_id"`
	Name  string `json:"name,omitempty"`
}

// SaleResponse venta con detalle.
type SaleResponse struct {
	ID             string             `json:"id"`
	Code           string             `json:"code"`
	TerminalID     string             `json:"terminal_id"`
	BusinessDate   string             `json:"business_date"`
	Timestamp      string             `json:"timestamp"`
	CustomerID     *string            `json:"customer_id,omitempty"`
	CustomerName   string             `json:"customer_name"`
	PaymentMethod  string             `json:"payment_method"`
	Items          []LineItemResponse `json:"items"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DiscountTotal  decimal.Decimal    `json:"discount_total"`
	TaxableBase    decimal.Decimal    `json:"taxable_base"`
	Tax            decimal.Decimal    `json:"tax"`
	Total          decimal.Decimal    `json:"total"`
	AmountTendered *decimal.Decimal   `json:"amount_tendered,omitempty"`
	ChangeDue      *decimal.Decimal   `json:"change_due,omitempty"`
	Status         string             `json:"status"`
	VoidedAt       *string            `json:"voided_at,omitempty"`
}

// LineItemResponse línea valorada.
type LineItemResponse struct {
	ProductRef      string          `json:"product_ref"`
	ProductName     string          `json:"product_name,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        int             `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Gross           decimal.Decimal `json:"gross"`
	Discount        decimal.Decimal `json:"discount"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// ReturnRequest body para POST /api/pos/sales/:id/returns. Items vacío = devolución total.
type ReturnRequest struct {
	Items  []ReturnItemRequest `json:"items"`
	Reason string              `json:"reason"`
}

// ReturnItemRequest producto y cantidad devueltos.
type ReturnItemRequest struct {
	ProductRef string `json:"product_ref"`
	Quantity   int    `json:"quantity"`
}

// CreditNoteResponse nota crédito emitida; incluye la venta anulada.
type CreditNoteResponse struct {
	ID             string             `json:"id"`
	Code           string             `json:"code"`
	SaleID         string             `json:"sale_id"`
	Timestamp      string             `json:"timestamp"`
	Items          []LineItemResponse `json:"items"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DiscountTotal  decimal.Decimal    `json:"discount_total"`
	Tax            decimal.Decimal    `json:"tax"`
	AmountRefunded decimal.Decimal    `json:"amount_refunded"`
	Reason         string             `json:"reason,omitempty"`
	Sale           *SaleResponse      `json:"sale,omitempty"`
}

// RecordExpenseRequest body para POST /api/pos/expenses.
type RecordExpenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"` // materiales|servicios|domicilios|otros
}

// ExpenseResponse gasto registrado.
type ExpenseResponse struct {
	ID           string          `json:"id"`
	BusinessDate string          `json:"business_date"`
	Timestamp    string          `json:"timestamp"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
}

// SessionSummaryResponse agregados actuales de la caja.
type SessionSummaryResponse struct {
	TerminalID     string                     `json:"terminal_id"`
	Date           string                     `json:"date"`
	Status         string                     `json:"status"`
	GrossSales     decimal.Decimal            `json:"gross_sales"`
	TotalExpenses  decimal.Decimal            `json:"total_expenses"`
	NetProfit      decimal.Decimal            `json:"net_profit"`
	ExpectedCash   decimal.Decimal            `json:"expected_cash"`
	SalesByMethod  map[string]decimal.Decimal `json:"sales_by_method"`
	CompletedSales int                        `json:"completed_sales"`
	VoidedSales    int                        `json:"voided_sales"`
	ExpenseCount   int                        `json:"expense_count"`
}

// CloseSessionRequest body para POST /api/pos/session/close. Date vacío = hoy.
type CloseSessionRequest struct {
	Date        string          `json:"date,omitempty"`
	CountedCash decimal.Decimal `json:"counted_cash"`
	Notes       string          `json:"notes"`
}

// ClosingSnapshotResponse cierre de caja inmutable.
type ClosingSnapshotResponse struct {
	TerminalID     string                     `json:"terminal_id"`
	Date           string                     `json:"date"`
	GrossSales     decimal.Decimal            `json:"gross_sales"`
	TotalExpenses  decimal.Decimal            `json:"total_expenses"`
	NetProfit      decimal.Decimal            `json:"net_profit"`
	ExpectedCash   decimal.Decimal            `json:"expected_cash"`
	CountedCash    decimal.Decimal            `json:"counted_cash"`
	Variance       decimal.Decimal            `json:"variance"`
	SalesByMethod  map[string]decimal.Decimal `json:"sales_by_method"`
	CompletedSales int                        `json:"completed_sales"`
	VoidedSales    int                        `json:"voided_sales"`
	ExpenseCount   int                        `json:"expense_count"`
	Notes          string                     `json:"notes"`
	ClosedAt       string                     `json:"closed_at"`
	ClosedBy       string                     `json:"closed_by,omitempty"`
}
