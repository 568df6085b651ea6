package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditNote nota crédito por devolución. Pertenece a la venta que referencia
// y a la misma caja de esa venta.
type CreditNote struct {
	ID             string
	Code           string
	SaleID         string
	TerminalID     string
	BusinessDate   string
	Timestamp      time.Time
	Lines          []LineItem
	Subtotal       decimal.Decimal
	DiscountTotal  decimal.Decimal
	Tax            decimal.Decimal
	AmountRefunded decimal.Decimal
	Reason         string
	CreatedBy      string
}
