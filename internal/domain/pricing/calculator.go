// Package pricing calcula totales de venta: subtotal, descuentos, base gravable,
// IVA y total, además del cambio en pagos en efectivo.
//
// Todos los valores monetarios se redondean a pesos enteros (half-up) en cada
// campo derivado, línea por línea, antes de agregar:
//
//	Gross       = round(UnitPrice × Quantity)
//	LineTotal   = round(UnitPrice × Quantity × (1 − DiscountPercent/100))
//	Discount    = Gross − LineTotal
//	TaxableBase = Σ LineTotal
//	Tax         = round(TaxableBase × TaxRate)
//	Total       = TaxableBase + Tax
package pricing

import (
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MoneyPlaces decimales de la moneda (COP se maneja en pesos enteros).
const MoneyPlaces int32 = 0

var (
	// DefaultTaxRate tarifa fija de IVA aplicada a la base gravable.
	DefaultTaxRate = decimal.RequireFromString("0.16")

	hundred = decimal.NewFromInt(100)
)

// Totals agregados de un carrito.
type Totals struct {
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxableBase   decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
}

// Calculator servicio de dominio sin estado, salvo la tarifa de impuesto configurada.
type Calculator struct {
	taxRate decimal.Decimal
}

// NewCalculator construye la calculadora. Una tarifa mayor a 1 se interpreta como
// porcentaje (16 → 0.16); una tarifa negativa usa DefaultTaxRate.
func NewCalculator(taxRate decimal.Decimal) *Calculator {
	if taxRate.IsNegative() {
		taxRate = DefaultTaxRate
	}
	if taxRate.GreaterThan(decimal.NewFromInt(1)) {
		taxRate = taxRate.Div(hundred)
	}
	return &Calculator{taxRate: taxRate}
}

// TaxRate devuelve la tarifa como fracción (0.16).
func (c *Calculator) TaxRate() decimal.Decimal { return c.taxRate }

// ComputeLine devuelve el total de la línea después de descuento.
func (c *Calculator) ComputeLine(unitPrice decimal.Decimal, quantity int, discountPercent decimal.Decimal) (decimal.Decimal, error) {
	if err := validateLine(unitPrice, quantity, discountPercent); err != nil {
		return decimal.Zero, err
	}
	return lineTotal(unitPrice, quantity, discountPercent), nil
}

// PriceLine completa los campos derivados de la línea.
func (c *Calculator) PriceLine(line entity.LineItem) (entity.LineItem, error) {
	if err := validateLine(line.UnitPrice, line.Quantity, line.DiscountPercent); err != nil {
		return line, err
	}
	q := decimal.NewFromInt(int64(line.Quantity))
	line.Gross = round(line.UnitPrice.Mul(q))
	line.LineTotal = lineTotal(line.UnitPrice, line.Quantity, line.DiscountPercent)
	line.Discount = line.Gross.Sub(line.LineTotal)
	return line, nil
}

// ComputeTotals valida y valora cada línea y agrega los totales del carrito.
// Devuelve una copia de las líneas con sus campos derivados.
func (c *Calculator) ComputeTotals(lines []entity.LineItem) ([]entity.LineItem, Totals, error) {
	if len(lines) == 0 {
		return nil, Totals{}, domain.ErrEmptyCart
	}
	priced := make([]entity.LineItem, 0, len(lines))
	var t Totals
	for _, l := range lines {
		p, err := c.PriceLine(l)
		if err != nil {
			return nil, Totals{}, err
		}
		t.Subtotal = t.Subtotal.Add(p.Gross)
		t.DiscountTotal = t.DiscountTotal.Add(p.Discount)
		t.TaxableBase = t.TaxableBase.Add(p.LineTotal)
		priced = append(priced, p)
	}
	t.Tax = round(t.TaxableBase.Mul(c.taxRate))
	t.Total = t.TaxableBase.Add(t.Tax)
	return priced, t, nil
}

// ComputeChange devuelve el cambio para un pago en efectivo.
func (c *Calculator) ComputeChange(total, amountTendered decimal.Decimal) (decimal.Decimal, error) {
	if amountTendered.LessThan(total) {
		return decimal.Zero, domain.ErrInsufficientPayment
	}
	return amountTendered.Sub(total), nil
}

func validateLine(unitPrice decimal.Decimal, quantity int, discountPercent decimal.Decimal) error {
	if unitPrice.IsNegative() || quantity < 1 {
		return domain.ErrInvalidLineItem
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return domain.ErrInvalidLineItem
	}
	return nil
}

func lineTotal(unitPrice decimal.Decimal, quantity int, discountPercent decimal.Decimal) decimal.Decimal {
	factor := hundred.Sub(discountPercent).Div(hundred)
	return round(unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Mul(factor))
}

// round redondea half-up a la unidad mínima; los montos nunca son negativos.
func round(d decimal.Decimal) decimal.Decimal { return d.Round(MoneyPlaces) }
