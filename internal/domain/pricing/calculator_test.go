package pricing_test

import (
	"testing"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(price string, qty int, discount string) entity.LineItem {
	return entity.LineItem{ProductRef: "p-" + price, UnitPrice: d(price), Quantity: qty, DiscountPercent: d(discount)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Carrito de referencia: 2 × 2.500 sin descuento + 1 × 3.200 con 10 %, IVA 16 %.
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeTotals_CarritoDeReferencia(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxRate)

	lines, totals, err := calc.ComputeTotals([]entity.LineItem{
		line("2500", 2, "0"),
		line("3200", 1, "10"),
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.True(t, d("8200").Equal(totals.Subtotal), "subtotal %s", totals.Subtotal)
	assert.True(t, d("320").Equal(totals.DiscountTotal), "descuento %s", totals.DiscountTotal)
	assert.True(t, d("7880").Equal(totals.TaxableBase), "base %s", totals.TaxableBase)
	assert.True(t, d("1261").Equal(totals.Tax), "IVA %s (1260.8 redondeado)", totals.Tax)
	assert.True(t, d("9141").Equal(totals.Total), "total %s", totals.Total)

	assert.True(t, d("5000").Equal(lines[0].LineTotal))
	assert.True(t, d("2880").Equal(lines[1].LineTotal))
	assert.True(t, d("320").Equal(lines[1].Discount))
}

func TestComputeTotals_BaseEsSumaDeLineas(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxRate)
	cart := []entity.LineItem{
		line("1999", 3, "12.5"),
		line("450", 7, "33"),
		line("12345", 1, "100"),
		line("0", 4, "0"),
		line("875", 2, "5"),
	}
	lines, totals, err := calc.ComputeTotals(cart)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal)
		assert.True(t, l.Gross.Sub(l.Discount).Equal(l.LineTotal))
	}
	assert.True(t, sum.Equal(totals.TaxableBase))
	assert.True(t, totals.Subtotal.Sub(totals.DiscountTotal).Equal(totals.TaxableBase))
	expectedTax := totals.TaxableBase.Mul(d("0.16")).Round(0)
	assert.True(t, totals.TaxableBase.Add(expectedTax).Equal(totals.Total))
}

func TestComputeLine_Redondeo(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxRate)
	cases := []struct {
		name     string
		price    string
		qty      int
		discount string
		want     string
	}{
		{"sin descuento", "2500", 2, "0", "5000"},
		{"descuento total", "2500", 2, "100", "0"},
		{"medio peso redondea hacia arriba", "5", 1, "50", "3"},   // 2.5 → 3
		{"fracción menor a medio", "333", 1, "33.4", "222"},       // 221.778 → 222
		{"precio con centavos", "1000.50", 3, "0", "3002"},        // 3001.5 → 3002
		{"descuento fraccionario", "1000", 3, "12.25", "2633"},    // 2632.5 → 2633
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := calc.ComputeLine(d(tc.price), tc.qty, d(tc.discount))
			require.NoError(t, err)
			assert.True(t, d(tc.want).Equal(got), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

func TestComputeTotals_Rechazos(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxRate)

	_, _, err := calc.ComputeTotals(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	for _, bad := range []entity.LineItem{
		line("1000", 0, "0"),
		line("1000", -2, "0"),
		line("1000", 1, "-1"),
		line("1000", 1, "100.01"),
		line("-5", 1, "0"),
	} {
		_, _, err := calc.ComputeTotals([]entity.LineItem{line("100", 1, "0"), bad})
		assert.ErrorIs(t, err, domain.ErrInvalidLineItem, "línea %+v", bad)
	}
}

func TestComputeChange(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxRate)

	change, err := calc.ComputeChange(d("9141"), d("10000"))
	require.NoError(t, err)
	assert.True(t, d("859").Equal(change))

	change, err = calc.ComputeChange(d("9141"), d("9141"))
	require.NoError(t, err)
	assert.True(t, change.IsZero())

	_, err = calc.ComputeChange(d("9141"), d("9000"))
	assert.ErrorIs(t, err, domain.ErrInsufficientPayment)
}

func TestNewCalculator_TarifaComoPorcentaje(t *testing.T) {
	assert.True(t, d("0.16").Equal(pricing.NewCalculator(d("16")).TaxRate()))
	assert.True(t, d("0.19").Equal(pricing.NewCalculator(d("0.19")).TaxRate()))
	assert.True(t, pricing.DefaultTaxRate.Equal(pricing.NewCalculator(d("-1")).TaxRate()))
}
