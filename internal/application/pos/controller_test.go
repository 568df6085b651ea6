package pos_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/pos"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testTerminal = "caja1"
	testUser     = "00000000-0000-0000-0000-000000000001"
)

var bogota = time.FixedZone("COT", -5*3600)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func moneyPtr(s string) *decimal.Decimal {
	d := money(s)
	return &d
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "%s: esperado %s, obtenido %s", msg, want, got)
}

func newTestController(t *testing.T) (*pos.Controller, *fixedClock) {
	t.Helper()
	clock := &fixedClock{now: time.Date(2026, 10, 19, 10, 0, 0, 0, bogota)}
	catalog := memory.NewCatalog(
		pos.ProductInfo{Ref: "acetaminofen-500", Name: "Acetaminofén 500 mg x 10", UnitPrice: money("2500"), Available: true},
		pos.ProductInfo{Ref: "ibuprofeno-400", Name: "Ibuprofeno 400 mg x 10", UnitPrice: money("3200"), Available: true},
		pos.ProductInfo{Ref: "suero-oral", Name: "Suero oral 500 ml", UnitPrice: money("4800"), Available: false},
	)
	ctrl := pos.NewController(
		memory.NewStore(), catalog, clock,
		pos.Config{TaxRate: money("0.16"), Location: bogota},
		zerolog.Nop(),
	)
	return ctrl, clock
}

// referenceCart: 2 × 2.500 sin descuento + 1 × 3.200 con 10 % → total 9.141.
func referenceCart(method string, tendered *decimal.Decimal) dto.CompleteSaleRequest {
	return dto.CompleteSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductRef: "acetaminofen-500", Quantity: 2},
			{ProductRef: "ibuprofeno-400", Quantity: 1, DiscountPercent: money("10")},
		},
		PaymentMethod:  method,
		AmountTendered: tendered,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestCompleteSale_EfectivoConCambio(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	sale, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", moneyPtr("10000")))
	require.NoError(t, err)

	assertMoney(t, "8200", sale.Subtotal, "subtotal")
	assertMoney(t, "320", sale.DiscountTotal, "descuento")
	assertMoney(t, "7880", sale.TaxableBase, "base gravable")
	assertMoney(t, "1261", sale.Tax, "IVA")
	assertMoney(t, "9141", sale.Total, "total")
	require.NotNil(t, sale.ChangeDue)
	assertMoney(t, "859", *sale.ChangeDue, "cambio")
	assert.Equal(t, "CAJA1-20261019-0001", sale.Code)
	assert.Equal(t, "2026-10-19", sale.BusinessDate)
	assert.Equal(t, "COMPLETED", sale.Status)
	assert.Nil(t, sale.CustomerID, "sin cliente = consumidor final")
	assert.Equal(t, "Consumidor final", sale.CustomerName)
	assert.Equal(t, "Acetaminofén 500 mg x 10", sale.Items[0].ProductName)
}

func TestCompleteSale_PagoInsuficienteNoPersiste(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", moneyPtr("9000")))
	require.ErrorIs(t, err, domain.ErrInsufficientPayment)

	_, err = ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", nil))
	require.ErrorIs(t, err, domain.ErrInsufficientPayment, "efectivo sin monto recibido")

	sales, err := ctrl.ListSales(ctx, testTerminal, "")
	require.NoError(t, err)
	assert.Empty(t, sales, "una venta rechazada no deja rastro")

	sale, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", moneyPtr("9141")))
	require.NoError(t, err)
	assert.Equal(t, "CAJA1-20261019-0001", sale.Code, "el consecutivo no avanza con ventas fallidas")
	assertMoney(t, "0", *sale.ChangeDue, "pago exacto")
}

func TestCompleteSale_MediosNoEfectivoSinCambio(t *testing.T) {
	ctrl, _ := newTestController(t)

	sale, err := ctrl.CompleteSale(context.Background(), testTerminal, testUser, referenceCart("nequi", moneyPtr("50000")))
	require.NoError(t, err)
	assert.Nil(t, sale.AmountTendered)
	assert.Nil(t, sale.ChangeDue)
	assertMoney(t, "9141", sale.Total, "total")
}

func TestCompleteSale_Rechazos(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.CompleteSaleRequest
		want error
	}{
		{"carrito vacío", dto.CompleteSaleRequest{PaymentMethod: "efectivo", AmountTendered: moneyPtr("1000")}, domain.ErrEmptyCart},
		{"medio de pago desconocido", referenceCart("bitcoin", nil), domain.ErrInvalidPaymentMethod},
		{"cantidad cero", dto.CompleteSaleRequest{
			Items:         []dto.SaleItemRequest{{ProductRef: "acetaminofen-500", Quantity: 0}},
			PaymentMethod: "transferencia",
		}, domain.ErrInvalidLineItem},
		{"descuento mayor a 100", dto.CompleteSaleRequest{
			Items:         []dto.SaleItemRequest{{ProductRef: "acetaminofen-500", Quantity: 1, DiscountPercent: money("101")}},
			PaymentMethod: "transferencia",
		}, domain.ErrInvalidLineItem},
		{"producto inexistente", dto.CompleteSaleRequest{
			Items:         []dto.SaleItemRequest{{ProductRef: "no-existe", Quantity: 1}},
			PaymentMethod: "transferencia",
		}, domain.ErrProductNotFound},
		{"producto no disponible", dto.CompleteSaleRequest{
			Items:         []dto.SaleItemRequest{{ProductRef: "suero-oral", Quantity: 1}},
			PaymentMethod: "transferencia",
		}, domain.ErrProductUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ctrl.CompleteSale(ctx, testTerminal, testUser, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCompleteSale_PrecioCapturadoYCliente(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	req := dto.CompleteSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductRef: "acetaminofen-500", Quantity: 1, UnitPrice: moneyPtr("2000")}},
		PaymentMethod: "tarjeta_debito",
		Customer:      &dto.CustomerRequest{TaxID: "1020304050", Name: "María Pérez"},
	}
	first, err := ctrl.CompleteSale(ctx, testTerminal, testUser, req)
	require.NoError(t, err)
	assertMoney(t, "2000", first.Items[0].UnitPrice, "precio capturado en el carrito")
	require.NotNil(t, first.CustomerID)
	assert.Equal(t, "María Pérez", first.CustomerName)

	second, err := ctrl.CompleteSale(ctx, testTerminal, testUser, req)
	require.NoError(t, err)
	assert.Equal(t, *first.CustomerID, *second.CustomerID, "el mismo documento resuelve al mismo cliente")
	assert.Equal(t, "CAJA1-20261019-0002", second.Code)
}

func TestCompleteSale_DocumentoNormalizado(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()
	sale := func(doc string) (*dto.SaleResponse, error) {
		return ctrl.CompleteSale(ctx, testTerminal, testUser, dto.CompleteSaleRequest{
			Items:         []dto.SaleItemRequest{{ProductRef: "acetaminofen-500", Quantity: 1}},
			PaymentMethod: "nequi",
			Customer:      &dto.CustomerRequest{TaxID: doc, Name: "Droguería El Prado SAS"},
		})
	}

	first, err := sale("900.123.456-8")
	require.NoError(t, err)
	second, err := sale("900123456-8")
	require.NoError(t, err)
	require.NotNil(t, first.CustomerID)
	assert.Equal(t, *first.CustomerID, *second.CustomerID)

	_, err = sale("900123456-7")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "dígito de verificación errado")

	third, err := sale("1020304050")
	require.NoError(t, err)
	assert.Equal(t, "CAJA1-20261019-0003", third.Code, "el rechazo no consume consecutivo")
}

func TestCompleteSale_RechazoNoRegistraCliente(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()
	cart := func(name string, tendered *decimal.Decimal) dto.CompleteSaleRequest {
		req := referenceCart("efectivo", tendered)
		req.Customer = &dto.CustomerRequest{TaxID: "1020304050", Name: name}
		return req
	}

	_, err := ctrl.CompleteSale(ctx, testTerminal, testUser, cart("Ana Ruiz", moneyPtr("9000")))
	require.ErrorIs(t, err, domain.ErrInsufficientPayment)

	sale, err := ctrl.CompleteSale(ctx, testTerminal, testUser, cart("Ana María Ruiz", moneyPtr("9141")))
	require.NoError(t, err)
	assert.Equal(t, "Ana María Ruiz", sale.CustomerName, "el cliente de la venta rechazada no quedó registrado")
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación y devoluciones
// ──────────────────────────────────────────────────────────────────────────────

func TestVoidSale_SoloUnaVez(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	sale, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", moneyPtr("10000")))
	require.NoError(t, err)

	voided, err := ctrl.VoidSale(ctx, testTerminal, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "VOIDED", voided.Status)
	assert.NotNil(t, voided.VoidedAt)

	_, err = ctrl.VoidSale(ctx, testTerminal, sale.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyVoided, "la segunda anulación nunca tiene éxito")

	_, err = ctrl.VoidSale(ctx, testTerminal, "no-existe")
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)

	_, err = ctrl.VoidSale(ctx, "caja2", sale.ID)
	assert.ErrorIs(t, err, domain.ErrSaleNotFound, "un terminal no ve ventas de otro")
}

func TestVoidSale_ExcluidaDeAgregados(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	a, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", moneyPtr("10000")))
	require.NoError(t, err)
	_, err = ctrl.VoidSale(ctx, testTerminal, a.ID)
	require.NoError(t, err)

	summary, err := ctrl.Summary(ctx, testTerminal, "")
	require.NoError(t, err)
	assertMoney(t, "0", summary.GrossSales, "ventas brutas")
	assertMoney(t, "0", summary.ExpectedCash, "efectivo esperado")
	assert.Equal(t, 0, summary.CompletedSales)
	assert.Equal(t, 1, summary.VoidedSales)
}

func TestIssueReturn_ParcialAnulaLaVenta(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	sale, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", moneyPtr("10000")))
	require.NoError(t, err)

	note, err := ctrl.IssueReturn(ctx, testTerminal, testUser, sale.ID, dto.ReturnRequest{
		Items:  []dto.ReturnItemRequest{{ProductRef: "ibuprofeno-400", Quantity: 1}},
		Reason: "reacción alérgica",
	})
	require.NoError(t, err)

	// 3.200 con 10 % → 2.880 + IVA 460.8 → 461 → 3.341
	assertMoney(t, "2880", note.Items[0].LineTotal, "línea devuelta con el descuento original")
	assertMoney(t, "461", note.Tax, "IVA devuelto")
	assertMoney(t, "3341", note.AmountRefunded, "reembolso")
	assert.Equal(t, "NC-CAJA1-20261019-0001", note.Code)
	assert.Equal(t, sale.ID, note.SaleID)
	require.NotNil(t, note.Sale)
	assert.Equal(t, "VOIDED", note.Sale.Status, "una devolución anula la venta completa")

	_, err = ctrl.IssueReturn(ctx, testTerminal, testUser, sale.ID, dto.ReturnRequest{})
	assert.ErrorIs(t, err, domain.ErrAlreadyVoided)

	notes, err := ctrl.ListCreditNotes(ctx, testTerminal, "")
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestIssueReturn_DevolucionTotal(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	sale, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("tarjeta_credito", nil))
	require.NoError(t, err)

	note, err := ctrl.IssueReturn(ctx, testTerminal, testUser, sale.ID, dto.ReturnRequest{Reason: "error de despacho"})
	require.NoError(t, err)
	assertMoney(t, "9141", note.AmountRefunded, "sin líneas se devuelve todo")
	assert.Len(t, note.Items, 2)
}

func TestIssueReturn_LineasInvalidas(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	sale, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", moneyPtr("10000")))
	require.NoError(t, err)

	for name, items := range map[string][]dto.ReturnItemRequest{
		"producto ajeno a la venta": {{ProductRef: "suero-oral", Quantity: 1}},
		"cantidad mayor a la vendida": {{ProductRef: "acetaminofen-500", Quantity: 3}},
		"suma de líneas excede":       {{ProductRef: "acetaminofen-500", Quantity: 2}, {ProductRef: "acetaminofen-500", Quantity: 1}},
		"cantidad cero":               {{ProductRef: "acetaminofen-500", Quantity: 0}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ctrl.IssueReturn(ctx, testTerminal, testUser, sale.ID, dto.ReturnRequest{Items: items})
			assert.ErrorIs(t, err, domain.ErrInvalidReturnLine)
		})
	}

	got, err := ctrl.GetSale(ctx, testTerminal, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", got.Status, "una devolución rechazada no anula la venta")
}

// ──────────────────────────────────────────────────────────────────────────────
// Gastos y cierre
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordExpense_Validaciones(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	for name, req := range map[string]dto.RecordExpenseRequest{
		"sin descripción":     {Description: "  ", Amount: money("1000"), Category: "otros"},
		"monto cero":          {Description: "Bolsas", Amount: money("0"), Category: "materiales"},
		"monto negativo":      {Description: "Bolsas", Amount: money("-10"), Category: "materiales"},
		"categoría inválida":  {Description: "Bolsas", Amount: money("1000"), Category: "varios"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ctrl.RecordExpense(ctx, testTerminal, testUser, req)
			assert.ErrorIs(t, err, domain.ErrInvalidExpense)
		})
	}
}

func TestRemoveExpense(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	e, err := ctrl.RecordExpense(ctx, testTerminal, testUser, dto.RecordExpenseRequest{
		Description: "Domicilio cliente", Amount: money("8000"), Category: "domicilios",
	})
	require.NoError(t, err)

	require.NoError(t, ctrl.RemoveExpense(ctx, testTerminal, e.ID))
	assert.ErrorIs(t, ctrl.RemoveExpense(ctx, testTerminal, e.ID), domain.ErrExpenseNotFound)

	list, err := ctrl.ListExpenses(ctx, testTerminal, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCloseSession_GastoSinVentas(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.RecordExpense(ctx, testTerminal, testUser, dto.RecordExpenseRequest{
		Description: "Papel para impresora", Amount: money("45000"), Category: "materiales",
	})
	require.NoError(t, err)

	snap, err := ctrl.CloseSession(ctx, testTerminal, testUser, dto.CloseSessionRequest{CountedCash: money("50000")})
	require.NoError(t, err)
	assertMoney(t, "0", snap.GrossSales, "ventas brutas")
	assertMoney(t, "45000", snap.TotalExpenses, "gastos")
	assertMoney(t, "-45000", snap.NetProfit, "utilidad neta")
	assertMoney(t, "0", snap.ExpectedCash, "efectivo esperado")
	assertMoney(t, "50000", snap.Variance, "diferencia")

	stored, err := ctrl.ClosingSnapshot(ctx, testTerminal, "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, snap, stored, "el cierre consultado es el mismo que se emitió")

	summary, err := ctrl.Summary(ctx, testTerminal, "")
	require.NoError(t, err)
	assert.Equal(t, "CLOSED", summary.Status)
}

func TestCloseSession_CajaCerradaBloqueaMutaciones(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	sale, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", moneyPtr("10000")))
	require.NoError(t, err)
	expense, err := ctrl.RecordExpense(ctx, testTerminal, testUser, dto.RecordExpenseRequest{
		Description: "Aseo", Amount: money("5000"), Category: "servicios",
	})
	require.NoError(t, err)

	_, err = ctrl.CloseSession(ctx, testTerminal, testUser, dto.CloseSessionRequest{CountedCash: money("9141")})
	require.NoError(t, err)

	_, err = ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", moneyPtr("10000")))
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	_, err = ctrl.VoidSale(ctx, testTerminal, sale.ID)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	_, err = ctrl.IssueReturn(ctx, testTerminal, testUser, sale.ID, dto.ReturnRequest{})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	_, err = ctrl.RecordExpense(ctx, testTerminal, testUser, dto.RecordExpenseRequest{
		Description: "Aseo", Amount: money("5000"), Category: "servicios",
	})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	assert.ErrorIs(t, ctrl.RemoveExpense(ctx, testTerminal, expense.ID), domain.ErrSessionClosed)

	_, err = ctrl.CloseSession(ctx, testTerminal, testUser, dto.CloseSessionRequest{CountedCash: money("9141")})
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)

	snap, err := ctrl.ClosingSnapshot(ctx, testTerminal, "")
	require.NoError(t, err)
	assertMoney(t, "9141", snap.GrossSales, "el cierre no cambia después de cerrar")
	assertMoney(t, "0", snap.Variance, "diferencia")
}

func TestCompleteSale_CajaCerradaPrevaleceSobreValidaciones(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.CloseSession(ctx, testTerminal, testUser, dto.CloseSessionRequest{CountedCash: money("0")})
	require.NoError(t, err)

	withCustomer := referenceCart("transferencia", nil)
	withCustomer.Customer = &dto.CustomerRequest{TaxID: "900123456-7", Name: "NIT errado"}

	cases := []struct {
		name string
		req  dto.CompleteSaleRequest
	}{
		{"carrito vacío", dto.CompleteSaleRequest{PaymentMethod: "efectivo", AmountTendered: moneyPtr("1000")}},
		{"medio de pago desconocido", referenceCart("bitcoin", nil)},
		{"producto inexistente", dto.CompleteSaleRequest{
			Items:         []dto.SaleItemRequest{{ProductRef: "no-existe", Quantity: 1}},
			PaymentMethod: "transferencia",
		}},
		{"producto no disponible", dto.CompleteSaleRequest{
			Items:         []dto.SaleItemRequest{{ProductRef: "suero-oral", Quantity: 1}},
			PaymentMethod: "transferencia",
		}},
		{"cantidad cero", dto.CompleteSaleRequest{
			Items:         []dto.SaleItemRequest{{ProductRef: "acetaminofen-500", Quantity: 0}},
			PaymentMethod: "transferencia",
		}},
		{"documento inválido", withCustomer},
		{"efectivo insuficiente", referenceCart("efectivo", moneyPtr("1"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ctrl.CompleteSale(ctx, testTerminal, testUser, tc.req)
			assert.ErrorIs(t, err, domain.ErrSessionClosed)
		})
	}
}

func TestCloseSession_NuevoDiaAbreNuevaCaja(t *testing.T) {
	ctrl, clock := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.CloseSession(ctx, testTerminal, testUser, dto.CloseSessionRequest{CountedCash: money("0")})
	require.NoError(t, err)

	clock.Set(time.Date(2026, 10, 20, 7, 30, 0, 0, bogota))
	sale, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("transferencia", nil))
	require.NoError(t, err)
	assert.Equal(t, "CAJA1-20261020-0001", sale.Code)

	other, err := ctrl.CompleteSale(ctx, "caja2", testUser, referenceCart("transferencia", nil))
	require.NoError(t, err)
	assert.Equal(t, "CAJA2-20261020-0001", other.Code, "cada terminal lleva su propio consecutivo")
}

func TestCloseSession_Rechazos(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.CloseSession(ctx, testTerminal, testUser, dto.CloseSessionRequest{CountedCash: money("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidCountedCash)

	_, err = ctrl.CloseSession(ctx, testTerminal, testUser, dto.CloseSessionRequest{Date: "19/10/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ctrl.ClosingSnapshot(ctx, testTerminal, "2026-10-18")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestCloseSession_FechaFuturaRechazada(t *testing.T) {
	ctrl, clock := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.CloseSession(ctx, testTerminal, testUser, dto.CloseSessionRequest{Date: "2026-10-25", CountedCash: money("0")})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ctrl.ClosingSnapshot(ctx, testTerminal, "2026-10-25")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "el rechazo no deja cierre")

	clock.Set(time.Date(2026, 10, 25, 8, 0, 0, 0, bogota))
	sale, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("transferencia", nil))
	require.NoError(t, err, "la caja de ese día sigue abierta cuando llega")
	assert.Equal(t, "CAJA1-20261025-0001", sale.Code)

	snap, err := ctrl.CloseSession(ctx, testTerminal, testUser, dto.CloseSessionRequest{Date: "2026-10-24", CountedCash: money("0")})
	require.NoError(t, err, "un día pasado pendiente sí se puede cerrar")
	assert.Equal(t, "2026-10-24", snap.Date)
}

func TestReconciliacion_EfectivoEsperadoSoloEfectivo(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	cash1, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", moneyPtr("10000")))
	require.NoError(t, err)
	_, err = ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", moneyPtr("20000")))
	require.NoError(t, err)
	_, err = ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("tarjeta_debito", nil))
	require.NoError(t, err)
	_, err = ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("daviplata", nil))
	require.NoError(t, err)
	_, err = ctrl.VoidSale(ctx, testTerminal, cash1.ID)
	require.NoError(t, err)
	_, err = ctrl.RecordExpense(ctx, testTerminal, testUser, dto.RecordExpenseRequest{
		Description: "Mensajería", Amount: money("6000"), Category: "domicilios",
	})
	require.NoError(t, err)

	snap, err := ctrl.CloseSession(ctx, testTerminal, testUser, dto.CloseSessionRequest{CountedCash: money("9000"), Notes: "faltante de monedas"})
	require.NoError(t, err)
	assertMoney(t, "27423", snap.GrossSales, "3 ventas completadas × 9.141")
	assertMoney(t, "9141", snap.ExpectedCash, "solo efectivo no anulado")
	assertMoney(t, "21423", snap.NetProfit, "utilidad neta")
	assertMoney(t, "-141", snap.Variance, "faltante")
	assertMoney(t, "9141", snap.SalesByMethod["tarjeta_debito"], "débito")
	assert.Equal(t, 3, snap.CompletedSales)
	assert.Equal(t, 1, snap.VoidedSales)
	assert.Equal(t, "faltante de monedas", snap.Notes)

	history, err := ctrl.ListClosings(ctx, testTerminal, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "2026-10-19", history[0].Date)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestCompleteSale_ConcurrenteConsecutivosUnicos(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()
	const n = 40

	codes := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sale, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", moneyPtr("10000")))
			if assert.NoError(t, err) {
				codes <- sale.Code
			}
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool, n)
	for c := range codes {
		assert.False(t, seen[c], "consecutivo repetido %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen[fmt.Sprintf("CAJA1-20261019-%04d", n)])
}

func TestCloseSession_ConcurrenteConAnulacion(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	sale, err := ctrl.CompleteSale(ctx, testTerminal, testUser, referenceCart("efectivo", moneyPtr("10000")))
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		voidErr error
		snap    *dto.ClosingSnapshotResponse
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, voidErr = ctrl.VoidSale(ctx, testTerminal, sale.ID)
	}()
	go func() {
		defer wg.Done()
		var err error
		snap, err = ctrl.CloseSession(ctx, testTerminal, testUser, dto.CloseSessionRequest{CountedCash: money("0")})
		assert.NoError(t, err)
	}()
	wg.Wait()
	require.NotNil(t, snap)

	// O la anulación ocurrió antes del cierre (y el cierre la excluye) o fue rechazada.
	if voidErr == nil {
		assertMoney(t, "0", snap.ExpectedCash, "anulada antes del cierre")
		assert.Equal(t, 1, snap.VoidedSales)
	} else {
		assert.ErrorIs(t, voidErr, domain.ErrSessionClosed)
		assertMoney(t, "9141", snap.ExpectedCash, "cerrada antes de anular")
	}
}
