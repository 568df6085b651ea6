package domain

import "errors"

// Errores de dominio del punto de venta (sin dependencias externas).
// Todos son rechazos definitivos: el llamador no debe reintentar.
var (
	ErrEmptyCart           = errors.New("el carrito está vacío")
	ErrInvalidLineItem     = errors.New("línea de venta inválida (cantidad o descuento)")
	ErrInsufficientPayment = errors.New("el efectivo recibido no cubre el total")
	ErrSaleNotFound        = errors.New("venta no encontrada")
	ErrAlreadyVoided       = errors.New("la venta ya está anulada")
	ErrInvalidReturnLine   = errors.New("línea de devolución no corresponde a la venta")
	ErrExpenseNotFound     = errors.New("gasto no encontrado")
	ErrInvalidExpense      = errors.New("gasto inválido")
	ErrInvalidCountedCash  = errors.New("el efectivo contado no puede ser negativo")
	ErrAlreadyClosed       = errors.New("la caja ya fue cerrada")
	ErrSessionClosed       = errors.New("la caja del día está cerrada")

	// Errores de frontera (entrada o colaboradores).
	ErrInvalidPaymentMethod = errors.New("método de pago desconocido")
	ErrProductNotFound      = errors.New("producto no encontrado")
	ErrProductUnavailable   = errors.New("producto no disponible")
	ErrSnapshotNotFound     = errors.New("no existe cierre de caja para la fecha")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrPersistence          = errors.New("error de persistencia")
)

// codes asocia cada error de la taxonomía con un código estable para los llamadores.
var codes = []struct {
	err  error
	code string
}{
	{ErrEmptyCart, "EMPTY_CART"},
	{ErrInvalidLineItem, "INVALID_LINE_ITEM"},
	{ErrInsufficientPayment, "INSUFFICIENT_PAYMENT"},
	{ErrSaleNotFound, "SALE_NOT_FOUND"},
	{ErrAlreadyVoided, "ALREADY_VOIDED"},
	{ErrInvalidReturnLine, "INVALID_RETURN_LINE"},
	{ErrExpenseNotFound, "EXPENSE_NOT_FOUND"},
	{ErrInvalidExpense, "INVALID_EXPENSE"},
	{ErrInvalidCountedCash, "INVALID_COUNTED_CASH"},
	{ErrAlreadyClosed, "ALREADY_CLOSED"},
	{ErrSessionClosed, "SESSION_CLOSED"},
	{ErrInvalidPaymentMethod, "INVALID_PAYMENT_METHOD"},
	{ErrProductNotFound, "PRODUCT_NOT_FOUND"},
	{ErrProductUnavailable, "PRODUCT_UNAVAILABLE"},
	{ErrSnapshotNotFound, "SNAPSHOT_NOT_FOUND"},
	{ErrInvalidInput, "VALIDATION"},
	{ErrPersistence, "PERSISTENCE"},
}

// Code devuelve el código estable del error (ej. "SESSION_CLOSED").
// Errores fuera de la taxonomía se reportan como "INTERNAL".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL"
}

// IsDomainError indica si err pertenece a la taxonomía (rechazo de negocio o de frontera),
// excluyendo fallos de persistencia.
func IsDomainError(err error) bool {
	code := Code(err)
	return code != "" && code != "INTERNAL" && code != "PERSISTENCE"
}
