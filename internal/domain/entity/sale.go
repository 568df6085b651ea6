package entity

import (
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/shopspring/decimal"
)

// Estados de una venta. Completed → Voided es la única transición.
const (
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusVoided    SaleStatus = "VOIDED"
)

// SaleStatus estado del ciclo de vida de la venta.
type SaleStatus string

// Métodos de pago aceptados en caja. Solo efectivo maneja recibido/cambio.
const (
	PaymentCash       PaymentMethod = "efectivo"
	PaymentDebitCard  PaymentMethod = "tarjeta_debito"
	PaymentCreditCard PaymentMethod = "tarjeta_credito"
	PaymentTransfer   PaymentMethod = "transferencia"
	PaymentNequi      PaymentMethod = "nequi"
	PaymentDaviplata  PaymentMethod = "daviplata"
)

// PaymentMethod conjunto cerrado de medios de pago.
type PaymentMethod string

// PaymentMethods devuelve todos los medios de pago en orden de presentación.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentCash, PaymentDebitCard, PaymentCreditCard,
		PaymentTransfer, PaymentNequi, PaymentDaviplata,
	}
}

// ParsePaymentMethod valida un medio de pago recibido en la frontera.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, m := range PaymentMethods() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", domain.ErrInvalidPaymentMethod
}

// IsCash indica si el medio de pago exige efectivo recibido y cambio.
func (m PaymentMethod) IsCash() bool { return m == PaymentCash }

// Sale representa una venta de mostrador. Los totales son derivados e inmutables;
// la única mutación posterior permitida es la anulación.
type Sale struct {
	ID            string
	TerminalID    string
	BusinessDate  string // YYYY-MM-DD, día de la caja dueña de la venta
	Code          string // consecutivo legible, único por caja
	Timestamp     time.Time
	CustomerID    *string // nil = consumidor final
	CustomerName  string
	PaymentMethod PaymentMethod
	Lines         []LineItem
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxableBase   decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	// Solo para PaymentCash.
	AmountTendered *decimal.Decimal
	ChangeDue      *decimal.Decimal
	Status         SaleStatus
	VoidedAt       *time.Time
	CreatedBy      string
}

// SessionKey devuelve la caja a la que pertenece la venta.
func (s *Sale) SessionKey() SessionKey {
	return SessionKey{TerminalID: s.TerminalID, Date: s.BusinessDate}
}

// IsVoided indica si la venta fue anulada.
func (s *Sale) IsVoided() bool { return s.Status == SaleStatusVoided }

// Void marca la venta como anulada. Falla si ya lo estaba.
func (s *Sale) Void(at time.Time) error {
	if s.IsVoided() {
		return domain.ErrAlreadyVoided
	}
	s.Status = SaleStatusVoided
	s.VoidedAt = &at
	return nil
}
