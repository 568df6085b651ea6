package pos

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// CompleteSaleInput venta ya valorada con precios del catálogo.
type CompleteSaleInput struct {
	Lines          []entity.LineItem
	PaymentMethod  entity.PaymentMethod
	AmountTendered *decimal.Decimal // obligatorio solo en efectivo
	Customer       CustomerHandle
	CreatedBy      string
}

// ReturnLine producto y cantidad devueltos.
type ReturnLine struct {
	ProductRef string
	Quantity   int
}

// SaleLedger registra ventas, anulaciones y devoluciones dentro de una transacción de caja.
type SaleLedger struct {
	calc     *pricing.Calculator
	sessions *CashSessionManager
	clock    Clock
}

// NewSaleLedger construye el libro de ventas.
func NewSaleLedger(calc *pricing.Calculator, sessions *CashSessionManager, clock Clock) *SaleLedger {
	return &SaleLedger{calc: calc, sessions: sessions, clock: clock}
}

// Complete valida el carrito, asigna el consecutivo de la caja y persiste la venta completada.
func (l *SaleLedger) Complete(ctx context.Context, repos Repositories, key entity.SessionKey, in CompleteSaleInput) (*entity.Sale, error) {
	session, err := l.sessions.Open(ctx, repos, key)
	if err != nil {
		return nil, err
	}
	if _, err := entity.ParsePaymentMethod(string(in.PaymentMethod)); err != nil {
		return nil, err
	}
	lines, totals, err := l.calc.ComputeTotals(in.Lines)
	if err != nil {
		return nil, err
	}

	sale := &entity.Sale{
		ID:            uuid.New().String(),
		TerminalID:    key.TerminalID,
		BusinessDate:  key.Date,
		Timestamp:     l.clock.Now(),
		CustomerName:  in.Customer.Name,
		PaymentMethod: in.PaymentMethod,
		Lines:         lines,
		Subtotal:      totals.Subtotal,
		DiscountTotal: totals.DiscountTotal,
		TaxableBase:   totals.TaxableBase,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Status:        entity.SaleStatusCompleted,
		CreatedBy:     in.CreatedBy,
	}
	if !in.Customer.Generic && in.Customer.ID != "" {
		id := in.Customer.ID
		sale.CustomerID = &id
	}
	if in.PaymentMethod.IsCash() {
		if in.AmountTendered == nil {
			return nil, domain.ErrInsufficientPayment
		}
		change, err := l.calc.ComputeChange(totals.Total, *in.AmountTendered)
		if err != nil {
			return nil, err
		}
		tendered := *in.AmountTendered
		sale.AmountTendered = &tendered
		sale.ChangeDue = &change
	}

	sale.Code = session.NextSaleCode()
	if err := repos.Sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("reservar consecutivo: %w", err)
	}
	if err := repos.Sales.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("guardar venta: %w", err)
	}
	return sale, nil
}

// Void anula una venta completada de una caja abierta. Una segunda anulación
// siempre falla con domain.ErrAlreadyVoided.
func (l *SaleLedger) Void(ctx context.Context, repos Repositories, saleID string) (*entity.Sale, error) {
	sale, err := repos.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("obtener venta: %w", err)
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	if _, err := l.sessions.Open(ctx, repos, sale.SessionKey()); err != nil {
		return nil, err
	}
	if err := sale.Void(l.clock.Now()); err != nil {
		return nil, err
	}
	if err := repos.Sales.UpdateStatus(ctx, sale); err != nil {
		return nil, fmt.Errorf("anular venta: %w", err)
	}
	return sale, nil
}

// IssueReturn emite la nota crédito de las líneas devueltas y anula la venta completa.
// Sin líneas se devuelve la venta entera. El reembolso se calcula con el precio y el
// descuento originales de cada línea, más el IVA.
func (l *SaleLedger) IssueReturn(ctx context.Context, repos Repositories, saleID string, returned []ReturnLine, reason, createdBy string) (*entity.CreditNote, *entity.Sale, error) {
	sale, err := repos.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, nil, fmt.Errorf("obtener venta: %w", err)
	}
	if sale == nil {
		return nil, nil, domain.ErrSaleNotFound
	}
	session, err := l.sessions.Open(ctx, repos, sale.SessionKey())
	if err != nil {
		return nil, nil, err
	}
	if sale.IsVoided() {
		return nil, nil, domain.ErrAlreadyVoided
	}

	lines, err := matchReturnLines(sale.Lines, returned)
	if err != nil {
		return nil, nil, err
	}
	priced, totals, err := l.calc.ComputeTotals(lines)
	if err != nil {
		return nil, nil, err
	}

	note := &entity.CreditNote{
		ID:             uuid.New().String(),
		Code:           session.NextCreditNoteCode(),
		SaleID:         sale.ID,
		TerminalID:     sale.TerminalID,
		BusinessDate:   sale.BusinessDate,
		Timestamp:      l.clock.Now(),
		Lines:          priced,
		Subtotal:       totals.Subtotal,
		DiscountTotal:  totals.DiscountTotal,
		Tax:            totals.Tax,
		AmountRefunded: totals.Total,
		Reason:         strings.TrimSpace(reason),
		CreatedBy:      createdBy,
	}
	if err := repos.Sessions.Save(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("reservar consecutivo: %w", err)
	}
	if err := repos.CreditNotes.Create(ctx, note); err != nil {
		return nil, nil, fmt.Errorf("guardar nota crédito: %w", err)
	}
	voided, err := l.Void(ctx, repos, sale.ID)
	if err != nil {
		return nil, nil, err
	}
	return note, voided, nil
}

// matchReturnLines asigna cada línea devuelta a las líneas originales del mismo producto,
// en orden, sin superar la cantidad vendida.
func matchReturnLines(original []entity.LineItem, returned []ReturnLine) ([]entity.LineItem, error) {
	if len(returned) == 0 {
		out := make([]entity.LineItem, len(original))
		copy(out, original)
		return out, nil
	}
	remaining := make([]int, len(original))
	for i, l := range original {
		remaining[i] = l.Quantity
	}
	var out []entity.LineItem
	for _, r := range returned {
		if r.ProductRef == "" || r.Quantity < 1 {
			return nil, domain.ErrInvalidReturnLine
		}
		pending := r.Quantity
		for i := range original {
			if pending == 0 {
				break
			}
			if original[i].ProductRef != r.ProductRef || remaining[i] == 0 {
				continue
			}
			take := min(pending, remaining[i])
			remaining[i] -= take
			pending -= take
			out = append(out, entity.LineItem{
				ProductRef:      original[i].ProductRef,
				ProductName:     original[i].ProductName,
				UnitPrice:       original[i].UnitPrice,
				Quantity:        take,
				DiscountPercent: original[i].DiscountPercent,
			})
		}
		if pending > 0 {
			return nil, domain.ErrInvalidReturnLine
		}
	}
	return out, nil
}
