package pos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SessionSummary vista de agregados de una caja. Mientras la caja está abierta se
// recalcula en cada lectura a partir de las ventas y gastos persistidos.
type SessionSummary struct {
	Key            entity.SessionKey
	Status         entity.SessionStatus
	GrossSales     decimal.Decimal // ventas completadas, todos los medios de pago
	TotalExpenses  decimal.Decimal
	NetProfit      decimal.Decimal
	ExpectedCash   decimal.Decimal // ventas completadas en efectivo
	SalesByMethod  map[entity.PaymentMethod]decimal.Decimal
	CompletedSales int
	VoidedSales    int
	ExpenseCount   int
}

// CashSessionManager administra la máquina de estados Open → Closed de cada caja.
type CashSessionManager struct {
	clock Clock
}

// NewCashSessionManager construye el administrador de cajas.
func NewCashSessionManager(clock Clock) *CashSessionManager {
	return &CashSessionManager{clock: clock}
}

// Open devuelve la caja abierta para key, creándola si es la primera operación del día.
// Falla con domain.ErrSessionClosed si la caja ya se cerró.
func (m *CashSessionManager) Open(ctx context.Context, repos Repositories, key entity.SessionKey) (*entity.CashSession, error) {
	session, err := repos.Sessions.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("obtener caja %s: %w", key, err)
	}
	if session == nil {
		session = &entity.CashSession{
			TerminalID: key.TerminalID,
			Date:       key.Date,
			Status:     entity.SessionOpen,
			OpenedAt:   m.clock.Now(),
		}
		if err := repos.Sessions.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("abrir caja %s: %w", key, err)
		}
		return session, nil
	}
	if session.IsClosed() {
		return nil, domain.ErrSessionClosed
	}
	return session, nil
}

// Summary calcula los agregados actuales de la caja sin modificarla.
func (m *CashSessionManager) Summary(ctx context.Context, repos Repositories, key entity.SessionKey) (*SessionSummary, error) {
	session, err := repos.Sessions.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("obtener caja %s: %w", key, err)
	}
	sales, err := repos.Sales.ListBySession(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("listar ventas %s: %w", key, err)
	}
	expenses, err := repos.Expenses.ListBySession(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("listar gastos %s: %w", key, err)
	}
	summary := aggregate(key, sales, expenses)
	if session != nil {
		summary.Status = session.Status
	}
	return summary, nil
}

// Close cierra la caja de forma irreversible y persiste el ClosingSnapshot.
func (m *CashSessionManager) Close(ctx context.Context, repos Repositories, key entity.SessionKey, countedCash decimal.Decimal, notes, closedBy string) (*entity.ClosingSnapshot, error) {
	if countedCash.IsNegative() {
		return nil, domain.ErrInvalidCountedCash
	}
	session, err := repos.Sessions.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("obtener caja %s: %w", key, err)
	}
	if session != nil && session.IsClosed() {
		return nil, domain.ErrAlreadyClosed
	}
	if session == nil {
		// Caja sin movimientos: se abre y se cierra en la misma transacción.
		if session, err = m.Open(ctx, repos, key); err != nil {
			return nil, err
		}
	}

	summary, err := m.Summary(ctx, repos, key)
	if err != nil {
		return nil, err
	}
	now := m.clock.Now()
	snapshot := &entity.ClosingSnapshot{
		TerminalID:     key.TerminalID,
		Date:           key.Date,
		GrossSales:     summary.GrossSales,
		TotalExpenses:  summary.TotalExpenses,
		NetProfit:      summary.NetProfit,
		ExpectedCash:   summary.ExpectedCash,
		CountedCash:    countedCash,
		Variance:       countedCash.Sub(summary.ExpectedCash),
		SalesByMethod:  summary.SalesByMethod,
		CompletedSales: summary.CompletedSales,
		VoidedSales:    summary.VoidedSales,
		ExpenseCount:   summary.ExpenseCount,
		Notes:          strings.TrimSpace(notes),
		ClosedAt:       now,
		ClosedBy:       closedBy,
	}
	if err := repos.Sessions.CreateSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("guardar cierre %s: %w", key, err)
	}
	session.Status = entity.SessionClosed
	session.ClosedAt = &now
	if err := repos.Sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("cerrar caja %s: %w", key, err)
	}
	return snapshot, nil
}

// Snapshot devuelve el cierre de la caja. domain.ErrSnapshotNotFound si no se ha cerrado.
func (m *CashSessionManager) Snapshot(ctx context.Context, repos Repositories, key entity.SessionKey) (*entity.ClosingSnapshot, error) {
	snapshot, err := repos.Sessions.GetSnapshot(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("obtener cierre %s: %w", key, err)
	}
	if snapshot == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return snapshot, nil
}

// aggregate suma ventas completadas y gastos. Las ventas anuladas no aportan a ningún total.
func aggregate(key entity.SessionKey, sales []*entity.Sale, expenses []*entity.Expense) *SessionSummary {
	s := &SessionSummary{
		Key:           key,
		Status:        entity.SessionOpen,
		SalesByMethod: make(map[entity.PaymentMethod]decimal.Decimal),
	}
	for _, sale := range sales {
		if sale.IsVoided() {
			s.VoidedSales++
			continue
		}
		s.CompletedSales++
		s.GrossSales = s.GrossSales.Add(sale.Total)
		s.SalesByMethod[sale.PaymentMethod] = s.SalesByMethod[sale.PaymentMethod].Add(sale.Total)
		if sale.PaymentMethod.IsCash() {
			s.ExpectedCash = s.ExpectedCash.Add(sale.Total)
		}
	}
	for _, e := range expenses {
		s.ExpenseCount++
		s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
	}
	s.NetProfit = s.GrossSales.Sub(s.TotalExpenses)
	return s
}
