package pos

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RecordExpenseInput gasto a registrar en la caja.
type RecordExpenseInput struct {
	Description string
	Amount      decimal.Decimal
	Category    entity.ExpenseCategory
	CreatedBy   string
}

// ExpenseLedger registra y elimina gastos de una caja abierta.
type ExpenseLedger struct {
	sessions *CashSessionManager
	clock    Clock
}

// NewExpenseLedger construye el libro de gastos.
func NewExpenseLedger(sessions *CashSessionManager, clock Clock) *ExpenseLedger {
	return &ExpenseLedger{sessions: sessions, clock: clock}
}

// Record persiste un gasto. La descripción no puede ser vacía y el monto debe ser positivo.
func (l *ExpenseLedger) Record(ctx context.Context, repos Repositories, key entity.SessionKey, in RecordExpenseInput) (*entity.Expense, error) {
	if _, err := l.sessions.Open(ctx, repos, key); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	if description == "" || !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidExpense
	}
	category, err := entity.ParseExpenseCategory(string(in.Category))
	if err != nil {
		return nil, err
	}
	expense := &entity.Expense{
		ID:           uuid.New().String(),
		TerminalID:   key.TerminalID,
		BusinessDate: key.Date,
		Timestamp:    l.clock.Now(),
		Description:  description,
		Amount:       in.Amount,
		Category:     category,
		CreatedBy:    in.CreatedBy,
	}
	if err := repos.Expenses.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("guardar gasto: %w", err)
	}
	return expense, nil
}

// Remove elimina un gasto mientras su caja siga abierta.
func (l *ExpenseLedger) Remove(ctx context.Context, repos Repositories, expenseID string) (*entity.Expense, error) {
	expense, err := repos.Expenses.GetByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("obtener gasto: %w", err)
	}
	if expense == nil {
		return nil, domain.ErrExpenseNotFound
	}
	if _, err := l.sessions.Open(ctx, repos, expense.SessionKey()); err != nil {
		return nil, err
	}
	if err := repos.Expenses.Delete(ctx, expenseID); err != nil {
		return nil, fmt.Errorf("eliminar gasto: %w", err)
	}
	return expense, nil
}
