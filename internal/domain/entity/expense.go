package entity

import (
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/shopspring/decimal"
)

// Categorías de gasto de caja.
const (
	ExpenseMaterials ExpenseCategory = "materiales"
	ExpenseServices  ExpenseCategory = "servicios"
	ExpenseDelivery  ExpenseCategory = "domicilios"
	ExpenseOther     ExpenseCategory = "otros"
)

// ExpenseCategory conjunto cerrado de categorías de gasto.
type ExpenseCategory string

// ParseExpenseCategory valida la categoría recibida en la frontera.
func ParseExpenseCategory(s string) (ExpenseCategory, error) {
	switch c := ExpenseCategory(s); c {
	case ExpenseMaterials, ExpenseServices, ExpenseDelivery, ExpenseOther:
		return c, nil
	}
	return "", domain.ErrInvalidExpense
}

// Expense gasto pagado desde la caja del día.
type Expense struct {
	ID           string
	TerminalID   string
	BusinessDate string
	Timestamp    time.Time
	Description  string
	Amount       decimal.Decimal
	Category     ExpenseCategory
	CreatedBy    string
}

// SessionKey devuelve la caja a la que pertenece el gasto.
func (e *Expense) SessionKey() SessionKey {
	return SessionKey{TerminalID: e.TerminalID, Date: e.BusinessDate}
}
