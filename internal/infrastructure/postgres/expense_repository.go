package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.ExpenseRepository = (*ExpenseRepo)(nil)

// ExpenseRepo implementación de ExpenseRepository (usable con pool o tx).
type ExpenseRepo struct {
	q Querier
}

// NewExpenseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExpenseRepository(q Querier) *ExpenseRepo {
	return &ExpenseRepo{q: q}
}

const expenseColumns = `
	id, terminal_id, to_char(business_date, 'YYYY-MM-DD'), created_at, description, amount, category, created_by`

// Create persiste un gasto.
func (r *ExpenseRepo) Create(ctx context.Context, e *entity.Expense) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO pos_expenses (id, terminal_id, business_date, created_at, description, amount, category, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.TerminalID, e.BusinessDate, e.Timestamp, e.Description, e.Amount, string(e.Category), nullIfEmpty(e.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// Delete elimina un gasto por ID.
func (r *ExpenseRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM pos_expenses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// GetByID obtiene un gasto. Retorna nil, nil si no existe.
func (r *ExpenseRepo) GetByID(ctx context.Context, id string) (*entity.Expense, error) {
	e, err := scanExpense(r.q.QueryRow(ctx, `SELECT `+expenseColumns+` FROM pos_expenses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListBySession gastos de la caja en orden de registro.
func (r *ExpenseRepo) ListBySession(ctx context.Context, key entity.SessionKey) ([]*entity.Expense, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+expenseColumns+` FROM pos_expenses WHERE terminal_id = $1 AND business_date = $2 ORDER BY created_at, id`,
		key.TerminalID, key.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	list := []*entity.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanExpense(row pgx.Row) (*entity.Expense, error) {
	var (
		e         entity.Expense
		category  string
		createdBy *string
	)
	if err := row.Scan(&e.ID, &e.TerminalID, &e.BusinessDate, &e.Timestamp, &e.Description, &e.Amount, &category, &createdBy); err != nil {
		return nil, err
	}
	e.Category = entity.ExpenseCategory(category)
	e.CreatedBy = textOrEmpty(createdBy)
	return &e, nil
}
