package repository

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// ExpenseRepository define el puerto de persistencia para gastos de caja.
// GetByID devuelve (nil, nil) si el gasto no existe.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Expense, error)
	ListBySession(ctx context.Context, key entity.SessionKey) ([]*entity.Expense, error)
}
