package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/farmacia-pos/internal/application/pos"
)

var _ pos.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunPOS inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// La fila de la caja se lee con FOR UPDATE para serializar escritores de otros procesos.
func (r *TxRunner) RunPOS(ctx context.Context, fn func(repos pos.Repositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(repositories(tx, true)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ReadPOS ejecuta fn en una transacción de solo lectura con snapshot consistente.
func (r *TxRunner) ReadPOS(ctx context.Context, fn func(repos pos.Repositories) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(repositories(tx, false)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func repositories(q Querier, forUpdate bool) pos.Repositories {
	return pos.Repositories{
		Sales:       NewSaleRepository(q),
		CreditNotes: NewCreditNoteRepository(q),
		Expenses:    NewExpenseRepository(q),
		Sessions:    &CashSessionRepo{q: q, forUpdate: forUpdate},
		Customers:   NewCustomerDirectory(q),
	}
}
