package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.CashSessionRepository = (*CashSessionRepo)(nil)

// CashSessionRepo implementación de CashSessionRepository: cajas y cierres.
type CashSessionRepo struct {
	q         Querier
	forUpdate bool // bloquea la fila de la caja dentro de la transacción
}

// NewCashSessionRepository construye el adaptador de solo consulta. Pasar pool o tx (Querier).
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

// Get obtiene la caja. Retorna nil, nil si no se ha abierto.
func (r *CashSessionRepo) Get(ctx context.Context, key entity.SessionKey) (*entity.CashSession, error) {
	query := `
		SELECT terminal_id, to_char(business_date, 'YYYY-MM-DD'), status, opened_at, closed_at, sale_seq, credit_note_seq
		FROM cash_sessions WHERE terminal_id = $1 AND business_date = $2`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}
	var (
		s      entity.CashSession
		status string
	)
	err := r.q.QueryRow(ctx, query, key.TerminalID, key.Date).Scan(
		&s.TerminalID, &s.Date, &status, &s.OpenedAt, &s.ClosedAt, &s.SaleSeq, &s.CreditNoteSeq,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash session: %w", err)
	}
	s.Status = entity.SessionStatus(status)
	return &s, nil
}

// Save crea o actualiza la caja.
func (r *CashSessionRepo) Save(ctx context.Context, s *entity.CashSession) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cash_sessions (terminal_id, business_date, status, opened_at, closed_at, sale_seq, credit_note_seq)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (terminal_id, business_date) DO UPDATE SET
			status = EXCLUDED.status,
			closed_at = EXCLUDED.closed_at,
			sale_seq = EXCLUDED.sale_seq,
			credit_note_seq = EXCLUDED.credit_note_seq`,
		s.TerminalID, s.Date, string(s.Status), s.OpenedAt, s.ClosedAt, s.SaleSeq, s.CreditNoteSeq,
	)
	if err != nil {
		return fmt.Errorf("save cash session: %w", err)
	}
	return nil
}

// CreateSnapshot persiste el cierre. Un segundo cierre de la misma caja retorna domain.ErrAlreadyClosed.
func (r *CashSessionRepo) CreateSnapshot(ctx context.Context, c *entity.ClosingSnapshot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO closing_snapshots (terminal_id, business_date, gross_sales, total_expenses, net_profit,
			expected_cash, counted_cash, variance, sales_by_method, completed_sales, voided_sales, expense_count,
			notes, closed_at, closed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.TerminalID, c.Date, c.GrossSales, c.TotalExpenses, c.NetProfit,
		c.ExpectedCash, c.CountedCash, c.Variance, c.SalesByMethod, c.CompletedSales, c.VoidedSales, c.ExpenseCount,
		nullIfEmpty(c.Notes), c.ClosedAt, nullIfEmpty(c.ClosedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyClosed
		}
		return fmt.Errorf("insert closing snapshot: %w", err)
	}
	return nil
}

const snapshotColumns = `
	terminal_id, to_char(business_date, 'YYYY-MM-DD'), gross_sales, total_expenses, net_profit, expected_cash,
	counted_cash, variance, sales_by_method, completed_sales, voided_sales, expense_count, notes, closed_at, closed_by`

// GetSnapshot obtiene el cierre. Retorna nil, nil si la caja no se ha cerrado.
func (r *CashSessionRepo) GetSnapshot(ctx context.Context, key entity.SessionKey) (*entity.ClosingSnapshot, error) {
	c, err := scanSnapshot(r.q.QueryRow(ctx,
		`SELECT `+snapshotColumns+` FROM closing_snapshots WHERE terminal_id = $1 AND business_date = $2`,
		key.TerminalID, key.Date,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get closing snapshot: %w", err)
	}
	return c, nil
}

// ListSnapshots historial de cierres del terminal, más reciente primero.
func (r *CashSessionRepo) ListSnapshots(ctx context.Context, terminalID string, limit, offset int) ([]*entity.ClosingSnapshot, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+snapshotColumns+` FROM closing_snapshots WHERE terminal_id = $1
		ORDER BY business_date DESC LIMIT $2 OFFSET $3`,
		terminalID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list closing snapshots: %w", err)
	}
	defer rows.Close()
	list := []*entity.ClosingSnapshot{}
	for rows.Next() {
		c, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan closing snapshot: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanSnapshot(row pgx.Row) (*entity.ClosingSnapshot, error) {
	var (
		c               entity.ClosingSnapshot
		notes, closedBy *string
	)
	err := row.Scan(&c.TerminalID, &c.Date, &c.GrossSales, &c.TotalExpenses, &c.NetProfit, &c.ExpectedCash,
		&c.CountedCash, &c.Variance, &c.SalesByMethod, &c.CompletedSales, &c.VoidedSales, &c.ExpenseCount,
		&notes, &c.ClosedAt, &closedBy)
	if err != nil {
		return nil, err
	}
	c.Notes = textOrEmpty(notes)
	c.ClosedBy = textOrEmpty(closedBy)
	return &c, nil
}
