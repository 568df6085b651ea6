package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.CreditNoteRepository = (*CreditNoteRepo)(nil)

// CreditNoteRepo implementación de CreditNoteRepository. Las líneas se guardan en JSONB.
type CreditNoteRepo struct {
	q Querier
}

// NewCreditNoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCreditNoteRepository(q Querier) *CreditNoteRepo {
	return &CreditNoteRepo{q: q}
}

const creditNoteColumns = `
	id, code, sale_id, terminal_id, to_char(business_date, 'YYYY-MM-DD'), created_at, lines,
	subtotal, discount_total, tax, amount_refunded, reason, created_by`

// Create persiste la nota crédito.
func (r *CreditNoteRepo) Create(ctx context.Context, note *entity.CreditNote) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO pos_credit_notes (id, code, sale_id, terminal_id, business_date, created_at, lines,
			subtotal, discount_total, tax, amount_refunded, reason, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		note.ID, note.Code, note.SaleID, note.TerminalID, note.BusinessDate, note.Timestamp, note.Lines,
		note.Subtotal, note.DiscountTotal, note.Tax, note.AmountRefunded,
		nullIfEmpty(note.Reason), nullIfEmpty(note.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("credit note %s already exists: %w", note.Code, err)
		}
		return fmt.Errorf("insert credit note: %w", err)
	}
	return nil
}

// ListBySale notas crédito emitidas sobre una venta.
func (r *CreditNoteRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.CreditNote, error) {
	return r.list(ctx, `SELECT `+creditNoteColumns+` FROM pos_credit_notes WHERE sale_id = $1 ORDER BY code`, saleID)
}

// ListBySession notas crédito de la caja en orden de consecutivo.
func (r *CreditNoteRepo) ListBySession(ctx context.Context, key entity.SessionKey) ([]*entity.CreditNote, error) {
	return r.list(ctx,
		`SELECT `+creditNoteColumns+` FROM pos_credit_notes WHERE terminal_id = $1 AND business_date = $2 ORDER BY code`,
		key.TerminalID, key.Date,
	)
}

func (r *CreditNoteRepo) list(ctx context.Context, query string, args ...any) ([]*entity.CreditNote, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list credit notes: %w", err)
	}
	defer rows.Close()
	list := []*entity.CreditNote{}
	for rows.Next() {
		n, err := scanCreditNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit note: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func scanCreditNote(row pgx.Row) (*entity.CreditNote, error) {
	var (
		n                 entity.CreditNote
		reason, createdBy *string
	)
	err := row.Scan(&n.ID, &n.Code, &n.SaleID, &n.TerminalID, &n.BusinessDate, &n.Timestamp, &n.Lines,
		&n.Subtotal, &n.DiscountTotal, &n.Tax, &n.AmountRefunded, &reason, &createdBy)
	if err != nil {
		return nil, err
	}
	n.Reason = textOrEmpty(reason)
	n.CreatedBy = textOrEmpty(createdBy)
	return &n, nil
}
