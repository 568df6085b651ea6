package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `
	id, terminal_id, to_char(business_date, 'YYYY-MM-DD'), code, created_at, customer_id, customer_name,
	payment_method, subtotal, discount_total, taxable_base, tax, total, amount_tendered, change_due,
	status, voided_at, created_by`

// Create persiste la cabecera y las líneas en un solo batch.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO pos_sales (id, terminal_id, business_date, code, created_at, customer_id, customer_name,
			payment_method, subtotal, discount_total, taxable_base, tax, total, amount_tendered, change_due,
			status, voided_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		sale.ID, sale.TerminalID, sale.BusinessDate, sale.Code, sale.Timestamp, sale.CustomerID, sale.CustomerName,
		string(sale.PaymentMethod), sale.Subtotal, sale.DiscountTotal, sale.TaxableBase, sale.Tax, sale.Total,
		sale.AmountTendered, sale.ChangeDue, string(sale.Status), sale.VoidedAt, nullIfEmpty(sale.CreatedBy),
	)
	for i, l := range sale.Lines {
		batch.Queue(`
			INSERT INTO pos_sale_lines (sale_id, line_no, product_ref, product_name, unit_price, quantity,
				discount_percent, gross, discount, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			sale.ID, i+1, l.ProductRef, l.ProductName, l.UnitPrice, l.Quantity,
			l.DiscountPercent, l.Gross, l.Discount, l.LineTotal,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if isUniqueViolation(err) {
				return fmt.Errorf("sale code %s already exists: %w", sale.Code, err)
			}
			return fmt.Errorf("insert sale: %w", err)
		}
	}
	return br.Close()
}

// UpdateStatus persiste el estado y la fecha de anulación.
func (r *SaleRepo) UpdateStatus(ctx context.Context, sale *entity.Sale) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE pos_sales SET status = $2, voided_at = $3 WHERE id = $1`,
		sale.ID, string(sale.Status), sale.VoidedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update sale status: venta %s no existe", sale.ID)
	}
	return nil
}

// GetByID obtiene una venta con sus líneas. Retorna nil, nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM pos_sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.Sale{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// ListBySession lista las ventas de la caja en orden de consecutivo.
func (r *SaleRepo) ListBySession(ctx context.Context, key entity.SessionKey) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+saleColumns+` FROM pos_sales WHERE terminal_id = $1 AND business_date = $2 ORDER BY code`,
		key.TerminalID, key.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	list := []*entity.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *SaleRepo) loadLines(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Sale, len(sales))
	ids := make([]string, 0, len(sales))
	for _, s := range sales {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT sale_id, product_ref, product_name, unit_price, quantity, discount_percent, gross, discount, line_total
		FROM pos_sale_lines WHERE sale_id = ANY($1) ORDER BY sale_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			saleID string
			l      entity.LineItem
		)
		if err := rows.Scan(&saleID, &l.ProductRef, &l.ProductName, &l.UnitPrice, &l.Quantity,
			&l.DiscountPercent, &l.Gross, &l.Discount, &l.LineTotal); err != nil {
			return fmt.Errorf("scan sale line: %w", err)
		}
		if s, ok := byID[saleID]; ok {
			s.Lines = append(s.Lines, l)
		}
	}
	return rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var (
		s         entity.Sale
		method    string
		status    string
		createdBy *string
	)
	err := row.Scan(
		&s.ID, &s.TerminalID, &s.BusinessDate, &s.Code, &s.Timestamp, &s.CustomerID, &s.CustomerName,
		&method, &s.Subtotal, &s.DiscountTotal, &s.TaxableBase, &s.Tax, &s.Total, &s.AmountTendered, &s.ChangeDue,
		&status, &s.VoidedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	s.PaymentMethod = entity.PaymentMethod(method)
	s.Status = entity.SaleStatus(status)
	s.CreatedBy = textOrEmpty(createdBy)
	return &s, nil
}
