package postgres

import (
	"context"
	"fmt"
)

// schema tablas del punto de venta. La caja (terminal, día) es la raíz de ventas,
// notas crédito, gastos y cierre.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          TEXT PRIMARY KEY,
		sku         TEXT NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		price       NUMERIC(14,2) NOT NULL CHECK (price >= 0),
		stock       INTEGER NOT NULL DEFAULT 0,
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id          TEXT PRIMARY KEY,
		tax_id      TEXT NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		email       TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cash_sessions (
		terminal_id      TEXT NOT NULL,
		business_date    DATE NOT NULL,
		status           TEXT NOT NULL CHECK (status IN ('OPEN', 'CLOSED')),
		opened_at        TIMESTAMPTZ NOT NULL,
		closed_at        TIMESTAMPTZ,
		sale_seq         INTEGER NOT NULL DEFAULT 0,
		credit_note_seq  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (terminal_id, business_date)
	)`,
	`CREATE TABLE IF NOT EXISTS pos_sales (
		id               TEXT PRIMARY KEY,
		terminal_id      TEXT NOT NULL,
		business_date    DATE NOT NULL,
		code             TEXT NOT NULL UNIQUE,
		created_at       TIMESTAMPTZ NOT NULL,
		customer_id      TEXT REFERENCES customers(id),
		customer_name    TEXT NOT NULL,
		payment_method   TEXT NOT NULL,
		subtotal         NUMERIC(14,0) NOT NULL,
		discount_total   NUMERIC(14,0) NOT NULL,
		taxable_base     NUMERIC(14,0) NOT NULL,
		tax              NUMERIC(14,0) NOT NULL,
		total            NUMERIC(14,0) NOT NULL,
		amount_tendered  NUMERIC(14,0),
		change_due       NUMERIC(14,0),
		status           TEXT NOT NULL CHECK (status IN ('COMPLETED', 'VOIDED')),
		voided_at        TIMESTAMPTZ,
		created_by       TEXT,
		FOREIGN KEY (terminal_id, business_date) REFERENCES cash_sessions (terminal_id, business_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pos_sales_session ON pos_sales (terminal_id, business_date)`,
	`CREATE TABLE IF NOT EXISTS pos_sale_lines (
		sale_id           TEXT NOT NULL REFERENCES pos_sales(id) ON DELETE CASCADE,
		line_no           INTEGER NOT NULL,
		product_ref       TEXT NOT NULL,
		product_name      TEXT NOT NULL,
		unit_price        NUMERIC NOT NULL,
		quantity          INTEGER NOT NULL CHECK (quantity > 0),
		discount_percent  NUMERIC NOT NULL CHECK (discount_percent BETWEEN 0 AND 100),
		gross             NUMERIC(14,0) NOT NULL,
		discount          NUMERIC(14,0) NOT NULL,
		line_total        NUMERIC(14,0) NOT NULL,
		PRIMARY KEY (sale_id, line_no)
	)`,
	// Precio y descuento de entrada se guardan sin escala fija: la nota crédito se
	// recalcula desde la línea leída y debe coincidir con la venta.
	`ALTER TABLE pos_sale_lines ALTER COLUMN unit_price TYPE NUMERIC`,
	`ALTER TABLE pos_sale_lines ALTER COLUMN discount_percent TYPE NUMERIC`,
	`CREATE TABLE IF NOT EXISTS pos_credit_notes (
		id               TEXT PRIMARY KEY,
		code             TEXT NOT NULL UNIQUE,
		sale_id          TEXT NOT NULL REFERENCES pos_sales(id),
		terminal_id      TEXT NOT NULL,
		business_date    DATE NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL,
		lines            JSONB NOT NULL,
		subtotal         NUMERIC(14,0) NOT NULL,
		discount_total   NUMERIC(14,0) NOT NULL,
		tax              NUMERIC(14,0) NOT NULL,
		amount_refunded  NUMERIC(14,0) NOT NULL,
		reason           TEXT,
		created_by       TEXT,
		FOREIGN KEY (terminal_id, business_date) REFERENCES cash_sessions (terminal_id, business_date)
	)`,
	`CREATE TABLE IF NOT EXISTS pos_expenses (
		id             TEXT PRIMARY KEY,
		terminal_id    TEXT NOT NULL,
		business_date  DATE NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		description    TEXT NOT NULL,
		amount         NUMERIC(14,0) NOT NULL CHECK (amount > 0),
		category       TEXT NOT NULL,
		created_by     TEXT,
		FOREIGN KEY (terminal_id, business_date) REFERENCES cash_sessions (terminal_id, business_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pos_expenses_session ON pos_expenses (terminal_id, business_date)`,
	`CREATE TABLE IF NOT EXISTS closing_snapshots (
		terminal_id      TEXT NOT NULL,
		business_date    DATE NOT NULL,
		gross_sales      NUMERIC(14,0) NOT NULL,
		total_expenses   NUMERIC(14,0) NOT NULL,
		net_profit       NUMERIC(14,0) NOT NULL,
		expected_cash    NUMERIC(14,0) NOT NULL,
		counted_cash     NUMERIC(14,0) NOT NULL,
		variance         NUMERIC(14,0) NOT NULL,
		sales_by_method  JSONB NOT NULL,
		completed_sales  INTEGER NOT NULL,
		voided_sales     INTEGER NOT NULL,
		expense_count    INTEGER NOT NULL,
		notes            TEXT,
		closed_at        TIMESTAMPTZ NOT NULL,
		closed_by        TEXT,
		PRIMARY KEY (terminal_id, business_date),
		FOREIGN KEY (terminal_id, business_date) REFERENCES cash_sessions (terminal_id, business_date)
	)`,
}

// EnsureSchema crea las tablas si no existen.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
