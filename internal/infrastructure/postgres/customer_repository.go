package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/farmacia-pos/internal/application/pos"
)

var _ pos.Customers = (*CustomerDirectory)(nil)

// CustomerDirectory clientes identificados en caja por NIT/cédula. Se construye sobre la
// tx de RunPOS para que el cliente nuevo se confirme junto con la venta.
type CustomerDirectory struct {
	q Querier
}

// NewCustomerDirectory construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerDirectory(q Querier) *CustomerDirectory {
	return &CustomerDirectory{q: q}
}

// ResolveOrCreate busca el cliente por documento y lo crea si no existe.
// Sin documento se trata como consumidor final, conservando el nombre si se dio.
func (r *CustomerDirectory) ResolveOrCreate(ctx context.Context, in pos.CustomerInput) (pos.CustomerHandle, error) {
	if in.TaxID == "" {
		h := pos.GenericCustomer
		if in.Name != "" {
			h.Name = in.Name
		}
		return h, nil
	}
	existing, err := r.getByTaxID(ctx, in.TaxID)
	if err != nil {
		return pos.CustomerHandle{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	name := in.Name
	if name == "" {
		name = in.TaxID
	}
	// ON CONFLICT evita abortar la transacción de la venta si otra caja lo creó primero.
	h := pos.CustomerHandle{ID: uuid.New().String(), Name: name}
	tag, err := r.q.Exec(ctx,
		`INSERT INTO customers (id, tax_id, name, created_at) VALUES ($1, $2, $3, now())
		 ON CONFLICT (tax_id) DO NOTHING`,
		h.ID, in.TaxID, h.Name,
	)
	if err != nil {
		return pos.CustomerHandle{}, fmt.Errorf("insert customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		existing, err := r.getByTaxID(ctx, in.TaxID)
		if err != nil {
			return pos.CustomerHandle{}, err
		}
		if existing == nil {
			return pos.CustomerHandle{}, fmt.Errorf("insert customer: tax_id %s en conflicto y no visible", in.TaxID)
		}
		return *existing, nil
	}
	return h, nil
}

func (r *CustomerDirectory) getByTaxID(ctx context.Context, taxID string) (*pos.CustomerHandle, error) {
	var h pos.CustomerHandle
	err := r.q.QueryRow(ctx, `SELECT id, name FROM customers WHERE tax_id = $1`, taxID).Scan(&h.ID, &h.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by tax_id: %w", err)
	}
	return &h, nil
}
