package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/farmacia-pos/internal/application/pos"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/catalogfile"
)

var _ pos.Catalog = (*ProductCatalog)(nil)

// ProductCatalog catálogo de productos sobre la tabla products.
type ProductCatalog struct {
	q Querier
}

// NewProductCatalog construye el adaptador. Pasar pool o tx (Querier).
func NewProductCatalog(q Querier) *ProductCatalog {
	return &ProductCatalog{q: q}
}

// ResolveProduct busca por SKU o ID. Un producto inactivo o sin existencias no está disponible.
func (r *ProductCatalog) ResolveProduct(ctx context.Context, ref string) (*pos.ProductInfo, error) {
	query := `
		SELECT sku, name, price, active AND stock > 0
		FROM products WHERE sku = $1 OR id = $1
		ORDER BY (sku = $1) DESC LIMIT 1`
	var p pos.ProductInfo
	err := r.q.QueryRow(ctx, query, ref).Scan(&p.Ref, &p.Name, &p.UnitPrice, &p.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Upsert carga o actualiza productos por SKU en un solo batch. Devuelve las filas afectadas.
func (r *ProductCatalog) Upsert(ctx context.Context, products []catalogfile.Product) (int, error) {
	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(`
			INSERT INTO products (id, sku, name, price, stock, active, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			ON CONFLICT (sku) DO UPDATE SET
				name = EXCLUDED.name, price = EXCLUDED.price, stock = EXCLUDED.stock,
				active = EXCLUDED.active, updated_at = now()`,
			uuid.New().String(), p.SKU, p.Name, p.Price, p.Stock, p.Active,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	affected := 0
	for _, p := range products {
		tag, err := br.Exec()
		if err != nil {
			return affected, fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
		affected += int(tag.RowsAffected())
	}
	return affected, nil
}
