package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jhoicas/farmacia-pos/internal/application/pos"
	"github.com/jhoicas/farmacia-pos/internal/domain"
)

var (
	_ pos.Catalog   = (*Catalog)(nil)
	_ pos.Customers = (*customerDirectory)(nil)
)

// Catalog catálogo de productos en memoria.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]pos.ProductInfo
}

// NewCatalog construye el catálogo con los productos dados.
func NewCatalog(products ...pos.ProductInfo) *Catalog {
	c := &Catalog{products: make(map[string]pos.ProductInfo, len(products))}
	for _, p := range products {
		c.products[p.Ref] = p
	}
	return c
}

// Put agrega o reemplaza un producto.
func (c *Catalog) Put(p pos.ProductInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.Ref] = p
}

// ResolveProduct devuelve el producto o domain.ErrProductNotFound.
func (c *Catalog) ResolveProduct(_ context.Context, ref string) (*pos.ProductInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[ref]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

// customerDirectory clientes indexados por documento (NIT/CC) dentro del estado del store,
// de modo que un cliente creado en una venta rechazada se descarta con ella.
type customerDirectory struct {
	st       *state
	readOnly bool
}

// ResolveOrCreate busca el cliente por documento y lo crea si no existe.
// Sin documento se trata como consumidor final, conservando el nombre si se dio.
func (d *customerDirectory) ResolveOrCreate(_ context.Context, in pos.CustomerInput) (pos.CustomerHandle, error) {
	if in.TaxID == "" {
		h := pos.GenericCustomer
		if in.Name != "" {
			h.Name = in.Name
		}
		return h, nil
	}
	if h, ok := d.st.customers[in.TaxID]; ok {
		return h, nil
	}
	if d.readOnly {
		return pos.CustomerHandle{}, errReadOnly
	}
	name := in.Name
	if name == "" {
		name = in.TaxID
	}
	h := pos.CustomerHandle{ID: uuid.New().String(), Name: name}
	d.st.customers[in.TaxID] = h
	return h, nil
}
