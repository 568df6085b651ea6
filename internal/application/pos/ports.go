package pos

import (
	"context"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Repositories agrupa los repositorios de caja atados a una misma transacción.
// Customers también participa: un cliente nuevo solo queda registrado si la venta se confirma.
type Repositories struct {
	Sales       repository.SaleRepository
	CreditNotes repository.CreditNoteRepository
	Expenses    repository.ExpenseRepository
	Sessions    repository.CashSessionRepository
	Customers   Customers
}

// TxRunner ejecuta funciones sobre los repositorios de caja.
// RunPOS es todo-o-nada: si fn retorna error no queda ningún efecto persistido.
// ReadPOS es solo lectura.
type TxRunner interface {
	RunPOS(ctx context.Context, fn func(repos Repositories) error) error
	ReadPOS(ctx context.Context, fn func(repos Repositories) error) error
}

// ProductInfo datos del catálogo que la caja necesita para vender un producto.
type ProductInfo struct {
	Ref       string
	Name      string
	UnitPrice decimal.Decimal
	Available bool
}

// Catalog colaborador de catálogo. Devuelve domain.ErrProductNotFound si la referencia no existe.
type Catalog interface {
	ResolveProduct(ctx context.Context, ref string) (*ProductInfo, error)
}

// CustomerInput identificación del cliente recibida en caja. Vacío = consumidor final.
type CustomerInput struct {
	TaxID string
	Name  string
}

// IsEmpty indica si no se identificó cliente.
func (in CustomerInput) IsEmpty() bool { return in.TaxID == "" && in.Name == "" }

// CustomerHandle cliente resuelto. Generic marca al consumidor final (sin ID).
type CustomerHandle struct {
	ID      string
	Name    string
	Generic bool
}

// GenericCustomer centinela de cliente anónimo aceptado por SaleLedger.
var GenericCustomer = CustomerHandle{Name: "Consumidor final", Generic: true}

// Customers colaborador de clientes, atado a la transacción de caja.
type Customers interface {
	ResolveOrCreate(ctx context.Context, in CustomerInput) (CustomerHandle, error)
}

// ClosingReportGenerator genera la representación PDF de un cierre de caja.
type ClosingReportGenerator interface {
	GenerateClosingPDF(ctx context.Context, snapshot *entity.ClosingSnapshot) ([]byte, error)
}

// Clock fuente de tiempo inyectable.
type Clock interface {
	Now() time.Time
}

// SystemClock reloj real.
type SystemClock struct{}

// Now devuelve la hora actual.
func (SystemClock) Now() time.Time { return time.Now() }
