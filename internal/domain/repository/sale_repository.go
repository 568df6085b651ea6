package repository

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas, llave (terminal, día, id).
// GetByID devuelve (nil, nil) si la venta no existe.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	// UpdateStatus persiste la anulación (status y voided_at); el resto de la venta es inmutable.
	UpdateStatus(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	ListBySession(ctx context.Context, key entity.SessionKey) ([]*entity.Sale, error)
}

// CreditNoteRepository define el puerto de persistencia para notas crédito.
type CreditNoteRepository interface {
	Create(ctx context.Context, note *entity.CreditNote) error
	ListBySale(ctx context.Context, saleID string) ([]*entity.CreditNote, error)
	ListBySession(ctx context.Context, key entity.SessionKey) ([]*entity.CreditNote, error)
}
