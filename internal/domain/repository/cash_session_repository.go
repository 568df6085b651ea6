package repository

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// CashSessionRepository define el puerto de persistencia para cajas y sus cierres.
// Get y GetSnapshot devuelven (nil, nil) si no existe registro.
type CashSessionRepository interface {
	Get(ctx context.Context, key entity.SessionKey) (*entity.CashSession, error)
	// Save inserta o actualiza la caja (estado y consecutivos).
	Save(ctx context.Context, session *entity.CashSession) error
	// CreateSnapshot agrega el cierre; falla si ya existe uno para la misma caja.
	CreateSnapshot(ctx context.Context, snapshot *entity.ClosingSnapshot) error
	GetSnapshot(ctx context.Context, key entity.SessionKey) (*entity.ClosingSnapshot, error)
	// ListSnapshots devuelve los cierres del terminal, más reciente primero.
	ListSnapshots(ctx context.Context, terminalID string, limit, offset int) ([]*entity.ClosingSnapshot, error)
}
