package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// AuditRepository persistencia de registros de auditoría (inmutables).
type AuditRepository interface {
	Create(ctx context.Context, record *entity.AuditRecord) error
	// List más reciente primero.
	List(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditRecord, error)
	// DeleteBefore elimina registros anteriores al corte (retención); devuelve la cantidad borrada.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
