package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error nada se persiste.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		ledgerRepo repository.StockLedgerRepository,
	) error) error
}

// LifecycleHooks observador post-commit de cambios de entidades (registrador de auditoría).
// Best-effort: no devuelve error y nunca revierte la operación de negocio.
type LifecycleHooks interface {
	EntityCreated(ctx context.Context, actor *entity.User, e entity.Auditable, req *entity.RequestContext)
	EntityUpdated(ctx context.Context, actor *entity.User, before map[string]string, after entity.Auditable, req *entity.RequestContext)
	EntityDeleted(ctx context.Context, actor *entity.User, e entity.Auditable, req *entity.RequestContext)
	Imported(ctx context.Context, actor *entity.User, model string, count int, req *entity.RequestContext)
}

// ProfileChecker consulta si el actor tiene un perfil de acceso vigente.
type ProfileChecker interface {
	IsActive(ctx context.Context, userID string) bool
}

type noopHooks struct{}

func (noopHooks) EntityCreated(context.Context, *entity.User, entity.Auditable, *entity.RequestContext) {
}

func (noopHooks) EntityUpdated(context.Context, *entity.User, map[string]string, entity.Auditable, *entity.RequestContext) {
}

func (noopHooks) EntityDeleted(context.Context, *entity.User, entity.Auditable, *entity.RequestContext) {
}

func (noopHooks) Imported(context.Context, *entity.User, string, int, *entity.RequestContext) {
}
