package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// StockLedgerRepository puerto append-only del ledger de movimientos. No hay Update ni Delete.
type StockLedgerRepository interface {
	Create(ctx context.Context, entry *entity.StockLedgerEntry) error
	// ListByProduct más reciente primero; limit <= 0 = sin límite.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockLedgerEntry, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
}
