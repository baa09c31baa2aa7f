package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.StockLedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo ledger append-only sobre PostgreSQL (usable con pool o tx).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Create inserta una entrada del ledger.
func (r *LedgerRepo) Create(ctx context.Context, entry *entity.StockLedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_ledger_entries (id, product_id, kind, quantity, document, notes, actor_id, stock_before, stock_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.ProductID, string(entry.Kind), entry.Quantity, entry.Document, entry.Notes,
		entry.ActorID, entry.StockBefore, entry.StockAfter, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// ListByProduct más reciente primero; seq desempata entradas del mismo instante.
func (r *LedgerRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockLedgerEntry, error) {
	query := `
		SELECT id, product_id, kind, quantity, document, notes, actor_id, stock_before, stock_after, created_at
		FROM stock_ledger_entries
		WHERE product_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT NULLIF($2, 0) OFFSET $3`
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLedgerEntry
	for rows.Next() {
		var e entity.StockLedgerEntry
		var kind string
		if err := rows.Scan(&e.ID, &e.ProductID, &kind, &e.Quantity, &e.Document, &e.Notes,
			&e.ActorID, &e.StockBefore, &e.StockAfter, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Kind = entity.MovementKind(kind)
		list = append(list, &e)
	}
	return list, rows.Err()
}

// CountByProduct cantidad de entradas del producto.
func (r *LedgerRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_ledger_entries WHERE product_id = $1`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return n, nil
}
