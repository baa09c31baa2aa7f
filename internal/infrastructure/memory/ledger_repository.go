package memory

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.StockLedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo ledger append-only en memoria.
type LedgerRepo struct {
	s  *Store
	tx *txState
}

// NewLedgerRepository repositorio fuera de transacción (lecturas).
func NewLedgerRepository(s *Store) *LedgerRepo {
	return &LedgerRepo{s: s}
}

// Create solo es válido dentro de una unidad de trabajo que tenga el lock del producto:
// la entrada y el stock se confirman juntos.
func (r *LedgerRepo) Create(_ context.Context, entry *entity.StockLedgerEntry) error {
	if r.tx == nil {
		return domain.ErrConflict
	}
	if _, held := r.tx.held[entry.ProductID]; !held {
		return domain.ErrConflict
	}
	r.tx.entries = append(r.tx.entries, cloneEntry(entry))
	return nil
}

// ListByProduct más reciente primero (orden inverso de commit).
func (r *LedgerRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockLedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.StockLedgerEntry, 0)
	for i := len(r.s.entries) - 1; i >= 0; i-- {
		if e := r.s.entries[i]; e.ProductID == productID {
			out = append(out, cloneEntry(e))
		}
	}
	return page(out, limit, offset), nil
}

func (r *LedgerRepo) CountByProduct(_ context.Context, productID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, e := range r.s.entries {
		if e.ProductID == productID {
			n++
		}
	}
	return n, nil
}
