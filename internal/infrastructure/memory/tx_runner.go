package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner unidad de trabajo en memoria: las escrituras se acumulan y se aplican juntas al confirmar.
// Los locks de fila tomados con GetForUpdate se liberan al terminar Run por cualquier camino.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el TxRunner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// txState escrituras pendientes y locks tomados por una unidad de trabajo.
type txState struct {
	held    map[string]struct{}
	order   []string
	stock   map[string]decimal.Decimal
	entries []*entity.StockLedgerEntry
}

// Run ejecuta fn; si devuelve error se descartan las escrituras pendientes.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	ledgerRepo repository.StockLedgerRepository,
) error) error {
	tx := &txState{
		held:  make(map[string]struct{}),
		stock: make(map[string]decimal.Decimal),
	}
	defer func() {
		for i := len(tx.order) - 1; i >= 0; i-- {
			r.s.unlockRow(tx.order[i])
		}
	}()

	if err := fn(&ProductRepo{s: r.s, tx: tx}, &LedgerRepo{s: r.s, tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.commit(tx)
}

// commit aplica todo o nada: si algún producto tocado ya no existe no se escribe nada.
func (r *TxRunner) commit(tx *txState) error {
	now := time.Now()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id := range tx.stock {
		if _, ok := r.s.products[id]; !ok {
			return domain.ErrProductNotFound
		}
	}
	for _, e := range tx.entries {
		if _, ok := r.s.products[e.ProductID]; !ok {
			return domain.ErrProductNotFound
		}
	}
	for id, stock := range tx.stock {
		p := r.s.products[id]
		p.CurrentStock = stock
		p.UpdatedAt = now
	}
	r.s.entries = append(r.s.entries, tx.entries...)
	return nil
}
