package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// defaultTxAttempts intentos ante deadlock o fallo de serialización.
const defaultTxAttempts = 3

// TxRunner ejecuta cada unidad de trabajo del motor en una transacción READ COMMITTED.
// SELECT ... FOR UPDATE serializa a los escritores del mismo producto: el segundo espera
// el lock y re-lee el stock confirmado.
type TxRunner struct {
	pool     *pgxpool.Pool
	attempts int
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool, attempts: defaultTxAttempts}
}

// Run ejecuta fn con repositorios atados a la tx. Un deadlock (40P01) o fallo de serialización
// (40001) reintenta la unidad completa; el lock_timeout agotado (55P03) se reporta como
// domain.ErrConflict.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	ledgerRepo repository.StockLedgerRepository,
) error) error {
	return retryTx(ctx, r.attempts, func() error { return r.runOnce(ctx, fn) })
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	ledgerRepo repository.StockLedgerRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewProductRepository(tx), NewLedgerRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// retryTx repite attempt mientras falle con un error transitorio y el ctx siga vivo.
func retryTx(ctx context.Context, attempts int, attempt func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = attempt()
		switch {
		case err == nil:
			return nil
		case isLockTimeout(err):
			return fmt.Errorf("%w: lock de producto no disponible: %v", domain.ErrConflict, err)
		case !isRetryable(err):
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return fmt.Errorf("%w: transacción abortada tras %d intentos: %v", domain.ErrConflict, attempts, err)
}
