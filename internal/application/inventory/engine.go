package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// DefaultBulkMax máximo de movimientos por lote si no se configura otro.
const DefaultBulkMax = 100

// MovementEngine registra movimientos de stock (ENTRY, EXIT, ADJUSTMENT) de forma transaccional
// con bloqueo de fila (SELECT FOR UPDATE). Es el único componente que escribe current_stock.
type MovementEngine struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	ledgerRepo  repository.StockLedgerRepository
	profiles    ProfileChecker
	hooks       LifecycleHooks
	bulkMax     int
	now         func() time.Time
}

// NewMovementEngine construye el motor. hooks puede ser nil (sin auditoría); bulkMax <= 0 usa DefaultBulkMax.
func NewMovementEngine(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	ledgerRepo repository.StockLedgerRepository,
	profiles ProfileChecker,
	hooks LifecycleHooks,
	bulkMax int,
) *MovementEngine {
	if hooks == nil {
		hooks = noopHooks{}
	}
	if bulkMax <= 0 {
		bulkMax = DefaultBulkMax
	}
	return &MovementEngine{
		txRunner:    txRunner,
		productRepo: productRepo,
		ledgerRepo:  ledgerRepo,
		profiles:    profiles,
		hooks:       hooks,
		bulkMax:     bulkMax,
		now:         time.Now,
	}
}

// MovementInput movimiento propuesto por el caller. stock_before/after nunca vienen del caller.
// Para ADJUSTMENT, Quantity es el stock absoluto objetivo.
type MovementInput struct {
	ProductID string
	Kind      entity.MovementKind
	Quantity  decimal.Decimal
	Document  string
	Notes     string
}

// Commit valida, bloquea la fila del producto, aplica el movimiento y persiste producto y entrada
// en una sola transacción. Tras el commit dispara los hooks de auditoría (UPDATE del producto, CREATE de la entrada).
func (e *MovementEngine) Commit(ctx context.Context, actor *entity.User, in MovementInput, req *entity.RequestContext) (*entity.StockLedgerEntry, error) {
	if err := e.checkActor(ctx, actor); err != nil {
		return nil, err
	}
	if err := e.precheck(ctx, in); err != nil {
		return nil, err
	}

	var (
		entry   *entity.StockLedgerEntry
		product *entity.Product
		before  map[string]string
	)
	err := e.txRunner.Run(ctx, func(productRepo repository.ProductRepository, ledgerRepo repository.StockLedgerRepository) error {
		locked, err := lockProduct(ctx, productRepo, in.ProductID)
		if err != nil {
			return err
		}
		before = locked.AuditFields()
		now := e.now()
		entry, err = e.apply(ctx, ledgerRepo, locked, actor, in, now)
		if err != nil {
			return err
		}
		if err := productRepo.UpdateStock(ctx, locked.ID, locked.CurrentStock); err != nil {
			return err
		}
		product = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Solo después del commit: nunca hay auditoría de un movimiento revertido.
	e.hooks.EntityUpdated(ctx, actor, before, product, req)
	e.hooks.EntityCreated(ctx, actor, entry, req)
	return entry, nil
}

// CommitBatch aplica 1..bulkMax movimientos en UNA transacción: todos o ninguno.
// Los productos se bloquean en orden ascendente de ID antes de aplicar; los movimientos
// se aplican en el orden recibido y encadenan si repiten producto.
func (e *MovementEngine) CommitBatch(ctx context.Context, actor *entity.User, inputs []MovementInput, req *entity.RequestContext) ([]*entity.StockLedgerEntry, error) {
	if err := e.checkActor(ctx, actor); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if len(inputs) > e.bulkMax {
		return nil, fmt.Errorf("%w: %d movimientos (máximo %d)", domain.ErrBatchTooLarge, len(inputs), e.bulkMax)
	}
	ids := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		if err := e.precheck(ctx, in); err != nil {
			return nil, fmt.Errorf("movimiento %d: %w", i+1, err)
		}
		if _, ok := seen[in.ProductID]; !ok {
			seen[in.ProductID] = struct{}{}
			ids = append(ids, in.ProductID)
		}
	}
	sort.Strings(ids)

	var (
		entries  []*entity.StockLedgerEntry
		products map[string]*entity.Product
		befores  map[string]map[string]string
	)
	err := e.txRunner.Run(ctx, func(productRepo repository.ProductRepository, ledgerRepo repository.StockLedgerRepository) error {
		products = make(map[string]*entity.Product, len(ids))
		befores = make(map[string]map[string]string, len(ids))
		for _, id := range ids {
			locked, err := lockProduct(ctx, productRepo, id)
			if err != nil {
				return err
			}
			products[id] = locked
			befores[id] = locked.AuditFields()
		}
		now := e.now()
		entries = make([]*entity.StockLedgerEntry, 0, len(inputs))
		for i, in := range inputs {
			entry, err := e.apply(ctx, ledgerRepo, products[in.ProductID], actor, in, now)
			if err != nil {
				return fmt.Errorf("movimiento %d: %w", i+1, err)
			}
			entries = append(entries, entry)
		}
		for _, id := range ids {
			if err := productRepo.UpdateStock(ctx, id, products[id].CurrentStock); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		e.hooks.EntityUpdated(ctx, actor, befores[id], products[id], req)
	}
	for _, entry := range entries {
		e.hooks.EntityCreated(ctx, actor, entry, req)
	}
	e.hooks.Imported(ctx, actor, string(entity.EntityKindStockLedgerEntry), len(entries), req)
	return entries, nil
}

// History entradas del producto, más reciente primero. limit <= 0 = sin límite.
func (e *MovementEngine) History(ctx context.Context, productID string, limit, offset int) ([]*entity.StockLedgerEntry, error) {
	product, err := e.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if offset < 0 {
		offset = 0
	}
	return e.ledgerRepo.ListByProduct(ctx, productID, limit, offset)
}

// ReconcileResult resultado de reproducir la cadena de un producto contra su stock actual.
type ReconcileResult struct {
	ProductID     string
	CurrentStock  decimal.Decimal
	ReplayedStock decimal.Decimal
	Entries       int
	Consistent    bool
	BrokenAt      string
}

// Reconcile reproduce el ledger desde 0 en orden de creación y lo compara con current_stock.
func (e *MovementEngine) Reconcile(ctx context.Context, productID string) (*ReconcileResult, error) {
	product, err := e.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	newestFirst, err := e.ledgerRepo.ListByProduct(ctx, productID, 0, 0)
	if err != nil {
		return nil, err
	}
	chain := make([]*entity.StockLedgerEntry, len(newestFirst))
	for i, entry := range newestFirst {
		chain[len(newestFirst)-1-i] = entry
	}
	replay := inventory.ReplayStock(chain)
	return &ReconcileResult{
		ProductID:     productID,
		CurrentStock:  product.CurrentStock,
		ReplayedStock: replay.Stock,
		Entries:       len(chain),
		Consistent:    replay.Consistent && replay.Stock.Equal(product.CurrentStock),
		BrokenAt:      replay.BrokenAt,
	}, nil
}

// checkActor exige actor autenticado con perfil vigente. Un perfil inactivo es denegación, no fallo.
func (e *MovementEngine) checkActor(ctx context.Context, actor *entity.User) error {
	if actor == nil || actor.ID == "" {
		return domain.ErrUnauthorized
	}
	if e.profiles != nil && !e.profiles.IsActive(ctx, actor.ID) {
		return domain.ErrProfileInactive
	}
	return nil
}

// precheck validaciones previas al lock: cantidad, existencia y estado del producto.
func (e *MovementEngine) precheck(ctx context.Context, in MovementInput) error {
	if in.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if err := inventory.ValidateQuantity(in.Kind, in.Quantity); err != nil {
		return err
	}
	product, err := e.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	if !product.IsActive {
		return domain.ErrProductInactive
	}
	return nil
}

// lockProduct bloquea la fila y revalida; el producto pudo cambiar entre el precheck y el lock.
func lockProduct(ctx context.Context, productRepo repository.ProductRepository, id string) (*entity.Product, error) {
	p, err := productRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	if !p.IsActive {
		return nil, domain.ErrProductInactive
	}
	return p, nil
}

// apply calcula el nuevo stock sobre el valor bloqueado, guarda la entrada y actualiza el producto en memoria.
func (e *MovementEngine) apply(
	ctx context.Context,
	ledgerRepo repository.StockLedgerRepository,
	product *entity.Product,
	actor *entity.User,
	in MovementInput,
	now time.Time,
) (*entity.StockLedgerEntry, error) {
	next, err := inventory.ApplyMovement(product.ID, product.CurrentStock, in.Kind, in.Quantity)
	if err != nil {
		return nil, err
	}
	entry := &entity.StockLedgerEntry{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		Kind:        in.Kind,
		Quantity:    in.Quantity,
		Document:    in.Document,
		Notes:       in.Notes,
		ActorID:     actor.ID,
		StockBefore: product.CurrentStock,
		StockAfter:  next,
		CreatedAt:   now,
	}
	if err := ledgerRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	product.CurrentStock = next
	product.UpdatedAt = now
	return entry, nil
}
