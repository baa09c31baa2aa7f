package inventory_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/jhoicas/Inventario-ledger/internal/application/access"
	"github.com/jhoicas/Inventario-ledger/internal/application/audit"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: store en memoria + registrador de auditoría + evaluador de perfiles
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	products *memory.ProductRepo
	ledger   *memory.LedgerRepo
	audits   *memory.AuditRepo
	profiles *memory.AccessProfileRepo
	recorder *audit.Recorder
	access   *access.Service
	engine   *inventory.MovementEngine

	userA *entity.User // LEGAL_REPRESENTATIVE
	userB *entity.User // OPERATOR
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	f := &fixture{
		store:    s,
		products: memory.NewProductRepository(s),
		ledger:   memory.NewLedgerRepository(s),
		audits:   memory.NewAuditRepository(s),
		profiles: memory.NewAccessProfileRepository(s),
	}
	users := memory.NewUserRepository(s)
	f.recorder = audit.NewRecorder(f.audits, audit.Config{}, nil)
	f.access = access.NewService(f.profiles, users, f.recorder, nil)
	f.engine = f.engineWith(memory.NewTxRunner(s), 0)

	f.userA = &entity.User{ID: "user-a", Username: "ana", Name: "Ana", Status: entity.UserStatusActive}
	f.userB = &entity.User{ID: "user-b", Username: "beto", Status: entity.UserStatusActive}
	require.NoError(t, users.Create(ctx, f.userA))
	require.NoError(t, users.Create(ctx, f.userB))
	require.NoError(t, f.profiles.Upsert(ctx, &entity.AccessProfile{UserID: f.userA.ID, Tier: entity.TierLegalRepresentative, Active: true}))
	require.NoError(t, f.profiles.Upsert(ctx, &entity.AccessProfile{UserID: f.userB.ID, Tier: entity.TierOperator, Active: true}))
	return f
}

func (f *fixture) engineWith(tx inventory.TxRunner, bulkMax int) *inventory.MovementEngine {
	return inventory.NewMovementEngine(tx, f.products, f.ledger, f.access, f.recorder, bulkMax)
}

// addProduct crea un producto con stock 0 y, si initial > 0, lo lleva ahí con un ENTRY.
func (f *fixture) addProduct(t *testing.T, id, initial, minStock string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.products.Create(ctx, &entity.Product{
		ID: id, SKU: "SKU-" + id, Name: "Producto " + id, MinStock: d(minStock), IsActive: true,
	}))
	if q := d(initial); q.IsPositive() {
		_, err := f.engine.Commit(ctx, f.userA, inventory.MovementInput{ProductID: id, Kind: entity.MovementEntry, Quantity: q}, nil)
		require.NoError(t, err)
	}
}

func (f *fixture) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func (f *fixture) entryCount(t *testing.T, id string) int {
	t.Helper()
	n, err := f.ledger.CountByProduct(context.Background(), id)
	require.NoError(t, err)
	return n
}

func (f *fixture) auditCount(t *testing.T) int {
	t.Helper()
	recs, err := f.audits.List(context.Background(), entity.AuditFilter{})
	require.NoError(t, err)
	return len(recs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario concreto: 10 → ENTRY 5 → EXIT 20 (falla) → ADJUSTMENT 3
// ──────────────────────────────────────────────────────────────────────────────

func TestCommit_EscenarioCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "10", "5")

	e1, err := f.engine.Commit(ctx, f.userA, inventory.MovementInput{ProductID: "P", Kind: entity.MovementEntry, Quantity: d("5")}, nil)
	require.NoError(t, err)
	assert.True(t, e1.StockBefore.Equal(d("10")))
	assert.True(t, e1.StockAfter.Equal(d("15")))
	assert.True(t, f.stock(t, "P").Equal(d("15")))

	_, err = f.engine.Commit(ctx, f.userA, inventory.MovementInput{ProductID: "P", Kind: entity.MovementExit, Quantity: d("20")}, nil)
	require.Error(t, err)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(d("15")))
	assert.True(t, f.stock(t, "P").Equal(d("15")), "el stock no cambia tras el fallo")

	before, err := f.audits.List(ctx, entity.AuditFilter{})
	require.NoError(t, err)

	e3, err := f.engine.Commit(ctx, f.userB, inventory.MovementInput{ProductID: "P", Kind: entity.MovementAdjustment, Quantity: d("3")}, nil)
	require.NoError(t, err)
	assert.True(t, e3.StockBefore.Equal(d("15")))
	assert.True(t, e3.StockAfter.Equal(d("3")))
	assert.True(t, e3.Quantity.Equal(d("3")), "ADJUSTMENT guarda el valor absoluto")
	assert.True(t, e3.Difference().Equal(d("-12")))
	assert.True(t, f.stock(t, "P").Equal(d("3")))

	// Auditoría de la entrada: no crítica, con el actor explícito.
	entryRecs, err := f.audits.List(ctx, entity.AuditFilter{SubjectKind: entity.EntityKindStockLedgerEntry, SubjectID: e3.ID})
	require.NoError(t, err)
	require.Len(t, entryRecs, 1)
	assert.Equal(t, entity.AuditCreate, entryRecs[0].Action)
	assert.Equal(t, entity.SeverityMedium, entryRecs[0].Severity)
	assert.Equal(t, f.userB.ID, entryRecs[0].ActorID)

	// UPDATE del producto con el diff de current_stock.
	prodRecs, err := f.audits.List(ctx, entity.AuditFilter{SubjectID: "P", Action: entity.AuditUpdate, ActorID: f.userB.ID})
	require.NoError(t, err)
	require.Len(t, prodRecs, 1)
	assert.Equal(t, entity.SeverityLow, prodRecs[0].Severity)
	assert.Equal(t, entity.FieldChange{Old: "15", New: "3"}, prodRecs[0].Changes["current_stock"])

	all, err := f.audits.List(ctx, entity.AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, all, len(before)+2, "solo UPDATE de producto y CREATE de la entrada")

	// Cambio de tier de userB en otra parte: siempre CRITICAL.
	_, err = f.access.SaveProfile(ctx, f.userA, &entity.AccessProfile{
		UserID: f.userB.ID, Tier: entity.TierDelegateRepresentative, Active: true, AuthorizedBy: f.userA.ID,
	}, nil)
	require.NoError(t, err)
	permRecs, err := f.audits.List(ctx, entity.AuditFilter{Action: entity.AuditPermissionChange})
	require.NoError(t, err)
	require.Len(t, permRecs, 1)
	assert.Equal(t, entity.SeverityCritical, permRecs[0].Severity)
	assert.Equal(t, entity.FieldChange{Old: "OPERATOR", New: "DELEGATE_REPRESENTATIVE"}, permRecs[0].Changes["tier"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Bordes del contrato
// ──────────────────────────────────────────────────────────────────────────────

func TestCommit_ExitIgualAlStockDejaCero(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "P", "7", "1")

	entry, err := f.engine.Commit(context.Background(), f.userA, inventory.MovementInput{ProductID: "P", Kind: entity.MovementExit, Quantity: d("7")}, nil)
	require.NoError(t, err)
	assert.True(t, entry.StockAfter.IsZero())
	assert.True(t, f.stock(t, "P").IsZero())
}

func TestCommit_AdjustmentAlMismoValorGeneraEntrada(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "P", "4", "1")
	n := f.entryCount(t, "P")

	entry, err := f.engine.Commit(context.Background(), f.userA, inventory.MovementInput{ProductID: "P", Kind: entity.MovementAdjustment, Quantity: d("4"), Document: "CONTEO-01"}, nil)
	require.NoError(t, err)
	assert.True(t, entry.Difference().IsZero())
	assert.Equal(t, n+1, f.entryCount(t, "P"))
}

func TestCommit_RechazosAntesDelLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "5", "1")
	require.NoError(t, f.products.Create(ctx, &entity.Product{ID: "OFF", SKU: "SKU-OFF", Name: "Inactivo", IsActive: false}))

	cases := []struct {
		name  string
		actor *entity.User
		in    inventory.MovementInput
		want  error
	}{
		{"cantidad cero", f.userA, inventory.MovementInput{ProductID: "P", Kind: entity.MovementEntry, Quantity: decimal.Zero}, domain.ErrInvalidQuantity},
		{"ajuste negativo", f.userA, inventory.MovementInput{ProductID: "P", Kind: entity.MovementAdjustment, Quantity: d("-1")}, domain.ErrInvalidQuantity},
		{"tipo desconocido", f.userA, inventory.MovementInput{ProductID: "P", Kind: "TRANSFER", Quantity: d("1")}, domain.ErrInvalidMovementKind},
		{"producto inexistente", f.userA, inventory.MovementInput{ProductID: "NOPE", Kind: entity.MovementEntry, Quantity: d("1")}, domain.ErrProductNotFound},
		{"producto inactivo", f.userA, inventory.MovementInput{ProductID: "OFF", Kind: entity.MovementEntry, Quantity: d("1")}, domain.ErrProductInactive},
		{"sin actor", nil, inventory.MovementInput{ProductID: "P", Kind: entity.MovementEntry, Quantity: d("1")}, domain.ErrUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Commit(ctx, tc.actor, tc.in, nil)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, f.stock(t, "P").Equal(d("5")))
		})
	}
}

func TestCommit_PerfilInactivoEsDenegacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "5", "1")
	require.NoError(t, f.profiles.Upsert(ctx, &entity.AccessProfile{UserID: f.userB.ID, Tier: entity.TierOperator, Active: false}))

	_, err := f.engine.Commit(ctx, f.userB, inventory.MovementInput{ProductID: "P", Kind: entity.MovementExit, Quantity: d("1")}, nil)
	assert.ErrorIs(t, err, domain.ErrProfileInactive)
	assert.True(t, f.stock(t, "P").Equal(d("5")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Sin commits parciales
// ──────────────────────────────────────────────────────────────────────────────

var errBoom = errors.New("fallo forzado al escribir stock")

// failingStockTx envuelve la unidad de trabajo real y hace fallar UpdateStock
// después de que la entrada del ledger ya fue escrita en la tx.
type failingStockTx struct{ inner inventory.TxRunner }

func (f failingStockTx) Run(ctx context.Context, fn func(repository.ProductRepository, repository.StockLedgerRepository) error) error {
	return f.inner.Run(ctx, func(p repository.ProductRepository, l repository.StockLedgerRepository) error {
		return fn(failingStockRepo{p}, l)
	})
}

type failingStockRepo struct{ repository.ProductRepository }

func (failingStockRepo) UpdateStock(context.Context, string, decimal.Decimal) error { return errBoom }

func TestCommit_SinCommitsParciales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "10", "1")

	stockBefore, entriesBefore, auditsBefore := f.stock(t, "P"), f.entryCount(t, "P"), f.auditCount(t)

	broken := f.engineWith(failingStockTx{inner: memory.NewTxRunner(f.store)}, 0)
	_, err := broken.Commit(ctx, f.userA, inventory.MovementInput{ProductID: "P", Kind: entity.MovementExit, Quantity: d("4")}, nil)
	require.ErrorIs(t, err, errBoom)

	assert.True(t, f.stock(t, "P").Equal(stockBefore))
	assert.Equal(t, entriesBefore, f.entryCount(t, "P"), "la entrada escrita en la tx se descarta")
	assert.Equal(t, auditsBefore, f.auditCount(t), "nunca hay auditoría de un movimiento revertido")

	// El lock se liberó: un movimiento normal posterior no se bloquea.
	_, err = f.engine.Commit(ctx, f.userA, inventory.MovementInput{ProductID: "P", Kind: entity.MovementExit, Quantity: d("4")}, nil)
	require.NoError(t, err)
	assert.True(t, f.stock(t, "P").Equal(d("6")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia: 2N salidas de S/N sobre stock S
// ──────────────────────────────────────────────────────────────────────────────

func TestCommit_SalidasConcurrentesNuncaSobregiran(t *testing.T) {
	const n = 10
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "100", "0")
	each := d("10") // S/N

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
		unexpected   []error
	)
	start := make(chan struct{})
	for i := 0; i < 2*n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.engine.Commit(ctx, f.userA, inventory.MovementInput{ProductID: "P", Kind: entity.MovementExit, Quantity: each}, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Empty(t, unexpected)
	assert.Equal(t, n, ok)
	assert.Equal(t, n, rejected)
	assert.True(t, f.stock(t, "P").IsZero())

	rec, err := f.engine.Reconcile(ctx, "P")
	require.NoError(t, err)
	assert.True(t, rec.Consistent, "cada EXIT validó contra el valor fresco")
	assert.Equal(t, n+1, rec.Entries)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conservación de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_ConservacionTrasSecuenciaAleatoria(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "0", "0")
	rng := rand.New(rand.NewSource(42))
	kinds := []entity.MovementKind{entity.MovementEntry, entity.MovementEntry, entity.MovementExit, entity.MovementAdjustment}

	for i := 0; i < 200; i++ {
		kind := kinds[rng.Intn(len(kinds))]
		qty := decimal.NewFromInt(int64(rng.Intn(20) + 1)).Div(decimal.NewFromInt(4))
		_, err := f.engine.Commit(ctx, f.userA, inventory.MovementInput{ProductID: "P", Kind: kind, Quantity: qty}, nil)
		if err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
		assert.False(t, f.stock(t, "P").IsNegative(), "current_stock >= 0 tras cada movimiento")
	}

	rec, err := f.engine.Reconcile(ctx, "P")
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Empty(t, rec.BrokenAt)
	assert.True(t, rec.ReplayedStock.Equal(rec.CurrentStock), "replay %s vs actual %s", rec.ReplayedStock, rec.CurrentStock)
}

func TestReconcile_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Reconcile(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial
// ──────────────────────────────────────────────────────────────────────────────

func TestHistory_MasRecientePrimero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "10", "1")
	for _, q := range []string{"1", "2", "3"} {
		_, err := f.engine.Commit(ctx, f.userA, inventory.MovementInput{ProductID: "P", Kind: entity.MovementExit, Quantity: d(q)}, nil)
		require.NoError(t, err)
	}

	all, err := f.engine.History(ctx, "P", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, all[0].Quantity.Equal(d("3")))
	assert.Equal(t, entity.MovementEntry, all[3].Kind)

	pageTwo, err := f.engine.History(ctx, "P", 2, 2)
	require.NoError(t, err)
	require.Len(t, pageTwo, 2)
	assert.True(t, pageTwo[0].Quantity.Equal(d("1")))

	_, err = f.engine.History(ctx, "NOPE", 0, 0)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestCommitBatch_EncadenaYAudita(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "B", "0", "0")
	f.addProduct(t, "A", "5", "0")

	entries, err := f.engine.CommitBatch(ctx, f.userA, []inventory.MovementInput{
		{ProductID: "B", Kind: entity.MovementEntry, Quantity: d("10")},
		{ProductID: "A", Kind: entity.MovementExit, Quantity: d("5")},
		{ProductID: "B", Kind: entity.MovementExit, Quantity: d("4")},
	}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[2].StockBefore.Equal(d("10")), "mismo producto encadena sobre la entrada previa del lote")
	assert.True(t, f.stock(t, "B").Equal(d("6")))
	assert.True(t, f.stock(t, "A").IsZero())

	imports, err := f.audits.List(ctx, entity.AuditFilter{Action: entity.AuditImport})
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, entity.SeverityHigh, imports[0].Severity)
	assert.Equal(t, 3, imports[0].Metadata["count"])

	for _, id := range []string{"A", "B"} {
		rec, err := f.engine.Reconcile(ctx, id)
		require.NoError(t, err)
		assert.True(t, rec.Consistent, id)
	}
}

func TestCommitBatch_TodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A", "5", "0")
	f.addProduct(t, "B", "1", "0")
	entriesA, entriesB, audits := f.entryCount(t, "A"), f.entryCount(t, "B"), f.auditCount(t)

	_, err := f.engine.CommitBatch(ctx, f.userA, []inventory.MovementInput{
		{ProductID: "A", Kind: entity.MovementExit, Quantity: d("2")},
		{ProductID: "B", Kind: entity.MovementExit, Quantity: d("3")},
	}, nil)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "movimiento 2")

	assert.True(t, f.stock(t, "A").Equal(d("5")))
	assert.True(t, f.stock(t, "B").Equal(d("1")))
	assert.Equal(t, entriesA, f.entryCount(t, "A"))
	assert.Equal(t, entriesB, f.entryCount(t, "B"))
	assert.Equal(t, audits, f.auditCount(t))
}

func TestCommitBatch_Limites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A", "5", "0")
	small := f.engineWith(memory.NewTxRunner(f.store), 2)

	_, err := small.CommitBatch(ctx, f.userA, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in := inventory.MovementInput{ProductID: "A", Kind: entity.MovementEntry, Quantity: d("1")}
	_, err = small.CommitBatch(ctx, f.userA, []inventory.MovementInput{in, in, in}, nil)
	assert.ErrorIs(t, err, domain.ErrBatchTooLarge)

	_, err = small.CommitBatch(ctx, f.userA, []inventory.MovementInput{in, {ProductID: "A", Kind: entity.MovementEntry}}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.True(t, f.stock(t, "A").Equal(d("5")))
}

// TestCommitBatch_LotesCruzadosSinDeadlock dos lotes con los mismos productos en orden inverso.
func TestCommitBatch_LotesCruzadosSinDeadlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A", "0", "0")
	f.addProduct(t, "B", "0", "0")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.engine.CommitBatch(ctx, f.userA, []inventory.MovementInput{
				{ProductID: "A", Kind: entity.MovementEntry, Quantity: d("1")},
				{ProductID: "B", Kind: entity.MovementEntry, Quantity: d("1")},
			}, nil)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := f.engine.CommitBatch(ctx, f.userA, []inventory.MovementInput{
				{ProductID: "B", Kind: entity.MovementEntry, Quantity: d("1")},
				{ProductID: "A", Kind: entity.MovementEntry, Quantity: d("1")},
			}, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.True(t, f.stock(t, "A").Equal(d("40")))
	assert.True(t, f.stock(t, "B").Equal(d("40")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Completitud de auditoría
// ──────────────────────────────────────────────────────────────────────────────

func TestAuditoria_CadaEntradaTieneRegistroQueSobreviveAlProducto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	products := usecase.NewProductUseCase(f.products, f.recorder)

	f.addProduct(t, "P", "3", "1")
	entries, err := f.engine.History(ctx, "P", 0, 0)
	require.NoError(t, err)
	for _, e := range entries {
		recs, err := f.audits.List(ctx, entity.AuditFilter{SubjectKind: entity.EntityKindStockLedgerEntry, SubjectID: e.ID})
		require.NoError(t, err)
		assert.NotEmpty(t, recs, "entrada %s sin registro", e.ID)
	}

	// El producto con ledger no se puede borrar; el registro conserva el texto aunque se renombre.
	err = products.Delete(ctx, f.userA, "P", nil)
	require.ErrorIs(t, err, domain.ErrProductReferenced)
	newName := "Renombrado"
	_, err = products.Update(ctx, f.userA, "P", dto.UpdateProductRequest{Name: &newName}, nil)
	require.NoError(t, err)
	require.NoError(t, products.Deactivate(ctx, f.userA, "P", nil))

	recs, err := f.audits.List(ctx, entity.AuditFilter{SubjectID: "P", Action: entity.AuditUpdate})
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	oldest := recs[len(recs)-1]
	assert.Equal(t, "SKU-P — Producto P", oldest.Subject.Display)

	// Un producto sin ledger sí se borra y el DELETE guarda model/object_repr.
	require.NoError(t, f.products.Create(ctx, &entity.Product{ID: "X", SKU: "SKU-X", Name: "Efímero", IsActive: true}))
	require.NoError(t, products.Delete(ctx, f.userA, "X", nil))
	del, err := f.audits.List(ctx, entity.AuditFilter{SubjectID: "X", Action: entity.AuditDelete})
	require.NoError(t, err)
	require.Len(t, del, 1)
	assert.Equal(t, entity.SeverityHigh, del[0].Severity)
	assert.Equal(t, "SKU-X — Efímero", del[0].Metadata["object_repr"])
	assert.Equal(t, "SKU-X — Efímero", del[0].Subject.Display)
}
