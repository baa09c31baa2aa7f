package usecase_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Inventario-ledger/internal/application/audit"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	uc     *usecase.ProductUseCase
	repo   *memory.ProductRepo
	audits *memory.AuditRepo
	actor  *entity.User
}

func newProductFixture() *productFixture {
	s := memory.NewStore()
	repo := memory.NewProductRepository(s)
	audits := memory.NewAuditRepository(s)
	return &productFixture{
		uc:     usecase.NewProductUseCase(repo, audit.NewRecorder(audits, audit.Config{}, nil)),
		repo:   repo,
		audits: audits,
		actor:  &entity.User{ID: "u-1", Username: "ana", Status: entity.UserStatusActive},
	}
}

func (f *productFixture) lastAudit(t *testing.T) *entity.AuditRecord {
	t.Helper()
	list, err := f.audits.List(context.Background(), entity.AuditFilter{Limit: 1})
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return list[0]
}

func strPtr(s string) *string { return &s }

// ──────────────────────────────────────────────────────────────────────────────

func TestProductCreate_StockEnCeroYAuditado(t *testing.T) {
	f := newProductFixture()
	price := decimal.RequireFromString("2.5")

	res, err := f.uc.Create(context.Background(), f.actor, dto.CreateProductRequest{
		SKU: " A-1 ", Name: "Arandela", MinStock: decimal.NewFromInt(5), UnitPrice: &price, ExpiryDate: strPtr("2030-01-31"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "A-1", res.SKU)
	assert.True(t, res.CurrentStock.IsZero())
	assert.Equal(t, entity.StockStatusCritical, res.StockStatus)
	assert.Equal(t, "2030-01-31", res.ExpiryDate)
	assert.True(t, res.IsActive)

	rec := f.lastAudit(t)
	assert.Equal(t, entity.AuditCreate, rec.Action)
	assert.Equal(t, entity.SeverityMedium, rec.Severity)
	require.NotNil(t, rec.Subject)
	assert.Equal(t, res.ID, rec.Subject.ID)
	assert.Equal(t, "A-1 — Arandela", rec.Subject.Display)
}

func TestProductCreate_Validaciones(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	neg := decimal.NewFromInt(-1)

	cases := map[string]dto.CreateProductRequest{
		"sin sku":         {Name: "X"},
		"sin nombre":      {SKU: "X"},
		"mínimo negativo": {SKU: "X", Name: "X", MinStock: neg},
		"precio negativo": {SKU: "X", Name: "X", UnitPrice: &neg},
		"fecha inválida":  {SKU: "X", Name: "X", ExpiryDate: strPtr("31/01/2030")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, f.actor, in, nil)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := f.uc.Create(ctx, f.actor, dto.CreateProductRequest{SKU: "D", Name: "D"}, nil)
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, f.actor, dto.CreateProductRequest{SKU: "D", Name: "Otro"}, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductUpdate_DiffSinTocarStock(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	created, err := f.uc.Create(ctx, f.actor, dto.CreateProductRequest{SKU: "A-1", Name: "Arandela"}, nil)
	require.NoError(t, err)
	require.NoError(t, f.repo.UpdateStock(ctx, created.ID, decimal.NewFromInt(9)))

	minStock := decimal.NewFromInt(3)
	res, err := f.uc.Update(ctx, f.actor, created.ID, dto.UpdateProductRequest{Name: strPtr("Arandela 8mm"), MinStock: &minStock}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Arandela 8mm", res.Name)
	assert.True(t, res.CurrentStock.Equal(decimal.NewFromInt(9)))

	rec := f.lastAudit(t)
	assert.Equal(t, entity.AuditUpdate, rec.Action)
	assert.Equal(t, entity.FieldChange{Old: "Arandela", New: "Arandela 8mm"}, rec.Changes["name"])
	assert.Equal(t, entity.FieldChange{Old: "0", New: "3"}, rec.Changes["min_stock"])
	assert.NotContains(t, rec.Changes, "current_stock")

	_, err = f.uc.Update(ctx, f.actor, created.ID, dto.UpdateProductRequest{Name: strPtr("  ")}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Update(ctx, f.actor, "nope", dto.UpdateProductRequest{}, nil)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductDeactivate_IdempotenteYDelete(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	created, err := f.uc.Create(ctx, f.actor, dto.CreateProductRequest{SKU: "A-1", Name: "Arandela"}, nil)
	require.NoError(t, err)

	require.NoError(t, f.uc.Deactivate(ctx, f.actor, created.ID, nil))
	rec := f.lastAudit(t)
	assert.Equal(t, entity.FieldChange{Old: "true", New: "false"}, rec.Changes["is_active"])

	before, err := f.audits.List(ctx, entity.AuditFilter{})
	require.NoError(t, err)
	require.NoError(t, f.uc.Deactivate(ctx, f.actor, created.ID, nil))
	after, err := f.audits.List(ctx, entity.AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, after, len(before), "desactivar dos veces no audita de nuevo")

	list, err := f.uc.List(ctx, true, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	require.NoError(t, f.uc.Delete(ctx, f.actor, created.ID, nil))
	rec = f.lastAudit(t)
	assert.Equal(t, entity.AuditDelete, rec.Action)
	assert.Equal(t, entity.SeverityHigh, rec.Severity)
	assert.Equal(t, "A-1 — Arandela", rec.Metadata["object_repr"])

	_, err = f.uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.ErrorIs(t, f.uc.Delete(ctx, f.actor, created.ID, nil), domain.ErrProductNotFound)
}

func TestProduct_SinActorNoAudita(t *testing.T) {
	f := newProductFixture()
	_, err := f.uc.Create(context.Background(), nil, dto.CreateProductRequest{SKU: "S", Name: "Sistema"}, nil)
	require.NoError(t, err)
	list, err := f.audits.List(context.Background(), entity.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
