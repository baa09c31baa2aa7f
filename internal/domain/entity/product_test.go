package entity_test

import (
	"testing"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_StockStatus(t *testing.T) {
	cases := []struct {
		stock, min string
		want       string
	}{
		{"0", "5", entity.StockStatusCritical},
		{"0", "0", entity.StockStatusCritical},
		{"5", "5", entity.StockStatusLow},
		{"4.5", "5", entity.StockStatusLow},
		{"6", "5", entity.StockStatusOK},
	}
	for _, c := range cases {
		p := &entity.Product{CurrentStock: decimal.RequireFromString(c.stock), MinStock: decimal.RequireFromString(c.min)}
		assert.Equal(t, c.want, p.StockStatus(), "stock=%s min=%s", c.stock, c.min)
	}
}

func TestProduct_ExpiryStatus(t *testing.T) {
	today := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	at := func(days int) *time.Time {
		d := today.AddDate(0, 0, days)
		return &d
	}
	assert.Empty(t, (&entity.Product{}).ExpiryStatus(today))
	assert.Equal(t, entity.ExpiryStatusExpired, (&entity.Product{ExpiryDate: at(-1)}).ExpiryStatus(today))
	assert.Equal(t, entity.ExpiryStatusNearExpiry, (&entity.Product{ExpiryDate: at(0)}).ExpiryStatus(today))
	assert.Equal(t, entity.ExpiryStatusNearExpiry, (&entity.Product{ExpiryDate: at(entity.NearExpiryDays)}).ExpiryStatus(today))
	assert.Equal(t, entity.ExpiryStatusOK, (&entity.Product{ExpiryDate: at(entity.NearExpiryDays + 1)}).ExpiryStatus(today))
}

func TestProduct_AuditFields(t *testing.T) {
	price := decimal.RequireFromString("12.50")
	p := &entity.Product{ID: "p1", SKU: "A-1", Name: "Arandela", CurrentStock: decimal.NewFromInt(3), UnitPrice: &price, IsActive: true}
	f := p.AuditFields()
	assert.Equal(t, "A-1", f["sku"])
	assert.Equal(t, "3", f["current_stock"])
	assert.Equal(t, "12.5", f["unit_price"])
	assert.Equal(t, "true", f["is_active"])
	assert.Equal(t, "A-1 — Arandela", p.String())
	assert.True(t, p.TotalValue().Equal(decimal.RequireFromString("37.5")))
}

func TestSubjectOf_SnapshotDelTexto(t *testing.T) {
	p := &entity.Product{ID: "p1", SKU: "A-1", Name: "Arandela"}
	ref := entity.SubjectOf(p)
	p.Name = "Otro nombre"
	assert.Equal(t, "A-1 — Arandela", ref.Display)
	assert.Equal(t, entity.EntityKindProduct, ref.Kind)
	assert.Nil(t, entity.SubjectOf(nil))
}
