package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de stock derivados de current_stock y min_stock.
const (
	StockStatusCritical = "CRITICAL" // sin existencias
	StockStatusLow      = "LOW"      // en o por debajo del mínimo
	StockStatusOK       = "OK"
)

// Estados de vencimiento.
const (
	ExpiryStatusExpired    = "EXPIRED"
	ExpiryStatusNearExpiry = "NEAR_EXPIRY"
	ExpiryStatusOK         = "OK"
)

// NearExpiryDays ventana en días para considerar un producto próximo a vencer.
const NearExpiryDays = 7

// Product representa un producto o SKU del inventario.
// CurrentStock solo lo modifica el motor de movimientos; el resto del sistema lo lee.
type Product struct {
	ID           string
	SKU          string // código único
	Name         string
	CategoryID   string
	UnitID       string // unidad de medida
	CurrentStock decimal.Decimal
	MinStock     decimal.Decimal
	UnitPrice    *decimal.Decimal
	ExpiryDate   *time.Time
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StockStatus clasifica el stock actual frente al mínimo.
func (p *Product) StockStatus() string {
	if p.CurrentStock.IsZero() {
		return StockStatusCritical
	}
	if p.CurrentStock.LessThanOrEqual(p.MinStock) {
		return StockStatusLow
	}
	return StockStatusOK
}

// HasLowStock informa si el stock está bajo o crítico.
func (p *Product) HasLowStock() bool {
	s := p.StockStatus()
	return s == StockStatusLow || s == StockStatusCritical
}

// ExpiryStatus devuelve "" si el producto no tiene fecha de vencimiento.
func (p *Product) ExpiryStatus(today time.Time) string {
	if p.ExpiryDate == nil {
		return ""
	}
	days := int(truncateDay(*p.ExpiryDate).Sub(truncateDay(today)).Hours() / 24)
	switch {
	case days < 0:
		return ExpiryStatusExpired
	case days <= NearExpiryDays:
		return ExpiryStatusNearExpiry
	default:
		return ExpiryStatusOK
	}
}

// TotalValue valor del stock actual al precio unitario (cero sin precio).
func (p *Product) TotalValue() decimal.Decimal {
	if p.UnitPrice == nil {
		return decimal.Zero
	}
	return p.CurrentStock.Mul(*p.UnitPrice)
}

func (p *Product) String() string {
	return p.SKU + " — " + p.Name
}

// AuditKind implementa Auditable.
func (p *Product) AuditKind() EntityKind { return EntityKindProduct }

// AuditID implementa Auditable.
func (p *Product) AuditID() string { return p.ID }

// AuditFields implementa Auditable.
func (p *Product) AuditFields() map[string]string {
	fields := map[string]string{
		"id":            p.ID,
		"sku":           p.SKU,
		"name":          p.Name,
		"category_id":   p.CategoryID,
		"unit_id":       p.UnitID,
		"current_stock": p.CurrentStock.String(),
		"min_stock":     p.MinStock.String(),
		"unit_price":    "",
		"expiry_date":   "",
		"is_active":     formatBool(p.IsActive),
		"created_at":    formatTime(p.CreatedAt),
		"updated_at":    formatTime(p.UpdatedAt),
	}
	if p.UnitPrice != nil {
		fields["unit_price"] = p.UnitPrice.String()
	}
	if p.ExpiryDate != nil {
		fields["expiry_date"] = p.ExpiryDate.Format(time.DateOnly)
	}
	return fields
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
