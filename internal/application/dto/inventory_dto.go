package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Para ADJUSTMENT, quantity es el stock absoluto objetivo.
type RegisterMovementRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Kind      string          `json:"kind" validate:"required,oneof=ENTRY EXIT ADJUSTMENT"`
	Quantity  decimal.Decimal `json:"quantity"`
	Document  string          `json:"document" validate:"max=100"`
	Notes     string          `json:"notes" validate:"max=1000"`
}

// BulkMovementRequest body para POST /api/inventory/movements/bulk.
type BulkMovementRequest struct {
	Movements []RegisterMovementRequest `json:"movements" validate:"required,min=1,dive"`
}

// LedgerEntryResponse salida de una entrada del ledger.
type LedgerEntryResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Kind        string          `json:"kind"`
	Quantity    decimal.Decimal `json:"quantity"`
	Document    string          `json:"document,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	ActorID     string          `json:"actor_id"`
	StockBefore decimal.Decimal `json:"stock_before"`
	StockAfter  decimal.Decimal `json:"stock_after"`
	Difference  decimal.Decimal `json:"difference"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LedgerEntryListResponse historial paginado de un producto.
type LedgerEntryListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// BulkMovementResponse salida de un lote confirmado.
type BulkMovementResponse struct {
	Count int                   `json:"count"`
	Items []LedgerEntryResponse `json:"items"`
}

// ReconcileResponse resultado de reproducir el ledger de un producto.
type ReconcileResponse struct {
	ProductID     string          `json:"product_id"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	ReplayedStock decimal.Decimal `json:"replayed_stock"`
	Entries       int             `json:"entries"`
	Consistent    bool            `json:"consistent"`
	BrokenAt      string          `json:"broken_at,omitempty"`
}

// ReplenishmentSuggestionDTO representa una sugerencia de reposición para un SKU
// que se encuentra en o por debajo de su stock mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	StockStatus        string          `json:"stock_status"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	MinStock           decimal.Decimal `json:"min_stock"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // MinStock * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitPrice
	Priority           int             `json:"priority"`             // 1 = más urgente
}

// StockStatsDTO estadísticas generales del inventario.
type StockStatsDTO struct {
	TotalProducts   int             `json:"total_products"`
	TotalCategories int             `json:"total_categories"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	LowStockCount   int             `json:"low_stock_count"`
	ExpiredCount    int             `json:"expired_count"`
	NearExpiryCount int             `json:"near_expiry_count"`
}
