package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock arranca en 0:
// las existencias iniciales se registran con un movimiento ENTRY.
type CreateProductRequest struct {
	SKU        string           `json:"sku" validate:"required,min=1,max=100"`
	Name       string           `json:"name" validate:"required,min=1,max=200"`
	CategoryID string           `json:"category_id"`
	UnitID     string           `json:"unit_id"`
	MinStock   decimal.Decimal  `json:"min_stock"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
	ExpiryDate *string          `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock).
type UpdateProductRequest struct {
	Name       *string          `json:"name" validate:"omitempty,min=1,max=200"`
	CategoryID *string          `json:"category_id"`
	UnitID     *string          `json:"unit_id"`
	MinStock   *decimal.Decimal `json:"min_stock"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
	ExpiryDate *string          `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	IsActive   *bool            `json:"is_active"`
}

// ProductResponse salida de un producto con su estado derivado.
type ProductResponse struct {
	ID           string           `json:"id"`
	SKU          string           `json:"sku"`
	Name         string           `json:"name"`
	CategoryID   string           `json:"category_id,omitempty"`
	UnitID       string           `json:"unit_id,omitempty"`
	CurrentStock decimal.Decimal  `json:"current_stock"`
	MinStock     decimal.Decimal  `json:"min_stock"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	ExpiryDate   string           `json:"expiry_date,omitempty"`
	IsActive     bool             `json:"is_active"`
	StockStatus  string           `json:"stock_status"`
	ExpiryStatus string           `json:"expiry_status,omitempty"`
	TotalValue   decimal.Decimal  `json:"total_value"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
