package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los Get devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la unidad de trabajo (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// UpdateStock es la única escritura de current_stock; solo la usa el motor de movimientos.
	UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error
	// Update persiste los datos maestros; nunca modifica current_stock.
	Update(ctx context.Context, product *entity.Product) error
	Deactivate(ctx context.Context, id string) error
	// Delete devuelve domain.ErrProductReferenced si existen entradas de ledger.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Product, error)
	// ListBelowMinStock productos activos con current_stock <= min_stock.
	ListBelowMinStock(ctx context.Context) ([]*entity.Product, error)
}
