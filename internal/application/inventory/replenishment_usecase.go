package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// idealStockFactor stock ideal sugerido = min_stock × factor.
var idealStockFactor = decimal.NewFromFloat(1.5)

// ReplenishmentUseCase lista de reposición y estadísticas de stock (solo lectura de current_stock).
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo, now: time.Now}
}

// GenerateReplenishmentList devuelve los productos en o bajo el stock mínimo con la cantidad
// sugerida de pedido. Prioridad: primero los CRITICAL, luego mayor déficit relativo al mínimo.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	products, err := uc.productRepo.ListBelowMinStock(ctx)
	if err != nil {
		return nil, err
	}
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(products))
	for _, p := range products {
		idealStock := p.MinStock.Mul(idealStockFactor)
		suggestedQty := idealStock.Sub(p.CurrentStock)
		if suggestedQty.IsNegative() {
			suggestedQty = decimal.Zero
		}
		estimated := decimal.Zero
		if p.UnitPrice != nil {
			estimated = suggestedQty.Mul(*p.UnitPrice)
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			SKU:                p.SKU,
			ProductName:        p.Name,
			StockStatus:        p.StockStatus(),
			CurrentStock:       p.CurrentStock,
			MinStock:           p.MinStock,
			IdealStock:         idealStock,
			SuggestedOrderQty:  suggestedQty,
			EstimatedOrderCost: estimated,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ac, bc := a.StockStatus == entity.StockStatusCritical, b.StockStatus == entity.StockStatusCritical
		if ac != bc {
			return ac
		}
		// Tiebreak: mayor déficit absoluto
		return a.MinStock.Sub(a.CurrentStock).GreaterThan(b.MinStock.Sub(b.CurrentStock))
	})

	// Asignar prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

// Stats estadísticas generales de los productos activos.
func (uc *ReplenishmentUseCase) Stats(ctx context.Context) (*dto.StockStatsDTO, error) {
	products, err := uc.productRepo.List(ctx, true, 0, 0)
	if err != nil {
		return nil, err
	}
	today := uc.now()
	stats := &dto.StockStatsDTO{TotalStockValue: decimal.Zero}
	categories := make(map[string]struct{})
	for _, p := range products {
		stats.TotalProducts++
		if p.CategoryID != "" {
			categories[p.CategoryID] = struct{}{}
		}
		stats.TotalStockValue = stats.TotalStockValue.Add(p.TotalValue())
		if p.HasLowStock() {
			stats.LowStockCount++
		}
		switch p.ExpiryStatus(today) {
		case entity.ExpiryStatusExpired:
			stats.ExpiredCount++
		case entity.ExpiryStatusNearExpiry:
			stats.NearExpiryCount++
		}
	}
	stats.TotalCategories = len(categories)
	return stats, nil
}
