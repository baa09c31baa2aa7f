package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// EntityHooks observador post-escritura de entidades (registrador de auditoría).
type EntityHooks interface {
	EntityCreated(ctx context.Context, actor *entity.User, e entity.Auditable, req *entity.RequestContext)
	EntityUpdated(ctx context.Context, actor *entity.User, before map[string]string, after entity.Auditable, req *entity.RequestContext)
	EntityDeleted(ctx context.Context, actor *entity.User, e entity.Auditable, req *entity.RequestContext)
}

// ProductUseCase casos de uso CRUD para productos. El stock solo cambia vía movimientos.
type ProductUseCase struct {
	repo  repository.ProductRepository
	hooks EntityHooks
	now   func() time.Time
}

// NewProductUseCase construye el caso de uso. hooks puede ser nil.
func NewProductUseCase(repo repository.ProductRepository, hooks EntityHooks) *ProductUseCase {
	return &ProductUseCase{repo: repo, hooks: hooks, now: time.Now}
}

// Create crea un nuevo producto con stock 0.
func (uc *ProductUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateProductRequest, req *entity.RequestContext) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	if in.SKU == "" || strings.TrimSpace(in.Name) == "" || in.MinStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	expiry, err := parseDate(in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          in.SKU,
		Name:         strings.TrimSpace(in.Name),
		CategoryID:   in.CategoryID,
		UnitID:       in.UnitID,
		CurrentStock: decimal.Zero,
		MinStock:     in.MinStock,
		UnitPrice:    in.UnitPrice,
		ExpiryDate:   expiry,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	if uc.hooks != nil {
		uc.hooks.EntityCreated(ctx, actor, product, req)
	}
	return uc.toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return uc.toProductResponse(product), nil
}

// Update actualiza los datos maestros. No permite modificar el stock (se maneja vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateProductRequest, req *entity.RequestContext) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	before := product.AuditFields()
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.CategoryID != nil {
		product.CategoryID = *in.CategoryID
	}
	if in.UnitID != nil {
		product.UnitID = *in.UnitID
	}
	if in.MinStock != nil {
		if in.MinStock.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.MinStock = *in.MinStock
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.UnitPrice = in.UnitPrice
	}
	if in.ExpiryDate != nil {
		expiry, err := parseDate(in.ExpiryDate)
		if err != nil {
			return nil, err
		}
		product.ExpiryDate = expiry
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	if uc.hooks != nil {
		uc.hooks.EntityUpdated(ctx, actor, before, product, req)
	}
	return uc.toProductResponse(product), nil
}

// Deactivate baja lógica: el producto deja de aceptar movimientos pero conserva su ledger.
func (uc *ProductUseCase) Deactivate(ctx context.Context, actor *entity.User, id string, req *entity.RequestContext) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	if !product.IsActive {
		return nil
	}
	before := product.AuditFields()
	if err := uc.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	product.IsActive = false
	product.UpdatedAt = uc.now()
	if uc.hooks != nil {
		uc.hooks.EntityUpdated(ctx, actor, before, product, req)
	}
	return nil
}

// Delete elimina un producto por ID. Falla con ErrProductReferenced si tiene entradas de ledger.
func (uc *ProductUseCase) Delete(ctx context.Context, actor *entity.User, id string, req *entity.RequestContext) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	if uc.hooks != nil {
		uc.hooks.EntityDeleted(ctx, actor, product, req)
	}
	return nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, onlyActive bool, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, onlyActive, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *uc.toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func (uc *ProductUseCase) toProductResponse(p *entity.Product) *dto.ProductResponse {
	res := &dto.ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		UnitID:       p.UnitID,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		UnitPrice:    p.UnitPrice,
		IsActive:     p.IsActive,
		StockStatus:  p.StockStatus(),
		ExpiryStatus: p.ExpiryStatus(uc.now()),
		TotalValue:   p.TotalValue(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.ExpiryDate != nil {
		res.ExpiryDate = p.ExpiryDate.Format(time.DateOnly)
	}
	return res
}

// parseDate nil o "" = sin fecha.
func parseDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(*s))
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return &t, nil
}
