package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository. Con tx != nil opera dentro de una unidad de trabajo.
type ProductRepo struct {
	s  *Store
	tx *txState
}

// NewProductRepository repositorio fuera de transacción.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, p := range r.s.products {
		if p.SKU == product.SKU {
			return domain.ErrDuplicate
		}
	}
	r.s.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	c := cloneProduct(p)
	if r.tx != nil {
		if stock, ok := r.tx.stock[id]; ok {
			c.CurrentStock = stock
		}
	}
	return c, nil
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	r.s.mu.RLock()
	var id string
	for _, p := range r.s.products {
		if p.SKU == sku {
			id = p.ID
			break
		}
	}
	r.s.mu.RUnlock()
	if id == "" {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// GetForUpdate toma el lock de fila (reentrante dentro de la misma unidad de trabajo) y lee el valor fresco.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if r.tx == nil {
		return nil, domain.ErrConflict
	}
	r.s.mu.RLock()
	_, exists := r.s.products[id]
	r.s.mu.RUnlock()
	if !exists {
		return nil, nil
	}
	if _, held := r.tx.held[id]; !held {
		if err := r.s.lockRow(ctx, id); err != nil {
			return nil, err
		}
		r.tx.held[id] = struct{}{}
		r.tx.order = append(r.tx.order, id)
	}
	return r.GetByID(ctx, id)
}

// UpdateStock dentro de tx queda pendiente hasta el commit; fuera de tx escribe directo.
func (r *ProductRepo) UpdateStock(_ context.Context, id string, stock decimal.Decimal) error {
	if r.tx != nil {
		if _, held := r.tx.held[id]; !held {
			return domain.ErrConflict
		}
		r.tx.stock[id] = stock
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.CurrentStock = stock
	p.UpdatedAt = time.Now()
	return nil
}

// withRow ejecuta fn con el lock de fila tomado, igual que un UPDATE/DELETE espera a un FOR UPDATE.
// Dentro de una unidad que ya lo tiene no se vuelve a pedir.
func (r *ProductRepo) withRow(ctx context.Context, id string, fn func() error) error {
	if r.tx != nil {
		if _, held := r.tx.held[id]; held {
			return fn()
		}
	}
	if err := r.s.lockRow(ctx, id); err != nil {
		return err
	}
	defer r.s.unlockRow(id)
	return fn()
}

// Update persiste datos maestros conservando current_stock.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	return r.withRow(ctx, product.ID, func() error { return r.update(product) })
}

func (r *ProductRepo) update(product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.products[product.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	for _, p := range r.s.products {
		if p.ID != product.ID && p.SKU == product.SKU {
			return domain.ErrDuplicate
		}
	}
	updated := cloneProduct(product)
	updated.CurrentStock = current.CurrentStock
	updated.CreatedAt = current.CreatedAt
	r.s.products[product.ID] = updated
	return nil
}

func (r *ProductRepo) Deactivate(ctx context.Context, id string) error {
	return r.withRow(ctx, id, func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		p, ok := r.s.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		p.IsActive = false
		p.UpdatedAt = time.Now()
		return nil
	})
}

// Delete protege productos referenciados por el ledger. Espera a la unidad de trabajo que tenga
// la fila, de modo que ve sus entradas ya confirmadas.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.withRow(ctx, id, func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		if _, ok := r.s.products[id]; !ok {
			return domain.ErrProductNotFound
		}
		for _, e := range r.s.entries {
			if e.ProductID == id {
				return domain.ErrProductReferenced
			}
		}
		if r.tx != nil {
			for _, e := range r.tx.entries {
				if e.ProductID == id {
					return domain.ErrProductReferenced
				}
			}
		}
		delete(r.s.products, id)
		return nil
	})
}

// List ordenado por SKU.
func (r *ProductRepo) List(_ context.Context, onlyActive bool, limit, offset int) ([]*entity.Product, error) {
	return page(r.filter(func(p *entity.Product) bool { return !onlyActive || p.IsActive }), limit, offset), nil
}

func (r *ProductRepo) ListBelowMinStock(_ context.Context) ([]*entity.Product, error) {
	return r.filter(func(p *entity.Product) bool {
		return p.IsActive && p.CurrentStock.LessThanOrEqual(p.MinStock)
	}), nil
}

func (r *ProductRepo) filter(keep func(*entity.Product) bool) []*entity.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if keep(p) {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}
