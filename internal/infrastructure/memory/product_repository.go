// Package memory implementa los puertos de persistencia en memoria de proceso.
// Sirve para desarrollo, pruebas y despliegues de una sola instancia sin base de datos.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ inventory.QuantityStore      = (*ProductRepo)(nil)
)

// productCell guarda la instantánea vigente de un producto. Las instantáneas son
// inmutables: cada cambio publica una nueva con CompareAndSwap. nil = eliminado.
type productCell struct {
	seq  int64
	snap atomic.Pointer[entity.Product]
}

// ProductRepo productos en memoria. No hay bloqueo compartido entre productos:
// cada uno se serializa con el CAS de su propia celda.
type ProductRepo struct {
	cells sync.Map // id -> *productCell
	seq   atomic.Int64
	now   func() time.Time
}

// NewProductRepository construye el repositorio vacío.
func NewProductRepository() *ProductRepo {
	return &ProductRepo{now: time.Now}
}

// Create publica el producto; ErrDuplicate si el id ya existe.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	snap := product.Clone()
	c := &productCell{seq: r.seq.Add(1)}
	c.snap.Store(snap)
	actual, loaded := r.cells.LoadOrStore(product.ID, c)
	if !loaded {
		return nil
	}
	// Reusar una celda eliminada que aún no salió del mapa.
	if actual.(*productCell).snap.CompareAndSwap(nil, snap) {
		return nil
	}
	return domain.ErrDuplicate
}

// GetByID copia de la instantánea vigente; (nil, nil) si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	c, ok := r.cell(id)
	if !ok {
		return nil, nil
	}
	p := c.snap.Load()
	if p == nil {
		return nil, nil
	}
	return p.Clone(), nil
}

// Update reemplaza los atributos descriptivos conservando cantidad y versión vigentes.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	c, ok := r.cell(product.ID)
	if !ok {
		return domain.ErrNotFound
	}
	for {
		cur := c.snap.Load()
		if cur == nil {
			return domain.ErrNotFound
		}
		next := cur.Clone()
		next.Name = product.Name
		next.Description = product.Description
		next.Category = product.Category
		next.Price = product.Price
		next.MinimumStock = product.MinimumStock
		next.UpdatedAt = product.UpdatedAt
		if c.snap.CompareAndSwap(cur, next) {
			return nil
		}
	}
}

// List todos los productos en orden de alta.
func (r *ProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	type entry struct {
		seq int64
		p   *entity.Product
	}
	var entries []entry
	r.cells.Range(func(_, v any) bool {
		c := v.(*productCell)
		if p := c.snap.Load(); p != nil {
			entries = append(entries, entry{seq: c.seq, p: p.Clone()})
		}
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]*entity.Product, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.p)
	}
	return out, nil
}

// ListPage página de List.
func (r *ProductRepo) ListPage(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	all, _ := r.List(ctx)
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []*entity.Product{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// Delete marca la celda como eliminada y la saca del mapa. Un producto con versión > 0 ya
// tuvo un cambio de cantidad confirmado (y su movimiento puede estar por anexarse), así que
// se rechaza con ErrHasMovements en el mismo CAS.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	c, ok := r.cell(id)
	if !ok {
		return domain.ErrNotFound
	}
	for {
		cur := c.snap.Load()
		if cur == nil {
			return domain.ErrNotFound
		}
		if cur.Version > 0 {
			return fmt.Errorf("%w: versión %d", domain.ErrHasMovements, cur.Version)
		}
		if c.snap.CompareAndSwap(cur, nil) {
			r.cells.CompareAndDelete(id, c)
			return nil
		}
	}
}

// CompareAndSetQuantity publica una nueva instantánea solo si la versión vigente es expectedVersion.
func (r *ProductRepo) CompareAndSetQuantity(_ context.Context, id string, expectedVersion int64, quantity int) (bool, error) {
	if quantity < 0 {
		return false, domain.ErrInvalidQuantity
	}
	c, ok := r.cell(id)
	if !ok {
		return false, nil
	}
	cur := c.snap.Load()
	if cur == nil || cur.Version != expectedVersion {
		return false, nil
	}
	next := cur.Clone()
	next.Quantity = quantity
	next.Version = cur.Version + 1
	next.UpdatedAt = r.now().UTC()
	return c.snap.CompareAndSwap(cur, next), nil
}

func (r *ProductRepo) cell(id string) (*productCell, bool) {
	v, ok := r.cells.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*productCell), true
}
