package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

type versionKey struct {
	productID string
	version   int64
}

// StockMovementRepo libro de movimientos en memoria: solo anexa, nunca modifica.
type StockMovementRepo struct {
	mu        sync.RWMutex
	items     []*entity.StockMovement
	byID      map[string]*entity.StockMovement
	byVersion map[versionKey]struct{}
}

// NewStockMovementRepository construye el libro vacío.
func NewStockMovementRepository() *StockMovementRepo {
	return &StockMovementRepo{
		byID:      make(map[string]*entity.StockMovement),
		byVersion: make(map[versionKey]struct{}),
	}
}

// Create anexa una copia del movimiento. ErrDuplicate si el id o la versión del producto ya existen.
func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	cp := *m
	key := versionKey{productID: m.ProductID, version: m.ProductVersion}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.ID]; ok {
		return fmt.Errorf("%w: movimiento %s", domain.ErrDuplicate, m.ID)
	}
	if _, ok := r.byVersion[key]; ok {
		return fmt.Errorf("%w: versión %d del producto %s", domain.ErrDuplicate, m.ProductVersion, m.ProductID)
	}
	r.items = append(r.items, &cp)
	r.byID[cp.ID] = &cp
	r.byVersion[key] = struct{}{}
	return nil
}

// GetByID copia del movimiento; (nil, nil) si no existe.
func (r *StockMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

// Search mismo orden que el adaptador PostgreSQL: por versión del producto si se filtra
// por producto; si no, por fecha y luego id.
func (r *StockMovementRepo) Search(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	out := r.match(f)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if f.OldestFirst {
			a, b = b, a
		}
		if f.ProductID != "" {
			return a.ProductVersion > b.ProductVersion
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ID > b.ID
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*entity.StockMovement{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Count total que cumple el filtro.
func (r *StockMovementRepo) Count(_ context.Context, f repository.MovementFilter) (int, error) {
	return len(r.match(f)), nil
}

// TotalsByProduct agregados por tipo, ordenados por tipo.
func (r *StockMovementRepo) TotalsByProduct(_ context.Context, productID string) ([]repository.MovementTotal, error) {
	acc := make(map[entity.MovementType]*repository.MovementTotal)
	for _, m := range r.match(repository.MovementFilter{ProductID: productID}) {
		t, ok := acc[m.Type]
		if !ok {
			t = &repository.MovementTotal{Type: m.Type}
			acc[m.Type] = t
		}
		t.Count++
		t.Quantity += m.Quantity
	}
	totals := make([]repository.MovementTotal, 0, len(acc))
	for _, t := range acc {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Type < totals[j].Type })
	return totals, nil
}

func (r *StockMovementRepo) match(f repository.MovementFilter) []*entity.StockMovement {
	fold := cases.Fold()
	user := fold.String(strings.TrimSpace(f.Username))

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.StockMovement, 0)
	for _, m := range r.items {
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if user != "" && !strings.Contains(fold.String(m.Username), user) {
			continue
		}
		if f.From != nil && m.Timestamp.Before(*f.From) {
			continue
		}
		if f.To != nil && m.Timestamp.After(*f.To) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out
}
