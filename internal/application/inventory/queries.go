package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// Límites de GetRecentMovements.
const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// ProductSummary agregado del libro para un producto.
type ProductSummary struct {
	ProductID     string
	ProductName   string
	CurrentStock  int
	MovementCount int
	Totals        []repository.MovementTotal
	// ChainError describe la primera inconsistencia de la historia; vacío si encadena.
	ChainError string
}

// MovementPage resultado paginado de SearchMovements.
type MovementPage struct {
	Items  []*entity.StockMovement
	Total  int
	Limit  int
	Offset int
}

// StockQueryUseCase consultas de solo lectura sobre el libro y el estado de inventario.
type StockQueryUseCase struct {
	state   *InventoryState
	movRepo repository.StockMovementRepository
	store   QuantityStore
}

// NewStockQueryUseCase construye el caso de uso de consultas.
func NewStockQueryUseCase(state *InventoryState, store QuantityStore, movRepo repository.StockMovementRepository) *StockQueryUseCase {
	return &StockQueryUseCase{state: state, store: store, movRepo: movRepo}
}

// GetProductHistory movimientos del producto, más reciente primero.
func (uc *StockQueryUseCase) GetProductHistory(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	if _, err := uc.state.Get(ctx, productID); err != nil {
		return nil, err
	}
	return uc.movRepo.Search(ctx, repository.MovementFilter{ProductID: productID})
}

// GetRecentMovements últimos movimientos de todos los productos.
func (uc *StockQueryUseCase) GetRecentMovements(ctx context.Context, limit int) ([]*entity.StockMovement, error) {
	return uc.movRepo.Search(ctx, repository.MovementFilter{Limit: clampLimit(limit)})
}

// GetCurrentStock cantidad confirmada del producto.
func (uc *StockQueryUseCase) GetCurrentStock(ctx context.Context, productID string) (int, error) {
	return uc.state.Get(ctx, productID)
}

// StockCheck resultado de una sola lectura: la suficiencia corresponde a Current.
type StockCheck struct {
	Current    int
	Sufficient bool
}

// CheckStock lee la cantidad una vez y evalúa quantity <= cantidad actual.
func (uc *StockQueryUseCase) CheckStock(ctx context.Context, productID string, quantity int) (StockCheck, error) {
	current, err := uc.state.Get(ctx, productID)
	if err != nil {
		return StockCheck{}, err
	}
	return StockCheck{Current: current, Sufficient: quantity <= current}, nil
}

// HasSufficientStock indica si quantity <= cantidad actual. Cero o negativo siempre alcanza.
func (uc *StockQueryUseCase) HasSufficientStock(ctx context.Context, productID string, quantity int) (bool, error) {
	check, err := uc.CheckStock(ctx, productID, quantity)
	if err != nil {
		return false, err
	}
	return check.Sufficient, nil
}

// SearchMovements búsqueda paginada con total.
func (uc *StockQueryUseCase) SearchMovements(ctx context.Context, f repository.MovementFilter) (*MovementPage, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, f.Type)
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, fmt.Errorf("%w: el rango de fechas está invertido", domain.ErrInvalidInput)
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Limit = clampLimit(f.Limit)
	f.Username = strings.TrimSpace(f.Username)

	total, err := uc.movRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	items, err := uc.movRepo.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	return &MovementPage{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// GetProductSummary totales por tipo, cantidad de movimientos, stock actual y
// verificación de la cadena previous → new.
func (uc *StockQueryUseCase) GetProductSummary(ctx context.Context, productID string) (*ProductSummary, error) {
	p, err := uc.store.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	totals, err := uc.movRepo.TotalsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	history, err := uc.movRepo.Search(ctx, repository.MovementFilter{ProductID: productID, OldestFirst: true})
	if err != nil {
		return nil, err
	}

	sum := &ProductSummary{
		ProductID:     p.ID,
		ProductName:   p.Name,
		CurrentStock:  p.Quantity,
		MovementCount: len(history),
		Totals:        totals,
	}
	if err := inventory.VerifyChain(history); err != nil {
		sum.ChainError = err.Error()
	} else if n := len(history); n > 0 && history[n-1].NewQuantity != p.Quantity {
		sum.ChainError = fmt.Sprintf("el último movimiento deja %d pero el stock actual es %d",
			history[n-1].NewQuantity, p.Quantity)
	}
	return sum, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		return MaxRecentLimit
	}
	return limit
}
