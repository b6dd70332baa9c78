package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-stock/internal/domain/catalog"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// ReplenishmentWindow ventana de consumo usada para priorizar la reposición.
const ReplenishmentWindow = 30 * 24 * time.Hour

// ReplenishmentSuggestion producto en o bajo su stock mínimo con la cantidad sugerida de pedido.
type ReplenishmentSuggestion struct {
	ProductID         string
	ProductName       string
	Category          string
	CurrentStock      int
	MinimumStock      int
	IdealStock        int
	SuggestedOrderQty int
	UnitPrice         decimal.Decimal
	EstimatedValue    decimal.Decimal
	UnitsOutInWindow  int // STOCK_OUT + LOSS dentro de la ventana
	Priority          int // 1 = más urgente
}

// ReplenishmentUseCase genera la lista de reposición a partir del stock actual
// y del consumo registrado en el libro.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	now         func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		productRepo: productRepo,
		movRepo:     movRepo,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj que fija la ventana de consumo (pruebas).
func (uc *ReplenishmentUseCase) WithClock(now func() time.Time) *ReplenishmentUseCase {
	uc.now = now
	return uc
}

// GenerateReplenishmentList devuelve los productos con bajo stock, la cantidad sugerida
// para llegar a 1.5 veces el mínimo y una prioridad basada en el consumo reciente.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]ReplenishmentSuggestion, error) {
	// 1. Productos en o bajo el stock mínimo
	products, err := uc.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	low := catalog.Filter(products, catalog.LowStockOnly(true))
	if len(low) == 0 {
		return []ReplenishmentSuggestion{}, nil
	}

	// 2. Consumo de la ventana por producto
	from := uc.now().Add(-ReplenishmentWindow)
	consumed := make(map[string]int, len(low))
	for _, t := range []entity.MovementType{entity.MovementTypeStockOut, entity.MovementTypeLoss} {
		movs, err := uc.movRepo.Search(ctx, repository.MovementFilter{Type: t, From: &from})
		if err != nil {
			return nil, err
		}
		for _, m := range movs {
			consumed[m.ProductID] += m.Quantity
		}
	}

	// 3. Sugerencias
	suggestions := make([]ReplenishmentSuggestion, 0, len(low))
	for _, p := range low {
		ideal := (p.MinimumStock*3 + 1) / 2
		if ideal == 0 {
			ideal = 1
		}
		qty := ideal - p.Quantity
		if qty < 0 {
			qty = 0
		}
		suggestions = append(suggestions, ReplenishmentSuggestion{
			ProductID:         p.ID,
			ProductName:       p.Name,
			Category:          p.Category,
			CurrentStock:      p.Quantity,
			MinimumStock:      p.MinimumStock,
			IdealStock:        ideal,
			SuggestedOrderQty: qty,
			UnitPrice:         p.Price,
			EstimatedValue:    p.Price.Mul(decimal.NewFromInt(int64(qty))),
			UnitsOutInWindow:  consumed[p.ID],
		})
	}

	// 4. Ordenar: agotados primero, luego mayor consumo, luego mayor déficit.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if (a.CurrentStock == 0) != (b.CurrentStock == 0) {
			return a.CurrentStock == 0
		}
		if a.UnitsOutInWindow != b.UnitsOutInWindow {
			return a.UnitsOutInWindow > b.UnitsOutInWindow
		}
		return a.SuggestedOrderQty > b.SuggestedOrderQty
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
