package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// MovementFilter criterios de consulta del libro de movimientos. Campos vacíos no filtran.
// Username filtra por subcadena sin distinguir mayúsculas; From/To son inclusivos.
type MovementFilter struct {
	ProductID   string
	Type        entity.MovementType
	Username    string
	From        *time.Time
	To          *time.Time
	Limit       int // 0 = sin límite
	Offset      int
	OldestFirst bool // por defecto más reciente primero
}

// MovementTotal agregado por tipo de movimiento.
type MovementTotal struct {
	Type     entity.MovementType
	Count    int
	Quantity int
}

// StockMovementRepository puerto del libro de movimientos: solo inserción y consulta.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	Search(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	Count(ctx context.Context, filter MovementFilter) (int, error)
	TotalsByProduct(ctx context.Context, productID string) ([]MovementTotal, error)
}
