package inventory

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Lo usa el alta de productos para guardar el producto y su movimiento INITIAL juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// QuantityStore es lo mínimo que el estado de inventario necesita del almacenamiento:
// leer una instantánea (cantidad + versión) y confirmar con comparación de versión.
// Lo implementan los ProductRepository de postgres y memory.
type QuantityStore interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	CompareAndSetQuantity(ctx context.Context, id string, expectedVersion int64, quantity int) (bool, error)
}
