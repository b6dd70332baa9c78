package memory

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner pasa los repositorios en memoria sin transacción: no hay rollback de lo
// que fn alcanzó a escribir antes de fallar.
type TxRunner struct {
	products  *ProductRepo
	movements *StockMovementRepo
}

// NewTxRunner construye el runner sobre los repositorios dados.
func NewTxRunner(products *ProductRepo, movements *StockMovementRepo) *TxRunner {
	return &TxRunner{products: products, movements: movements}
}

// Run ejecuta fn con los repositorios compartidos.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(r.products, r.movements)
}
