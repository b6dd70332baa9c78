package repository

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// Update modifica los atributos descriptivos. Nunca toca Quantity ni Version.
	Update(ctx context.Context, product *entity.Product) error
	// List devuelve todos los productos en su orden natural (alta más antigua primero).
	List(ctx context.Context) ([]*entity.Product, error)
	ListPage(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// Delete elimina el producto. ErrHasMovements si tiene historia; ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
	// CompareAndSetQuantity confirma quantity solo si la versión sigue siendo expectedVersion.
	// Devuelve false (sin error) si otra actualización confirmó antes o el producto desapareció.
	CompareAndSetQuantity(ctx context.Context, id string, expectedVersion int64, quantity int) (bool, error)
}
