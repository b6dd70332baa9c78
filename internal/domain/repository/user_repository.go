package repository

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los Get devuelven (nil, nil) si el usuario no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
