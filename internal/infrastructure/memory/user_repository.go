package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria; el nombre de usuario es único sin distinguir mayúsculas.
type UserRepo struct {
	mu         sync.RWMutex
	byID       map[string]*entity.User
	byUsername map[string]*entity.User
}

// NewUserRepository construye el repositorio vacío.
func NewUserRepository() *UserRepo {
	return &UserRepo{
		byID:       make(map[string]*entity.User),
		byUsername: make(map[string]*entity.User),
	}
}

// Create guarda una copia; ErrDuplicate si el id o el usuario ya existen.
func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	key := strings.ToLower(user.Username)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.byUsername[key]; ok {
		return domain.ErrDuplicate
	}
	cp := *user
	r.byID[cp.ID] = &cp
	r.byUsername[key] = &cp
	return nil
}

// GetByID (nil, nil) si no existe.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyUser(r.byID[id]), nil
}

// GetByUsername (nil, nil) si no existe.
func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyUser(r.byUsername[strings.ToLower(username)]), nil
}

func copyUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
