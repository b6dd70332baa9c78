package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/jhoicas/inventario-stock/pkg/jwt"
)

const statusActive = "active"

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: alta de usuarios y login.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	log      zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, log: log}
}

// RegisterUser crea un usuario: hashea password con bcrypt y persiste. ErrDuplicate si el usuario ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	if len(username) < 3 {
		return nil, fmt.Errorf("%w: el usuario debe tener al menos 3 caracteres", domain.ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos 8 caracteres", domain.ErrInvalidInput)
	}
	role := in.Role
	if role == "" {
		role = entity.RoleEmployee
	}
	if role != entity.RoleAdmin && role != entity.RoleEmployee {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, role)
	}
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Status:       statusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// EnsureUser crea el usuario inicial si todavía no existe. Sin credenciales no hace nada.
func (uc *AuthUseCase) EnsureUser(ctx context.Context, username, password, role string) error {
	if username == "" || password == "" {
		return nil
	}
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if _, err := uc.RegisterUser(ctx, dto.CreateUserRequest{Username: username, Password: password, Role: role}); err != nil {
		return fmt.Errorf("crear usuario inicial: %w", err)
	}
	uc.log.Info().Str("username", username).Str("role", role).Msg("usuario inicial creado")
	return nil
}

// Login verifica usuario/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != statusActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *ToUserResponse(user),
	}, nil
}

// ToUserResponse convierte la entidad a DTO (sin hash).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
