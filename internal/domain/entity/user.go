package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User representa un usuario que opera el inventario.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // admin, employee
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
