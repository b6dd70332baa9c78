package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Errores del libro de movimientos.
	ErrInvalidQuantity = errors.New("cantidad inválida")
	ErrUnavailable     = errors.New("inventario no disponible, reintentos agotados")
	ErrHasMovements    = errors.New("el producto tiene movimientos registrados")
)
