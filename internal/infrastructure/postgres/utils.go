package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-stock/internal/domain"
)

// Códigos SQLSTATE que el dominio distingue.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidTextRepr     = "22P02"
	codeNumericOutOfRange   = "22003"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if pgCode(err) == codeUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isForeignKeyViolation fila referenciada por otra tabla (ON DELETE RESTRICT).
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// isCheckViolation p. ej. quantity >= 0.
func isCheckViolation(err error) bool {
	return pgCode(err) == codeCheckViolation
}

// isInvalidText un id que no es UUID; se trata como inexistente.
func isInvalidText(err error) bool {
	return pgCode(err) == codeInvalidTextRepr
}

// isOutOfRange valor fuera del rango de la columna (quantity es INTEGER).
func isOutOfRange(err error) bool {
	return pgCode(err) == codeNumericOutOfRange
}

// quantityError traduce los rechazos de la base sobre una cantidad a ErrInvalidQuantity.
// Devuelve nil si err no es de ese tipo.
func quantityError(err error, quantity int) error {
	switch {
	case isCheckViolation(err):
		return fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	case isOutOfRange(err):
		return fmt.Errorf("%w: %d excede el máximo admitido", domain.ErrInvalidQuantity, quantity)
	}
	return nil
}
