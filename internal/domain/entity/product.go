package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinimumStock umbral de stock mínimo cuando el producto no define uno.
const DefaultMinimumStock = 5

// Product representa un producto del inventario (una sola ubicación, una sola moneda).
// Quantity solo la modifica el motor de movimientos; Version se incrementa en cada cambio
// confirmado de cantidad y sirve como token de concurrencia optimista.
type Product struct {
	ID           string
	Name         string
	Description  string
	Category     string
	Price        decimal.Decimal
	Quantity     int
	MinimumStock int
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LowStock indica si la cantidad está en o por debajo del stock mínimo.
func (p *Product) LowStock() bool {
	return p.Quantity <= p.MinimumStock
}

// OutOfStock indica si el producto está agotado.
func (p *Product) OutOfStock() bool {
	return p.Quantity == 0
}

// TotalValue devuelve precio * cantidad.
func (p *Product) TotalValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// Clone copia superficial; Product no tiene campos por referencia.
func (p *Product) Clone() *Product {
	c := *p
	return &c
}
