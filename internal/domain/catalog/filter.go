// Package catalog compone filtros independientes sobre la colección de productos.
// Cada filtro es un Predicate; un filtro ausente es nil y no descarta nada.
// Agregar un filtro nuevo es agregar un constructor, sin tocar los existentes ni All.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// Predicate decide si un producto pasa el filtro.
type Predicate func(p *entity.Product) bool

// Criteria filtros de búsqueda de productos. Campos vacíos o nil no filtran.
type Criteria struct {
	SearchTerm     string
	Category       string
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	LowStockOnly   bool
	OutOfStockOnly bool
}

// Predicates traduce los criterios a la lista de predicados (con nil para los ausentes).
func (c Criteria) Predicates() []Predicate {
	return []Predicate{
		SearchTerm(c.SearchTerm),
		Category(c.Category),
		PriceRange(c.MinPrice, c.MaxPrice),
		LowStockOnly(c.LowStockOnly),
		OutOfStockOnly(c.OutOfStockOnly),
	}
}

// SearchTerm coincide si el término (sin distinguir mayúsculas) es subcadena del nombre,
// la descripción o la categoría. Término vacío o en blanco: sin filtro. Los espacios del
// término se respetan al comparar ("Pro " no coincide con "Laptop Pro").
func SearchTerm(term string) Predicate {
	if strings.TrimSpace(term) == "" {
		return nil
	}
	return func(p *entity.Product) bool {
		// cases.Caser tiene estado; uno por evaluación.
		fold := cases.Fold()
		needle := fold.String(term)
		for _, field := range []string{p.Name, p.Description, p.Category} {
			if field != "" && strings.Contains(fold.String(field), needle) {
				return true
			}
		}
		return false
	}
}

// Category coincidencia exacta, sensible a mayúsculas.
func Category(category string) Predicate {
	if strings.TrimSpace(category) == "" {
		return nil
	}
	return func(p *entity.Product) bool {
		return p.Category == category
	}
}

// PriceRange ambos límites inclusivos; un límite nil deja ese lado abierto.
func PriceRange(min, max *decimal.Decimal) Predicate {
	if min == nil && max == nil {
		return nil
	}
	return func(p *entity.Product) bool {
		if min != nil && p.Price.LessThan(*min) {
			return false
		}
		if max != nil && p.Price.GreaterThan(*max) {
			return false
		}
		return true
	}
}

// LowStockOnly quantity <= minimumStock.
func LowStockOnly(enabled bool) Predicate {
	if !enabled {
		return nil
	}
	return func(p *entity.Product) bool { return p.LowStock() }
}

// OutOfStockOnly quantity == 0.
func OutOfStockOnly(enabled bool) Predicate {
	if !enabled {
		return nil
	}
	return func(p *entity.Product) bool { return p.OutOfStock() }
}

// All combina con AND; los predicados nil se ignoran. Sin predicados acepta todo.
func All(preds ...Predicate) Predicate {
	active := make([]Predicate, 0, len(preds))
	for _, pr := range preds {
		if pr != nil {
			active = append(active, pr)
		}
	}
	return func(p *entity.Product) bool {
		for _, pr := range active {
			if !pr(p) {
				return false
			}
		}
		return true
	}
}

// Filter devuelve los productos que cumplen todos los predicados, en el orden original.
func Filter(products []*entity.Product, preds ...Predicate) []*entity.Product {
	match := All(preds...)
	out := make([]*entity.Product, 0, len(products))
	for _, p := range products {
		if match(p) {
			out = append(out, p)
		}
	}
	return out
}
