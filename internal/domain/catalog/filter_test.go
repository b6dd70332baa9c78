package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-stock/internal/domain/catalog"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

func product(id, name, category string, price int64, qty, min int) *entity.Product {
	return &entity.Product{
		ID: id, Name: name, Category: category,
		Price: decimal.NewFromInt(price), Quantity: qty, MinimumStock: min,
	}
}

func fixture() []*entity.Product {
	return []*entity.Product{
		product("1", "Laptop Pro", "Electronics", 1500, 2, 5),
		product("2", "Mouse", "Electronics", 20, 50, 5),
		product("3", "Desk Chair", "Furniture", 200, 0, 5),
		product("4", "USB Cable", "Electronics", 5, 0, 10),
		product("5", "Lamp", "electronics", 35, 1, 5),
	}
}

func ids(products []*entity.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter_CategoriaYBajoStock(t *testing.T) {
	got := catalog.Filter(fixture(), catalog.Criteria{
		Category:     "Electronics",
		LowStockOnly: true,
	}.Predicates()...)

	assert.Equal(t, []string{"1", "4"}, ids(got),
		"solo productos Electronics (sensible a mayúsculas) con quantity <= minimumStock")
}

func TestFilter_TerminoVacioNoFiltra(t *testing.T) {
	all := fixture()
	assert.Len(t, catalog.Filter(all, catalog.SearchTerm("")), len(all))
	assert.Len(t, catalog.Filter(all, catalog.SearchTerm("   ")), len(all))
	assert.Len(t, catalog.Filter(all, catalog.Criteria{}.Predicates()...), len(all))
}

func TestFilter_TerminoSinDistinguirMayusculas(t *testing.T) {
	got := catalog.Filter(fixture(), catalog.SearchTerm("ELECTRON"))
	assert.Equal(t, []string{"1", "2", "4", "5"}, ids(got), "coincide en la categoría")

	got = catalog.Filter(fixture(), catalog.SearchTerm("chair"))
	assert.Equal(t, []string{"3"}, ids(got))
}

func TestFilter_TerminoConEspaciosSeComparaTalCual(t *testing.T) {
	got := catalog.Filter(fixture(), catalog.SearchTerm("laptop "))
	assert.Equal(t, []string{"1"}, ids(got), "\"Laptop Pro\" contiene \"laptop \"")

	got = catalog.Filter(fixture(), catalog.SearchTerm(" mouse"))
	assert.Empty(t, got, "\"Mouse\" no contiene \" mouse\"")
}

func TestFilter_TerminoEnDescripcion(t *testing.T) {
	ps := fixture()
	ps[1].Description = "Inalámbrico, ergonómico"
	got := catalog.Filter(ps, catalog.SearchTerm("INALÁMBRICO"))
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestFilter_RangoDePrecioInclusivo(t *testing.T) {
	min := decimal.NewFromInt(20)
	max := decimal.NewFromInt(200)

	got := catalog.Filter(fixture(), catalog.PriceRange(&min, &max))
	assert.Equal(t, []string{"2", "3", "5"}, ids(got))

	got = catalog.Filter(fixture(), catalog.PriceRange(&min, nil))
	assert.Equal(t, []string{"1", "2", "3", "5"}, ids(got), "sin máximo")

	got = catalog.Filter(fixture(), catalog.PriceRange(nil, &min))
	assert.Equal(t, []string{"2", "4"}, ids(got), "sin mínimo")
}

func TestFilter_AgotadoOnly(t *testing.T) {
	got := catalog.Filter(fixture(), catalog.OutOfStockOnly(true))
	assert.Equal(t, []string{"3", "4"}, ids(got))
}

func TestProducto_AgotadoEsTambienBajoStock(t *testing.T) {
	p := product("x", "Agotado", "", 10, 0, 5)
	assert.True(t, p.LowStock())
	assert.True(t, p.OutOfStock())
	assert.True(t, p.TotalValue().IsZero())
}

func TestAll_PredicadoPersonalizadoSeCompone(t *testing.T) {
	expensive := catalog.Predicate(func(p *entity.Product) bool {
		return p.Price.GreaterThan(decimal.NewFromInt(100))
	})
	got := catalog.Filter(fixture(), catalog.Category("Electronics"), expensive, nil)
	assert.Equal(t, []string{"1"}, ids(got))
}
