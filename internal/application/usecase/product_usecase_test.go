package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	appinv "github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/application/usecase"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/memory"
)

type reportSpy struct {
	products []*entity.Product
	stats    dto.InventoryStatsResponse
}

func (r *reportSpy) GenerateStockReport(_ context.Context, products []*entity.Product, stats dto.InventoryStatsResponse, _ time.Time) ([]byte, error) {
	r.products, r.stats = products, stats
	return []byte("%PDF-"), nil
}

type fixture struct {
	uc        *usecase.ProductUseCase
	movements *memory.StockMovementRepo
	engine    *appinv.RegisterMovementUseCase
	report    *reportSpy
}

func newFixture() *fixture {
	products := memory.NewProductRepository()
	movements := memory.NewStockMovementRepository()
	report := &reportSpy{}
	state := appinv.NewInventoryState(products, appinv.DefaultRetryConfig(), zerolog.Nop())
	return &fixture{
		uc:        usecase.NewProductUseCase(products, movements, memory.NewTxRunner(products, movements), report, zerolog.Nop()),
		movements: movements,
		engine:    appinv.NewRegisterMovementUseCase(state, movements, zerolog.Nop()),
		report:    report,
	}
}

func intPtr(v int) *int { return &v }

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func (f *fixture) create(t *testing.T, name, category string, p int64, qty, min int) *dto.ProductResponse {
	t.Helper()
	out, err := f.uc.Create(context.Background(), dto.CreateProductRequest{
		Name: name, Category: category, Price: price(p), Quantity: qty, MinimumStock: intPtr(min),
	}, "ana")
	require.NoError(t, err)
	return out
}

// ── Alta ──────────────────────────────────────────────────────────────────────

func TestCreate_RegistraMovimientoInicial(t *testing.T) {
	f := newFixture()
	p := f.create(t, "Laptop", "Electronics", 1500, 7, 5)

	history, err := f.movements.Search(context.Background(), repository.MovementFilter{ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.MovementTypeInitial, history[0].Type)
	assert.Equal(t, 0, history[0].PreviousQuantity)
	assert.Equal(t, 7, history[0].NewQuantity)
	assert.Equal(t, "ana", history[0].Username)
	assert.Equal(t, "Initial Stock", history[0].Reason)
}

func TestCreate_HistoriaEncadenaDesdeCero(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.create(t, "Laptop", "", 10, 7, 5)

	_, err := f.engine.RegisterStockOut(ctx, p.ID, 2, "", "")
	require.NoError(t, err)
	_, err = f.engine.RegisterAdjustment(ctx, p.ID, 9, "", "")
	require.NoError(t, err)

	history, err := f.movements.Search(ctx, repository.MovementFilter{ProductID: p.ID, OldestFirst: true})
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.NoError(t, inventory.VerifyChain(history))
}

func TestCreate_SinStockNoRegistraMovimiento(t *testing.T) {
	f := newFixture()
	p := f.create(t, "Silla", "", 10, 0, 5)
	n, err := f.movements.Count(context.Background(), repository.MovementFilter{ProductID: p.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, p.OutOfStock)
	assert.True(t, p.LowStock)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cases := map[string]dto.CreateProductRequest{
		"nombre vacío":     {Name: "  ", Price: price(1)},
		"precio cero":      {Name: "X", Price: decimal.Zero},
		"mínimo negativo":  {Name: "X", Price: price(1), MinimumStock: intPtr(-1)},
		"cantidad negativa": {Name: "X", Price: price(1), Quantity: -1},
	}
	for name, in := range cases {
		_, err := f.uc.Create(ctx, in, "")
		assert.Error(t, err, name)
	}
	_, err := f.uc.Create(ctx, dto.CreateProductRequest{Name: "X", Price: price(1), Quantity: -1}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestCreate_MinimoPorDefecto(t *testing.T) {
	f := newFixture()
	out, err := f.uc.Create(context.Background(), dto.CreateProductRequest{Name: "X", Price: price(1), Quantity: 10}, "")
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultMinimumStock, out.MinimumStock)
}

// ── Actualización y borrado ───────────────────────────────────────────────────

func TestUpdate_NoModificaCantidad(t *testing.T) {
	f := newFixture()
	p := f.create(t, "Mouse", "Electronics", 20, 12, 5)
	name := "Mouse inalámbrico"

	out, err := f.uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{Name: &name, MinimumStock: intPtr(15)})
	require.NoError(t, err)
	assert.Equal(t, name, out.Name)
	assert.Equal(t, 12, out.Quantity)
	assert.True(t, out.LowStock, "12 <= 15")
}

func TestUpdate_ProductoInexistente(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Update(context.Background(), uuid.NewString(), dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_BloqueadoConMovimientos(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	conHistoria := f.create(t, "A", "", 1, 3, 5)
	sinHistoria := f.create(t, "B", "", 1, 0, 5)

	assert.ErrorIs(t, f.uc.Delete(ctx, conHistoria.ID), domain.ErrHasMovements)
	require.NoError(t, f.uc.Delete(ctx, sinHistoria.ID))

	_, err := f.uc.GetByID(ctx, sinHistoria.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.uc.Delete(ctx, sinHistoria.ID), domain.ErrNotFound)
}

// deleteOnAppend intenta borrar el producto después de confirmada la cantidad y antes de
// anexar el movimiento.
type deleteOnAppend struct {
	*memory.StockMovementRepo
	uc        *usecase.ProductUseCase
	deleteErr error
}

func (d *deleteOnAppend) Create(ctx context.Context, m *entity.StockMovement) error {
	d.deleteErr = d.uc.Delete(ctx, m.ProductID)
	return d.StockMovementRepo.Create(ctx, m)
}

func TestDelete_EntreConfirmacionYAnexo(t *testing.T) {
	ctx := context.Background()
	products := memory.NewProductRepository()
	movements := memory.NewStockMovementRepository()
	uc := usecase.NewProductUseCase(products, movements, memory.NewTxRunner(products, movements), &reportSpy{}, zerolog.Nop())
	appender := &deleteOnAppend{StockMovementRepo: movements, uc: uc}
	state := appinv.NewInventoryState(products, appinv.DefaultRetryConfig(), zerolog.Nop())
	engine := appinv.NewRegisterMovementUseCase(state, appender, zerolog.Nop())

	p, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Caja", Price: price(2), Quantity: 0}, "ana")
	require.NoError(t, err)

	_, err = engine.RegisterStockIn(ctx, p.ID, 4, "", "ana")
	require.NoError(t, err)
	assert.ErrorIs(t, appender.deleteErr, domain.ErrHasMovements)

	got, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err, "el producto sigue existiendo")
	assert.Equal(t, 4, got.Quantity)

	n, err := movements.Count(ctx, repository.MovementFilter{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// ── Búsqueda, categorías y estadísticas ───────────────────────────────────────

func TestSearch_CombinaFiltros(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.create(t, "Laptop Pro", "Electronics", 1500, 2, 5)
	f.create(t, "Mouse", "Electronics", 20, 50, 5)
	f.create(t, "Desk Chair", "Furniture", 200, 0, 5)

	got, err := f.uc.Search(ctx, dto.ProductSearchRequest{Category: "Electronics", LowStockOnly: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Laptop Pro", got[0].Name)

	got, err = f.uc.Search(ctx, dto.ProductSearchRequest{SearchTerm: "chair"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	min, max := price(100), price(10)
	_, err = f.uc.Search(ctx, dto.ProductSearchRequest{MinPrice: &min, MaxPrice: &max})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCategoriesYStats(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.create(t, "Laptop", "Electronics", 100, 2, 5)
	f.create(t, "Chair", "Furniture", 50, 0, 5)
	f.create(t, "Cable", "Electronics", 5, 10, 5)
	f.create(t, "Misc", "", 1, 1, 0)

	cats, err := f.uc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Furniture"}, cats)

	stats, err := f.uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalProducts)
	assert.Equal(t, 2, stats.LowStockProducts, "Laptop y Chair")
	assert.Equal(t, 1, stats.OutOfStockProducts)
	assert.Equal(t, 13, stats.TotalUnits)
	assert.True(t, price(251).Equal(stats.TotalValue), "200 + 0 + 50 + 1")
	assert.Equal(t, 2, stats.Categories)
}

func TestStockReportPDF_UsaTodosLosProductos(t *testing.T) {
	f := newFixture()
	f.create(t, "Laptop", "Electronics", 100, 2, 5)
	f.create(t, "Chair", "Furniture", 50, 0, 5)

	out, err := f.uc.StockReportPDF(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Len(t, f.report.products, 2)
	assert.Equal(t, 2, f.report.stats.TotalProducts)
}
