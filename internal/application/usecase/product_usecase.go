package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/catalog"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// StockReportGenerator genera el reporte de stock en PDF.
type StockReportGenerator interface {
	GenerateStockReport(ctx context.Context, products []*entity.Product, stats dto.InventoryStatsResponse, generatedAt time.Time) ([]byte, error)
}

// ProductUseCase casos de uso de productos. La cantidad solo cambia vía movimientos;
// el alta registra el stock inicial como movimiento INITIAL en la misma transacción.
type ProductUseCase struct {
	repo     repository.ProductRepository
	movRepo  repository.StockMovementRepository
	txRunner inventory.TxRunner
	report   StockReportGenerator
	log      zerolog.Logger
	now      func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	txRunner inventory.TxRunner,
	report StockReportGenerator,
	log zerolog.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		repo:     repo,
		movRepo:  movRepo,
		txRunner: txRunner,
		report:   report,
		log:      log,
		now:      time.Now,
	}
}

// Create crea un producto. Con cantidad inicial > 0 registra además el movimiento INITIAL.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest, username string) (*dto.ProductResponse, error) {
	minimum := entity.DefaultMinimumStock
	if in.MinimumStock != nil {
		minimum = *in.MinimumStock
	}
	now := uc.now().UTC()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		Category:     strings.TrimSpace(in.Category),
		Price:        in.Price,
		Quantity:     in.Quantity,
		MinimumStock: minimum,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if product.Quantity < 0 {
		return nil, fmt.Errorf("%w: la cantidad inicial no puede ser negativa", domain.ErrInvalidQuantity)
	}

	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if product.Quantity == 0 {
			return nil
		}
		return movRepo.Create(ctx, initialMovement(product, username, now))
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", product.ID).Int("quantity", product.Quantity).Msg("producto creado")
	return toProductResponse(product), nil
}

// GetByID obtiene un producto; ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza atributos descriptivos. Nunca modifica la cantidad.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.MinimumStock != nil {
		product.MinimumStock = *in.MinimumStock
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	// La cantidad pudo cambiar entre la lectura y la escritura; devolver la vigente.
	return uc.GetByID(ctx, id)
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListPage(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{
		Items: toProductResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina un producto sin historia; ErrHasMovements si tiene movimientos.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	n, err := uc.movRepo.Count(ctx, repository.MovementFilter{ProductID: id})
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d movimientos", domain.ErrHasMovements, n)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("product_id", id).Msg("producto eliminado")
	return nil
}

// Search aplica los filtros combinados sobre el catálogo completo, en orden de alta.
func (uc *ProductUseCase) Search(ctx context.Context, in dto.ProductSearchRequest) ([]dto.ProductResponse, error) {
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return nil, fmt.Errorf("%w: min_price mayor que max_price", domain.ErrInvalidInput)
	}
	criteria := catalog.Criteria{
		SearchTerm:     in.SearchTerm,
		Category:       in.Category,
		MinPrice:       in.MinPrice,
		MaxPrice:       in.MaxPrice,
		LowStockOnly:   in.LowStockOnly,
		OutOfStockOnly: in.OutOfStockOnly,
	}
	return uc.filter(ctx, criteria.Predicates()...)
}

// FindByCategory productos de una categoría (coincidencia exacta).
func (uc *ProductUseCase) FindByCategory(ctx context.Context, category string) ([]dto.ProductResponse, error) {
	return uc.filter(ctx, catalog.Category(category))
}

// FindLowStock productos en o bajo su stock mínimo.
func (uc *ProductUseCase) FindLowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	return uc.filter(ctx, catalog.LowStockOnly(true))
}

// FindOutOfStock productos agotados.
func (uc *ProductUseCase) FindOutOfStock(ctx context.Context) ([]dto.ProductResponse, error) {
	return uc.filter(ctx, catalog.OutOfStockOnly(true))
}

// Categories categorías distintas, ordenadas; las vacías se omiten.
func (uc *ProductUseCase) Categories(ctx context.Context) ([]string, error) {
	products, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return categories(products), nil
}

// Stats agregados del catálogo.
func (uc *ProductUseCase) Stats(ctx context.Context) (*dto.InventoryStatsResponse, error) {
	products, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := computeStats(products)
	return &stats, nil
}

// StockReportPDF reporte de stock de todos los productos.
func (uc *ProductUseCase) StockReportPDF(ctx context.Context) ([]byte, error) {
	products, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return uc.report.GenerateStockReport(ctx, products, computeStats(products), uc.now())
}

func (uc *ProductUseCase) get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return product, nil
}

func (uc *ProductUseCase) filter(ctx context.Context, preds ...catalog.Predicate) ([]dto.ProductResponse, error) {
	products, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toProductResponses(catalog.Filter(products, preds...)), nil
}

func validateProduct(p *entity.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	if !p.Price.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: el precio debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if p.MinimumStock < 0 {
		return fmt.Errorf("%w: el stock mínimo no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

func initialMovement(p *entity.Product, username string, now time.Time) *entity.StockMovement {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	if strings.TrimSpace(username) == "" {
		username = entity.SystemUsername
	}
	return &entity.StockMovement{
		ID:               id.String(),
		ProductID:        p.ID,
		ProductName:      p.Name,
		Type:             entity.MovementTypeInitial,
		Quantity:         p.Quantity,
		PreviousQuantity: 0,
		NewQuantity:      p.Quantity,
		ProductVersion:   p.Version,
		Timestamp:        now,
		Username:         username,
		Reason:           entity.MovementTypeInitial.Description(),
	}
}

func categories(products []*entity.Product) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

func computeStats(products []*entity.Product) dto.InventoryStatsResponse {
	stats := dto.InventoryStatsResponse{TotalValue: decimal.Zero}
	for _, p := range products {
		stats.TotalProducts++
		stats.TotalUnits += p.Quantity
		stats.TotalValue = stats.TotalValue.Add(p.TotalValue())
		if p.LowStock() {
			stats.LowStockProducts++
		}
		if p.OutOfStock() {
			stats.OutOfStockProducts++
		}
	}
	stats.Categories = len(categories(products))
	return stats
}

func toProductResponses(list []*entity.Product) []dto.ProductResponse {
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Price:        p.Price,
		Quantity:     p.Quantity,
		MinimumStock: p.MinimumStock,
		LowStock:     p.LowStock(),
		OutOfStock:   p.OutOfStock(),
		TotalValue:   p.TotalValue(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
