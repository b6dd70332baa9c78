package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Quantity es el stock inicial
// y queda registrado como movimiento INITIAL.
type CreateProductRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=255"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	MinimumStock *int            `json:"minimum_stock"` // nil = 5
}

// UpdateProductRequest entrada para actualizar un producto. La cantidad no se toca aquí.
type UpdateProductRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	Price        *decimal.Decimal `json:"price"`
	MinimumStock *int             `json:"minimum_stock"`
}

// ProductSearchRequest filtros combinables; los vacíos no filtran.
type ProductSearchRequest struct {
	SearchTerm     string           `json:"search_term" query:"q"`
	Category       string           `json:"category" query:"category"`
	MinPrice       *decimal.Decimal `json:"min_price" query:"min_price"`
	MaxPrice       *decimal.Decimal `json:"max_price" query:"max_price"`
	LowStockOnly   bool             `json:"low_stock_only" query:"low_stock"`
	OutOfStockOnly bool             `json:"out_of_stock_only" query:"out_of_stock"`
}

// ProductResponse salida de un producto con su estado de stock derivado.
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	MinimumStock int             `json:"minimum_stock"`
	LowStock     bool            `json:"low_stock"`
	OutOfStock   bool            `json:"out_of_stock"`
	TotalValue   decimal.Decimal `json:"total_value"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// InventoryStatsResponse agregados del catálogo.
type InventoryStatsResponse struct {
	TotalProducts      int             `json:"total_products"`
	LowStockProducts   int             `json:"low_stock_products"`
	OutOfStockProducts int             `json:"out_of_stock_products"`
	TotalUnits         int             `json:"total_units"`
	TotalValue         decimal.Decimal `json:"total_value"`
	Categories         int             `json:"categories"`
}
