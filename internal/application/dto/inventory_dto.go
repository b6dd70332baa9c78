package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovementRequest body de POST /stock/{in,out,return,loss,adjustment}.
// Quantity aplica a in/out/return/loss; NewQuantity (absoluto) solo a adjustment.
type StockMovementRequest struct {
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
	NewQuantity *int   `json:"new_quantity,omitempty"`
	Reason      string `json:"reason"`
}

// StockMovementResponse movimiento registrado.
type StockMovementResponse struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	ProductName      string    `json:"product_name"`
	MovementType     string    `json:"movement_type"`
	Description      string    `json:"description"`
	Quantity         int       `json:"quantity"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	Timestamp        time.Time `json:"timestamp"`
	Username         string    `json:"username"`
	Reason           string    `json:"reason"`
}

// StockMovementListResponse página de movimientos.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// StockValidationResponse respuesta de GET /stock/validate.
type StockValidationResponse struct {
	ProductID    string `json:"product_id"`
	Requested    int    `json:"requested"`
	CurrentStock int    `json:"current_stock"`
	Sufficient   bool   `json:"sufficient"`
}

// MovementTotalResponse agregado por tipo.
type MovementTotalResponse struct {
	MovementType string `json:"movement_type"`
	Count        int    `json:"count"`
	Quantity     int    `json:"quantity"`
}

// ProductStockSummaryResponse resumen del libro para un producto.
type ProductStockSummaryResponse struct {
	ProductID     string                  `json:"product_id"`
	ProductName   string                  `json:"product_name"`
	CurrentStock  int                     `json:"current_stock"`
	MovementCount int                     `json:"movement_count"`
	Totals        []MovementTotalResponse `json:"totals"`
	ChainValid    bool                    `json:"chain_valid"`
	ChainError    string                  `json:"chain_error,omitempty"`
}

// ReplenishmentSuggestionDTO producto en o bajo su stock mínimo con la cantidad sugerida de pedido.
type ReplenishmentSuggestionDTO struct {
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Category          string          `json:"category"`
	CurrentStock      int             `json:"current_stock"`
	MinimumStock      int             `json:"minimum_stock"`
	IdealStock        int             `json:"ideal_stock"`         // ceil(MinimumStock * 1.5)
	SuggestedOrderQty int             `json:"suggested_order_qty"` // IdealStock - CurrentStock
	UnitPrice         decimal.Decimal `json:"unit_price"`
	EstimatedValue    decimal.Decimal `json:"estimated_value"`
	UnitsOutLast30d   int             `json:"units_out_last_30d"`
	Priority          int             `json:"priority"` // 1 = más urgente
}
