package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0", formatMoney(decimal.Zero))
	assert.Equal(t, "999", formatMoney(decimal.NewFromInt(999)))
	assert.Equal(t, "25.000", formatMoney(decimal.NewFromInt(25000)))
	assert.Equal(t, "1.000.000", formatMoney(decimal.NewFromInt(1000000)))
	assert.Equal(t, "1.235", formatMoney(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "-12.500", formatMoney(decimal.NewFromInt(-12500)))
}

func TestGenerateStockReport_DevuelvePDF(t *testing.T) {
	products := []*entity.Product{
		{ID: "1", Name: "Laptop", Category: "Electronics", Price: decimal.NewFromInt(1500), Quantity: 2, MinimumStock: 5},
		{ID: "2", Name: "Silla", Price: decimal.NewFromInt(200), Quantity: 0, MinimumStock: 5},
		{ID: "3", Name: "Mouse", Category: "Electronics", Price: decimal.NewFromInt(20), Quantity: 50, MinimumStock: 5},
	}
	stats := dto.InventoryStatsResponse{TotalProducts: 3, LowStockProducts: 2, OutOfStockProducts: 1, TotalValue: decimal.NewFromInt(4000)}

	out, err := NewMarotoPDFGenerator("").GenerateStockReport(context.Background(), products, stats, time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "cabecera PDF")
}
