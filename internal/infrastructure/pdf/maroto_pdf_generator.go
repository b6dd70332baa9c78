// Package pdf genera el reporte de stock en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha de generación                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: productos / bajo stock / agotados / valor total    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Categoría | Cant | Mín | Precio | Valor   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda de estados                                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/usecase"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

var _ usecase.StockReportGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWarn    = &props.Color{Red: 200, Green: 120, Blue: 0}
	colorDanger  = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa usecase.StockReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	title string
}

// NewMarotoPDFGenerator construye el generador. title encabeza el reporte.
func NewMarotoPDFGenerator(title string) *MarotoPDFGenerator {
	if title == "" {
		title = "Reporte de inventario"
	}
	return &MarotoPDFGenerator{title: title}
}

// GenerateStockReport genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateStockReport(
	_ context.Context,
	products []*entity.Product,
	stats dto.InventoryStatsResponse,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.title, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(stats))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(products)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, generatedAt time.Time) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func summaryRow(stats dto.InventoryStatsResponse) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Top: 5, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		cell("PRODUCTOS", strconv.Itoa(stats.TotalProducts)),
		cell("BAJO STOCK", strconv.Itoa(stats.LowStockProducts)),
		cell("AGOTADOS", strconv.Itoa(stats.OutOfStockProducts)),
		cell("VALOR TOTAL", "$"+formatMoney(stats.TotalValue)),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 4, align.Left),
		h("Categoría", 2, align.Left),
		h("Cant.", 1, align.Center),
		h("Mín.", 1, align.Center),
		h("Precio", 2, align.Right),
		h("Valor", 2, align.Right),
	)
}

// tableRows una fila por producto; agotados en rojo, bajo stock en ámbar.
func tableRows(products []*entity.Product) []core.Row {
	rows := make([]core.Row, 0, len(products))
	for _, p := range products {
		qtyProps := props.Text{Size: 8, Align: align.Center, Top: 1}
		switch {
		case p.OutOfStock():
			qtyProps.Style, qtyProps.Color = fontstyle.Bold, colorDanger
		case p.LowStock():
			qtyProps.Style, qtyProps.Color = fontstyle.Bold, colorWarn
		}
		rows = append(rows, row.New(7).Add(
			col.New(4).Add(text.New(p.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(p.Category, "—"), props.Text{Size: 8, Top: 1, Color: colorGray})),
			col.New(1).Add(text.New(strconv.Itoa(p.Quantity), qtyProps)),
			col.New(1).Add(text.New(strconv.Itoa(p.MinimumStock), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New("$"+formatMoney(p.Price), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatMoney(p.TotalValue()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func footerRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New("Cantidad en rojo: agotado. En ámbar: en o bajo el stock mínimo.",
			props.Text{Size: 7, Color: colorGray, Top: 2}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney redondea a pesos e inserta puntos de miles.
// Ej: 25000 → "25.000", 1000000 → "1.000.000"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(0)
	neg := len(s) > 0 && s[0] == '-'
	if neg {
		s = s[1:]
	}
	n := len(s)
	buf := make([]byte, 0, n+n/3+1)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
