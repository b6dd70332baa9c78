package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/usecase"
)

// ProductHandler maneja las peticiones HTTP para Product (protegido).
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Crear producto
// @Description  La cantidad inicial queda registrada como movimiento INITIAL.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v2/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Name == "" {
		return badRequest(c, "VALIDATION", "name es requerido")
	}
	out, err := h.uc.Create(c.UserContext(), in, GetUsername(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v2/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/v2/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Description  Solo atributos descriptivos; la cantidad cambia únicamente con movimientos.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v2/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar producto (solo admin)
// @Description  Rechazado con 409 si el producto tiene movimientos registrados.
// @Tags         products
// @Security     Bearer
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v2/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Search godoc
// @Summary      Buscar productos con filtros combinados (cuerpo JSON)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductSearchRequest  true  "Filtros"
// @Success      200   {array}   dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v2/products/search [post]
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	var in dto.ProductSearchRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	return h.search(c, in)
}

// SearchQuery godoc
// @Summary      Buscar productos con filtros combinados (query string)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        q             query  string  false  "Texto en nombre o descripción"
// @Param        category      query  string  false  "Categoría exacta (sin distinguir mayúsculas)"
// @Param        min_price     query  string  false  "Precio mínimo"
// @Param        max_price     query  string  false  "Precio máximo"
// @Param        low_stock     query  bool    false  "Solo bajo stock"
// @Param        out_of_stock  query  bool    false  "Solo agotados"
// @Success      200  {array}   dto.ProductResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v2/products/search [get]
func (h *ProductHandler) SearchQuery(c *fiber.Ctx) error {
	in := dto.ProductSearchRequest{
		SearchTerm:     c.Query("q"),
		Category:       c.Query("category"),
		LowStockOnly:   c.QueryBool("low_stock", false),
		OutOfStockOnly: c.QueryBool("out_of_stock", false),
	}
	var err error
	if in.MinPrice, err = parsePriceQuery(c.Query("min_price")); err != nil {
		return badRequest(c, "VALIDATION", "min_price inválido")
	}
	if in.MaxPrice, err = parsePriceQuery(c.Query("max_price")); err != nil {
		return badRequest(c, "VALIDATION", "max_price inválido")
	}
	return h.search(c, in)
}

func (h *ProductHandler) search(c *fiber.Ctx, in dto.ProductSearchRequest) error {
	out, err := h.uc.Search(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ByCategory godoc
// @Summary      Productos de una categoría
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        category  path  string  true  "Categoría"
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/v2/products/category/{category} [get]
func (h *ProductHandler) ByCategory(c *fiber.Ctx) error {
	out, err := h.uc.FindByCategory(c.UserContext(), c.Params("category"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos en o bajo su stock mínimo
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/v2/products/low-stock [get]
func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.FindLowStock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// OutOfStock godoc
// @Summary      Productos agotados
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/v2/products/out-of-stock [get]
func (h *ProductHandler) OutOfStock(c *fiber.Ctx) error {
	out, err := h.uc.FindOutOfStock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Categories godoc
// @Summary      Categorías distintas
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  string
// @Router       /api/v2/products/categories [get]
func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	out, err := h.uc.Categories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Estadísticas del inventario
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryStatsResponse
// @Router       /api/v2/products/stats [get]
func (h *ProductHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ReportPDF godoc
// @Summary      Reporte de stock en PDF
// @Tags         products
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/v2/products/report.pdf [get]
func (h *ProductHandler) ReportPDF(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.StockReportPDF(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="reporte-stock.pdf"`)
	return c.Send(pdfBytes)
}

func parsePriceQuery(v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
