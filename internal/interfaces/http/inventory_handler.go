package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// InventoryHandler maneja los movimientos de stock y las consultas del libro (protegido).
type InventoryHandler struct {
	uc            *inventory.RegisterMovementUseCase
	queries       *inventory.StockQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	uc *inventory.RegisterMovementUseCase,
	queries *inventory.StockQueryUseCase,
	replenishment *inventory.ReplenishmentUseCase,
) *InventoryHandler {
	return &InventoryHandler{uc: uc, queries: queries, replenishment: replenishment}
}

// StockIn godoc
// @Summary      Registrar entrada de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, quantity, reason"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/v2/stock/in [post]
func (h *InventoryHandler) StockIn(c *fiber.Ctx) error {
	return h.register(c, entity.MovementTypeStockIn)
}

// StockOut godoc
// @Summary      Registrar salida de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, quantity, reason"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/v2/stock/out [post]
func (h *InventoryHandler) StockOut(c *fiber.Ctx) error {
	return h.register(c, entity.MovementTypeStockOut)
}

// Return godoc
// @Summary      Registrar devolución
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, quantity, reason"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v2/stock/return [post]
func (h *InventoryHandler) Return(c *fiber.Ctx) error {
	return h.register(c, entity.MovementTypeReturn)
}

// Loss godoc
// @Summary      Registrar pérdida o daño
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, quantity, reason"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v2/stock/loss [post]
func (h *InventoryHandler) Loss(c *fiber.Ctx) error {
	return h.register(c, entity.MovementTypeLoss)
}

// Adjustment godoc
// @Summary      Ajustar stock a una cantidad absoluta (solo admin)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, new_quantity, reason"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v2/stock/adjustment [post]
func (h *InventoryHandler) Adjustment(c *fiber.Ctx) error {
	return h.register(c, entity.MovementTypeAdjustment)
}

func (h *InventoryHandler) register(c *fiber.Ctx, t entity.MovementType) error {
	var in dto.StockMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.ProductID == "" {
		return badRequest(c, "VALIDATION", "product_id es requerido")
	}
	mov, err := h.uc.Register(c.UserContext(), inventory.MovementCommand{
		ProductID:      in.ProductID,
		Type:           t,
		Quantity:       in.Quantity,
		TargetQuantity: in.NewQuantity,
		Reason:         in.Reason,
		Username:       GetUsername(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// History godoc
// @Summary      Historia de movimientos de un producto (más reciente primero)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {array}   dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v2/stock/history/{productId} [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	list, err := h.queries.GetProductHistory(c.UserContext(), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toMovementResponses(list))
}

// Recent godoc
// @Summary      Últimos movimientos de todos los productos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de movimientos (por defecto 20, tope 100)"
// @Success      200  {array}   dto.StockMovementResponse
// @Router       /api/v2/stock/recent [get]
func (h *InventoryHandler) Recent(c *fiber.Ctx) error {
	list, err := h.queries.GetRecentMovements(c.UserContext(), c.QueryInt("limit", inventory.DefaultRecentLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toMovementResponses(list))
}

// Validate godoc
// @Summary      Verificar si hay stock suficiente
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true  "ID del producto"
// @Param        quantity   query  int     true  "Cantidad pedida"
// @Success      200  {object}  dto.StockValidationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v2/stock/validate/{productId} [get]
func (h *InventoryHandler) Validate(c *fiber.Ctx) error {
	productID := c.Params("productId")
	quantity, err := strconv.Atoi(c.Query("quantity"))
	if err != nil {
		return badRequest(c, "VALIDATION", "quantity debe ser un entero")
	}
	check, err := h.queries.CheckStock(c.UserContext(), productID, quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StockValidationResponse{
		ProductID:    productID,
		Requested:    quantity,
		CurrentStock: check.Current,
		Sufficient:   check.Sufficient,
	})
}

// Movements godoc
// @Summary      Buscar movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "ID del producto"
// @Param        type        query  string  false  "STOCK_IN, STOCK_OUT, ADJUSTMENT, RETURN, LOSS, INITIAL"
// @Param        username    query  string  false  "Subcadena del usuario (sin distinguir mayúsculas)"
// @Param        from        query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to          query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit       query  int     false  "Límite"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.StockMovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v2/stock/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	f := repository.MovementFilter{
		ProductID: c.Query("product_id"),
		Type:      entity.MovementType(c.Query("type")),
		Username:  c.Query("username"),
		Limit:     c.QueryInt("limit", inventory.DefaultRecentLimit),
		Offset:    c.QueryInt("offset", 0),
	}
	var err error
	if f.From, err = parseDateQuery(c.Query("from"), false); err != nil {
		return badRequest(c, "VALIDATION", "from inválido")
	}
	if f.To, err = parseDateQuery(c.Query("to"), true); err != nil {
		return badRequest(c, "VALIDATION", "to inválido")
	}
	page, err := h.queries.SearchMovements(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StockMovementListResponse{
		Items: toMovementResponses(page.Items),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: page.Total},
	})
}

// Summary godoc
// @Summary      Resumen del libro para un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductStockSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v2/stock/summary/{productId} [get]
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	sum, err := h.queries.GetProductSummary(c.UserContext(), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	totals := make([]dto.MovementTotalResponse, 0, len(sum.Totals))
	for _, t := range sum.Totals {
		totals = append(totals, dto.MovementTotalResponse{MovementType: string(t.Type), Count: t.Count, Quantity: t.Quantity})
	}
	return c.JSON(dto.ProductStockSummaryResponse{
		ProductID:     sum.ProductID,
		ProductName:   sum.ProductName,
		CurrentStock:  sum.CurrentStock,
		MovementCount: sum.MovementCount,
		Totals:        totals,
		ChainValid:    sum.ChainError == "",
		ChainError:    sum.ChainError,
	})
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos en o bajo su stock mínimo con la cantidad sugerida de pedido,
//
//	priorizando agotados y consumo de los últimos 30 días.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/v2/stock/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ProductID:         s.ProductID,
			ProductName:       s.ProductName,
			Category:          s.Category,
			CurrentStock:      s.CurrentStock,
			MinimumStock:      s.MinimumStock,
			IdealStock:        s.IdealStock,
			SuggestedOrderQty: s.SuggestedOrderQty,
			UnitPrice:         s.UnitPrice,
			EstimatedValue:    s.EstimatedValue,
			UnitsOutLast30d:   s.UnitsOutInWindow,
			Priority:          s.Priority,
		})
	}
	return c.JSON(fiber.Map{
		"total":          len(out),
		"replenishments": out,
	})
}

// parseDateQuery acepta RFC3339 o YYYY-MM-DD; con fecha sola y endOfDay el límite
// superior cubre el día completo.
func parseDateQuery(v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func toMovementResponses(list []*entity.StockMovement) []dto.StockMovementResponse {
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:               m.ID,
		ProductID:        m.ProductID,
		ProductName:      m.ProductName,
		MovementType:     string(m.Type),
		Description:      m.Type.Description(),
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		Timestamp:        m.Timestamp,
		Username:         m.Username,
		Reason:           m.Reason,
	}
}
