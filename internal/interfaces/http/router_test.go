package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/auth"
	"github.com/jhoicas/inventario-stock/internal/application/dto"
	appinv "github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/application/usecase"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/inventario-stock/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-stock/internal/interfaces/http"
)

type server struct {
	app    *fiber.App
	admin  string
	worker string
}

func newServer(t *testing.T) *server {
	t.Helper()
	log := zerolog.Nop()
	products := memory.NewProductRepository()
	movements := memory.NewStockMovementRepository()
	users := memory.NewUserRepository()

	state := appinv.NewInventoryState(products, appinv.DefaultRetryConfig(), log)
	authUC := auth.NewAuthUseCase(users, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 5, Issuer: testIssuer}, log)
	require.NoError(t, authUC.EnsureUser(context.Background(), "admin", "admin12345", entity.RoleAdmin))

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:        usecase.NewProductUseCase(products, movements, memory.NewTxRunner(products, movements), infrapdf.NewMarotoPDFGenerator(""), log),
		UserUC:           usecase.NewUserUseCase(users),
		RegisterMovement: appinv.NewRegisterMovementUseCase(state, movements, log),
		StockQueries:     appinv.NewStockQueryUseCase(state, products, movements),
		Replenishment:    appinv.NewReplenishmentUseCase(products, movements),
		AuthUC:           authUC,
		JWTSecret:        testJWTSecret,
		Storage:          "memory",
	})
	return &server{
		app:    app,
		admin:  tokenForRole(t, entity.RoleAdmin),
		worker: tokenForRole(t, entity.RoleEmployee),
	}
}

func (s *server) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (s *server) createProduct(t *testing.T, name string, qty int) dto.ProductResponse {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/api/v2/products", s.worker, fiber.Map{
		"name": name, "category": "Electronics", "price": "25.50", "quantity": qty, "minimum_stock": 5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &p))
	return p
}

func decodeError(t *testing.T, body []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e
}

// ── Salud y auth ──────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	s := newServer(t)
	resp, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","storage":"memory"}`, string(body))
}

func TestLoginYMe(t *testing.T) {
	s := newServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/v2/auth/login", "", dto.LoginRequest{Username: "admin", Password: "mala-clave"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, body).Code)

	resp, body = s.do(t, http.MethodPost, "/api/v2/auth/login", "", dto.LoginRequest{Username: "nadie", Password: "admin12345"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "usuario inexistente no se distingue")

	resp, body = s.do(t, http.MethodPost, "/api/v2/auth/login", "", dto.LoginRequest{Username: "admin", Password: "admin12345"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &login))
	require.NotEmpty(t, login.Token)

	resp, body = s.do(t, http.MethodGet, "/api/v2/auth/me", "Bearer "+login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var me dto.UserResponse
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, "admin", me.Username)
	assert.Equal(t, entity.RoleAdmin, me.Role)
}

func TestCreateUser_SoloAdmin(t *testing.T) {
	s := newServer(t)
	in := dto.CreateUserRequest{Username: "bodega", Password: "secreto123", Role: entity.RoleEmployee}

	resp, _ := s.do(t, http.MethodPost, "/api/v2/users", s.worker, in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/v2/users", s.admin, in)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = s.do(t, http.MethodPost, "/api/v2/users", s.admin, in)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decodeError(t, body).Code)
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	s := newServer(t)
	resp, _ := s.do(t, http.MethodGet, "/api/v2/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/v2/stock/recent", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ── Movimientos ───────────────────────────────────────────────────────────────

func TestStock_FlujoCompleto(t *testing.T) {
	s := newServer(t)
	p := s.createProduct(t, "Laptop", 10)

	resp, body := s.do(t, http.MethodPost, "/api/v2/stock/in", s.worker, dto.StockMovementRequest{ProductID: p.ID, Quantity: 5, Reason: "Compra"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var mov dto.StockMovementResponse
	require.NoError(t, json.Unmarshal(body, &mov))
	assert.Equal(t, "STOCK_IN", mov.MovementType)
	assert.Equal(t, 10, mov.PreviousQuantity)
	assert.Equal(t, 15, mov.NewQuantity)
	assert.Equal(t, testUsername, mov.Username, "el actor sale del token")

	resp, body = s.do(t, http.MethodPost, "/api/v2/stock/out", s.worker, dto.StockMovementRequest{ProductID: p.ID, Quantity: 20})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeError(t, body).Code)

	resp, _ = s.do(t, http.MethodPost, "/api/v2/stock/loss", s.worker, dto.StockMovementRequest{ProductID: p.ID, Quantity: 3})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = s.do(t, http.MethodPost, "/api/v2/stock/return", s.worker, dto.StockMovementRequest{ProductID: p.ID, Quantity: 1})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/api/v2/stock/history/"+p.ID, s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []dto.StockMovementResponse
	require.NoError(t, json.Unmarshal(body, &history))
	require.Len(t, history, 4, "INITIAL + in + loss + return")
	assert.Equal(t, "RETURN", history[0].MovementType)
	assert.Equal(t, "INITIAL", history[3].MovementType)

	resp, body = s.do(t, http.MethodGet, "/api/v2/stock/validate/"+p.ID+"?quantity=13", s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v dto.StockValidationResponse
	require.NoError(t, json.Unmarshal(body, &v))
	assert.True(t, v.Sufficient)
	assert.Equal(t, 13, v.CurrentStock)

	resp, body = s.do(t, http.MethodGet, "/api/v2/stock/validate/"+p.ID+"?quantity=14", s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &v))
	assert.False(t, v.Sufficient)
	assert.Equal(t, 13, v.CurrentStock)

	resp, body = s.do(t, http.MethodGet, "/api/v2/stock/summary/"+p.ID, s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sum dto.ProductStockSummaryResponse
	require.NoError(t, json.Unmarshal(body, &sum))
	assert.True(t, sum.ChainValid, sum.ChainError)
	assert.Equal(t, 4, sum.MovementCount)
	assert.Equal(t, 13, sum.CurrentStock)
}

func TestStock_AjusteSoloAdmin(t *testing.T) {
	s := newServer(t)
	p := s.createProduct(t, "Mouse", 12)
	target := 5
	in := dto.StockMovementRequest{ProductID: p.ID, NewQuantity: &target, Reason: "Conteo físico"}

	resp, _ := s.do(t, http.MethodPost, "/api/v2/stock/adjustment", s.worker, in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/v2/stock/adjustment", s.admin, in)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var mov dto.StockMovementResponse
	require.NoError(t, json.Unmarshal(body, &mov))
	assert.Equal(t, 7, mov.Quantity)
	assert.Equal(t, 5, mov.NewQuantity)

	resp, body = s.do(t, http.MethodPost, "/api/v2/stock/adjustment", s.admin, dto.StockMovementRequest{ProductID: p.ID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", decodeError(t, body).Code, "sin new_quantity")
}

func TestStock_Errores(t *testing.T) {
	s := newServer(t)
	p := s.createProduct(t, "Cable", 3)

	resp, body := s.do(t, http.MethodPost, "/api/v2/stock/in", s.worker, dto.StockMovementRequest{ProductID: p.ID, Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", decodeError(t, body).Code)

	resp, body = s.do(t, http.MethodPost, "/api/v2/stock/in", s.worker, dto.StockMovementRequest{ProductID: "no-existe", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, body).Code)

	resp, _ = s.do(t, http.MethodGet, "/api/v2/stock/history/no-existe", s.worker, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v2/stock/validate/"+p.ID+"?quantity=abc", s.worker, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v2/stock/movements?type=ROBO", s.worker, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v2/stock/movements?from=2026-03-10&to=2026-03-01", s.worker, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStock_BuscarMovimientos(t *testing.T) {
	s := newServer(t)
	a := s.createProduct(t, "A", 10)
	s.createProduct(t, "B", 4)
	for i := 0; i < 3; i++ {
		resp, _ := s.do(t, http.MethodPost, "/api/v2/stock/out", s.worker, dto.StockMovementRequest{ProductID: a.ID, Quantity: 1})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := s.do(t, http.MethodGet, "/api/v2/stock/movements?type=STOCK_OUT&username=BOD&limit=2", s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var page dto.StockMovementListResponse
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Page.Total)

	resp, body = s.do(t, http.MethodGet, "/api/v2/stock/recent?limit=500", s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var recent []dto.StockMovementResponse
	require.NoError(t, json.Unmarshal(body, &recent))
	assert.Len(t, recent, 5, "2 INITIAL + 3 salidas")
}

func TestStock_Reposicion(t *testing.T) {
	s := newServer(t)
	s.createProduct(t, "Bajo", 2)
	s.createProduct(t, "Sobrado", 50)

	resp, body := s.do(t, http.MethodGet, "/api/v2/stock/replenishment", s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		Total          int                              `json:"total"`
		Replenishments []dto.ReplenishmentSuggestionDTO `json:"replenishments"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, 1, out.Total)
	assert.Equal(t, "Bajo", out.Replenishments[0].ProductName)
	assert.Equal(t, 6, out.Replenishments[0].SuggestedOrderQty, "ideal 8 - actual 2")
}

// ── Productos ─────────────────────────────────────────────────────────────────

func TestProducts_CRUD(t *testing.T) {
	s := newServer(t)
	conHistoria := s.createProduct(t, "Laptop", 10)
	sinHistoria := s.createProduct(t, "Vacío", 0)

	resp, body := s.do(t, http.MethodGet, "/api/v2/products/"+conHistoria.ID, s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "25.5", got.Price.String())

	resp, body = s.do(t, http.MethodPut, "/api/v2/products/"+conHistoria.ID, s.worker, fiber.Map{"name": "Laptop Pro", "minimum_stock": 12})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Laptop Pro", got.Name)
	assert.Equal(t, 10, got.Quantity)
	assert.True(t, got.LowStock)

	resp, _ = s.do(t, http.MethodDelete, "/api/v2/products/"+sinHistoria.ID, s.worker, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = s.do(t, http.MethodDelete, "/api/v2/products/"+conHistoria.ID, s.admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "HAS_MOVEMENTS", decodeError(t, body).Code)

	resp, _ = s.do(t, http.MethodDelete, "/api/v2/products/"+sinHistoria.ID, s.admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/v2/products/"+sinHistoria.ID, s.worker, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/api/v2/products?limit=10", s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.ProductListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list.Items, 1)
}

func TestProducts_ValidacionAlCrear(t *testing.T) {
	s := newServer(t)
	resp, _ := s.do(t, http.MethodPost, "/api/v2/products", s.worker, fiber.Map{"name": "X", "price": "0"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/v2/products", s.worker, fiber.Map{"name": "X", "price": "1", "quantity": -2})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", decodeError(t, body).Code)
}

func TestProducts_BusquedaYAgregados(t *testing.T) {
	s := newServer(t)
	s.createProduct(t, "Laptop Gamer", 2)
	s.createProduct(t, "Mouse", 40)
	s.createProduct(t, "Teclado", 0)

	resp, body := s.do(t, http.MethodGet, "/api/v2/products/search?q=laptop&low_stock=true", s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var found []dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Laptop Gamer", found[0].Name)

	resp, _ = s.do(t, http.MethodGet, "/api/v2/products/search?min_price=100&max_price=10", s.worker, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = s.do(t, http.MethodPost, "/api/v2/products/search", s.worker, fiber.Map{"out_of_stock_only": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Teclado", found[0].Name)

	resp, body = s.do(t, http.MethodGet, "/api/v2/products/low-stock", s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &found))
	assert.Len(t, found, 2)

	resp, body = s.do(t, http.MethodGet, "/api/v2/products/category/Electronics", s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &found))
	assert.Len(t, found, 3)

	resp, body = s.do(t, http.MethodGet, "/api/v2/products/categories", s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["Electronics"]`, string(body))

	resp, body = s.do(t, http.MethodGet, "/api/v2/products/stats", s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats dto.InventoryStatsResponse
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 1, stats.OutOfStockProducts)
	assert.Equal(t, 42, stats.TotalUnits)
}

func TestProducts_ReportePDF(t *testing.T) {
	s := newServer(t)
	s.createProduct(t, "Laptop", 2)

	resp, body := s.do(t, http.MethodGet, "/api/v2/products/report.pdf", s.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}
