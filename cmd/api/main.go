package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/swaggo/swag"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-stock/docs"
	"github.com/jhoicas/inventario-stock/internal/application/auth"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/application/usecase"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	infrapdf "github.com/jhoicas/inventario-stock/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/inventario-stock/internal/interfaces/http"
	"github.com/jhoicas/inventario-stock/pkg/config"
	"github.com/jhoicas/inventario-stock/pkg/logger"
	"github.com/jhoicas/inventario-stock/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.App.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar trazas")
	}

	store, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.Close()

	ledgerLog := log.Component("ledger")
	state := inventory.NewInventoryState(store.Products, inventory.RetryConfig{
		MaxAttempts:     cfg.Ledger.MaxRetries,
		InitialInterval: cfg.Ledger.InitialBackoff,
		MaxInterval:     cfg.Ledger.MaxBackoff,
	}, ledgerLog)
	registerMovementUC := inventory.NewRegisterMovementUseCase(state, store.Movements, ledgerLog)
	stockQueriesUC := inventory.NewStockQueryUseCase(state, store.Products, store.Movements)
	replenishmentUC := inventory.NewReplenishmentUseCase(store.Products, store.Movements)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator("Reporte de inventario")
	productUC := usecase.NewProductUseCase(store.Products, store.Movements, store.TxRunner, pdfGenerator, log.Component("products"))
	userUC := usecase.NewUserUseCase(store.Users)

	authUC := auth.NewAuthUseCase(store.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))
	if err := authUC.EnsureUser(ctx, cfg.Auth.BootstrapUsername, cfg.Auth.BootstrapPassword, entity.RoleAdmin); err != nil {
		log.Fatal().Err(err).Msg("usuario inicial")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: docs.FilePath,
		Path:     "docs",
		Title:    "Inventario Stock API",
	}))
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(doc)
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:        productUC,
		UserUC:           userUC,
		RegisterMovement: registerMovementUC,
		StockQueries:     stockQueriesUC,
		Replenishment:    replenishmentUC,
		AuthUC:           authUC,
		JWTSecret:        cfg.JWT.Secret,
		Storage:          store.Driver,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("servidor HTTP escuchando")
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado del servidor")
		}
		return shutdownTracing(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("aplicación finalizada con error")
		os.Exit(1)
	}
	log.Info().Msg("aplicación detenida")
}
