// Package storage abre el backend de persistencia elegido por configuración
// (postgres o memory) y expone sus repositorios.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-stock/pkg/config"
)

// Drivers soportados.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// connectTimeout tope para esperar a que PostgreSQL acepte conexiones al arrancar.
const connectTimeout = 30 * time.Second

// Storage repositorios de un backend.
type Storage struct {
	Driver    string
	Products  repository.ProductRepository
	Movements repository.StockMovementRepository
	Users     repository.UserRepository
	TxRunner  inventory.TxRunner

	pool *pgxpool.Pool
}

// Open abre el backend de cfg.Storage.Driver. Con postgres aplica las migraciones
// pendientes si cfg.Storage.MigrateOnStart y espera a que la base responda.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Storage, error) {
	switch cfg.Storage.Driver {
	case DriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return NewMemory(), nil
	case DriverPostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("storage driver desconocido: %q", cfg.Storage.Driver)
	}
}

// NewMemory backend en memoria.
func NewMemory() *Storage {
	products := memory.NewProductRepository()
	movements := memory.NewStockMovementRepository()
	return &Storage{
		Driver:    DriverMemory,
		Products:  products,
		Movements: movements,
		Users:     memory.NewUserRepository(),
		TxRunner:  memory.NewTxRunner(products, movements),
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Storage, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, pool.Ping(ctx)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(connectTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Dur("retry_in", next).Msg("PostgreSQL no responde, reintentando")
		}),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}

	if cfg.Storage.MigrateOnStart {
		if err := MigrateUp(cfg.DB, log); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &Storage{
		Driver:    DriverPostgres,
		Products:  postgres.NewProductRepository(pool),
		Movements: postgres.NewStockMovementRepository(pool),
		Users:     postgres.NewUserRepository(pool),
		TxRunner:  postgres.NewTxRunner(pool),
		pool:      pool,
	}, nil
}

// MigrateUp aplica las migraciones embebidas pendientes.
func MigrateUp(db config.DBConfig, log zerolog.Logger) error {
	m, err := postgres.NewMigrator(db.MigrateURL())
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()
	if err := m.Up(); err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migraciones aplicadas")
	return nil
}

// Close libera el pool si lo hay.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
