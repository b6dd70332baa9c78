// stockctl tareas de operación: migraciones, carga de catálogo y alta de usuarios.
//
// Uso:
//
//	stockctl migrate up
//	stockctl migrate down --steps 1
//	stockctl seed products --file catalogo.csv --sep ';' --latin1
//	stockctl user create --username ana --password secreto123 --role employee
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/jhoicas/inventario-stock/internal/application/auth"
	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/usecase"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	infrapdf "github.com/jhoicas/inventario-stock/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/seed"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/storage"
	"github.com/jhoicas/inventario-stock/pkg/config"
	"github.com/jhoicas/inventario-stock/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "stockctl",
		Usage: "operación del libro de stock",
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			userCommand(),
		},
	}
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "stockctl: %v\n", err)
		os.Exit(1)
	}
}

type env struct {
	cfg *config.Config
	log zerolog.Logger
}

func load() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	l := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "stockctl"})
	return &env{cfg: cfg, log: l.Zerolog()}, nil
}

// openPostgres las tareas de stockctl solo tienen sentido contra una base persistente.
func (e *env) openPostgres(ctx context.Context) (*storage.Storage, error) {
	if e.cfg.Storage.Driver != storage.DriverPostgres {
		return nil, fmt.Errorf("stockctl requiere STORAGE_DRIVER=postgres (actual %q)", e.cfg.Storage.Driver)
	}
	return storage.Open(ctx, e.cfg, e.log)
}

func migrateCommand() *cli.Command {
	withMigrator := func(fn func(*postgres.Migrator, *env) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			e, err := load()
			if err != nil {
				return err
			}
			m, err := postgres.NewMigrator(e.cfg.DB.MigrateURL())
			if err != nil {
				return err
			}
			defer m.Close()
			return fn(m, e)
		}
	}
	return &cli.Command{
		Name:  "migrate",
		Usage: "migraciones del esquema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "aplica las migraciones pendientes",
				Action: withMigrator(func(m *postgres.Migrator, e *env) error {
					if err := m.Up(); err != nil {
						return err
					}
					return printVersion(m, e)
				}),
			},
			{
				Name:  "down",
				Usage: "revierte migraciones",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "cantidad de migraciones a revertir"},
				},
				Action: func(c *cli.Context) error {
					return withMigrator(func(m *postgres.Migrator, e *env) error {
						if err := m.Down(c.Int("steps")); err != nil {
							return err
						}
						return printVersion(m, e)
					})(c)
				},
			},
			{
				Name:   "version",
				Usage:  "muestra la versión aplicada",
				Action: withMigrator(printVersion),
			},
		},
	}
}

func printVersion(m *postgres.Migrator, e *env) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	e.log.Info().Uint("version", v).Bool("dirty", dirty).Msg("versión del esquema")
	return nil
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "carga de datos",
		Subcommands: []*cli.Command{
			{
				Name:  "products",
				Usage: "crea productos desde un CSV (name, description, category, price, quantity, minimum_stock)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true},
					&cli.StringFlag{Name: "sep", Value: ",", Usage: "separador de columnas"},
					&cli.BoolFlag{Name: "latin1", Usage: "el archivo está en ISO-8859-1"},
					&cli.StringFlag{Name: "user", Value: "stockctl", Usage: "actor de los movimientos INITIAL"},
				},
				Action: seedProducts,
			},
		},
	}
}

func seedProducts(c *cli.Context) error {
	sep := []rune(c.String("sep"))
	if len(sep) != 1 {
		return fmt.Errorf("--sep debe ser un solo carácter")
	}
	f, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()

	products, err := seed.ParseProducts(f, seed.Options{Comma: sep[0], Latin1: c.Bool("latin1")})
	if err != nil {
		return err
	}

	e, err := load()
	if err != nil {
		return err
	}
	store, err := e.openPostgres(c.Context)
	if err != nil {
		return err
	}
	defer store.Close()

	uc := usecase.NewProductUseCase(store.Products, store.Movements, store.TxRunner, infrapdf.NewMarotoPDFGenerator(""), e.log)
	created, failed := 0, 0
	for _, in := range products {
		if _, err := uc.Create(c.Context, in, c.String("user")); err != nil {
			failed++
			e.log.Error().Err(err).Str("name", in.Name).Msg("producto no creado")
			continue
		}
		created++
	}
	e.log.Info().Int("created", created).Int("failed", failed).Msg("carga de catálogo terminada")
	if failed > 0 {
		return fmt.Errorf("%d productos no se crearon", failed)
	}
	return nil
}

func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "usuarios",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "crea un usuario",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"STOCKCTL_PASSWORD"}},
					&cli.StringFlag{Name: "role", Value: entity.RoleEmployee, Usage: "admin | employee"},
				},
				Action: createUser,
			},
		},
	}
}

func createUser(c *cli.Context) error {
	e, err := load()
	if err != nil {
		return err
	}
	store, err := e.openPostgres(c.Context)
	if err != nil {
		return err
	}
	defer store.Close()

	uc := auth.NewAuthUseCase(store.Users, auth.JWTConfig{
		Secret:     e.cfg.JWT.Secret,
		ExpMinutes: e.cfg.JWT.Expiration,
		Issuer:     e.cfg.JWT.Issuer,
	}, e.log)
	user, err := uc.RegisterUser(c.Context, dto.CreateUserRequest{
		Username: c.String("username"),
		Password: c.String("password"),
		Role:     c.String("role"),
	})
	if err != nil {
		return err
	}
	e.log.Info().Str("id", user.ID).Str("username", user.Username).Str("role", user.Role).Msg("usuario creado")
	return nil
}
