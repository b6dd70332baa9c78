package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// RetryConfig presupuesto de reintentos de la actualización optimista.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig valores usados cuando la configuración no define otros.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     5,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     200 * time.Millisecond,
	}
}

// UpdateFunc calcula la nueva cantidad a partir de la actual. Un error aborta la
// actualización sin reintentar.
type UpdateFunc func(current int) (int, error)

// UpdateResult valores observados y confirmados dentro de la misma actualización.
type UpdateResult struct {
	Previous int
	New      int
	Attempts int
	Product  *entity.Product // instantánea confirmada (Quantity y Version ya actualizados)
}

// InventoryState es la fuente de verdad de la cantidad por producto. Serializa las
// actualizaciones de un mismo producto con compare-and-set sobre la versión; productos
// distintos no comparten ningún bloqueo.
type InventoryState struct {
	store QuantityStore
	retry RetryConfig
	log   zerolog.Logger
}

// NewInventoryState construye el estado de inventario sobre un QuantityStore.
func NewInventoryState(store QuantityStore, retry RetryConfig, log zerolog.Logger) *InventoryState {
	def := DefaultRetryConfig()
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = def.MaxAttempts
	}
	if retry.InitialInterval <= 0 {
		retry.InitialInterval = def.InitialInterval
	}
	if retry.MaxInterval < retry.InitialInterval {
		retry.MaxInterval = retry.InitialInterval
	}
	return &InventoryState{store: store, retry: retry, log: log}
}

// Get devuelve la cantidad confirmada del producto.
func (s *InventoryState) Get(ctx context.Context, productID string) (int, error) {
	p, err := s.snapshot(ctx, productID)
	if err != nil {
		return 0, err
	}
	return p.Quantity, nil
}

// AtomicUpdate lee la cantidad, aplica fn y confirma solo si nadie confirmó desde la lectura.
// Ante conflicto repite el ciclo completo con backoff exponencial hasta MaxAttempts;
// agotado el presupuesto devuelve ErrUnavailable y la cantidad queda intacta.
// ErrNotFound y los errores de fn son definitivos.
func (s *InventoryState) AtomicUpdate(ctx context.Context, productID string, fn UpdateFunc) (UpdateResult, error) {
	attempts := 0
	op := func() (UpdateResult, error) {
		attempts++
		current, err := s.snapshot(ctx, productID)
		if err != nil {
			return UpdateResult{}, backoff.Permanent(err)
		}
		next, err := fn(current.Quantity)
		if err != nil {
			return UpdateResult{}, backoff.Permanent(err)
		}
		if next < 0 {
			return UpdateResult{}, backoff.Permanent(fmt.Errorf("%w: la cantidad resultante %d es negativa", domain.ErrInvalidQuantity, next))
		}
		ok, err := s.store.CompareAndSetQuantity(ctx, productID, current.Version, next)
		if err != nil {
			return UpdateResult{}, backoff.Permanent(fmt.Errorf("confirmar cantidad: %w", err))
		}
		if !ok {
			return UpdateResult{}, domain.ErrConflict
		}
		committed := current.Clone()
		committed.Quantity = next
		committed.Version = current.Version + 1
		return UpdateResult{Previous: current.Quantity, New: next, Product: committed}, nil
	}

	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(s.newBackOff()),
		backoff.WithMaxTries(uint(s.retry.MaxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			s.log.Debug().
				Str("product_id", productID).
				Int("attempt", attempts).
				Dur("wait", wait).
				Msg("conflicto de versión, reintentando")
		}),
	)
	res.Attempts = attempts
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return res, fmt.Errorf("%w: producto %s tras %d intentos", domain.ErrUnavailable, productID, attempts)
		}
		return res, err
	}
	return res, nil
}

func (s *InventoryState) snapshot(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := s.store.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	return p, nil
}

func (s *InventoryState) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retry.InitialInterval
	b.MaxInterval = s.retry.MaxInterval
	return b
}
