package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

const tracerName = "github.com/jhoicas/inventario-stock/internal/application/inventory"

// MovementCommand entrada para registrar un movimiento.
// Quantity aplica a STOCK_IN, STOCK_OUT, RETURN y LOSS; TargetQuantity solo a ADJUSTMENT.
type MovementCommand struct {
	ProductID      string
	Type           entity.MovementType
	Quantity       int
	TargetQuantity *int
	Reason         string
	Username       string
}

// RegisterMovementUseCase es el motor del libro de stock: valida la forma del pedido,
// aplica la regla del tipo dentro de la actualización atómica y anexa el movimiento.
type RegisterMovementUseCase struct {
	state   *InventoryState
	movRepo repository.StockMovementRepository
	log     zerolog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	state *InventoryState,
	movRepo repository.StockMovementRepository,
	log zerolog.Logger,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		state:   state,
		movRepo: movRepo,
		log:     log,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
}

// WithClock reemplaza el reloj del motor (pruebas).
func (uc *RegisterMovementUseCase) WithClock(now func() time.Time) *RegisterMovementUseCase {
	uc.now = now
	return uc
}

// RegisterStockIn entrada de mercancía.
func (uc *RegisterMovementUseCase) RegisterStockIn(ctx context.Context, productID string, quantity int, reason, username string) (*entity.StockMovement, error) {
	return uc.Register(ctx, MovementCommand{ProductID: productID, Type: entity.MovementTypeStockIn, Quantity: quantity, Reason: reason, Username: username})
}

// RegisterStockOut salida de mercancía; falla con ErrInsufficientStock si no alcanza.
func (uc *RegisterMovementUseCase) RegisterStockOut(ctx context.Context, productID string, quantity int, reason, username string) (*entity.StockMovement, error) {
	return uc.Register(ctx, MovementCommand{ProductID: productID, Type: entity.MovementTypeStockOut, Quantity: quantity, Reason: reason, Username: username})
}

// RegisterAdjustment fija la cantidad a un valor absoluto (conteo físico).
func (uc *RegisterMovementUseCase) RegisterAdjustment(ctx context.Context, productID string, newQuantity int, reason, username string) (*entity.StockMovement, error) {
	return uc.Register(ctx, MovementCommand{ProductID: productID, Type: entity.MovementTypeAdjustment, TargetQuantity: &newQuantity, Reason: reason, Username: username})
}

// RegisterReturn devolución de cliente.
func (uc *RegisterMovementUseCase) RegisterReturn(ctx context.Context, productID string, quantity int, reason, username string) (*entity.StockMovement, error) {
	return uc.Register(ctx, MovementCommand{ProductID: productID, Type: entity.MovementTypeReturn, Quantity: quantity, Reason: reason, Username: username})
}

// RegisterLoss pérdida o daño.
func (uc *RegisterMovementUseCase) RegisterLoss(ctx context.Context, productID string, quantity int, reason, username string) (*entity.StockMovement, error) {
	return uc.Register(ctx, MovementCommand{ProductID: productID, Type: entity.MovementTypeLoss, Quantity: quantity, Reason: reason, Username: username})
}

// Register valida el comando, confirma la nueva cantidad y anexa el movimiento al libro.
// Si falla la validación o la regla, no hay efecto observable.
func (uc *RegisterMovementUseCase) Register(ctx context.Context, cmd MovementCommand) (*entity.StockMovement, error) {
	ctx, span := uc.tracer.Start(ctx, "ledger.Register", trace.WithAttributes(
		attribute.String("product.id", cmd.ProductID),
		attribute.String("movement.type", string(cmd.Type)),
		attribute.Int("movement.quantity", cmd.Quantity),
	))
	defer span.End()

	mov, err := uc.register(ctx, cmd, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return mov, nil
}

func (uc *RegisterMovementUseCase) register(ctx context.Context, cmd MovementCommand, span trace.Span) (*entity.StockMovement, error) {
	if strings.TrimSpace(cmd.ProductID) == "" {
		return nil, fmt.Errorf("%w: product_id es obligatorio", domain.ErrInvalidInput)
	}
	rule, err := inventory.NewMovement(cmd.Type, cmd.Quantity, cmd.TargetQuantity)
	if err != nil {
		return nil, err
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	var outcome inventory.Outcome
	res, err := uc.state.AtomicUpdate(ctx, cmd.ProductID, func(current int) (int, error) {
		out, err := rule.Apply(current)
		if err != nil {
			return 0, err
		}
		outcome = out
		return out.New, nil
	})
	span.SetAttributes(attribute.Int("ledger.attempts", res.Attempts))
	if err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:               newMovementID(),
		ProductID:        cmd.ProductID,
		ProductName:      res.Product.Name,
		Type:             rule.Type(),
		Quantity:         outcome.Recorded,
		PreviousQuantity: res.Previous,
		NewQuantity:      res.New,
		ProductVersion:   res.Product.Version,
		Timestamp:        uc.now().UTC(),
		Username:         defaultString(cmd.Username, entity.SystemUsername),
		Reason:           defaultString(cmd.Reason, rule.Type().Description()),
	}

	// La cantidad ya está confirmada; si el anexo falla queda un hueco en la historia.
	if err := uc.movRepo.Create(ctx, mov); err != nil {
		uc.log.Error().Err(err).
			Str("movement_id", mov.ID).
			Str("product_id", mov.ProductID).
			Str("type", string(mov.Type)).
			Int("previous_quantity", mov.PreviousQuantity).
			Int("new_quantity", mov.NewQuantity).
			Int64("product_version", mov.ProductVersion).
			Msg("cantidad confirmada sin movimiento registrado")
		return nil, fmt.Errorf("registrar movimiento: %w", err)
	}

	uc.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Str("type", string(mov.Type)).
		Int("quantity", mov.Quantity).
		Int("previous_quantity", mov.PreviousQuantity).
		Int("new_quantity", mov.NewQuantity).
		Str("username", mov.Username).
		Msg("movimiento registrado")
	return mov, nil
}

// newMovementID UUIDv7: ordenable por tiempo de asignación.
func newMovementID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
