// Package inventory contiene las reglas de dominio de los movimientos de stock.
// Cada tipo de movimiento es una variante con su propia validación y regla de cálculo;
// todas devuelven el mismo Outcome.
package inventory

import (
	"fmt"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// Outcome resultado de aplicar una regla sobre la cantidad previa.
// Recorded es la magnitud que queda en el movimiento (nunca el delta con signo).
type Outcome struct {
	Previous int
	New      int
	Recorded int
}

// Movement variante de movimiento registrable por el motor.
// Validate se evalúa antes de entrar al estado de inventario; Apply dentro de la
// actualización atómica, contra la cantidad recién leída.
type Movement interface {
	Type() entity.MovementType
	Validate() error
	Apply(previous int) (Outcome, error)
}

// StockIn entrada de mercancía: new = previous + quantity.
type StockIn struct{ Quantity int }

// StockOut salida de mercancía: new = previous - quantity.
type StockOut struct{ Quantity int }

// Return devolución de cliente: new = previous + quantity.
type Return struct{ Quantity int }

// Loss pérdida o daño: new = previous - quantity.
type Loss struct{ Quantity int }

// Adjustment conteo físico: new = Target. Target es absoluto, no un delta.
type Adjustment struct{ Target *int }

func (StockIn) Type() entity.MovementType    { return entity.MovementTypeStockIn }
func (StockOut) Type() entity.MovementType   { return entity.MovementTypeStockOut }
func (Return) Type() entity.MovementType     { return entity.MovementTypeReturn }
func (Loss) Type() entity.MovementType       { return entity.MovementTypeLoss }
func (Adjustment) Type() entity.MovementType { return entity.MovementTypeAdjustment }

func (m StockIn) Validate() error  { return positive(m.Quantity) }
func (m StockOut) Validate() error { return positive(m.Quantity) }
func (m Return) Validate() error   { return positive(m.Quantity) }
func (m Loss) Validate() error     { return positive(m.Quantity) }

func (m Adjustment) Validate() error {
	if m.Target == nil {
		return fmt.Errorf("%w: la nueva cantidad es obligatoria para un ajuste", domain.ErrInvalidQuantity)
	}
	if *m.Target < 0 {
		return fmt.Errorf("%w: la nueva cantidad no puede ser negativa (%d)", domain.ErrInvalidQuantity, *m.Target)
	}
	return nil
}

func (m StockIn) Apply(previous int) (Outcome, error) { return increase(previous, m.Quantity), nil }
func (m Return) Apply(previous int) (Outcome, error)  { return increase(previous, m.Quantity), nil }

func (m StockOut) Apply(previous int) (Outcome, error) { return decrease(previous, m.Quantity) }
func (m Loss) Apply(previous int) (Outcome, error)     { return decrease(previous, m.Quantity) }

func (m Adjustment) Apply(previous int) (Outcome, error) {
	if err := m.Validate(); err != nil {
		return Outcome{}, err
	}
	target := *m.Target
	diff := target - previous
	if diff < 0 {
		diff = -diff
	}
	return Outcome{Previous: previous, New: target, Recorded: diff}, nil
}

// NewMovement construye la variante para un tipo. quantity aplica a IN/OUT/RETURN/LOSS;
// target a ADJUSTMENT. INITIAL no se registra por el motor (lo crea el alta de producto).
func NewMovement(t entity.MovementType, quantity int, target *int) (Movement, error) {
	switch t {
	case entity.MovementTypeStockIn:
		return StockIn{Quantity: quantity}, nil
	case entity.MovementTypeStockOut:
		return StockOut{Quantity: quantity}, nil
	case entity.MovementTypeReturn:
		return Return{Quantity: quantity}, nil
	case entity.MovementTypeLoss:
		return Loss{Quantity: quantity}, nil
	case entity.MovementTypeAdjustment:
		return Adjustment{Target: target}, nil
	}
	return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, t)
}

// Replay aplica en orden una secuencia de movimientos desde una cantidad inicial.
// La misma secuencia desde la misma cantidad produce siempre el mismo resultado.
func Replay(start int, movements []Movement) (int, error) {
	qty := start
	for i, m := range movements {
		if err := m.Validate(); err != nil {
			return qty, fmt.Errorf("movimiento %d: %w", i, err)
		}
		out, err := m.Apply(qty)
		if err != nil {
			return qty, fmt.Errorf("movimiento %d: %w", i, err)
		}
		qty = out.New
	}
	return qty, nil
}

// VerifyChain comprueba que una historia en orden de confirmación (más antiguo primero)
// encadena previous → new sin huecos y que cada registro respeta la regla de su tipo.
func VerifyChain(history []*entity.StockMovement) error {
	for i, m := range history {
		if i > 0 && history[i-1].NewQuantity != m.PreviousQuantity {
			return fmt.Errorf("movimiento %s: previo %d no coincide con %d del anterior",
				m.ID, m.PreviousQuantity, history[i-1].NewQuantity)
		}
		if expected, ok := expectedNew(m); !ok || expected != m.NewQuantity {
			return fmt.Errorf("movimiento %s: cantidad nueva %d inconsistente con tipo %s",
				m.ID, m.NewQuantity, m.Type)
		}
	}
	return nil
}

func expectedNew(m *entity.StockMovement) (int, bool) {
	switch m.Type {
	case entity.MovementTypeStockIn, entity.MovementTypeReturn, entity.MovementTypeInitial:
		return m.PreviousQuantity + m.Quantity, true
	case entity.MovementTypeStockOut, entity.MovementTypeLoss:
		return m.PreviousQuantity - m.Quantity, true
	case entity.MovementTypeAdjustment:
		diff := m.NewQuantity - m.PreviousQuantity
		if diff < 0 {
			diff = -diff
		}
		return m.NewQuantity, diff == m.Quantity
	}
	return 0, false
}

func positive(q int) error {
	if q <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidQuantity)
	}
	return nil
}

func increase(previous, q int) Outcome {
	return Outcome{Previous: previous, New: previous + q, Recorded: q}
}

func decrease(previous, q int) (Outcome, error) {
	if previous < q {
		return Outcome{}, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, previous, q)
	}
	return Outcome{Previous: previous, New: previous - q, Recorded: q}, nil
}
