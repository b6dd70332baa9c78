package entity

import "time"

// MovementType tipo de movimiento de stock.
type MovementType string

// Tipos de movimiento de stock.
const (
	MovementTypeStockIn    MovementType = "STOCK_IN"   // entrada
	MovementTypeStockOut   MovementType = "STOCK_OUT"  // salida
	MovementTypeAdjustment MovementType = "ADJUSTMENT" // ajuste a cantidad absoluta
	MovementTypeReturn     MovementType = "RETURN"     // devolución
	MovementTypeLoss       MovementType = "LOSS"       // pérdida o daño
	MovementTypeInitial    MovementType = "INITIAL"    // stock inicial al crear el producto
)

// SystemUsername actor por defecto cuando la petición no trae usuario.
const SystemUsername = "System"

var movementDescriptions = map[MovementType]string{
	MovementTypeStockIn:    "Stock In",
	MovementTypeStockOut:   "Stock Out",
	MovementTypeAdjustment: "Inventory Adjustment",
	MovementTypeReturn:     "Return",
	MovementTypeLoss:       "Loss or Damage",
	MovementTypeInitial:    "Initial Stock",
}

// Description devuelve la descripción legible del tipo (razón por defecto del movimiento).
func (t MovementType) Description() string {
	return movementDescriptions[t]
}

// Valid indica si el tipo es uno de los conocidos.
func (t MovementType) Valid() bool {
	_, ok := movementDescriptions[t]
	return ok
}

// MovementTypes lista todos los tipos en orden estable.
func MovementTypes() []MovementType {
	return []MovementType{
		MovementTypeStockIn, MovementTypeStockOut, MovementTypeAdjustment,
		MovementTypeReturn, MovementTypeLoss, MovementTypeInitial,
	}
}

// StockMovement registro inmutable de un cambio de cantidad de un producto.
// Quantity es siempre la magnitud del cambio, nunca el delta con signo.
// Las correcciones son movimientos nuevos; un movimiento nunca se edita.
// ProductVersion es la versión del producto que dejó la confirmación: ordena sin
// ambigüedad los movimientos de un mismo producto.
type StockMovement struct {
	ID               string
	ProductID        string
	ProductName      string
	Type             MovementType
	Quantity         int
	PreviousQuantity int
	NewQuantity      int
	ProductVersion   int64
	Timestamp        time.Time
	Username         string
	Reason           string
}
