package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/despachos-api/internal/domain/entity"
)

// InventoryUnitRepository define el puerto de lectura y descuento de cajas.
// GetByBarcode/GetByID devuelven nil sin error cuando la caja no existe.
//
// Deduct y ConsumeReserved son descuentos atómicos con piso: el UPDATE es
// condicional a que la cantidad alcance, así el chequeo de maxDeductible del
// cliente queda como pre-chequeo optimista y la BD es quien garantiza que
// nunca se descuenta de más entre sesiones concurrentes.
type InventoryUnitRepository interface {
	GetByID(id string) (*entity.InventoryUnit, error)
	GetByBarcode(barcode string) (*entity.InventoryUnit, error)
	// Deduct resta qty de on_hand sin tocar lo reservado; falla con
	// ErrInsufficientStock si on_hand - reserved < qty.
	Deduct(unitID string, qty decimal.Decimal) error
	// ConsumeReserved resta qty de on_hand y de reserved a la vez (consumo de
	// una pre-asignación); falla con ErrInsufficientStock si reserved < qty.
	ConsumeReserved(unitID string, qty decimal.Decimal) error
}
