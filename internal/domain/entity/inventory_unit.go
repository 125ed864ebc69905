package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una caja de inventario.
const (
	UnitStatusAvailable = "available"
	UnitStatusConsumed  = "consumed"
)

// InventoryUnit es una caja/lote físico identificado por código de barras.
// Es propiedad del almacén de inventario: el motor solo la lee y, al confirmar
// el despacho, solicita descuentos de cantidad o cambio de estado. Nunca crea cajas.
type InventoryUnit struct {
	ID               string
	ProductID        string
	WarehouseID      string
	Barcode          string // único por caja
	OnHandQuantity   decimal.Decimal
	ReservedQuantity decimal.Decimal // apartada para reservas (de esta u otras órdenes)
	Location         string          // ubicación física (pasillo/estante)
	Status           string
	UpdatedAt        time.Time
}

// Available devuelve la cantidad libre de la caja: lo que hay menos lo reservado.
// Las cantidades reservadas para otras órdenes no son descontables escaneando.
func (u InventoryUnit) Available() decimal.Decimal {
	return u.OnHandQuantity.Sub(u.ReservedQuantity)
}
