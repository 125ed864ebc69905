package entity

import "time"

// Estados de la orden de venta vinculada a un despacho.
const (
	OrderStatusReserved  = "reserved"
	OrderStatusPending   = "pending"
	OrderStatusFulfilled = "fulfilled"
)

// Order es la orden de venta aguas arriba. El motor solo actualiza su estado
// cuando el despacho vinculado se confirma.
type Order struct {
	ID        string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
