package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un despacho (stock-out request).
const (
	StockOutStatusPending    = "pending"    // creado, sin alistar
	StockOutStatusProcessing = "processing" // sesión de alistamiento en curso
	StockOutStatusCompleted  = "completed"  // confirmado y descontado
)

// Estados de una línea de despacho.
const (
	LineItemStatusPending  = "pending"  // se alista escaneando cajas
	LineItemStatusReserved = "reserved" // cubierta por cajas pre-asignadas en la reserva
)

// StockOutRequest representa un despacho: la orden de sacar cantidades de
// productos de una bodega para una orden de venta. Lo crea el proceso de
// órdenes; el motor solo muta status, completed_at y completed_by.
type StockOutRequest struct {
	ID          string
	WarehouseID string
	OrderID     string // orden de venta vinculada; vacío si no aplica
	Status      string
	IsReserved  bool
	Items       []StockOutItem
	CreatedAt   time.Time
	CompletedAt *time.Time
	CompletedBy string
}

// StockOutItem es una línea del despacho: producto y cantidad requerida.
type StockOutItem struct {
	ID                string
	StockOutRequestID string
	ProductID         string
	RequiredQuantity  decimal.Decimal
	Status            string // pending | reserved
}
