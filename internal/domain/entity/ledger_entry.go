package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Procedencia de un registro del libro de alistamiento.
const (
	ProvenanceScanned  = "scanned"  // descuento hecho escaneando la caja
	ProvenanceReserved = "reserved" // inyectado desde la pre-asignación de la reserva
)

// LedgerEntry es un registro atómico de descuento: vincula una caja con una
// línea del despacho por una cantidad. Re-escanear la misma caja crea un
// registro nuevo, nunca muta uno anterior; el undo elimina el registro completo.
type LedgerEntry struct {
	ID                string
	StockOutRequestID string
	LineItemID        string // vacío si la caja no se pudo asociar a una línea
	InventoryUnitID   string
	Barcode           string
	QuantityDeducted  decimal.Decimal // siempre > 0
	Provenance        string          // scanned | reserved
	ProcessedBy       string
	ProcessedAt       time.Time
}

// ReservationAssignment es una caja pre-asignada a una línea al momento de
// reservar la orden. Solo lectura para el motor.
type ReservationAssignment struct {
	OrderID         string
	LineItemID      string
	InventoryUnitID string
	Barcode         string
	ProductID       string
	Quantity        decimal.Decimal
}
