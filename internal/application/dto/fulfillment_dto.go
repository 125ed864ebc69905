package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScanRequest body para POST /api/despachos/:id/scan.
type ScanRequest struct {
	Barcode string `json:"barcode"`
}

// ScanOutcome resultado de resolver un escaneo: la caja, la línea candidata y
// el tope descontable calculado con el libro actual.
type ScanOutcome struct {
	UnitID           string          `json:"unit_id"`
	Barcode          string          `json:"barcode"`
	ProductID        string          `json:"product_id"`
	Location         string          `json:"location,omitempty"`
	OnHandQuantity   decimal.Decimal `json:"on_hand_quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	LineItemID       string          `json:"line_item_id"`
	MaxDeductible    decimal.Decimal `json:"max_deductible"`
}

// ConfirmQuantityRequest body para POST /api/despachos/:id/entries.
type ConfirmQuantityRequest struct {
	InventoryUnitID string          `json:"inventory_unit_id"`
	LineItemID      string          `json:"line_item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
}

// LedgerEntryResponse un registro del libro de alistamiento.
// Clamped indica que se descontó menos de lo pedido (recorte al tope
// descontable): el recorte se informa siempre, nunca se oculta.
type LedgerEntryResponse struct {
	ID               string          `json:"id"`
	LineItemID       string          `json:"line_item_id,omitempty"`
	InventoryUnitID  string          `json:"inventory_unit_id"`
	Barcode          string          `json:"barcode"`
	QuantityDeducted decimal.Decimal `json:"quantity_deducted"`
	Provenance       string          `json:"provenance"`
	ProcessedBy      string          `json:"processed_by"`
	ProcessedAt      time.Time       `json:"processed_at"`
	Clamped          bool            `json:"clamped,omitempty"`
}

// LineItemProgress avance de una línea del despacho.
type LineItemProgress struct {
	LineItemID       string          `json:"line_item_id"`
	ProductID        string          `json:"product_id"`
	RequiredQuantity decimal.Decimal `json:"required_quantity"`
	RemainingNeeded  decimal.Decimal `json:"remaining_needed"`
	Status           string          `json:"status"`
}

// ProgressResponse avance global + por línea.
type ProgressResponse struct {
	RequestID string             `json:"request_id"`
	Percent   decimal.Decimal    `json:"percent"`
	Items     []LineItemProgress `json:"items"`
}

// SessionResponse estado de la sesión de alistamiento tras abrirla.
type SessionResponse struct {
	RequestID  string                `json:"request_id"`
	Status     string                `json:"status"`
	IsReserved bool                  `json:"is_reserved"`
	Entries    []LedgerEntryResponse `json:"entries"`
	Progress   ProgressResponse      `json:"progress"`
}

// CommitWarning detalle de una falla parcial durante la confirmación.
type CommitWarning struct {
	Step            string          `json:"step"` // unit_update | order_update | audit
	InventoryUnitID string          `json:"inventory_unit_id,omitempty"`
	Barcode         string          `json:"barcode,omitempty"`
	Quantity        decimal.Decimal `json:"quantity,omitempty"`
	Reason          string          `json:"reason"`
}

// CommitResponse resultado de la confirmación del despacho.
type CommitResponse struct {
	RequestID   string          `json:"request_id"`
	Status      string          `json:"status"`
	CommitTxID  string          `json:"commit_tx_id"`
	CompletedAt time.Time       `json:"completed_at"`
	Warnings    []CommitWarning `json:"warnings,omitempty"`
}

// StockOutRequestResponse despacho para listados y detalle.
type StockOutRequestResponse struct {
	ID          string             `json:"id"`
	WarehouseID string             `json:"warehouse_id"`
	OrderID     string             `json:"order_id,omitempty"`
	Status      string             `json:"status"`
	IsReserved  bool               `json:"is_reserved"`
	CreatedAt   time.Time          `json:"created_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	CompletedBy string             `json:"completed_by,omitempty"`
	Items       []LineItemProgress `json:"items,omitempty"`
}
