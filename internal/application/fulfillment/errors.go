package fulfillment

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CommitFailure una falla individual durante una confirmación best-effort.
type CommitFailure struct {
	Step            string // unit_update | order_update | audit
	InventoryUnitID string
	Barcode         string
	Quantity        decimal.Decimal
	Reason          string
}

// PartialCommitError reporta una confirmación parcial: el despacho quedó
// marcado como completado pero un subconjunto de actualizaciones falló.
// No se revierte lo ya aplicado; el caller debe conciliar manualmente.
// Nunca se oculta: es la brecha de consistencia documentada del modo
// best-effort.
type PartialCommitError struct {
	RequestID string
	Failures  []CommitFailure
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("confirmación parcial del despacho %s: %d actualización(es) fallida(s)", e.RequestID, len(e.Failures))
}
