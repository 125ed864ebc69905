// Package fulfillment contiene la lógica pura de conciliación de cantidades
// de un despacho: todo se deriva siempre del libro completo de registros
// (LedgerEntry), nunca de contadores incrementales, de modo que los undo no
// puedan desviar los acumulados.
package fulfillment

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/despachos-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// DeductedForItem suma lo descontado contra una línea en todo el libro.
func DeductedForItem(ledger []entity.LedgerEntry, lineItemID string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range ledger {
		if e.LineItemID == lineItemID {
			total = total.Add(e.QuantityDeducted)
		}
	}
	return total
}

// DeductedForUnit suma lo descontado de una caja por escaneo en la sesión.
// Los registros con procedencia reserved no cuentan: esa cantidad ya está
// apartada en reserved_quantity de la caja y restarla dos veces la duplicaría.
func DeductedForUnit(ledger []entity.LedgerEntry, unitID string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range ledger {
		if e.InventoryUnitID == unitID && e.Provenance == entity.ProvenanceScanned {
			total = total.Add(e.QuantityDeducted)
		}
	}
	return total
}

// RemainingNeeded devuelve lo que falta por alistar de una línea:
// max(0, requerido − descontado).
func RemainingNeeded(item entity.StockOutItem, ledger []entity.LedgerEntry) decimal.Decimal {
	remaining := item.RequiredQuantity.Sub(DeductedForItem(ledger, item.ID))
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// MaxDeductible es el tope descontable de una caja contra una línea:
// min(disponible de la caja − ya descontado de esa caja, faltante de la línea).
// Puede ser negativo si la disponibilidad externa cayó por debajo de lo que el
// libro ya registró para esa caja; el caller debe tratarlo como lectura obsoleta.
func MaxDeductible(unit entity.InventoryUnit, item entity.StockOutItem, ledger []entity.LedgerEntry) decimal.Decimal {
	left := unit.Available().Sub(DeductedForUnit(ledger, unit.ID))
	remaining := RemainingNeeded(item, ledger)
	if left.LessThan(remaining) {
		return left
	}
	return remaining
}

// ProgressPercent porcentaje global de avance, acotado a [0, 100].
func ProgressPercent(items []entity.StockOutItem, ledger []entity.LedgerEntry) decimal.Decimal {
	required := decimal.Zero
	for _, it := range items {
		required = required.Add(it.RequiredQuantity)
	}
	if !required.IsPositive() {
		return hundred
	}
	deducted := decimal.Zero
	for _, e := range ledger {
		deducted = deducted.Add(e.QuantityDeducted)
	}
	pct := deducted.Mul(hundred).Div(required)
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// RemainingByItem devuelve el faltante de cada línea, indexado por ID de línea.
func RemainingByItem(items []entity.StockOutItem, ledger []entity.LedgerEntry) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(items))
	for _, it := range items {
		out[it.ID] = RemainingNeeded(it, ledger)
	}
	return out
}

// ReadyForCommit indica si el despacho puede confirmarse: toda línea no
// reservada debe tener faltante cero. Las líneas reservadas quedaron cubiertas
// por la pre-asignación y siempre son elegibles.
func ReadyForCommit(items []entity.StockOutItem, ledger []entity.LedgerEntry) bool {
	for _, it := range items {
		if it.Status == entity.LineItemStatusReserved {
			continue
		}
		if !RemainingNeeded(it, ledger).IsZero() {
			return false
		}
	}
	return true
}

// MergeReservedEntries concilia los registros inyectados por la reserva con el
// libro existente. Un registro inyectado cuya caja (por barcode) ya figura en
// el libro se descarta: aplicar la superposición dos veces, o sobre una línea
// parcialmente escaneada, nunca duplica registros. Devuelve el libro resultante
// y los registros que efectivamente se agregaron.
func MergeReservedEntries(ledger []entity.LedgerEntry, injected []entity.LedgerEntry) (merged []entity.LedgerEntry, added []entity.LedgerEntry) {
	seen := make(map[string]bool, len(ledger))
	for _, e := range ledger {
		seen[e.Barcode] = true
	}
	merged = append(merged, ledger...)
	for _, e := range injected {
		if seen[e.Barcode] {
			continue
		}
		seen[e.Barcode] = true
		merged = append(merged, e)
		added = append(added, e)
	}
	return merged, added
}

// ItemStatus recalcula el estado de una línea después de un merge o un undo:
// reserved solo si la línea tiene registros de la reserva y la cantidad
// conciliada (escaneada + reservada) cubre el requerido; si no, pending.
func ItemStatus(item entity.StockOutItem, ledger []entity.LedgerEntry) string {
	hasReserved := false
	for _, e := range ledger {
		if e.LineItemID == item.ID && e.Provenance == entity.ProvenanceReserved {
			hasReserved = true
			break
		}
	}
	if hasReserved && DeductedForItem(ledger, item.ID).GreaterThanOrEqual(item.RequiredQuantity) {
		return entity.LineItemStatusReserved
	}
	return entity.LineItemStatusPending
}
