package fulfillment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/despachos-api/internal/domain"
	"github.com/jhoicas/despachos-api/internal/domain/entity"
	"github.com/jhoicas/despachos-api/internal/domain/fulfillment"
)

// Session es el estado de alistamiento de un despacho: el despacho con sus
// líneas más el libro de registros vivo. Es un value object: los métodos de
// mutación devuelven una sesión nueva en lugar de modificar la receptora, y
// todas las cifras derivadas (faltantes, avance, topes) se recalculan siempre
// desde el libro completo.
type Session struct {
	Request  entity.StockOutRequest
	Ledger   []entity.LedgerEntry
	OpenedBy string
	OpenedAt time.Time
}

// NewSession construye la sesión inicial de un despacho con el libro que
// sobrevive de sesiones anteriores (resume idempotente).
func NewSession(req entity.StockOutRequest, ledger []entity.LedgerEntry, openedBy string, openedAt time.Time) Session {
	return Session{Request: req, Ledger: ledger, OpenedBy: openedBy, OpenedAt: openedAt}
}

// Item busca una línea por ID.
func (s Session) Item(lineItemID string) (entity.StockOutItem, bool) {
	for _, it := range s.Request.Items {
		if it.ID == lineItemID {
			return it, true
		}
	}
	return entity.StockOutItem{}, false
}

// ItemForProduct busca la línea candidata para una caja escaneada: la primera
// línea del producto que no esté cubierta por reserva y aún tenga faltante.
// matched indica si el producto figura en el despacho aunque ya no falte nada
// (para distinguir ProductMismatch de NothingDeductible).
func (s Session) ItemForProduct(productID string) (candidate entity.StockOutItem, found, matched bool) {
	for _, it := range s.Request.Items {
		if it.ProductID != productID {
			continue
		}
		matched = true
		if it.Status == entity.LineItemStatusReserved {
			continue // cubierta por la reserva: excluida del escaneo
		}
		if fulfillment.RemainingNeeded(it, s.Ledger).IsPositive() {
			return it, true, true
		}
	}
	return entity.StockOutItem{}, false, matched
}

// Entry busca un registro del libro por ID.
func (s Session) Entry(entryID string) (entity.LedgerEntry, bool) {
	for _, e := range s.Ledger {
		if e.ID == entryID {
			return e, true
		}
	}
	return entity.LedgerEntry{}, false
}

// WithEntry devuelve una sesión con el registro agregado al final del libro.
func (s Session) WithEntry(e entity.LedgerEntry) Session {
	ledger := make([]entity.LedgerEntry, 0, len(s.Ledger)+1)
	ledger = append(ledger, s.Ledger...)
	ledger = append(ledger, e)
	s.Ledger = ledger
	return s
}

// WithoutEntry devuelve una sesión sin el registro indicado y el registro
// eliminado; ErrNotFound si no existe. El faltante de la línea se recupera
// solo: siempre se deriva del libro sobreviviente.
func (s Session) WithoutEntry(entryID string) (Session, entity.LedgerEntry, error) {
	for i, e := range s.Ledger {
		if e.ID != entryID {
			continue
		}
		ledger := make([]entity.LedgerEntry, 0, len(s.Ledger)-1)
		ledger = append(ledger, s.Ledger[:i]...)
		ledger = append(ledger, s.Ledger[i+1:]...)
		s.Ledger = ledger
		return s, e, nil
	}
	return s, entity.LedgerEntry{}, domain.ErrNotFound
}

// WithItemStatus devuelve una sesión con el estado de una línea actualizado.
func (s Session) WithItemStatus(lineItemID, status string) Session {
	items := make([]entity.StockOutItem, len(s.Request.Items))
	copy(items, s.Request.Items)
	for i := range items {
		if items[i].ID == lineItemID {
			items[i].Status = status
		}
	}
	s.Request.Items = items
	return s
}

// RemainingNeeded faltante actual de una línea.
func (s Session) RemainingNeeded(lineItemID string) decimal.Decimal {
	it, ok := s.Item(lineItemID)
	if !ok {
		return decimal.Zero
	}
	return fulfillment.RemainingNeeded(it, s.Ledger)
}

// MaxDeductible tope descontable de una caja contra una línea, con el libro actual.
func (s Session) MaxDeductible(unit entity.InventoryUnit, lineItemID string) decimal.Decimal {
	it, ok := s.Item(lineItemID)
	if !ok {
		return decimal.Zero
	}
	return fulfillment.MaxDeductible(unit, it, s.Ledger)
}

// Progress avance global (0..100) y faltante por línea.
func (s Session) Progress() (decimal.Decimal, map[string]decimal.Decimal) {
	return fulfillment.ProgressPercent(s.Request.Items, s.Ledger),
		fulfillment.RemainingByItem(s.Request.Items, s.Ledger)
}

// ReadyForCommit true si toda línea no reservada tiene faltante cero.
func (s Session) ReadyForCommit() bool {
	return fulfillment.ReadyForCommit(s.Request.Items, s.Ledger)
}

// Propose valida y recorta una cantidad deseada contra el tope descontable.
// Devuelve la cantidad recortada para que el caller la confirme: nunca se
// descuenta más de lo pedido, y si se va a descontar menos el recorte queda a
// la vista del caller.
//
//   - ErrInvalidQuantity   si desired <= 0.
//   - ErrConcurrentLimit   si el tope quedó negativo (el libro registró más de
//     lo que la caja muestra ahora: lectura obsoleta, re-resolver).
//   - ErrNothingDeductible si el tope es cero (caja agotada o línea completa).
func (s Session) Propose(unit entity.InventoryUnit, lineItemID string, desired decimal.Decimal) (decimal.Decimal, error) {
	if !desired.IsPositive() {
		return decimal.Zero, domain.ErrInvalidQuantity
	}
	max := s.MaxDeductible(unit, lineItemID)
	if max.IsNegative() {
		return decimal.Zero, domain.ErrConcurrentLimit
	}
	if max.IsZero() {
		return decimal.Zero, domain.ErrNothingDeductible
	}
	if desired.GreaterThan(max) {
		return max, nil
	}
	return desired, nil
}
