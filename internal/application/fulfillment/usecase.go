package fulfillment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/despachos-api/internal/application/dto"
	"github.com/jhoicas/despachos-api/internal/domain"
	"github.com/jhoicas/despachos-api/internal/domain/entity"
	domfulfillment "github.com/jhoicas/despachos-api/internal/domain/fulfillment"
	"github.com/jhoicas/despachos-api/internal/domain/repository"
	"github.com/jhoicas/despachos-api/pkg/logger"
)

// Modos de confirmación del despacho.
const (
	CommitModeAtomic     = "atomic"      // una sola transacción de BD (preferido)
	CommitModeBestEffort = "best-effort" // actualizaciones independientes, fallas parciales reportadas
)

// SessionUseCase es el motor de conciliación de despachos: maneja las sesiones
// de alistamiento (escanear, confirmar cantidad, deshacer, avance) y la
// confirmación final.
//
// Las mutaciones sobre el libro de un mismo despacho se serializan con un
// mutex por sesión: una segunda mutación mientras otra está en vuelo espera su
// turno, nunca se intercala con los chequeos de invariantes de la primera.
// Entre sesiones de despachos distintos no hay bloqueo: la protección real
// contra consumir la misma caja desde dos despachos es el descuento atómico
// con piso en la capa de persistencia (InventoryUnitRepository.Deduct).
type SessionUseCase struct {
	requestRepo     repository.StockOutRequestRepository
	unitRepo        repository.InventoryUnitRepository
	ledgerRepo      repository.LedgerRepository
	reservationRepo repository.ReservationRepository
	orderRepo       repository.OrderRepository
	auditRepo       repository.AuditRepository
	txRunner        TxRunner
	publisher       EventPublisher // opcional, puede ser nil
	commitMode      string
	log             *logger.Logger

	mu       sync.Mutex
	sessions map[string]*sessionSlot
}

// sessionSlot serializa las operaciones sobre la sesión de un despacho.
type sessionSlot struct {
	mu      sync.Mutex
	open    bool
	session Session
}

// NewSessionUseCase construye el motor. commitMode debe ser CommitModeAtomic o
// CommitModeBestEffort; cualquier otro valor cae al modo atómico.
func NewSessionUseCase(
	requestRepo repository.StockOutRequestRepository,
	unitRepo repository.InventoryUnitRepository,
	ledgerRepo repository.LedgerRepository,
	reservationRepo repository.ReservationRepository,
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditRepository,
	txRunner TxRunner,
	publisher EventPublisher,
	commitMode string,
	log *logger.Logger,
) *SessionUseCase {
	if commitMode != CommitModeBestEffort {
		commitMode = CommitModeAtomic
	}
	return &SessionUseCase{
		requestRepo:     requestRepo,
		unitRepo:        unitRepo,
		ledgerRepo:      ledgerRepo,
		reservationRepo: reservationRepo,
		orderRepo:       orderRepo,
		auditRepo:       auditRepo,
		txRunner:        txRunner,
		publisher:       publisher,
		commitMode:      commitMode,
		log:             log,
		sessions:        make(map[string]*sessionSlot),
	}
}

func (uc *SessionUseCase) slot(requestID string) *sessionSlot {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	sl, ok := uc.sessions[requestID]
	if !ok {
		sl = &sessionSlot{}
		uc.sessions[requestID] = sl
	}
	return sl
}

// openSlot devuelve el slot de una sesión ya abierta, o ErrSessionNotOpen.
func (uc *SessionUseCase) openSlot(requestID string) (*sessionSlot, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	sl, ok := uc.sessions[requestID]
	if !ok || !sl.open {
		return nil, domain.ErrSessionNotOpen
	}
	return sl, nil
}

// Open abre (o reanuda) la sesión de alistamiento de un despacho: carga el
// despacho con sus líneas, el libro sobreviviente de sesiones anteriores y,
// si la orden está reservada, aplica la superposición de reserva antes de que
// ocurra cualquier escaneo.
func (uc *SessionUseCase) Open(ctx context.Context, requestID, userID string) (*dto.SessionResponse, error) {
	sl := uc.slot(requestID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	req, err := uc.requestRepo.GetByID(requestID)
	if err != nil {
		return nil, fmt.Errorf("cargar despacho: %w", err)
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if req.Status == entity.StockOutStatusCompleted {
		return nil, domain.ErrConflict
	}

	ledger, err := uc.ledgerRepo.ListByRequest(requestID)
	if err != nil {
		return nil, fmt.Errorf("cargar libro de alistamiento: %w", err)
	}

	now := time.Now()
	session := NewSession(*req, ledger, userID, now)

	if req.IsReserved && req.OrderID != "" {
		session, err = uc.applyReservationOverlay(session, userID, now)
		if err != nil {
			return nil, err
		}
	}

	if session.Request.Status == entity.StockOutStatusPending {
		if err := uc.requestRepo.UpdateStatus(requestID, entity.StockOutStatusProcessing); err != nil {
			return nil, fmt.Errorf("marcar despacho en proceso: %w", err)
		}
		session.Request.Status = entity.StockOutStatusProcessing
	}

	sl.session = session
	sl.open = true

	uc.log.Info().
		Str("request_id", requestID).
		Str("user_id", userID).
		Bool("is_reserved", req.IsReserved).
		Int("entries", len(session.Ledger)).
		Msg("sesión de alistamiento abierta")

	resp := uc.toSessionResponse(session)
	return &resp, nil
}

// applyReservationOverlay inyecta las cajas pre-asignadas de la orden como
// registros con procedencia reserved, sin pasar por los chequeos de
// disponibilidad de propose/confirm: la asignación ya ocurrió al reservar.
// El merge por barcode hace la operación idempotente y respeta escaneos
// previos; solo los registros efectivamente nuevos se persisten.
func (uc *SessionUseCase) applyReservationOverlay(session Session, userID string, now time.Time) (Session, error) {
	assignments, err := uc.reservationRepo.ListByOrder(session.Request.OrderID)
	if err != nil {
		return session, fmt.Errorf("cargar pre-asignaciones de la reserva: %w", err)
	}

	injected := make([]entity.LedgerEntry, 0, len(assignments))
	for _, a := range assignments {
		injected = append(injected, entity.LedgerEntry{
			ID:                uuid.New().String(),
			StockOutRequestID: session.Request.ID,
			LineItemID:        a.LineItemID,
			InventoryUnitID:   a.InventoryUnitID,
			Barcode:           a.Barcode,
			QuantityDeducted:  a.Quantity,
			Provenance:        entity.ProvenanceReserved,
			ProcessedBy:       userID,
			ProcessedAt:       now,
		})
	}

	merged, added := domfulfillment.MergeReservedEntries(session.Ledger, injected)
	for i := range added {
		if err := uc.ledgerRepo.Create(&added[i]); err != nil {
			// Persistir-y-luego-aplicar: si falla la escritura, la sesión no cambia.
			return session, fmt.Errorf("persistir registro de reserva: %w", err)
		}
	}
	session.Ledger = merged

	// Recalcular el estado de cada línea con el libro conciliado.
	for _, it := range session.Request.Items {
		st := domfulfillment.ItemStatus(it, session.Ledger)
		if st == it.Status {
			continue
		}
		if err := uc.requestRepo.UpdateItemStatus(it.ID, st); err != nil {
			return session, fmt.Errorf("actualizar estado de línea: %w", err)
		}
		session = session.WithItemStatus(it.ID, st)
	}
	return session, nil
}

// Scan resuelve un código de barras contra el despacho: la caja, la línea
// candidata y el tope descontable. Solo lectura sobre el inventario; resolver
// dos veces el mismo barcode devuelve el mismo snapshot salvo cambios externos.
func (uc *SessionUseCase) Scan(ctx context.Context, requestID, barcode string) (*dto.ScanOutcome, error) {
	sl, err := uc.openSlot(requestID)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()

	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, domain.ErrInvalidInput
	}

	unit, err := uc.unitRepo.GetByBarcode(barcode)
	if err != nil {
		return nil, fmt.Errorf("resolver caja: %w", err)
	}
	if unit == nil || unit.WarehouseID != sl.session.Request.WarehouseID {
		return nil, domain.ErrNotFound
	}

	candidate, found, matched := sl.session.ItemForProduct(unit.ProductID)
	if !matched {
		return nil, domain.ErrProductMismatch
	}
	if !found {
		return nil, domain.ErrNothingDeductible
	}

	max := sl.session.MaxDeductible(*unit, candidate.ID)
	if max.IsNegative() {
		return nil, domain.ErrConcurrentLimit
	}
	if max.IsZero() {
		return nil, domain.ErrNothingDeductible
	}

	return &dto.ScanOutcome{
		UnitID:           unit.ID,
		Barcode:          unit.Barcode,
		ProductID:        unit.ProductID,
		Location:         unit.Location,
		OnHandQuantity:   unit.OnHandQuantity,
		ReservedQuantity: unit.ReservedQuantity,
		LineItemID:       candidate.ID,
		MaxDeductible:    max,
	}, nil
}

// ConfirmQuantity registra un descuento en el libro. Siempre re-resuelve la
// caja con una lectura fresca antes de anexar: el tope mostrado en el escaneo
// pudo quedar obsoleto. La cantidad se recorta al tope vigente y el recorte se
// informa en la respuesta (Clamped); nunca se descuenta más de lo pedido.
//
// Re-escanear la misma caja es legal: cada confirmación crea un registro nuevo
// sujeto a los mismos invariantes, así una caja puede repartirse entre varios
// registros de la sesión.
func (uc *SessionUseCase) ConfirmQuantity(ctx context.Context, requestID string, in dto.ConfirmQuantityRequest, userID string) (*dto.LedgerEntryResponse, error) {
	sl, err := uc.openSlot(requestID)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()

	item, ok := sl.session.Item(in.LineItemID)
	if !ok {
		return nil, domain.ErrNotFound
	}

	unit, err := uc.unitRepo.GetByID(in.InventoryUnitID)
	if err != nil {
		return nil, fmt.Errorf("re-resolver caja: %w", err)
	}
	if unit == nil {
		return nil, domain.ErrNotFound
	}
	if unit.ProductID != item.ProductID {
		return nil, domain.ErrProductMismatch
	}

	clamped, err := sl.session.Propose(*unit, item.ID, in.Quantity)
	if err != nil {
		return nil, err
	}

	entry := entity.LedgerEntry{
		ID:                uuid.New().String(),
		StockOutRequestID: requestID,
		LineItemID:        item.ID,
		InventoryUnitID:   unit.ID,
		Barcode:           unit.Barcode,
		QuantityDeducted:  clamped,
		Provenance:        entity.ProvenanceScanned,
		ProcessedBy:       userID,
		ProcessedAt:       time.Now(),
	}
	if err := uc.ledgerRepo.Create(&entry); err != nil {
		// La sesión en memoria no se toca si la persistencia no confirma.
		return nil, fmt.Errorf("registrar descuento: %w", err)
	}
	sl.session = sl.session.WithEntry(entry)

	uc.log.Info().
		Str("request_id", requestID).
		Str("unit_id", unit.ID).
		Str("barcode", unit.Barcode).
		Str("line_item_id", item.ID).
		Str("quantity", clamped.String()).
		Bool("clamped", clamped.LessThan(in.Quantity)).
		Msg("descuento registrado")

	resp := toEntryResponse(entry)
	resp.Clamped = clamped.LessThan(in.Quantity)
	return &resp, nil
}

// DeleteEntry deshace un descuento: elimina el registro y el faltante de la
// línea recupera exactamente esa cantidad, porque todo se recalcula del libro
// sobreviviente. No hay snapshots de cajas que refrescar: el siguiente escaneo
// re-resuelve contra el inventario en vez de parchear estado cacheado.
func (uc *SessionUseCase) DeleteEntry(ctx context.Context, requestID, entryID string) error {
	sl, err := uc.openSlot(requestID)
	if err != nil {
		return err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()

	next, removed, err := sl.session.WithoutEntry(entryID)
	if err != nil {
		return err
	}
	if err := uc.ledgerRepo.Delete(entryID); err != nil {
		return fmt.Errorf("eliminar registro: %w", err)
	}
	sl.session = next

	// Una línea que estaba cubierta por la reserva puede volver a pending.
	if removed.LineItemID != "" {
		if it, ok := sl.session.Item(removed.LineItemID); ok {
			st := domfulfillment.ItemStatus(it, sl.session.Ledger)
			if st != it.Status {
				if err := uc.requestRepo.UpdateItemStatus(it.ID, st); err != nil {
					return fmt.Errorf("actualizar estado de línea: %w", err)
				}
				sl.session = sl.session.WithItemStatus(it.ID, st)
			}
		}
	}

	uc.log.Info().
		Str("request_id", requestID).
		Str("entry_id", entryID).
		Str("barcode", removed.Barcode).
		Str("quantity", removed.QuantityDeducted.String()).
		Msg("descuento deshecho")
	return nil
}

// Progress avance global y por línea de la sesión abierta.
func (uc *SessionUseCase) Progress(requestID string) (*dto.ProgressResponse, error) {
	sl, err := uc.openSlot(requestID)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()

	resp := uc.toProgressResponse(sl.session)
	return &resp, nil
}

// Abandon descarta la sesión en memoria. Los registros ya persistidos (los de
// la reserva y los confirmados) permanecen: reabrir el despacho los recupera.
func (uc *SessionUseCase) Abandon(requestID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.sessions, requestID)
}

func (uc *SessionUseCase) toProgressResponse(s Session) dto.ProgressResponse {
	percent, remaining := s.Progress()
	items := make([]dto.LineItemProgress, 0, len(s.Request.Items))
	for _, it := range s.Request.Items {
		items = append(items, dto.LineItemProgress{
			LineItemID:       it.ID,
			ProductID:        it.ProductID,
			RequiredQuantity: it.RequiredQuantity,
			RemainingNeeded:  remaining[it.ID],
			Status:           it.Status,
		})
	}
	return dto.ProgressResponse{RequestID: s.Request.ID, Percent: percent, Items: items}
}

func (uc *SessionUseCase) toSessionResponse(s Session) dto.SessionResponse {
	entries := make([]dto.LedgerEntryResponse, 0, len(s.Ledger))
	for _, e := range s.Ledger {
		entries = append(entries, toEntryResponse(e))
	}
	return dto.SessionResponse{
		RequestID:  s.Request.ID,
		Status:     s.Request.Status,
		IsReserved: s.Request.IsReserved,
		Entries:    entries,
		Progress:   uc.toProgressResponse(s),
	}
}

func toEntryResponse(e entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:               e.ID,
		LineItemID:       e.LineItemID,
		InventoryUnitID:  e.InventoryUnitID,
		Barcode:          e.Barcode,
		QuantityDeducted: e.QuantityDeducted,
		Provenance:       e.Provenance,
		ProcessedBy:      e.ProcessedBy,
		ProcessedAt:      e.ProcessedAt,
	}
}
