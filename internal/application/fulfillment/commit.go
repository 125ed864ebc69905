package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/despachos-api/internal/application/dto"
	"github.com/jhoicas/despachos-api/internal/domain"
	"github.com/jhoicas/despachos-api/internal/domain/entity"
	"github.com/jhoicas/despachos-api/internal/domain/repository"
)

// unitTotal acumula lo descontado de una caja en todo el libro, separando lo
// escaneado de lo reservado: cada uno se descuenta distinto en el inventario.
type unitTotal struct {
	unitID   string
	barcode  string
	scanned  decimal.Decimal
	reserved decimal.Decimal
}

// Commit confirma el despacho: valida que no quede faltante en ninguna línea
// no reservada y aplica, por caja, el descuento total del libro; marca el
// despacho completado, actualiza la orden vinculada y deja la copia inmutable
// del libro en la auditoría.
//
// En modo atómico todo ocurre en una transacción: cualquier falla revierte
// completo. En modo best-effort cada actualización va por separado: las fallas
// individuales se registran y se continúa, el despacho solo queda completado
// si su propio cambio de estado funciona, y toda falla parcial se devuelve en
// un PartialCommitError con detalle por caja — jamás se traga en silencio.
func (uc *SessionUseCase) Commit(ctx context.Context, requestID, userID string) (*dto.CommitResponse, error) {
	sl, err := uc.openSlot(requestID)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()

	session := sl.session
	if !session.ReadyForCommit() {
		return nil, domain.ErrIncompleteRequest
	}

	now := time.Now()
	commitTxID := uuid.New().String()
	totals := groupByUnit(session.Ledger)

	var warnings []dto.CommitWarning
	if uc.commitMode == CommitModeBestEffort {
		warnings, err = uc.commitBestEffort(session, totals, userID, commitTxID, now)
	} else {
		err = uc.commitAtomic(ctx, session, totals, userID, commitTxID, now)
	}
	if err != nil {
		return nil, err
	}

	// La sesión terminó; descartar el estado en memoria.
	uc.mu.Lock()
	delete(uc.sessions, requestID)
	uc.mu.Unlock()

	uc.publishCompleted(ctx, session, commitTxID, userID, now)

	uc.log.Info().
		Str("request_id", requestID).
		Str("commit_tx_id", commitTxID).
		Str("mode", uc.commitMode).
		Int("units", len(totals)).
		Int("warnings", len(warnings)).
		Msg("despacho confirmado")

	resp := &dto.CommitResponse{
		RequestID:   requestID,
		Status:      entity.StockOutStatusCompleted,
		CommitTxID:  commitTxID,
		CompletedAt: now,
		Warnings:    warnings,
	}
	if len(warnings) > 0 {
		return resp, &PartialCommitError{RequestID: requestID, Failures: toFailures(warnings)}
	}
	return resp, nil
}

// commitAtomic pasos 1–4 en una sola transacción.
func (uc *SessionUseCase) commitAtomic(ctx context.Context, session Session, totals []unitTotal, userID, commitTxID string, now time.Time) error {
	return uc.txRunner.Run(ctx, func(
		unitRepo repository.InventoryUnitRepository,
		requestRepo repository.StockOutRequestRepository,
		orderRepo repository.OrderRepository,
		auditRepo repository.AuditRepository,
	) error {
		for _, t := range totals {
			if t.scanned.IsPositive() {
				if err := unitRepo.Deduct(t.unitID, t.scanned); err != nil {
					return fmt.Errorf("descontar caja %s: %w", t.barcode, err)
				}
			}
			if t.reserved.IsPositive() {
				if err := unitRepo.ConsumeReserved(t.unitID, t.reserved); err != nil {
					return fmt.Errorf("consumir reserva de caja %s: %w", t.barcode, err)
				}
			}
		}
		if err := requestRepo.MarkCompleted(session.Request.ID, userID, now); err != nil {
			return fmt.Errorf("marcar despacho completado: %w", err)
		}
		if session.Request.OrderID != "" {
			if err := orderRepo.UpdateStatus(session.Request.OrderID, entity.OrderStatusFulfilled); err != nil {
				return fmt.Errorf("actualizar orden vinculada: %w", err)
			}
		}
		if err := auditRepo.AppendBatch(session.Ledger, commitTxID); err != nil {
			return fmt.Errorf("persistir auditoría: %w", err)
		}
		return nil
	})
}

// commitBestEffort aplica cada actualización por separado contra el pool.
// Brecha de consistencia conocida: el descuento de una caja puede quedar
// aplicado aunque otro falle. Solo la actualización de estado del despacho es
// obligatoria; lo demás se degrada a warnings con detalle por caja.
func (uc *SessionUseCase) commitBestEffort(session Session, totals []unitTotal, userID, commitTxID string, now time.Time) ([]dto.CommitWarning, error) {
	var warnings []dto.CommitWarning
	for _, t := range totals {
		if t.scanned.IsPositive() {
			if err := uc.unitRepo.Deduct(t.unitID, t.scanned); err != nil {
				uc.log.Warn().Err(err).Str("unit_id", t.unitID).Str("barcode", t.barcode).Msg("descuento de caja falló, se continúa")
				warnings = append(warnings, dto.CommitWarning{
					Step: "unit_update", InventoryUnitID: t.unitID, Barcode: t.barcode,
					Quantity: t.scanned, Reason: err.Error(),
				})
			}
		}
		if t.reserved.IsPositive() {
			if err := uc.unitRepo.ConsumeReserved(t.unitID, t.reserved); err != nil {
				uc.log.Warn().Err(err).Str("unit_id", t.unitID).Str("barcode", t.barcode).Msg("consumo de reserva falló, se continúa")
				warnings = append(warnings, dto.CommitWarning{
					Step: "unit_update", InventoryUnitID: t.unitID, Barcode: t.barcode,
					Quantity: t.reserved, Reason: err.Error(),
				})
			}
		}
	}

	// Sin esto el despacho NO queda completado: es el único paso obligatorio.
	if err := uc.requestRepo.MarkCompleted(session.Request.ID, userID, now); err != nil {
		return warnings, fmt.Errorf("marcar despacho completado: %w", err)
	}

	if session.Request.OrderID != "" {
		if err := uc.orderRepo.UpdateStatus(session.Request.OrderID, entity.OrderStatusFulfilled); err != nil {
			uc.log.Warn().Err(err).Str("order_id", session.Request.OrderID).Msg("actualización de orden falló")
			warnings = append(warnings, dto.CommitWarning{Step: "order_update", Reason: err.Error()})
		}
	}
	if err := uc.auditRepo.AppendBatch(session.Ledger, commitTxID); err != nil {
		uc.log.Warn().Err(err).Str("request_id", session.Request.ID).Msg("registro de auditoría falló")
		warnings = append(warnings, dto.CommitWarning{Step: "audit", Reason: err.Error()})
	}
	return warnings, nil
}

func (uc *SessionUseCase) publishCompleted(ctx context.Context, session Session, commitTxID, userID string, now time.Time) {
	if uc.publisher == nil {
		return
	}
	total := decimal.Zero
	for _, e := range session.Ledger {
		total = total.Add(e.QuantityDeducted)
	}
	evt := CompletedEvent{
		RequestID:   session.Request.ID,
		OrderID:     session.Request.OrderID,
		WarehouseID: session.Request.WarehouseID,
		CommitTxID:  commitTxID,
		TotalUnits:  total,
		CompletedBy: userID,
		CompletedAt: now,
	}
	if err := uc.publisher.PublishCompleted(ctx, evt); err != nil {
		// El evento es notificación, no parte de la transacción.
		uc.log.Warn().Err(err).Str("request_id", session.Request.ID).Msg("publicación de evento falló")
	}
}

// groupByUnit acumula el libro por caja preservando el orden de aparición.
func groupByUnit(ledger []entity.LedgerEntry) []unitTotal {
	idx := make(map[string]int, len(ledger))
	totals := make([]unitTotal, 0, len(ledger))
	for _, e := range ledger {
		i, ok := idx[e.InventoryUnitID]
		if !ok {
			i = len(totals)
			idx[e.InventoryUnitID] = i
			totals = append(totals, unitTotal{
				unitID:  e.InventoryUnitID,
				barcode: e.Barcode,
				scanned: decimal.Zero, reserved: decimal.Zero,
			})
		}
		if e.Provenance == entity.ProvenanceReserved {
			totals[i].reserved = totals[i].reserved.Add(e.QuantityDeducted)
		} else {
			totals[i].scanned = totals[i].scanned.Add(e.QuantityDeducted)
		}
	}
	return totals
}

func toFailures(warnings []dto.CommitWarning) []CommitFailure {
	out := make([]CommitFailure, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, CommitFailure{
			Step:            w.Step,
			InventoryUnitID: w.InventoryUnitID,
			Barcode:         w.Barcode,
			Quantity:        w.Quantity,
			Reason:          w.Reason,
		})
	}
	return out
}
