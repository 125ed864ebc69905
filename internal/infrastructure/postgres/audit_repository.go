package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/despachos-api/internal/domain/entity"
	"github.com/jhoicas/despachos-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo persiste la copia inmutable del libro al confirmar un despacho
// (fulfillment_audit). Solo INSERT; no hay update ni delete.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// AppendBatch copia todos los registros del libro bajo un mismo commit_tx_id.
func (r *AuditRepo) AppendBatch(entries []entity.LedgerEntry, commitTxID string) error {
	query := `
		INSERT INTO fulfillment_audit (id, commit_tx_id, entry_id, stock_out_request_id, line_item_id, inventory_unit_id, barcode, quantity_deducted, provenance, processed_by, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for _, e := range entries {
		lineItemID := (*string)(nil)
		if e.LineItemID != "" {
			lineItemID = &e.LineItemID
		}
		_, err := r.q.Exec(context.Background(), query,
			uuid.New().String(), commitTxID, e.ID, e.StockOutRequestID, lineItemID,
			e.InventoryUnitID, e.Barcode, e.QuantityDeducted, e.Provenance,
			e.ProcessedBy, e.ProcessedAt,
		)
		if err != nil {
			return fmt.Errorf("append audit record: %w", err)
		}
	}
	return nil
}

// ListByRequest registros de auditoría de un despacho en orden de proceso.
func (r *AuditRepo) ListByRequest(requestID string) ([]entity.LedgerEntry, error) {
	query := `
		SELECT entry_id, stock_out_request_id, line_item_id, inventory_unit_id, barcode, quantity_deducted, provenance, processed_by, processed_at
		FROM fulfillment_audit WHERE stock_out_request_id = $1
		ORDER BY processed_at, entry_id`
	rows, err := r.q.Query(context.Background(), query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var entries []entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		var lineItemID *string
		if err := rows.Scan(&e.ID, &e.StockOutRequestID, &lineItemID, &e.InventoryUnitID,
			&e.Barcode, &e.QuantityDeducted, &e.Provenance, &e.ProcessedBy, &e.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		if lineItemID != nil {
			e.LineItemID = *lineItemID
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
