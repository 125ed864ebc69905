package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/despachos-api/internal/domain"
	"github.com/jhoicas/despachos-api/internal/domain/entity"
	"github.com/jhoicas/despachos-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo persiste los registros vivos del libro de alistamiento
// (processed_items). Usable con pool o tx.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Create persiste un registro del libro.
func (r *LedgerRepo) Create(entry *entity.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO processed_items (id, stock_out_request_id, line_item_id, inventory_unit_id, barcode, quantity_deducted, provenance, processed_by, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	lineItemID := (*string)(nil)
	if entry.LineItemID != "" {
		lineItemID = &entry.LineItemID
	}
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.StockOutRequestID, lineItemID, entry.InventoryUnitID,
		entry.Barcode, entry.QuantityDeducted, entry.Provenance,
		entry.ProcessedBy, entry.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// Delete elimina un registro; ErrNotFound si no existía.
func (r *LedgerRepo) Delete(entryID string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM processed_items WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByRequest carga el libro completo de un despacho en orden de proceso.
func (r *LedgerRepo) ListByRequest(requestID string) ([]entity.LedgerEntry, error) {
	query := `
		SELECT id, stock_out_request_id, line_item_id, inventory_unit_id, barcode, quantity_deducted, provenance, processed_by, processed_at
		FROM processed_items WHERE stock_out_request_id = $1
		ORDER BY processed_at, id`
	rows, err := r.q.Query(context.Background(), query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		var lineItemID *string
		if err := rows.Scan(&e.ID, &e.StockOutRequestID, &lineItemID, &e.InventoryUnitID,
			&e.Barcode, &e.QuantityDeducted, &e.Provenance, &e.ProcessedBy, &e.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if lineItemID != nil {
			e.LineItemID = *lineItemID
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
