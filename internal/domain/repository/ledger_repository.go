package repository

import "github.com/jhoicas/despachos-api/internal/domain/entity"

// LedgerRepository persiste los registros vivos del libro de alistamiento
// (processed_items). Cada operación de la sesión escribe primero aquí y solo
// después actualiza el libro en memoria: si la escritura falla, la sesión no
// cambia. Los registros sobreviven al cierre de la página (resume idempotente).
type LedgerRepository interface {
	Create(entry *entity.LedgerEntry) error
	// Delete elimina un registro por ID; ErrNotFound si no existe.
	Delete(entryID string) error
	ListByRequest(requestID string) ([]entity.LedgerEntry, error)
}

// AuditRepository persiste la copia inmutable del libro al confirmar el
// despacho (fulfillment_audit). Solo se agrega, nunca se muta ni borra.
type AuditRepository interface {
	AppendBatch(entries []entity.LedgerEntry, commitTxID string) error
	ListByRequest(requestID string) ([]entity.LedgerEntry, error)
}
