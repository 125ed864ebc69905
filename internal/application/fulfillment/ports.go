package fulfillment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/despachos-api/internal/domain/entity"
	"github.com/jhoicas/despachos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es el camino preferido de la confirmación:
// descuentos de cajas, estado del despacho, orden vinculada y auditoría quedan
// atómicos (todo o nada).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		unitRepo repository.InventoryUnitRepository,
		requestRepo repository.StockOutRequestRepository,
		orderRepo repository.OrderRepository,
		auditRepo repository.AuditRepository,
	) error) error
}

// CompletedEvent evento publicado tras confirmar un despacho, para que el
// servicio de órdenes aguas arriba reaccione sin acoplarse a esta API.
type CompletedEvent struct {
	RequestID   string          `json:"request_id"`
	OrderID     string          `json:"order_id,omitempty"`
	WarehouseID string          `json:"warehouse_id"`
	CommitTxID  string          `json:"commit_tx_id"`
	TotalUnits  decimal.Decimal `json:"total_units"`
	CompletedBy string          `json:"completed_by"`
	CompletedAt time.Time       `json:"completed_at"`
}

// EventPublisher publica eventos de despacho completado. Puede ser nil (sin
// broker configurado); el caso de uso lo trata como opcional.
type EventPublisher interface {
	PublishCompleted(ctx context.Context, evt CompletedEvent) error
}

// PackingSlipGenerator genera el PDF de la remisión de un despacho confirmado.
type PackingSlipGenerator interface {
	GeneratePackingSlipPDF(ctx context.Context, req *entity.StockOutRequest, entries []entity.LedgerEntry) ([]byte, error)
}
