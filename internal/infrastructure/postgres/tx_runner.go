package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/despachos-api/internal/application/fulfillment"
	"github.com/jhoicas/despachos-api/internal/domain/repository"
)

// Ensure TxRunner implements fulfillment.TxRunner.
var _ fulfillment.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Es el camino
// atómico de la confirmación de despachos: descuentos de cajas, estado del
// despacho, orden y auditoría se aplican todos o ninguno.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	unitRepo repository.InventoryUnitRepository,
	requestRepo repository.StockOutRequestRepository,
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	unitRepo := NewInventoryUnitRepository(tx)
	requestRepo := NewStockOutRequestRepository(tx)
	orderRepo := NewOrderRepository(tx)
	auditRepo := NewAuditRepository(tx)

	if err := fn(unitRepo, requestRepo, orderRepo, auditRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
