package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/despachos-api/internal/domain/entity"
	"github.com/jhoicas/despachos-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo lectura de pre-asignaciones de reserva (usable con pool o tx).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// ListByOrder devuelve las cajas pre-asignadas a la orden, con barcode y
// producto resueltos desde inventory_units.
func (r *ReservationRepo) ListByOrder(orderID string) ([]entity.ReservationAssignment, error) {
	query := `
		SELECT ra.order_id, ra.line_item_id, ra.inventory_unit_id, iu.barcode, iu.product_id, ra.quantity
		FROM reservation_assignments ra
		JOIN inventory_units iu ON iu.id = ra.inventory_unit_id
		WHERE ra.order_id = $1
		ORDER BY ra.line_item_id, iu.barcode`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list reservation assignments: %w", err)
	}
	defer rows.Close()

	var out []entity.ReservationAssignment
	for rows.Next() {
		var a entity.ReservationAssignment
		if err := rows.Scan(&a.OrderID, &a.LineItemID, &a.InventoryUnitID, &a.Barcode, &a.ProductID, &a.Quantity); err != nil {
			return nil, fmt.Errorf("scan reservation assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
