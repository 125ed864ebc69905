package repository

import "github.com/jhoicas/despachos-api/internal/domain/entity"

// ReservationRepository expone las cajas pre-asignadas de una orden reservada.
// Solo lectura: la asignación ocurrió al reservar la orden, aguas arriba.
type ReservationRepository interface {
	ListByOrder(orderID string) ([]entity.ReservationAssignment, error)
}
