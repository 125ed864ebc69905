package repository

import "github.com/jhoicas/despachos-api/internal/domain/entity"

// OrderRepository define el puerto mínimo hacia la orden de venta vinculada.
type OrderRepository interface {
	GetByID(id string) (*entity.Order, error)
	UpdateStatus(id, status string) error
}
