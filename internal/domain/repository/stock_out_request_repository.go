package repository

import (
	"time"

	"github.com/jhoicas/despachos-api/internal/domain/entity"
)

// StockOutRequestRepository define el puerto de persistencia de despachos.
// GetByID carga el despacho con sus líneas; devuelve nil sin error si no existe.
type StockOutRequestRepository interface {
	GetByID(id string) (*entity.StockOutRequest, error)
	ListByStatus(status string, limit, offset int) ([]*entity.StockOutRequest, error)
	UpdateStatus(id, status string) error
	// MarkCompleted fija status=completed con actor y fecha de confirmación.
	MarkCompleted(id, userID string, at time.Time) error
	UpdateItemStatus(itemID, status string) error
}
