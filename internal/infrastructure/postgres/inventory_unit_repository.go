package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/despachos-api/internal/domain"
	"github.com/jhoicas/despachos-api/internal/domain/entity"
	"github.com/jhoicas/despachos-api/internal/domain/repository"
)

var _ repository.InventoryUnitRepository = (*InventoryUnitRepo)(nil)

// InventoryUnitRepo implementación de InventoryUnitRepository sobre PostgreSQL
// (usable con pool o tx).
type InventoryUnitRepo struct {
	q Querier
}

// NewInventoryUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryUnitRepository(q Querier) *InventoryUnitRepo {
	return &InventoryUnitRepo{q: q}
}

const unitColumns = `id, product_id, warehouse_id, barcode, on_hand_quantity, reserved_quantity, location, status, updated_at`

// GetByID obtiene una caja por ID; nil si no existe.
func (r *InventoryUnitRepo) GetByID(id string) (*entity.InventoryUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM inventory_units WHERE id = $1`
	return r.scanOne(query, id)
}

// GetByBarcode obtiene una caja por código de barras; nil si no existe.
func (r *InventoryUnitRepo) GetByBarcode(barcode string) (*entity.InventoryUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM inventory_units WHERE barcode = $1`
	return r.scanOne(query, barcode)
}

func (r *InventoryUnitRepo) scanOne(query string, arg any) (*entity.InventoryUnit, error) {
	var u entity.InventoryUnit
	var location *string
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&u.ID, &u.ProductID, &u.WarehouseID, &u.Barcode,
		&u.OnHandQuantity, &u.ReservedQuantity, &location, &u.Status, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory unit: %w", err)
	}
	if location != nil {
		u.Location = *location
	}
	return &u, nil
}

// Deduct descuenta qty de on_hand con piso en lo disponible: el UPDATE es
// condicional a on_hand - reserved >= qty, así dos sesiones no pueden llevar
// la caja por debajo de cero aunque ambas hayan pasado su pre-chequeo.
// La caja queda 'consumed' si on_hand llega a cero.
func (r *InventoryUnitRepo) Deduct(unitID string, qty decimal.Decimal) error {
	query := `
		UPDATE inventory_units
		SET on_hand_quantity = on_hand_quantity - $2,
		    status = CASE WHEN on_hand_quantity - $2 <= 0 THEN 'consumed' ELSE status END,
		    updated_at = now()
		WHERE id = $1 AND on_hand_quantity - reserved_quantity >= $2`
	tag, err := r.q.Exec(context.Background(), query, unitID, qty)
	if err != nil {
		return fmt.Errorf("deduct unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.deductConflict(unitID)
	}
	return nil
}

// ConsumeReserved descuenta qty de on_hand y de reserved a la vez: consumo de
// una pre-asignación hecha al reservar la orden.
func (r *InventoryUnitRepo) ConsumeReserved(unitID string, qty decimal.Decimal) error {
	query := `
		UPDATE inventory_units
		SET on_hand_quantity = on_hand_quantity - $2,
		    reserved_quantity = reserved_quantity - $2,
		    status = CASE WHEN on_hand_quantity - $2 <= 0 THEN 'consumed' ELSE status END,
		    updated_at = now()
		WHERE id = $1 AND reserved_quantity >= $2 AND on_hand_quantity >= $2`
	tag, err := r.q.Exec(context.Background(), query, unitID, qty)
	if err != nil {
		return fmt.Errorf("consume reserved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.deductConflict(unitID)
	}
	return nil
}

// deductConflict distingue caja inexistente de cantidad insuficiente cuando el
// UPDATE condicional no afectó filas.
func (r *InventoryUnitRepo) deductConflict(unitID string) error {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM inventory_units WHERE id = $1)`, unitID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check unit: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInsufficientStock
}
