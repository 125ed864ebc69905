package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/despachos-api/internal/domain/entity"
	"github.com/jhoicas/despachos-api/internal/domain/repository"
)

var _ repository.StockOutRequestRepository = (*StockOutRequestRepo)(nil)

// StockOutRequestRepo implementación sobre PostgreSQL (usable con pool o tx).
type StockOutRequestRepo struct {
	q Querier
}

// NewStockOutRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockOutRequestRepository(q Querier) *StockOutRequestRepo {
	return &StockOutRequestRepo{q: q}
}

// GetByID obtiene un despacho con sus líneas; nil si no existe.
func (r *StockOutRequestRepo) GetByID(id string) (*entity.StockOutRequest, error) {
	query := `
		SELECT id, warehouse_id, order_id, status, is_reserved, created_at, completed_at, completed_by
		FROM stock_out_requests WHERE id = $1`
	var req entity.StockOutRequest
	var orderID, completedBy *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&req.ID, &req.WarehouseID, &orderID, &req.Status, &req.IsReserved,
		&req.CreatedAt, &req.CompletedAt, &completedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock out request: %w", err)
	}
	if orderID != nil {
		req.OrderID = *orderID
	}
	if completedBy != nil {
		req.CompletedBy = *completedBy
	}

	items, err := r.listItems(id)
	if err != nil {
		return nil, err
	}
	req.Items = items
	return &req, nil
}

func (r *StockOutRequestRepo) listItems(requestID string) ([]entity.StockOutItem, error) {
	query := `
		SELECT id, stock_out_request_id, product_id, required_quantity, status
		FROM stock_out_items WHERE stock_out_request_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list stock out items: %w", err)
	}
	defer rows.Close()

	var items []entity.StockOutItem
	for rows.Next() {
		var it entity.StockOutItem
		if err := rows.Scan(&it.ID, &it.StockOutRequestID, &it.ProductID, &it.RequiredQuantity, &it.Status); err != nil {
			return nil, fmt.Errorf("scan stock out item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByStatus lista despachos por estado, paginados, más recientes primero.
func (r *StockOutRequestRepo) ListByStatus(status string, limit, offset int) ([]*entity.StockOutRequest, error) {
	query := `
		SELECT id, warehouse_id, order_id, status, is_reserved, created_at, completed_at, completed_by
		FROM stock_out_requests WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock out requests: %w", err)
	}
	defer rows.Close()

	var reqs []*entity.StockOutRequest
	for rows.Next() {
		var req entity.StockOutRequest
		var orderID, completedBy *string
		if err := rows.Scan(&req.ID, &req.WarehouseID, &orderID, &req.Status, &req.IsReserved,
			&req.CreatedAt, &req.CompletedAt, &completedBy); err != nil {
			return nil, fmt.Errorf("scan stock out request: %w", err)
		}
		if orderID != nil {
			req.OrderID = *orderID
		}
		if completedBy != nil {
			req.CompletedBy = *completedBy
		}
		reqs = append(reqs, &req)
	}
	return reqs, rows.Err()
}

// UpdateStatus cambia el estado del despacho.
func (r *StockOutRequestRepo) UpdateStatus(id, status string) error {
	query := `UPDATE stock_out_requests SET status = $2 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return nil
}

// MarkCompleted fija status=completed con actor y fecha de confirmación.
func (r *StockOutRequestRepo) MarkCompleted(id, userID string, at time.Time) error {
	query := `
		UPDATE stock_out_requests
		SET status = 'completed', completed_at = $2, completed_by = $3
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, at, userID)
	if err != nil {
		return fmt.Errorf("mark request completed: %w", err)
	}
	return nil
}

// UpdateItemStatus cambia el estado de una línea (pending | reserved).
func (r *StockOutRequestRepo) UpdateItemStatus(itemID, status string) error {
	query := `UPDATE stock_out_items SET status = $2 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, itemID, status)
	if err != nil {
		return fmt.Errorf("update item status: %w", err)
	}
	return nil
}
