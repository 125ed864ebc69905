package fulfillment

import (
	"fmt"

	domfulfillment "github.com/jhoicas/despachos-api/internal/domain/fulfillment"

	"github.com/jhoicas/despachos-api/internal/application/dto"
	"github.com/jhoicas/despachos-api/internal/domain"
	"github.com/jhoicas/despachos-api/internal/domain/entity"
	"github.com/jhoicas/despachos-api/internal/domain/repository"
)

// RequestQueryUseCase consultas de despachos para la UI de alistamiento
// (listado de pendientes y detalle con avance). Solo lectura.
type RequestQueryUseCase struct {
	requestRepo repository.StockOutRequestRepository
	ledgerRepo  repository.LedgerRepository
}

// NewRequestQueryUseCase construye el caso de uso.
func NewRequestQueryUseCase(requestRepo repository.StockOutRequestRepository, ledgerRepo repository.LedgerRepository) *RequestQueryUseCase {
	return &RequestQueryUseCase{requestRepo: requestRepo, ledgerRepo: ledgerRepo}
}

// List despachos por estado, paginados.
func (uc *RequestQueryUseCase) List(status string, limit, offset int) ([]dto.StockOutRequestResponse, error) {
	switch status {
	case entity.StockOutStatusPending, entity.StockOutStatusProcessing, entity.StockOutStatusCompleted:
	default:
		return nil, domain.ErrInvalidInput
	}
	reqs, err := uc.requestRepo.ListByStatus(status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listar despachos: %w", err)
	}
	out := make([]dto.StockOutRequestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, toRequestResponse(r, nil, false))
	}
	return out, nil
}

// Get detalle de un despacho con el faltante por línea calculado del libro
// persistido (útil antes de abrir sesión o después de confirmar).
func (uc *RequestQueryUseCase) Get(id string) (*dto.StockOutRequestResponse, error) {
	req, err := uc.requestRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("cargar despacho: %w", err)
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	ledger, err := uc.ledgerRepo.ListByRequest(id)
	if err != nil {
		return nil, fmt.Errorf("cargar libro: %w", err)
	}
	resp := toRequestResponse(req, ledger, true)
	return &resp, nil
}

func toRequestResponse(r *entity.StockOutRequest, ledger []entity.LedgerEntry, withItems bool) dto.StockOutRequestResponse {
	resp := dto.StockOutRequestResponse{
		ID:          r.ID,
		WarehouseID: r.WarehouseID,
		OrderID:     r.OrderID,
		Status:      r.Status,
		IsReserved:  r.IsReserved,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
		CompletedBy: r.CompletedBy,
	}
	if !withItems {
		return resp
	}
	remaining := domfulfillment.RemainingByItem(r.Items, ledger)
	for _, it := range r.Items {
		resp.Items = append(resp.Items, dto.LineItemProgress{
			LineItemID:       it.ID,
			ProductID:        it.ProductID,
			RequiredQuantity: it.RequiredQuantity,
			RemainingNeeded:  remaining[it.ID],
			Status:           it.Status,
		})
	}
	return resp
}
