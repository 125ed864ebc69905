package fulfillment

import (
	"context"
	"fmt"

	"github.com/jhoicas/despachos-api/internal/domain"
	"github.com/jhoicas/despachos-api/internal/domain/entity"
	"github.com/jhoicas/despachos-api/internal/domain/repository"
)

// PackingSlipUseCase genera la remisión (PDF) de un despacho confirmado a
// partir del registro de auditoría, no del libro vivo: la remisión refleja lo
// que efectivamente se descontó.
type PackingSlipUseCase struct {
	requestRepo repository.StockOutRequestRepository
	auditRepo   repository.AuditRepository
	generator   PackingSlipGenerator
}

// NewPackingSlipUseCase construye el caso de uso.
func NewPackingSlipUseCase(requestRepo repository.StockOutRequestRepository, auditRepo repository.AuditRepository, generator PackingSlipGenerator) *PackingSlipUseCase {
	return &PackingSlipUseCase{requestRepo: requestRepo, auditRepo: auditRepo, generator: generator}
}

// Download devuelve los bytes del PDF y el nombre de archivo sugerido.
//
//   - domain.ErrNotFound si el despacho no existe.
//   - domain.ErrConflict si el despacho aún no está completado.
func (uc *PackingSlipUseCase) Download(ctx context.Context, requestID string) ([]byte, string, error) {
	req, err := uc.requestRepo.GetByID(requestID)
	if err != nil {
		return nil, "", fmt.Errorf("remisión: cargar despacho: %w", err)
	}
	if req == nil {
		return nil, "", domain.ErrNotFound
	}
	if req.Status != entity.StockOutStatusCompleted {
		return nil, "", domain.ErrConflict
	}

	entries, err := uc.auditRepo.ListByRequest(requestID)
	if err != nil {
		return nil, "", fmt.Errorf("remisión: cargar auditoría: %w", err)
	}

	pdf, err := uc.generator.GeneratePackingSlipPDF(ctx, req, entries)
	if err != nil {
		return nil, "", fmt.Errorf("remisión: generar PDF: %w", err)
	}
	return pdf, fmt.Sprintf("remision-%s.pdf", req.ID), nil
}
