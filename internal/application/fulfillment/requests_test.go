package fulfillment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/despachos-api/internal/application/fulfillment"
	"github.com/jhoicas/despachos-api/internal/domain"
	"github.com/jhoicas/despachos-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Consultas de despachos
// ──────────────────────────────────────────────────────────────────────────────

func TestList_EstadoInvalido_RetornaInvalidInput(t *testing.T) {
	env := newEngineEnv(t, fulfillment.CommitModeAtomic)
	uc := fulfillment.NewRequestQueryUseCase(env.requests, env.ledger)

	_, err := uc.List("archivado", 20, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGet_CalculaFaltanteDelLibroPersistido(t *testing.T) {
	env := newEngineEnv(t, fulfillment.CommitModeAtomic)
	env.open(t)
	env.confirm(t, "caja-A", "linea-1", 3)
	uc := fulfillment.NewRequestQueryUseCase(env.requests, env.ledger)

	resp, err := uc.Get(reqID)
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].RemainingNeeded.Equal(qty(2)),
		"el detalle usa el libro persistido, sin necesidad de sesión abierta")
}

func TestGet_Inexistente_RetornaNotFound(t *testing.T) {
	env := newEngineEnv(t, fulfillment.CommitModeAtomic)
	uc := fulfillment.NewRequestQueryUseCase(env.requests, env.ledger)

	_, err := uc.Get("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Remisión (PDF)
// ──────────────────────────────────────────────────────────────────────────────

type stubSlipGenerator struct {
	got []entity.LedgerEntry
}

func (g *stubSlipGenerator) GeneratePackingSlipPDF(_ context.Context, _ *entity.StockOutRequest, entries []entity.LedgerEntry) ([]byte, error) {
	g.got = entries
	return []byte("%PDF-fake"), nil
}

func TestPackingSlip_DespachoNoCompletado_RetornaConflict(t *testing.T) {
	env := newEngineEnv(t, fulfillment.CommitModeAtomic)
	uc := fulfillment.NewPackingSlipUseCase(env.requests, env.audit, &stubSlipGenerator{})

	_, _, err := uc.Download(context.Background(), reqID)
	assert.ErrorIs(t, err, domain.ErrConflict,
		"la remisión solo existe para despachos confirmados")
}

func TestPackingSlip_GeneraDesdeLaAuditoria(t *testing.T) {
	env := newEngineEnv(t, fulfillment.CommitModeAtomic)
	env.open(t)
	env.confirm(t, "caja-A", "linea-1", 5)
	_, err := env.uc.Commit(context.Background(), reqID, operario)
	require.NoError(t, err)

	gen := &stubSlipGenerator{}
	uc := fulfillment.NewPackingSlipUseCase(env.requests, env.audit, gen)

	pdf, filename, err := uc.Download(context.Background(), reqID)
	require.NoError(t, err)

	assert.NotEmpty(t, pdf)
	assert.Equal(t, "remision-"+reqID+".pdf", filename)
	assert.Len(t, gen.got, 1, "la remisión se arma con la copia de auditoría, no con el libro vivo")
}

func TestPackingSlip_Inexistente_RetornaNotFound(t *testing.T) {
	env := newEngineEnv(t, fulfillment.CommitModeAtomic)
	uc := fulfillment.NewPackingSlipUseCase(env.requests, env.audit, &stubSlipGenerator{})

	_, _, err := uc.Download(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
