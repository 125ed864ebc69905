package fulfillment_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/despachos-api/internal/application/fulfillment"
	"github.com/jhoicas/despachos-api/internal/domain"
	"github.com/jhoicas/despachos-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func baseSession() fulfillment.Session {
	req := entity.StockOutRequest{
		ID: "d-1", WarehouseID: "b-1", Status: entity.StockOutStatusProcessing,
		Items: []entity.StockOutItem{{
			ID: "l-1", ProductID: "p-1",
			RequiredQuantity: decimal.NewFromInt(5),
			Status:           entity.LineItemStatusPending,
		}},
	}
	return fulfillment.NewSession(req, nil, "user-1", time.Now())
}

func unit(onHand, reserved int64) entity.InventoryUnit {
	return entity.InventoryUnit{
		ID: "u-1", ProductID: "p-1", WarehouseID: "b-1", Barcode: "BC-1",
		OnHandQuantity:   decimal.NewFromInt(onHand),
		ReservedQuantity: decimal.NewFromInt(reserved),
	}
}

func entry(id string, n int64) entity.LedgerEntry {
	return entity.LedgerEntry{
		ID: id, StockOutRequestID: "d-1", LineItemID: "l-1",
		InventoryUnitID: "u-1", Barcode: "BC-1",
		QuantityDeducted: decimal.NewFromInt(n),
		Provenance:       entity.ProvenanceScanned,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Propose
// ──────────────────────────────────────────────────────────────────────────────

func TestPropose_CantidadValida_PasaSinRecorte(t *testing.T) {
	s := baseSession()

	got, err := s.Propose(unit(10, 0), "l-1", decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(3)))
}

func TestPropose_MayorAlTope_Recorta(t *testing.T) {
	s := baseSession()

	// Faltante 5, disponible 10: el tope es 5.
	got, err := s.Propose(unit(10, 0), "l-1", decimal.NewFromInt(9))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(5)))
}

func TestPropose_TopeLimitadoPorDisponible(t *testing.T) {
	s := baseSession()

	// Disponible 3 (on_hand 4, reservado 1) < faltante 5.
	got, err := s.Propose(unit(4, 1), "l-1", decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(3)),
		"lo reservado para otras órdenes no es descontable")
}

func TestPropose_CeroONegativo_RetornaInvalidQuantity(t *testing.T) {
	s := baseSession()

	_, err := s.Propose(unit(10, 0), "l-1", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = s.Propose(unit(10, 0), "l-1", decimal.NewFromInt(-2))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestPropose_CajaAgotada_RetornaNothingDeductible(t *testing.T) {
	s := baseSession()

	_, err := s.Propose(unit(0, 0), "l-1", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNothingDeductible)
}

func TestPropose_LecturaObsoleta_RetornaConcurrentLimit(t *testing.T) {
	// El libro ya registró 4 de la caja, pero la caja muestra solo 2 disponibles:
	// otra sesión consumió en medio. El tope queda negativo y hay que re-resolver.
	s := baseSession().WithEntry(entry("e-1", 4))

	_, err := s.Propose(unit(2, 0), "l-1", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrConcurrentLimit)
}

// ──────────────────────────────────────────────────────────────────────────────
// Semántica de value object
// ──────────────────────────────────────────────────────────────────────────────

func TestWithEntry_NoMutaLaOriginal(t *testing.T) {
	s := baseSession()
	s2 := s.WithEntry(entry("e-1", 3))

	assert.Empty(t, s.Ledger, "la sesión original no cambia")
	assert.Len(t, s2.Ledger, 1)
	assert.True(t, s.RemainingNeeded("l-1").Equal(decimal.NewFromInt(5)))
	assert.True(t, s2.RemainingNeeded("l-1").Equal(decimal.NewFromInt(2)))
}

func TestWithoutEntry_RestauraElFaltante(t *testing.T) {
	s := baseSession().WithEntry(entry("e-1", 3)).WithEntry(entry("e-2", 2))
	require.True(t, s.ReadyForCommit())

	s2, removed, err := s.WithoutEntry("e-1")
	require.NoError(t, err)

	assert.Equal(t, "e-1", removed.ID)
	assert.True(t, s2.RemainingNeeded("l-1").Equal(decimal.NewFromInt(3)),
		"quitar el registro de 3 devuelve exactamente ese faltante")
	assert.False(t, s2.ReadyForCommit())
	assert.Len(t, s.Ledger, 2, "la sesión original conserva su libro")
}

func TestWithoutEntry_Inexistente_RetornaNotFound(t *testing.T) {
	s := baseSession()

	_, _, err := s.WithoutEntry("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemForProduct_DistingueMismatchDeCompleto(t *testing.T) {
	s := baseSession()

	// Producto que no figura en el despacho.
	_, _, matched := s.ItemForProduct("p-otro")
	assert.False(t, matched)

	// Producto que figura pero ya sin faltante.
	full := s.WithEntry(entry("e-1", 5))
	_, found, matched := full.ItemForProduct("p-1")
	assert.True(t, matched)
	assert.False(t, found)
}
