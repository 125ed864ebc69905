// Package pdf implementa la generación de la remisión de despacho: la
// representación imprimible de lo que efectivamente salió de la bodega.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Remisión de despacho  │  N° despacho + Fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: bodega, orden vinculada, confirmado por             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Barcode | Producto | Origen | Procesado por  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL de unidades descontadas                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appfulfillment "github.com/jhoicas/despachos-api/internal/application/fulfillment"
	"github.com/jhoicas/despachos-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// Ensure MarotoPackingSlipGenerator implements fulfillment.PackingSlipGenerator.
var _ appfulfillment.PackingSlipGenerator = (*MarotoPackingSlipGenerator)(nil)

// MarotoPackingSlipGenerator implementa la remisión usando Maroto v2.
type MarotoPackingSlipGenerator struct{}

// NewMarotoPackingSlipGenerator construye el generador.
func NewMarotoPackingSlipGenerator() *MarotoPackingSlipGenerator { return &MarotoPackingSlipGenerator{} }

// GeneratePackingSlipPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPackingSlipGenerator) GeneratePackingSlipPDF(
	_ context.Context,
	req *entity.StockOutRequest,
	entries []entity.LedgerEntry,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Remisión de despacho", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(req))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(infoRow(req))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(entries) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(entries))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y número de despacho + fecha (der).
func headerRow(req *entity.StockOutRequest) core.Row {
	fecha := ""
	if req.CompletedAt != nil {
		fecha = req.CompletedAt.Format("02/01/2006 15:04")
	}
	return row.New(16).Add(
		col.New(7).Add(
			text.New("REMISIÓN DE DESPACHO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("Despacho N° "+req.ID, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New("Confirmado: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// infoRow: bodega, orden vinculada y quién confirmó.
func infoRow(req *entity.StockOutRequest) core.Row {
	orden := req.OrderID
	if orden == "" {
		orden = "—"
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL DESPACHO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Bodega: %s   |   Orden: %s   |   Confirmado por: %s",
				req.WarehouseID, orden, req.CompletedBy,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de registros.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Código de barras", 3, align.Left),
		h("Caja", 3, align.Left),
		h("Origen", 2, align.Center),
		h("Procesado por", 2, align.Left),
	)
}

// tableDetailRows: una fila por registro del libro.
func tableDetailRows(entries []entity.LedgerEntry) []core.Row {
	origen := map[string]string{
		entity.ProvenanceScanned:  "Escaneado",
		entity.ProvenanceReserved: "Reservado",
	}
	result := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				e.QuantityDeducted.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				e.Barcode,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				e.InventoryUnitID,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				origen[e.Provenance],
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				e.ProcessedBy,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
		))
	}
	return result
}

// totalRow: total de unidades descontadas, alineado a la derecha.
func totalRow(entries []entity.LedgerEntry) core.Row {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.QuantityDeducted)
	}
	return row.New(10).Add(
		col.New(7),
		col.New(3).Add(text.New("TOTAL UNIDADES:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})),
		col.New(2).Add(text.New(total.String(), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})),
	)
}
