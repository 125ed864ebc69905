package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/despachos-api/internal/application/dto"
	"github.com/jhoicas/despachos-api/internal/application/fulfillment"
	"github.com/jhoicas/despachos-api/internal/domain"
)

// FulfillmentHandler maneja las peticiones HTTP del alistamiento de despachos
// (protegido).
type FulfillmentHandler struct {
	session *fulfillment.SessionUseCase
	queries *fulfillment.RequestQueryUseCase
	slips   *fulfillment.PackingSlipUseCase
}

// NewFulfillmentHandler construye el handler.
func NewFulfillmentHandler(session *fulfillment.SessionUseCase, queries *fulfillment.RequestQueryUseCase, slips *fulfillment.PackingSlipUseCase) *FulfillmentHandler {
	return &FulfillmentHandler{session: session, queries: queries, slips: slips}
}

// List godoc
// @Summary      Listar despachos por estado
// @Tags         despachos
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending|processing|completed (default pending)"
// @Param        limit   query  int     false  "máximo de resultados (default 20)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {array}   dto.StockOutRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/despachos [get]
func (h *FulfillmentHandler) List(c *fiber.Ctx) error {
	status := c.Query("status", "pending")
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.queries.List(status, page.Limit, page.Offset)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "despachos": list})
}

// Get godoc
// @Summary      Detalle de un despacho con faltante por línea
// @Tags         despachos
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del despacho"
// @Success      200  {object}  dto.StockOutRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/despachos/{id} [get]
func (h *FulfillmentHandler) Get(c *fiber.Ctx) error {
	resp, err := h.queries.Get(c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(resp)
}

// OpenSession godoc
// @Summary      Abrir (o reanudar) la sesión de alistamiento de un despacho
// @Description  Carga el despacho con su libro persistido; si la orden está
//
//	reservada, inyecta las cajas pre-asignadas como registros con
//	procedencia reserved antes de cualquier escaneo.
//
// @Tags         despachos
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del despacho"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/despachos/{id}/session [post]
func (h *FulfillmentHandler) OpenSession(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	resp, err := h.session.Open(c.Context(), c.Params("id"), userID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(resp)
}

// AbandonSession godoc
// @Summary      Abandonar la sesión de alistamiento
// @Description  Descarta el estado en memoria; los registros ya persistidos
//
//	sobreviven y se recuperan al reabrir el despacho.
//
// @Tags         despachos
// @Security     Bearer
// @Param        id  path  string  true  "ID del despacho"
// @Success      204
// @Router       /api/despachos/{id}/session [delete]
func (h *FulfillmentHandler) AbandonSession(c *fiber.Ctx) error {
	h.session.Abandon(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// Scan godoc
// @Summary      Resolver un código de barras contra el despacho
// @Tags         despachos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID del despacho"
// @Param        body  body  dto.ScanRequest  true  "barcode"
// @Success      200  {object}  dto.ScanOutcome
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/despachos/{id}/scan [post]
func (h *FulfillmentHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.session.Scan(c.Context(), c.Params("id"), in.Barcode)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(out)
}

// ConfirmQuantity godoc
// @Summary      Confirmar cantidad y anexar el descuento al libro
// @Description  La cantidad se recorta al tope descontable vigente; si hubo
//
//	recorte la respuesta lo indica con clamped=true.
//
// @Tags         despachos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del despacho"
// @Param        body  body  dto.ConfirmQuantityRequest  true  "inventory_unit_id, line_item_id, quantity"
// @Success      201  {object}  dto.LedgerEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/despachos/{id}/entries [post]
func (h *FulfillmentHandler) ConfirmQuantity(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ConfirmQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.InventoryUnitID == "" || in.LineItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "inventory_unit_id y line_item_id son requeridos"})
	}
	entry, err := h.session.ConfirmQuantity(c.Context(), c.Params("id"), in, userID)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// DeleteEntry godoc
// @Summary      Deshacer un descuento del libro
// @Tags         despachos
// @Security     Bearer
// @Param        id       path  string  true  "ID del despacho"
// @Param        entryID  path  string  true  "ID del registro"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/despachos/{id}/entries/{entryID} [delete]
func (h *FulfillmentHandler) DeleteEntry(c *fiber.Ctx) error {
	if err := h.session.DeleteEntry(c.Context(), c.Params("id"), c.Params("entryID")); err != nil {
		return mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Progress godoc
// @Summary      Avance global y por línea de la sesión abierta
// @Tags         despachos
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del despacho"
// @Success      200  {object}  dto.ProgressResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/despachos/{id}/progress [get]
func (h *FulfillmentHandler) Progress(c *fiber.Ctx) error {
	resp, err := h.session.Progress(c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(resp)
}

// Commit godoc
// @Summary      Confirmar el despacho
// @Description  Aplica los descuentos acumulados al inventario, marca el
//
//	despacho completado, actualiza la orden vinculada y deja la
//	auditoría. Las fallas parciales en modo best-effort se
//	devuelven en warnings dentro de la respuesta 200.
//
// @Tags         despachos
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del despacho"
// @Success      200  {object}  dto.CommitResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/despachos/{id}/commit [post]
func (h *FulfillmentHandler) Commit(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	resp, err := h.session.Commit(c.Context(), c.Params("id"), userID)
	if err != nil {
		var partial *fulfillment.PartialCommitError
		if errors.As(err, &partial) && resp != nil {
			// Confirmado con fallas parciales: 200 con el detalle en warnings.
			return c.JSON(resp)
		}
		return mapError(c, err)
	}
	return c.JSON(resp)
}

// DownloadPackingSlip godoc
// @Summary      Descargar la remisión (PDF) de un despacho confirmado
// @Tags         despachos
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del despacho"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/despachos/{id}/remision [get]
func (h *FulfillmentHandler) DownloadPackingSlip(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.slips.Download(c.Context(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// mapError traduce los errores del motor a códigos HTTP.
func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado en este despacho"})
	case errors.Is(err, domain.ErrProductMismatch):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PRODUCT_MISMATCH", Message: err.Error()})
	case errors.Is(err, domain.ErrNothingDeductible):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOTHING_DEDUCTIBLE", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrentLimit):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENT_LIMIT", Message: err.Error()})
	case errors.Is(err, domain.ErrIncompleteRequest):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INCOMPLETE_REQUEST", Message: err.Error()})
	case errors.Is(err, domain.ErrSessionNotOpen):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SESSION_NOT_OPEN", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
