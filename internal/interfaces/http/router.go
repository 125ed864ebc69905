package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/despachos-api/internal/application/auth"
	"github.com/jhoicas/despachos-api/internal/application/fulfillment"
	"github.com/jhoicas/despachos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SessionUC     *fulfillment.SessionUseCase
	RequestQuery  *fulfillment.RequestQueryUseCase
	PackingSlipUC *fulfillment.PackingSlipUseCase
	AuthUC        *auth.AuthUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Registro de usuarios sólo para administradores.
	api.Post("/auth/register",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(entity.RoleAdmin),
		authHandler.Register,
	)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Despachos (protegido)
	despachos := protected.Group("/despachos")
	handler := NewFulfillmentHandler(deps.SessionUC, deps.RequestQuery, deps.PackingSlipUC)
	despachos.Get("/", handler.List)
	despachos.Get("/:id", handler.Get)
	despachos.Post("/:id/session", handler.OpenSession)
	despachos.Delete("/:id/session", handler.AbandonSession)
	despachos.Post("/:id/scan", handler.Scan)
	despachos.Post("/:id/entries", handler.ConfirmQuantity)
	despachos.Delete("/:id/entries/:entryID", handler.DeleteEntry)
	despachos.Get("/:id/progress", handler.Progress)
	despachos.Post("/:id/commit", handler.Commit)
	despachos.Get("/:id/remision", handler.DownloadPackingSlip)
}
