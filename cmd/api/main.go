package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/despachos-api/internal/application/auth"
	appfulfillment "github.com/jhoicas/despachos-api/internal/application/fulfillment"
	"github.com/jhoicas/despachos-api/internal/infrastructure/events"
	infrapdf "github.com/jhoicas/despachos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/despachos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/despachos-api/internal/interfaces/http"
	"github.com/jhoicas/despachos-api/pkg/config"
	"github.com/jhoicas/despachos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("commit_mode", cfg.Fulfillment.CommitMode).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	requestRepo := postgres.NewStockOutRequestRepository(pool)
	unitRepo := postgres.NewInventoryUnitRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Publicador de eventos — solo si AMQP_URL está configurado.
	// Sin broker el motor funciona igual, simplemente no notifica.
	var publisher appfulfillment.EventPublisher
	if cfg.AMQP.URL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer rabbit.Close()
		publisher = rabbit
	}

	sessionUC := appfulfillment.NewSessionUseCase(
		requestRepo, unitRepo, ledgerRepo, reservationRepo, orderRepo, auditRepo,
		txRunner, publisher, cfg.Fulfillment.CommitMode, log,
	)
	requestQueryUC := appfulfillment.NewRequestQueryUseCase(requestRepo, ledgerRepo)

	slipGenerator := infrapdf.NewMarotoPackingSlipGenerator()
	packingSlipUC := appfulfillment.NewPackingSlipUseCase(requestRepo, auditRepo, slipGenerator)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Despachos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SessionUC:     sessionUC,
		RequestQuery:  requestQueryUC,
		PackingSlipUC: packingSlipUC,
		AuthUC:        authUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
