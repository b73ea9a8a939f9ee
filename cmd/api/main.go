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
	appallocation "github.com/tu-usuario/bancoalimentos-api/internal/application/allocation"
	appdonation "github.com/tu-usuario/bancoalimentos-api/internal/application/donation"
	appmovement "github.com/tu-usuario/bancoalimentos-api/internal/application/movement"
	"github.com/tu-usuario/bancoalimentos-api/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/bancoalimentos-api/internal/interfaces/http"
	"github.com/tu-usuario/bancoalimentos-api/pkg/config"
	"github.com/tu-usuario/bancoalimentos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(cfg.App.Env, "info", cfg.App.Name)
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos ligados al pool: solo lecturas fuera de transacción.
	eventRepo := postgres.NewAllocationEventRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	split := appallocation.SplitProportional
	if cfg.Alloc.LegacyEvenSplit {
		split = appallocation.SplitEvenLegacy
	}
	ledger := appallocation.NewMovementLedger(split)
	matcher := appallocation.NewSubstringMatcher()
	guard := appallocation.NewDuplicateGuard(cfg.Alloc.GuardTTL())
	allocator := appallocation.NewAllocator(matcher, ledger, cfg.Alloc.BankActorID, log)

	solicitudUC := appallocation.NewApproveRequestUseCase(txRunner, guard, allocator, eventRepo, log)
	donacionUC := appdonation.NewApproveDonationUseCase(txRunner, guard, allocator, ledger, cfg.Alloc.BankActorID, log)
	movementUC := appmovement.NewQueryUseCase(movementRepo)

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
		Title:    "Banco de Alimentos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SolicitudUC: solicitudUC,
		DonacionUC:  donacionUC,
		MovementUC:  movementUC,
		JWTSecret:   cfg.JWT.Secret,
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
