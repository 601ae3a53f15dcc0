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

	"github.com/jhoicas/cafe-stock-api/internal/application/alerts"
	"github.com/jhoicas/cafe-stock-api/internal/application/auth"
	"github.com/jhoicas/cafe-stock-api/internal/application/expiration"
	"github.com/jhoicas/cafe-stock-api/internal/application/inventory"
	infrapdf "github.com/jhoicas/cafe-stock-api/internal/infrastructure/pdf"
	"github.com/jhoicas/cafe-stock-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/cafe-stock-api/internal/interfaces/http"
	"github.com/jhoicas/cafe-stock-api/pkg/config"
	"github.com/jhoicas/cafe-stock-api/pkg/logger"
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	ingredientRepo := postgres.NewIngredientRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	spoilageRepo := postgres.NewSpoilageRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	stockInUC := inventory.NewStockInUseCase(txRunner, log)
	deductUC := inventory.NewDeductStockUseCase(txRunner, log)
	spoilageUC := inventory.NewSpoilageUseCase(txRunner, log)
	reportUC := inventory.NewSpoilageReportUseCase(
		spoilageRepo, infrapdf.NewSpoilageReportGenerator(), log,
	)
	expirationUC := expiration.NewUseCase(txRunner, log)
	alertsUC := alerts.NewUseCase(userRepo, ingredientRepo, batchRepo, notificationRepo, log)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Job de caducados: corrida de arranque, corrida periódica y corrida
	// diaria a hora fija. Las corridas solapadas se descartan.
	scheduler := expiration.NewScheduler(expirationUC, expiration.SchedulerConfig{
		StartupDelay: cfg.Scheduler.StartupDelay,
		Interval:     cfg.Scheduler.Interval,
		DailyAt:      cfg.Scheduler.DailyAt,
	}, log)
	scheduler.Start(ctx)
	defer scheduler.Stop()

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
		Title:    "Cafe Stock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		StockInUC:    stockInUC,
		DeductUC:     deductUC,
		SpoilageUC:   spoilageUC,
		ReportUC:     reportUC,
		ExpirationUC: expirationUC,
		AlertsUC:     alertsUC,
		BatchRepo:    batchRepo,
		NotifRepo:    notificationRepo,
		JWTSecret:    cfg.JWT.Secret,
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
