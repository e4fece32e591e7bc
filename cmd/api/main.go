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
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/jhoicas/warehouse-ledger/docs"
	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/application/usecase"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/warehouse-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/warehouse-ledger/internal/interfaces/http"
	"github.com/jhoicas/warehouse-ledger/pkg/config"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("ledger_driver", cfg.Ledger.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Ledger Store según LEDGER_DRIVER
	var txRunner inventory.TxRunner
	switch cfg.Ledger.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migración del esquema")
		}
		txRunner = postgres.NewTxRunner(pool, cfg.DB.StatementTimeout())
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.Ledger.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Ledger.SQLitePath).Msg("apertura de SQLite")
		}
		defer store.Close()
		txRunner = store
	default:
		log.Warn().Msg("ledger en memoria: los datos se pierden al reiniciar")
		txRunner = memory.NewStore()
	}

	// Caché de valorizaciones (opcional)
	var valuationCache inventory.ValuationCache = inventory.NoCache{}
	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		valuationCache = cache.NewValuationCache(client, cfg.Redis.TTL(), log.Component("cache"))
	}

	engine := inventory.NewMovementEngine(txRunner,
		inventory.WithCache(valuationCache),
		inventory.WithLogger(log.Component("engine")),
	)
	reporter := inventory.NewValuationReporter(txRunner, valuationCache, infrapdf.NewValuationReportGenerator(cfg.App.Name))
	itemUC := usecase.NewItemUseCase(txRunner, valuationCache)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Warehouse Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:    itemUC,
		Engine:    engine,
		Reporter:  reporter,
		JWTSecret: cfg.JWT.Secret,
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
