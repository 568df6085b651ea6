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
	"github.com/jhoicas/farmacia-pos/internal/application/pos"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/catalogfile"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/farmacia-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/farmacia-pos/internal/interfaces/http"
	"github.com/jhoicas/farmacia-pos/pkg/config"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.POS.Store).
		Str("tax_rate", cfg.POS.TaxRate.String()).
		Msg("iniciando aplicación")

	loc, err := cfg.POS.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria del día contable")
	}

	ctx := context.Background()

	var (
		txRunner pos.TxRunner
		catalog  pos.Catalog
	)
	switch cfg.POS.Store {
	case config.StoreMemory:
		memCatalog := memory.NewCatalog()
		if cfg.POS.CatalogFile != "" {
			products, err := catalogfile.LoadFile(cfg.POS.CatalogFile)
			if err != nil {
				log.Fatal().Err(err).Str("file", cfg.POS.CatalogFile).Msg("cargar catálogo")
			}
			for _, p := range products {
				memCatalog.Put(p.Info())
			}
			log.Info().Int("products", len(products)).Msg("catálogo en memoria cargado")
		} else {
			log.Warn().Msg("POS_STORE=memory sin POS_CATALOG_FILE: catálogo vacío")
		}
		txRunner = memory.NewStore()
		catalog = memCatalog
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("esquema del punto de venta")
		}
		txRunner = postgres.NewTxRunner(pool)
		catalog = postgres.NewProductCatalog(pool)
	}

	posController := pos.NewController(txRunner, catalog, nil, pos.Config{
		TaxRate:  cfg.POS.TaxRate,
		Location: loc,
	}, log.Zerolog())

	// PDF: comprobante del cierre de caja
	closingPDF := infrapdf.NewMarotoClosingReport(cfg.POS.StoreName, loc)
	reportsUC := pos.NewClosingReportUseCase(posController, closingPDF)

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
		Title:    "Farmacia POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "business_date": posController.Today()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		POS:       posController,
		Reports:   reportsUC,
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
