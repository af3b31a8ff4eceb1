package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"baureport/internal/config"
	"baureport/internal/database"
	"baureport/internal/database/migration"
	handlers "baureport/internal/http/handler"
	"baureport/internal/http/middleware"
	"baureport/internal/otel"
	"baureport/internal/refdata"
	"baureport/internal/render/pdf"
	"baureport/internal/repository/postgres"
	"baureport/internal/service"
	"baureport/internal/storage"
	"baureport/internal/weather"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("invalid timezone %q: %v", cfg.Timezone, err)
	}

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// The report tables and their unique number indexes must exist before
	// the first allocation.
	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Reference data is read once at startup; a missing file is fatal so a
	// broken deployment surfaces immediately.
	clients, err := refdata.LoadClients(cfg.RefData.ClientsCSV)
	if err != nil {
		log.Fatalf("failed to load client reference data: %v", err)
	}
	employees, err := refdata.LoadEmployees(cfg.RefData.EmployeesCSV)
	if err != nil {
		log.Fatalf("failed to load employee reference data: %v", err)
	}

	weatherSvc := weather.NewService(cfg.Weather)
	generator := pdf.NewGenerator(cfg.ScratchDir, weatherSvc, cfg.AppHost)

	reportRepo := postgres.NewReportPostgres(db)
	reportSvc := service.NewReportService(objStore, reportRepo, generator, cfg.ScratchDir)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(loc))

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, reportSvc, clients, employees, middleware.AdminKey(cfg.AdminKey))

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
