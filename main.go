package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"gomical/app"
	"gomical/infra/postgres"
	"gomical/infra/rabbitmq"
	"gomical/pkg/archive"
	"gomical/pkg/config"
	"gomical/pkg/events"
	"gomical/pkg/httperror"
	"gomical/pkg/snapshot"
)

type Request any
type Response any

type HandlerInterface[R Request, Res Response] interface {
	Handle(ctx context.Context, req *R) (*Res, error)
}

func handle[R Request, Res Response](handler HandlerInterface[R, Res]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req R

		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return writeError(c, httperror.BadRequest(
				"request.invalid_body",
				"Invalid body",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ParamsParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_path_params",
				"Invalid path params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.QueryParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_query_params",
				"Invalid query params",
				fiber.Map{"error": err.Error()},
			))
		}

		res, err := handler.Handle(c.UserContext(), &req)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(res)
	}
}

func main() {
	logger := zap.Must(zap.NewProduction())
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	appConfig := config.Read()
	zap.L().Info("app starting...",
		zap.String("service", appConfig.ServiceName),
		zap.String("port", appConfig.Port),
	)

	fiberApp := fiber.New(fiber.Config{
		IdleTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	pgRepository := postgres.NewPgRepository(
		appConfig.PostgresHost,
		appConfig.PostgresDatabase,
		appConfig.PostgresUsername,
		appConfig.PostgresPassword,
		appConfig.PostgresPort,
	)
	defer pgRepository.Close()

	if err := initCatalog(pgRepository); err != nil {
		zap.L().Fatal("Failed to initialize catalog store", zap.Error(err))
	}

	var eventPublisher events.Publisher
	if appConfig.RabbitMQURL != "" {
		publisher, err := rabbitmq.NewPublisher(appConfig.RabbitMQURL, appConfig.ServiceName)
		if err != nil {
			zap.L().Fatal("Failed to connect event publisher", zap.Error(err))
		}
		defer publisher.Close()
		eventPublisher = publisher
	} else {
		zap.L().Warn("RABBITMQ_URL not set, catalog events disabled")
	}

	var archiver app.Archiver
	if appConfig.AWSBucket != "" {
		archiver = archive.NewS3Archive(
			appConfig.AWSEndpoint,
			appConfig.AWSBucket,
			appConfig.AWSDefaultRegion,
			appConfig.AWSAccessKey,
			appConfig.AWSSecretKey,
		)
	} else {
		zap.L().Warn("AWS_BUCKET not set, snapshot archiving disabled")
	}

	getCategoriesHandler := app.NewGetCategoriesHandler(pgRepository)
	getTodayHandler := app.NewGetTodayHandler(pgRepository)
	getCategoryHandler := app.NewGetCategoryHandler(pgRepository)
	searchHandler := app.NewSearchHandler(pgRepository)
	listAdminCategoriesHandler := app.NewListAdminCategoriesHandler(pgRepository)
	createCategoryHandler := app.NewCreateCategoryHandler(pgRepository, eventPublisher)
	updateCategoryHandler := app.NewUpdateCategoryHandler(pgRepository, eventPublisher)
	deleteCategoryHandler := app.NewDeleteCategoryHandler(pgRepository, eventPublisher)
	exportHandler := app.NewExportHandler(pgRepository, archiver)
	importHandler := app.NewImportHandler(pgRepository, eventPublisher)
	resetHandler := app.NewResetHandler(pgRepository, eventPublisher)

	api := fiberApp.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"message": "gomical API is running",
		})
	})
	api.Get("/categories", handle[app.GetCategoriesRequest, app.GetCategoriesResponse](getCategoriesHandler))
	api.Get("/categories/today", handle[app.GetTodayRequest, app.GetTodayResponse](getTodayHandler))
	api.Get("/categories/:id", handle[app.GetCategoryRequest, app.GetCategoryResponse](getCategoryHandler))
	api.Get("/search", handle[app.SearchRequest, app.SearchResponse](searchHandler))

	admin := api.Group("/admin")
	admin.Get("/categories", handle[app.ListAdminCategoriesRequest, app.ListAdminCategoriesResponse](listAdminCategoriesHandler))
	admin.Post("/categories", handle[app.CreateCategoryRequest, app.CreateCategoryResponse](createCategoryHandler))
	admin.Put("/categories/:id", handle[app.UpdateCategoryRequest, app.UpdateCategoryResponse](updateCategoryHandler))
	admin.Delete("/categories/:id", handle[app.DeleteCategoryRequest, app.DeleteCategoryResponse](deleteCategoryHandler))
	admin.Get("/export", handle[app.ExportRequest, app.ExportResponse](exportHandler))
	admin.Post("/import", handle[app.ImportRequest, app.ImportResponse](importHandler))
	admin.Post("/reset", handle[app.ResetRequest, app.ResetResponse](resetHandler))

	go func() {
		if err := fiberApp.Listen(fmt.Sprintf("0.0.0.0:%s", appConfig.Port)); err != nil {
			zap.L().Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	zap.L().Info("Server started on port", zap.String("port", appConfig.Port))

	gracefulShutdown(fiberApp)
}

// initCatalog creates the schema and seeds the default sample data when the
// store is still empty.
func initCatalog(repository *postgres.PgRepository) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repository.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	count, err := repository.CountCategories(ctx)
	if err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	seeds, err := snapshot.DefaultDocument().Seeds()
	if err != nil {
		return fmt.Errorf("default seeds: %w", err)
	}

	stats, err := repository.ImportSnapshot(ctx, seeds, false)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	zap.L().Info("Seeded empty catalog with default data",
		zap.Int("categories", stats.ImportedCategories),
		zap.Int("garbageTypes", stats.ImportedGarbageTypes),
	)
	return nil
}

func gracefulShutdown(fiberApp *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")

	if err := fiberApp.ShutdownWithTimeout(5 * time.Second); err != nil {
		zap.L().Error("Error during server shutdown", zap.Error(err))
	}

	zap.L().Info("Server gracefully stopped")
}

func writeError(c *fiber.Ctx, err error) error {
	var httpErr *httperror.Error
	if errors.As(err, &httpErr) {
		payload := fiber.Map{
			"code":    httpErr.Code,
			"message": httpErr.Message,
		}

		if httpErr.Details != nil {
			payload["details"] = httpErr.Details
		}

		if httpErr.Status >= fiber.StatusInternalServerError {
			zap.L().Error("Handler returned server error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		} else {
			zap.L().Warn("Handler returned client error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		}

		return c.Status(httpErr.Status).JSON(payload)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		zap.L().Warn("Fiber validation error", zap.String("message", fiberErr.Message), zap.Error(err))
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"code":    "request.invalid",
			"message": fiberErr.Message,
		})
	}

	zap.L().Error("Unhandled error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    "internal_server_error",
		"message": "Internal server error.",
	})
}
