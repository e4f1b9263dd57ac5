package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-evaluator/internal/app"
	"alfredoptarigan/resume-evaluator/internal/config"
	"alfredoptarigan/resume-evaluator/internal/handlers"
	"alfredoptarigan/resume-evaluator/internal/logger"
	"alfredoptarigan/resume-evaluator/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zl, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("creating a logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	zl.Info("config loaded", zap.Bool("dotenv", cfg.DotEnvLoaded), zap.String("env", cfg.Server.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline, err := app.NewPipeline(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize services", zap.Error(err))
	}
	defer pipeline.Close() //nolint:errcheck

	// Initialize worker
	worker := services.NewWorker(
		pipeline.Repo,
		pipeline.Evaluator,
		services.WorkerOptions{
			Concurrency:  cfg.Worker.Concurrency,
			QueueSize:    cfg.Worker.QueueSize,
			PollInterval: cfg.Worker.PollInterval,
		},
		zl,
	)
	worker.Start(ctx)
	zl.Info("worker started", zap.Int("concurrency", cfg.Worker.Concurrency))

	intake := services.NewIntakeService(pipeline.Repo, worker, zl)

	// Initialize Handlers
	uploadHandler := handlers.NewUploadHandler(pipeline.Storage, intake, cfg.Storage.MaxFileSize, zl)
	evaluateHandler := handlers.NewEvaluationHandler(intake, zl)
	resultHandler := handlers.NewResultHandler(pipeline.Repo, zl)

	// Create Fiber app
	server := fiber.New(fiber.Config{
		AppName:      "Resume Evaluator API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(2*cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	server.Use(recover.New())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.RegisterRoutes(server.Group("/api/v1"), uploadHandler, evaluateHandler, resultHandler)

	// Root route
	server.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Evaluator API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"POST /api/v1/evaluate",
				"GET /api/v1/candidates",
				"GET /api/v1/candidates/:id",
				"POST /api/v1/candidates/:id/retry",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-quit
		zl.Info("shutting down server")
		if err := app.Shutdown(worker, server.Shutdown, cancel); err != nil {
			zl.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zl.Info("server starting", zap.String("addr", addr))

	if err := server.Listen(addr); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}

	// Listen returns once Shutdown stops the server; wait for the rest of it.
	<-done
	zl.Info("server stopped")
}
