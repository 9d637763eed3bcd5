package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schoolfees/internal/app"
	"schoolfees/internal/config"
	"schoolfees/internal/handler"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	nrApp := app.NewRelicApplication(cfg.NewRelic)

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	if err := app.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	services, err := app.NewServices(db, redisClient, nrApp, cfg)
	if err != nil {
		log.Fatalf("failed to wire services: %v", err)
	}
	defer services.Telemetry.Close()

	router := app.NewRouter(app.RouterDeps{
		AuthHandler:    handler.NewAuthHandler(services.Auth),
		UserHandler:    handler.NewUserHandler(services.Auth),
		FeeHandler:     handler.NewFeeHandler(services.Fees),
		PaymentHandler: handler.NewPaymentHandler(services.Payments, services.Confirmation, services.Receipts),
		WebhookHandler: handler.NewWebhookHandler(services.Webhooks),
		Tokens:         services.Tokens,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Background reconciliation.
	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	services.Reconciler.Start(jobCtx)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stopJobs()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Println("Server exited")
}
