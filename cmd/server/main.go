package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/pokedex/internal/api"
	"github.com/dom/pokedex/internal/config"
	"github.com/dom/pokedex/internal/logging"
	"github.com/dom/pokedex/internal/repository"
	"github.com/dom/pokedex/internal/repository/firebase"
	"github.com/dom/pokedex/internal/repository/pokeapi"
	"github.com/dom/pokedex/internal/service"
	"github.com/dom/pokedex/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Initialize upstream clients
	repos := &repository.Repositories{
		Catalog: pokeapi.NewClient(cfg.CatalogBaseURL, cfg.HTTPTimeout),
		Store:   firebase.NewClient(cfg.StoreBaseURL, cfg.HTTPTimeout),
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub(logger.Named("hub"))
	go hub.Run()

	// Initialize services
	services := service.NewServices(repos, cfg, hub, logger)

	evictCtx, stopEviction := context.WithCancel(context.Background())
	defer stopEviction()
	go services.Cache.RunEviction(evictCtx)

	// Initialize router
	router := api.NewRouter(services, hub, logger)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("catalog", cfg.CatalogBaseURL),
			zap.String("store", cfg.StoreBaseURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Let in-flight store writes finish before the hub goes away
	services.Mutations.Wait()
	hub.Stop()

	logger.Info("server stopped")
}
