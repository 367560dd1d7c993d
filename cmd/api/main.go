package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/pageza/grocerylist/backend/config"
	"github.com/pageza/grocerylist/backend/internal/logging"
	"github.com/pageza/grocerylist/backend/internal/server"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Setup("info", "text").WithError(err).Fatal("Invalid configuration")
	}
	log := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize server")
	}

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start()
	}()

	// Block until we receive a signal or error
	select {
	case err := <-errChan:
		if err != nil {
			log.WithError(err).Error("Server error")
		}
	case <-ctx.Done():
		log.Info("Received shutdown signal")
	}

	log.Info("Shutting down server...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.WithError(err).Fatal("Server shutdown error")
	}
	log.Info("Server stopped")
}
