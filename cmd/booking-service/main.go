package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/aboragab2030/barada-booking-server/internal/booking"
	"github.com/aboragab2030/barada-booking-server/pkg/config"
	"github.com/aboragab2030/barada-booking-server/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize Booking Service
	service := booking.New(cfg, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = strconv.Itoa(cfg.Server.Port)
	}

	// Start service in a goroutine
	go func() {
		logger.Infof("Starting Booking Service on port %s", port)
		if err := service.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start Booking Service: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down Booking Service...")
	if err := service.Stop(); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
	logger.Info("Booking Service stopped")
}
