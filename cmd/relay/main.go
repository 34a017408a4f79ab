package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/gitshare/cfg"
	"github.com/thep200/gitshare/internal/relay"
	applog "github.com/thep200/gitshare/pkg/log"
)

func main() {
	// Setup dependencies
	ctx := context.Background()
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, _ := applog.NewCslLogger()

	if config.Relay.ClientId == "" || config.Relay.ClientSecret == "" {
		logger.Warn(ctx, "Relay client id/secret not configured, token exchange will fail")
	}

	// Create and run the server
	server, err := relay.NewServer(logger, config)
	if err != nil {
		log.Fatalf("Failed to create relay server: %v", err)
	}

	// Run server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Error(ctx, "Relay server failed to start: %v", err)
			os.Exit(1)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for termination signal
	<-stop

	// Create a context with timeout for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Gracefully shutdown the server
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during relay shutdown: %v", err)
	}

	logger.Info(ctx, "Relay shut down gracefully")
}
