package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/gitshare/api"
	"github.com/thep200/gitshare/cfg"
	"github.com/thep200/gitshare/internal/ui"
	applog "github.com/thep200/gitshare/pkg/log"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port for the view server to listen on")
	flag.Parse()

	// Setup dependencies
	ctx := context.Background()
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, _ := applog.NewCslLogger()

	// Initialize the core
	gitshare := api.NewGitShareAPI()
	if err := gitshare.Initialize(ctx); err != nil {
		logger.Error(ctx, "Failed to initialize gitshare: %v", err)
		os.Exit(1)
	}
	defer gitshare.Shutdown()

	// Create and run the server
	server, err := ui.NewServer(logger, config, gitshare, *port)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Run server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Error(ctx, "Server failed to start: %v", err)
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
		logger.Error(ctx, "Error during server shutdown: %v", err)
	}

	logger.Info(ctx, "Server shut down gracefully")
}
