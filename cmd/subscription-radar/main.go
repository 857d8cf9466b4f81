package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/core"
	"github.com/karnsiree/subscription-radar/internal/di"
	"github.com/karnsiree/subscription-radar/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	emailIngest ports.EmailIngest,
	gateClient core.GateClient,
	verdictCache core.VerdictCache,
) error {
	defer logger.Sync()

	// Start the ingest surface
	if err := emailIngest.Start(); err != nil {
		logger.Fatal("Failed to start ingest", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the ingest surface
	if err := emailIngest.Stop(); err != nil {
		logger.Error("Failed to stop ingest", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := gateClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close gate client", zap.Error(err))
		}
	}

	// Stop the cache if needed
	if stopper, ok := verdictCache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
