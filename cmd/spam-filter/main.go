package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/linear-spam-filter/internal/adapters/store"
	"github.com/mikey/linear-spam-filter/internal/config"
	"github.com/mikey/linear-spam-filter/internal/core"
	"github.com/mikey/linear-spam-filter/internal/di"
	"github.com/mikey/linear-spam-filter/internal/ports"
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
	cfg *config.Config,
	pipeline *core.Pipeline,
	pipelineStore core.PipelineStore,
	emailFilter ports.EmailFilter,
) error {
	defer logger.Sync()

	// Load the trained pipeline; without it the filter cannot classify
	pipelineName := cfg.GetPipeline().Name
	trained, err := pipelineStore.Load(context.Background(), pipelineName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Fatal("No trained pipeline found, run spam-train first",
				zap.String("name", pipelineName))
		}
		logger.Fatal("Failed to load trained pipeline", zap.Error(err))
		return err
	}
	if err := pipeline.Adopt(trained); err != nil {
		logger.Fatal("Failed to adopt trained pipeline", zap.Error(err))
		return err
	}
	logger.Info("Trained pipeline loaded",
		zap.String("name", pipelineName),
		zap.Int("vocab_size", len(trained.Vocabulary)),
		zap.String("algorithm", trained.Model.Algorithm))

	// Start the filter
	if err := emailFilter.Start(); err != nil {
		logger.Fatal("Failed to start filter", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the filter
	if err := emailFilter.Stop(); err != nil {
		logger.Error("Failed to stop filter", zap.Error(err))
	}

	// Close the store if needed
	if closer, ok := pipelineStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close pipeline store", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
