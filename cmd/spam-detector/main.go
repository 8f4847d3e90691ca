package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/linear-spam-filter/internal/adapters/corpus"
	"github.com/mikey/linear-spam-filter/internal/adapters/stemmer"
	"github.com/mikey/linear-spam-filter/internal/adapters/store"
	"github.com/mikey/linear-spam-filter/internal/config"
	"github.com/mikey/linear-spam-filter/internal/core"
	"github.com/mikey/linear-spam-filter/internal/factory"
	"github.com/mikey/linear-spam-filter/internal/logging"
	"github.com/mikey/linear-spam-filter/internal/utils"
)

var (
	// Pipeline flags
	pipelineName = flag.String("name", "default", "Name of the trained pipeline to load")
	maxBodySize  = flag.Int("max-body-size", 65536, "Maximum message body size to process")

	// Classifier flags
	algorithm = flag.String("algorithm", "logreg", "Classifier algorithm the pipeline was trained with (logreg, perceptron)")

	// Store flags
	storeType  = flag.String("store", "sqlite", "Pipeline store type (memory, sqlite, mysql)")
	sqlitePath = flag.String("sqlite-path", "./spam_pipeline.db", "Path to the SQLite pipeline store")
	mysqlDSN   = flag.String("mysql-dsn", "", "MySQL DSN for the pipeline store")

	// Logging flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
	} else {
		cfg = createConfigFromFlags()
	}

	// Assemble the pipeline
	clfFactory := factory.NewClassifierFactory(cfg, logger)
	classifier, err := clfFactory.CreateClassifier()
	if err != nil {
		logger.Fatal("Failed to create classifier", zap.Error(err))
	}

	pipelineConfig := cfg.GetPipeline()
	pipeline := core.NewPipeline(
		stemmer.NewSnowball(),
		classifier,
		logger,
		pipelineConfig.VocabSize,
		utils.NewTextProcessor(logger),
		pipelineConfig.MaxBodySize,
	)

	// Load the trained vocabulary/model pair; a missing pipeline is not
	// fatal here, prediction will report the missing dependency itself
	ctx := context.Background()
	storeFactory := factory.NewStoreFactory(cfg, logger)
	pipelineStore, err := storeFactory.CreateStore()
	if err != nil {
		logger.Fatal("Failed to create pipeline store", zap.Error(err))
	}
	trained, err := pipelineStore.Load(ctx, pipelineConfig.Name)
	switch {
	case err == nil:
		if err := pipeline.Adopt(trained); err != nil {
			logger.Fatal("Failed to adopt trained pipeline", zap.Error(err))
		}
	case errors.Is(err, store.ErrNotFound):
		logger.Warn("No trained pipeline found", zap.String("name", pipelineConfig.Name))
	default:
		logger.Fatal("Failed to load trained pipeline", zap.Error(err))
	}
	if closer, ok := pipelineStore.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	// Classify each message file given on the command line
	ids := flag.Args()
	results, err := pipeline.PredictSamples(ctx, corpus.NewFileSource(), ids)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrVocabularyNotBuilt):
			fmt.Println("Cannot predict: vocabulary not built. Train a pipeline with spam-train first.")
		case errors.Is(err, core.ErrModelNotTrained):
			fmt.Println("Cannot predict: model not trained. Train a pipeline with spam-train first.")
		default:
			fmt.Printf("Prediction failed: %v\n", err)
		}
		os.Exit(1)
	}

	if len(results) == 0 {
		fmt.Println("Nothing to predict.")
		return
	}

	for _, result := range results {
		switch {
		case result.Err != nil:
			fmt.Printf("%s could not be read: %v\n", result.ID, result.Err)
		case result.IsSpam:
			fmt.Printf("%s is spam.\n", result.ID)
		default:
			fmt.Printf("%s is not spam.\n", result.ID)
		}
	}
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("pipeline.name", *pipelineName)
	v.Set("pipeline.max_body_size", *maxBodySize)

	v.Set("classifier.algorithm", *algorithm)

	v.Set("store.type", *storeType)
	v.Set("store.sqlite_path", *sqlitePath)
	if *mysqlDSN != "" {
		v.Set("store.mysql_dsn", *mysqlDSN)
	}

	return config.NewFromViper(v)
}
