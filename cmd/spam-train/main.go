package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/linear-spam-filter/internal/adapters/corpus"
	"github.com/mikey/linear-spam-filter/internal/adapters/stemmer"
	"github.com/mikey/linear-spam-filter/internal/config"
	"github.com/mikey/linear-spam-filter/internal/core"
	"github.com/mikey/linear-spam-filter/internal/factory"
	"github.com/mikey/linear-spam-filter/internal/logging"
	"github.com/mikey/linear-spam-filter/internal/utils"
)

var (
	// Corpus flags
	corpusDir = flag.String("corpus-dir", "./corpus", "Corpus root directory containing spam/ and ham/ subdirectories")
	spamDir   = flag.String("spam-dir", "spam", "Subdirectory with spam messages")
	hamDir    = flag.String("ham-dir", "ham", "Subdirectory with ham messages")

	// Pipeline flags
	pipelineName = flag.String("name", "default", "Name to store the trained pipeline under")
	vocabSize    = flag.Int("vocab-size", 4000, "Maximum vocabulary size")
	maxBodySize  = flag.Int("max-body-size", 65536, "Maximum message body size to process")

	// Classifier flags
	algorithm    = flag.String("algorithm", "logreg", "Classifier algorithm (logreg, perceptron)")
	epochs       = flag.Int("epochs", 200, "Training epochs")
	learningRate = flag.Float64("learning-rate", 0.1, "Learning rate for gradient descent")
	l2           = flag.Float64("l2", 0.0001, "L2 regularization strength")

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
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	// Assemble the pipeline
	textProcessor := utils.NewTextProcessor(logger)
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
		textProcessor,
		pipelineConfig.MaxBodySize,
	)

	corpusConfig := cfg.GetCorpus()
	source := corpus.NewDirSource(corpusConfig.Dir, corpusConfig.SpamDir, corpusConfig.HamDir, logger)

	// Train
	fmt.Printf("=== Training ===\n")
	fmt.Printf("Corpus: %s\n", corpusConfig.Dir)
	fmt.Printf("Vocabulary size: %d\n", pipelineConfig.VocabSize)
	fmt.Printf("Algorithm: %s\n", cfg.GetClassifier().Algorithm)
	fmt.Printf("\n")

	startTime := time.Now()
	trained, err := pipeline.Train(context.Background(), source)
	if err != nil {
		logger.Fatal("Training failed", zap.Error(err))
	}
	duration := time.Since(startTime)

	// Persist the vocabulary/model pair
	storeFactory := factory.NewStoreFactory(cfg, logger)
	pipelineStore, err := storeFactory.CreateStore()
	if err != nil {
		logger.Fatal("Failed to create pipeline store", zap.Error(err))
	}
	if err := pipelineStore.Save(context.Background(), pipelineConfig.Name, trained); err != nil {
		logger.Fatal("Failed to store trained pipeline", zap.Error(err))
	}
	if closer, ok := pipelineStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close pipeline store", zap.Error(err))
		}
	}

	fmt.Printf("=== Results ===\n")
	fmt.Printf("Pipeline name: %s\n", pipelineConfig.Name)
	fmt.Printf("Vocabulary size: %d\n", len(trained.Vocabulary))
	fmt.Printf("Model: %s\n", trained.Model.Algorithm)
	fmt.Printf("Training time: %v\n", duration)
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("corpus.dir", *corpusDir)
	v.Set("corpus.spam_dir", strings.TrimSpace(*spamDir))
	v.Set("corpus.ham_dir", strings.TrimSpace(*hamDir))

	v.Set("pipeline.name", *pipelineName)
	v.Set("pipeline.vocab_size", *vocabSize)
	v.Set("pipeline.max_body_size", *maxBodySize)

	v.Set("classifier.algorithm", *algorithm)
	v.Set("classifier.epochs", *epochs)
	v.Set("classifier.learning_rate", *learningRate)
	v.Set("classifier.l2", *l2)

	v.Set("store.type", *storeType)
	v.Set("store.sqlite_path", *sqlitePath)
	if *mysqlDSN != "" {
		v.Set("store.mysql_dsn", *mysqlDSN)
	}

	return config.NewFromViper(v)
}
