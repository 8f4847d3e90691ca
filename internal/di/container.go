package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/linear-spam-filter/internal/adapters/stemmer"
	"github.com/mikey/linear-spam-filter/internal/config"
	"github.com/mikey/linear-spam-filter/internal/core"
	"github.com/mikey/linear-spam-filter/internal/factory"
	"github.com/mikey/linear-spam-filter/internal/logging"
	"github.com/mikey/linear-spam-filter/internal/ports"
	"github.com/mikey/linear-spam-filter/internal/utils"
	"github.com/mikey/linear-spam-filter/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCorpusFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register stemmer
	if err := container.Provide(func() core.Stemmer {
		return stemmer.NewSnowball()
	}); err != nil {
		return nil, err
	}

	// Register classifier
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.Classifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register pipeline store
	if err := container.Provide(func(f *factory.StoreFactory) (core.PipelineStore, error) {
		return f.CreateStore()
	}); err != nil {
		return nil, err
	}

	// Register corpus and message sources
	if err := container.Provide(func(f *factory.CorpusFactory) core.CorpusSource {
		return f.CreateCorpusSource()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CorpusFactory) core.MessageSource {
		return f.CreateMessageSource()
	}); err != nil {
		return nil, err
	}

	// Register pipeline
	if err := container.Provide(func(
		st core.Stemmer,
		clf core.Classifier,
		logger *zap.Logger,
		cfg *config.Config,
		tp *utils.TextProcessor,
	) *core.Pipeline {
		pipelineConfig := cfg.GetPipeline()
		return core.NewPipeline(st, clf, logger, pipelineConfig.VocabSize, tp, pipelineConfig.MaxBodySize)
	}); err != nil {
		return nil, err
	}

	// Register sender whitelist
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.SenderWhitelist {
		return whitelist.NewChecker(cfg.GetStringSlice("spam.whitelisted_domains"), logger)
	}); err != nil {
		return nil, err
	}

	// Register spam threshold
	if err := container.Provide(func(cfg *config.Config) float64 {
		return cfg.GetFloat64("spam.threshold")
	}); err != nil {
		return nil, err
	}

	// Register spam filter service
	if err := container.Provide(core.NewSpamFilterService); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
