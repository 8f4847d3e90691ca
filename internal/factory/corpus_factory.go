package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/linear-spam-filter/internal/adapters/corpus"
	"github.com/mikey/linear-spam-filter/internal/config"
	"github.com/mikey/linear-spam-filter/internal/core"
)

// CorpusFactory creates corpus and message sources
type CorpusFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCorpusFactory creates a new corpus factory
func NewCorpusFactory(cfg *config.Config, logger *zap.Logger) *CorpusFactory {
	return &CorpusFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCorpusSource creates the training corpus source from the
// configured directory layout
func (f *CorpusFactory) CreateCorpusSource() core.CorpusSource {
	corpusConfig := f.cfg.GetCorpus()
	return corpus.NewDirSource(corpusConfig.Dir, corpusConfig.SpamDir, corpusConfig.HamDir, f.logger)
}

// CreateMessageSource creates the source used to resolve prediction
// sample identifiers
func (f *CorpusFactory) CreateMessageSource() core.MessageSource {
	return corpus.NewFileSource()
}
