package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/linear-spam-filter/internal/adapters/classifier"
	"github.com/mikey/linear-spam-filter/internal/config"
	"github.com/mikey/linear-spam-filter/internal/core"
)

// ClassifierFactory creates linear classifiers
type ClassifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClassifier creates a classifier based on the configuration
func (f *ClassifierFactory) CreateClassifier() (core.Classifier, error) {
	clfConfig := f.cfg.GetClassifier()

	switch clfConfig.Algorithm {
	case "logreg":
		return classifier.NewLogisticRegression(f.logger, clfConfig.Epochs, clfConfig.LearningRate, clfConfig.L2), nil
	case "perceptron":
		return classifier.NewPerceptron(f.logger, clfConfig.Epochs), nil
	default:
		return nil, fmt.Errorf("unsupported classifier algorithm: %s", clfConfig.Algorithm)
	}
}
