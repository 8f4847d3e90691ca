package classifier

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/mikey/linear-spam-filter/internal/core"
)

// Perceptron is an averaged-perceptron linear classifier. It is cheaper
// to train than logistic regression and works well on linearly separable
// bag-of-words corpora.
type Perceptron struct {
	logger *zap.Logger
	epochs int
}

// NewPerceptron creates a new averaged perceptron classifier
func NewPerceptron(logger *zap.Logger, epochs int) *Perceptron {
	return &Perceptron{
		logger: logger,
		epochs: epochs,
	}
}

// Train fits an averaged perceptron to the feature matrix
func (c *Perceptron) Train(ctx context.Context, features core.FeatureMatrix, labels []core.Label) (*core.Model, error) {
	rows := len(features)
	if rows == 0 {
		return nil, fmt.Errorf("cannot train on an empty feature matrix")
	}
	if len(labels) != rows {
		return nil, fmt.Errorf("feature matrix has %d rows but %d labels", rows, len(labels))
	}
	cols := len(features[0])
	for i, row := range features {
		if len(row) != cols {
			return nil, fmt.Errorf("feature matrix row %d has width %d, want %d", i, len(row), cols)
		}
	}

	if cols == 0 {
		return &core.Model{
			Algorithm: "perceptron",
			Weights:   []float64{},
			Bias:      priorLogOdds(labels),
			TrainedAt: time.Now(),
		}, nil
	}

	weights := make([]float64, cols)
	sumWeights := make([]float64, cols)
	bias := 0.0
	sumBias := 0.0
	steps := 0

	for epoch := 0; epoch < c.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mistakes := 0
		for i, row := range features {
			// Labels map to {-1, +1} for the update rule
			target := -1.0
			if labels[i] == core.Spam {
				target = 1.0
			}
			margin := floats.Dot(weights, row) + bias
			if target*margin <= 0 {
				floats.AddScaled(weights, target, row)
				bias += target
				mistakes++
			}
			floats.Add(sumWeights, weights)
			sumBias += bias
			steps++
		}
		if mistakes == 0 {
			break
		}
	}

	avg := make([]float64, cols)
	copy(avg, sumWeights)
	floats.Scale(1/float64(steps), avg)

	c.logger.Debug("Perceptron trained",
		zap.Int("rows", rows),
		zap.Int("cols", cols),
		zap.Int("steps", steps))

	return &core.Model{
		Algorithm: "perceptron",
		Weights:   avg,
		Bias:      sumBias / float64(steps),
		TrainedAt: time.Now(),
	}, nil
}

// Predict classifies feature vectors with a trained model
func (c *Perceptron) Predict(_ context.Context, model *core.Model, features core.FeatureMatrix) ([]core.Label, error) {
	labels := make([]core.Label, len(features))
	for i, row := range features {
		margin, err := decision(model, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if margin > 0 {
			labels[i] = core.Spam
		}
	}
	return labels, nil
}

// Scores maps the signed margin of each row through a logistic squash so
// callers get a comparable [0,1] score
func (c *Perceptron) Scores(_ context.Context, model *core.Model, features core.FeatureMatrix) ([]float64, error) {
	scores := make([]float64, len(features))
	for i, row := range features {
		margin, err := decision(model, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		scores[i] = sigmoid(margin)
	}
	return scores, nil
}
