package classifier

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/mikey/linear-spam-filter/internal/core"
)

// LogisticRegression is a linear-margin classifier trained with batch
// gradient descent and L2 regularization
type LogisticRegression struct {
	logger       *zap.Logger
	epochs       int
	learningRate float64
	l2           float64
}

// NewLogisticRegression creates a new logistic regression classifier
func NewLogisticRegression(logger *zap.Logger, epochs int, learningRate, l2 float64) *LogisticRegression {
	return &LogisticRegression{
		logger:       logger,
		epochs:       epochs,
		learningRate: learningRate,
		l2:           l2,
	}
}

// Train fits a logistic regression model to the feature matrix
func (c *LogisticRegression) Train(ctx context.Context, features core.FeatureMatrix, labels []core.Label) (*core.Model, error) {
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

	// Empty vocabulary: only the bias is learnable, set it from the
	// class prior so predictions still reflect the corpus balance.
	if cols == 0 {
		return &core.Model{
			Algorithm: "logreg",
			Weights:   []float64{},
			Bias:      priorLogOdds(labels),
			TrainedAt: time.Now(),
		}, nil
	}

	data := make([]float64, 0, rows*cols)
	for _, row := range features {
		data = append(data, row...)
	}
	x := mat.NewDense(rows, cols, data)

	y := make([]float64, rows)
	for i, label := range labels {
		y[i] = float64(label)
	}

	weights := mat.NewVecDense(cols, nil)
	bias := 0.0
	errVec := mat.NewVecDense(rows, nil)
	grad := mat.NewVecDense(cols, nil)

	for epoch := 0; epoch < c.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		errVec.MulVec(x, weights)
		biasGrad := 0.0
		for i := 0; i < rows; i++ {
			e := sigmoid(errVec.AtVec(i)+bias) - y[i]
			errVec.SetVec(i, e)
			biasGrad += e
		}

		grad.MulVec(x.T(), errVec)
		grad.ScaleVec(1/float64(rows), grad)
		grad.AddScaledVec(grad, c.l2, weights)
		weights.AddScaledVec(weights, -c.learningRate, grad)
		bias -= c.learningRate * biasGrad / float64(rows)
	}

	out := make([]float64, cols)
	copy(out, weights.RawVector().Data)

	c.logger.Debug("Logistic regression trained",
		zap.Int("rows", rows),
		zap.Int("cols", cols),
		zap.Int("epochs", c.epochs))

	return &core.Model{
		Algorithm: "logreg",
		Weights:   out,
		Bias:      bias,
		TrainedAt: time.Now(),
	}, nil
}

// Predict classifies feature vectors with a trained model
func (c *LogisticRegression) Predict(ctx context.Context, model *core.Model, features core.FeatureMatrix) ([]core.Label, error) {
	scores, err := c.Scores(ctx, model, features)
	if err != nil {
		return nil, err
	}

	labels := make([]core.Label, len(scores))
	for i, score := range scores {
		if score >= 0.5 {
			labels[i] = core.Spam
		}
	}
	return labels, nil
}

// Scores returns the spam probability for each feature vector
func (c *LogisticRegression) Scores(_ context.Context, model *core.Model, features core.FeatureMatrix) ([]float64, error) {
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

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
