package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/mikey/linear-spam-filter/internal/core"
)

// decision computes the signed margin w·x + b for one feature vector,
// enforcing the width contract between model and vector
func decision(model *core.Model, vec core.FeatureVector) (float64, error) {
	if len(vec) != len(model.Weights) {
		return 0, fmt.Errorf("feature vector width %d does not match model width %d", len(vec), len(model.Weights))
	}
	if len(vec) == 0 {
		return model.Bias, nil
	}
	return floats.Dot(model.Weights, vec) + model.Bias, nil
}

// priorLogOdds is the bias that reproduces the corpus class balance when
// no features are available
func priorLogOdds(labels []core.Label) float64 {
	spam := 0
	for _, label := range labels {
		if label == core.Spam {
			spam++
		}
	}
	// Laplace-smoothed so an all-spam or all-ham corpus stays finite
	p := (float64(spam) + 1) / (float64(len(labels)) + 2)
	return math.Log(p / (1 - p))
}
