package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mikey/linear-spam-filter/internal/core"
)

// decodeRow rebuilds a trained pipeline from its persisted columns and
// re-validates the vocabulary/model pairing, so a row corrupted or
// written by a different build can never misalign feature columns
func decodeRow(name string, vocabSize int, vocabJSON, algorithm, weightsJSON string, bias float64, trainedAt string) (*core.TrainedPipeline, error) {
	var vocab core.Vocabulary
	if err := json.Unmarshal([]byte(vocabJSON), &vocab); err != nil {
		return nil, fmt.Errorf("failed to decode vocabulary for %s: %w", name, err)
	}
	if len(vocab) != vocabSize {
		return nil, fmt.Errorf("pipeline %s: stored vocab_size %d does not match vocabulary length %d", name, vocabSize, len(vocab))
	}

	var weights []float64
	if err := json.Unmarshal([]byte(weightsJSON), &weights); err != nil {
		return nil, fmt.Errorf("failed to decode weights for %s: %w", name, err)
	}
	if weights == nil {
		weights = []float64{}
	}

	model := &core.Model{
		Algorithm: algorithm,
		Weights:   weights,
		Bias:      bias,
	}
	if ts, err := time.Parse(time.RFC3339, trainedAt); err == nil {
		model.TrainedAt = ts
	}

	return core.NewTrainedPipeline(vocab, model)
}
