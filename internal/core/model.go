package core

import (
	"fmt"
	"time"
)

// Email represents an email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// Label is a binary classification label
type Label int

const (
	// Ham marks a message that is not spam
	Ham Label = 0
	// Spam marks a spam message
	Spam Label = 1
)

// TokenizedMessage is the stem sequence produced for one message.
// Order carries no meaning downstream; vocabulary building counts every
// occurrence while vectorization only tests membership.
type TokenizedMessage []string

// Vocabulary is the frozen, frequency-ranked stem list. The index of a
// stem is its feature-vector column, so the ordering is a structural
// contract between training and inference.
type Vocabulary []string

// FeatureVector is a fixed-width binary presence vector over a vocabulary
type FeatureVector []float64

// FeatureMatrix holds one FeatureVector per message, row order matching
// message order
type FeatureMatrix []FeatureVector

// CorpusItem is one labeled message from a corpus source. Either RawText
// is set or Err explains why the message could not be read.
type CorpusItem struct {
	ID      string
	IsSpam  bool
	RawText string
	Err     error
}

// TrainingExample bundles a tokenized message with its label so the two
// can never drift out of alignment when unreadable messages are skipped
type TrainingExample struct {
	Tokens TokenizedMessage
	IsSpam bool
}

// Model is a trained linear model over a fixed vocabulary
type Model struct {
	Algorithm string
	Weights   []float64
	Bias      float64
	TrainedAt time.Time
}

// TrainedPipeline bundles a frozen vocabulary with the model trained
// against it. Instances are immutable; prediction paths accept only a
// matched pair.
type TrainedPipeline struct {
	Vocabulary Vocabulary
	Model      *Model
}

// NewTrainedPipeline pairs a vocabulary with a model, rejecting any
// width mismatch between vocabulary columns and model weights.
func NewTrainedPipeline(vocab Vocabulary, model *Model) (*TrainedPipeline, error) {
	if model == nil {
		return nil, ErrModelNotTrained
	}
	if len(model.Weights) != len(vocab) {
		return nil, fmt.Errorf("model width %d does not match vocabulary size %d", len(model.Weights), len(vocab))
	}
	return &TrainedPipeline{Vocabulary: vocab, Model: model}, nil
}

// ClassificationResult represents the result of classifying one message
type ClassificationResult struct {
	IsSpam      bool
	Score       float64
	Explanation string
	AnalyzedAt  time.Time
	ModelUsed   string
}

// SampleResult is the per-item outcome of a batch prediction request
type SampleResult struct {
	ID     string
	IsSpam bool
	Err    error
}
