package core

import (
	"context"
)

// TextPreparer prepares raw text before normalization, typically size
// truncation and ASCII folding
type TextPreparer interface {
	ProcessText(text string, maxSize int) string
}

// SenderWhitelist decides whether a sender address bypasses
// classification entirely
type SenderWhitelist interface {
	IsWhitelisted(from string) bool
}

// Stemmer defines the interface for the stemming capability. Stemming
// must be deterministic: a vocabulary built with one stemmer must be
// vectorized with the same stemmer.
type Stemmer interface {
	// Stem returns the canonical stem for a token
	Stem(token string) string
}

// Classifier defines the interface for the external linear classifier
type Classifier interface {
	// Train fits a model to a feature matrix and its labels
	Train(ctx context.Context, features FeatureMatrix, labels []Label) (*Model, error)

	// Predict classifies feature vectors with a trained model. The
	// vectors must have the width the model was trained on.
	Predict(ctx context.Context, model *Model, features FeatureMatrix) ([]Label, error)
}

// Scorer is an optional classifier capability exposing a spam
// probability per row instead of a hard label
type Scorer interface {
	Scores(ctx context.Context, model *Model, features FeatureMatrix) ([]float64, error)
}

// CorpusSource defines the interface for enumerating a labeled training
// corpus. Items whose raw text could not be retrieved carry a non-nil
// Err instead of aborting the enumeration.
type CorpusSource interface {
	Messages(ctx context.Context) ([]CorpusItem, error)
}

// MessageSource defines the interface for resolving a message identifier
// to its raw text
type MessageSource interface {
	Fetch(ctx context.Context, id string) (string, error)
}

// PipelineStore defines the interface for persisting a trained pipeline.
// The vocabulary and model are stored and loaded as one record so they
// can never be paired across builds.
type PipelineStore interface {
	// Save persists a trained pipeline under a name
	Save(ctx context.Context, name string, trained *TrainedPipeline) error

	// Load retrieves a trained pipeline by name
	Load(ctx context.Context, name string) (*TrainedPipeline, error)
}
