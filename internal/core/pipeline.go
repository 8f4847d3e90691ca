package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PipelineState tracks how far a pipeline has progressed toward being
// usable for prediction
type PipelineState int

const (
	// StateUntrained is the initial state: no vocabulary, no model
	StateUntrained PipelineState = iota
	// StateVocabularyBuilt means the vocabulary is frozen but no model
	// has been trained against it
	StateVocabularyBuilt
	// StateModelTrained means a model exists but has not been paired
	// with the vocabulary yet
	StateModelTrained
	// StateReady means the pipeline holds a matched vocabulary/model
	// pair and may serve predictions
	StateReady
)

func (s PipelineState) String() string {
	switch s {
	case StateUntrained:
		return "untrained"
	case StateVocabularyBuilt:
		return "vocabulary_built"
	case StateModelTrained:
		return "model_trained"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Pipeline composes normalization, stemming, vocabulary construction and
// vectorization into the training and prediction flows. After a
// successful Train (or Adopt) the vocabulary and model are frozen and
// shared read-only, so a Ready pipeline is safe for concurrent readers.
type Pipeline struct {
	stemmer     Stemmer
	classifier  Classifier
	logger      *zap.Logger
	vocabSize   int
	preparer    TextPreparer
	maxBodySize int

	state   PipelineState
	trained *TrainedPipeline
}

// NewPipeline creates a new untrained pipeline. The preparer may be nil,
// in which case raw text goes straight into normalization.
func NewPipeline(
	stemmer Stemmer,
	classifier Classifier,
	logger *zap.Logger,
	vocabSize int,
	preparer TextPreparer,
	maxBodySize int,
) *Pipeline {
	return &Pipeline{
		stemmer:     stemmer,
		classifier:  classifier,
		logger:      logger,
		vocabSize:   vocabSize,
		preparer:    preparer,
		maxBodySize: maxBodySize,
		state:       StateUntrained,
	}
}

// prepare applies the text preparer. Preparation runs on both the
// training and prediction paths so the two stay consistent.
func (p *Pipeline) prepare(text string) string {
	if p.preparer == nil {
		return text
	}
	return p.preparer.ProcessText(text, p.maxBodySize)
}

// State returns the pipeline's current lifecycle state
func (p *Pipeline) State() PipelineState {
	return p.state
}

// Trained returns the frozen vocabulary/model pair, or nil before Ready
func (p *Pipeline) Trained() *TrainedPipeline {
	return p.trained
}

// Tokenize runs a raw message through normalization and stemming.
// Zero-length stems are dropped. Tokenize never fails; malformed input
// degrades to an empty token list.
func (p *Pipeline) Tokenize(raw string) TokenizedMessage {
	return p.stemAll(Normalize(p.prepare(raw)))
}

// TokenizeEmail tokenizes an already-parsed email, so no header block is
// stripped. Subject and body both contribute tokens.
func (p *Pipeline) TokenizeEmail(email *Email) TokenizedMessage {
	return p.stemAll(NormalizeBody(p.prepare(email.Subject + " " + email.Body)))
}

func (p *Pipeline) stemAll(words []string) TokenizedMessage {
	stems := make(TokenizedMessage, 0, len(words))
	for _, word := range words {
		stem := p.stemmer.Stem(word)
		if stem == "" {
			continue
		}
		stems = append(stems, stem)
	}
	return stems
}

// Train builds the vocabulary from the corpus, vectorizes every message
// against it and trains the classifier. Messages the source could not
// read are skipped with a warning; their labels are dropped with them so
// rows and labels stay aligned. On success the pipeline is Ready and the
// frozen pair is returned.
func (p *Pipeline) Train(ctx context.Context, source CorpusSource) (*TrainedPipeline, error) {
	items, err := source.Messages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate corpus: %w", err)
	}

	examples := make([]TrainingExample, 0, len(items))
	skipped := 0
	for _, item := range items {
		if item.Err != nil {
			skipped++
			p.logger.Warn("Skipping unreadable message",
				zap.String("id", item.ID),
				zap.Error(item.Err))
			continue
		}
		examples = append(examples, TrainingExample{
			Tokens: p.Tokenize(item.RawText),
			IsSpam: item.IsSpam,
		})
	}
	if len(examples) == 0 {
		return nil, errors.New("training corpus contains no readable messages")
	}

	corpus := make([]TokenizedMessage, len(examples))
	labels := make([]Label, len(examples))
	for i, ex := range examples {
		corpus[i] = ex.Tokens
		if ex.IsSpam {
			labels[i] = Spam
		}
	}

	vocab := BuildVocabulary(corpus, p.vocabSize)
	p.state = StateVocabularyBuilt
	p.logger.Info("Vocabulary built",
		zap.Int("size", len(vocab)),
		zap.Int("messages", len(examples)),
		zap.Int("skipped", skipped))

	matrix := VectorizeAll(corpus, vocab)
	startTime := time.Now()
	model, err := p.classifier.Train(ctx, matrix, labels)
	if err != nil {
		return nil, fmt.Errorf("classifier training failed: %w", err)
	}
	p.state = StateModelTrained

	trained, err := NewTrainedPipeline(vocab, model)
	if err != nil {
		return nil, err
	}
	p.trained = trained
	p.state = StateReady
	p.logger.Info("Pipeline trained",
		zap.String("algorithm", model.Algorithm),
		zap.Duration("duration", time.Since(startTime)))

	return trained, nil
}

// Adopt installs a previously trained pair, typically loaded from a
// store, and moves the pipeline to Ready
func (p *Pipeline) Adopt(trained *TrainedPipeline) error {
	if trained == nil {
		return ErrModelNotTrained
	}
	if _, err := NewTrainedPipeline(trained.Vocabulary, trained.Model); err != nil {
		return err
	}
	p.trained = trained
	p.state = StateReady
	return nil
}

// readiness reports which prediction dependency is missing, nil when the
// pipeline is Ready
func (p *Pipeline) readiness() error {
	switch p.state {
	case StateReady:
		return nil
	case StateUntrained:
		return ErrVocabularyNotBuilt
	default:
		return ErrModelNotTrained
	}
}

// ClassifyTokens vectorizes a tokenized message against the frozen
// vocabulary and asks the classifier for a verdict. Fails with
// ErrVocabularyNotBuilt or ErrModelNotTrained before Ready; it never
// returns a zero-filled stand-in result.
func (p *Pipeline) ClassifyTokens(ctx context.Context, tokens TokenizedMessage) (*ClassificationResult, error) {
	if err := p.readiness(); err != nil {
		return nil, err
	}

	matrix := FeatureMatrix{Vectorize(tokens, p.trained.Vocabulary)}
	labels, err := p.classifier.Predict(ctx, p.trained.Model, matrix)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	score := float64(labels[0])
	if scorer, ok := p.classifier.(Scorer); ok {
		if scores, serr := scorer.Scores(ctx, p.trained.Model, matrix); serr == nil && len(scores) == 1 {
			score = scores[0]
		}
	}

	return &ClassificationResult{
		IsSpam:     labels[0] == Spam,
		Score:      score,
		AnalyzedAt: time.Now(),
		ModelUsed:  p.trained.Model.Algorithm,
	}, nil
}

// PredictSamples classifies the messages behind the given identifiers.
// An empty identifier list is a no-op, not an error. A message the
// source cannot resolve yields a per-item SourceUnreadableError without
// aborting the batch. Result i always corresponds to identifier i.
func (p *Pipeline) PredictSamples(ctx context.Context, source MessageSource, ids []string) ([]SampleResult, error) {
	if len(ids) == 0 {
		p.logger.Info("Nothing to predict")
		return []SampleResult{}, nil
	}
	if err := p.readiness(); err != nil {
		return nil, err
	}

	results := make([]SampleResult, len(ids))
	readable := make([]int, 0, len(ids))
	corpus := make([]TokenizedMessage, 0, len(ids))
	for i, id := range ids {
		results[i].ID = id
		raw, err := source.Fetch(ctx, id)
		if err != nil {
			var unreadable *SourceUnreadableError
			if !errors.As(err, &unreadable) {
				err = &SourceUnreadableError{ID: id, Err: err}
			}
			results[i].Err = err
			p.logger.Warn("Skipping unreadable sample", zap.String("id", id), zap.Error(err))
			continue
		}
		readable = append(readable, i)
		corpus = append(corpus, p.Tokenize(raw))
	}

	if len(corpus) > 0 {
		matrix := VectorizeAll(corpus, p.trained.Vocabulary)
		labels, err := p.classifier.Predict(ctx, p.trained.Model, matrix)
		if err != nil {
			return nil, fmt.Errorf("prediction failed: %w", err)
		}
		for row, i := range readable {
			results[i].IsSpam = labels[row] == Spam
		}
	}

	return results, nil
}
