package store

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/linear-spam-filter/internal/core"
)

// ErrNotFound is returned when no pipeline is stored under a name
var ErrNotFound = errors.New("pipeline not found")

// MemoryStore is an in-memory implementation of the PipelineStore
// interface, mainly useful for tests and single-process runs
type MemoryStore struct {
	pipelines map[string]*core.TrainedPipeline
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewMemoryStore creates a new in-memory pipeline store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		pipelines: make(map[string]*core.TrainedPipeline),
		logger:    logger,
	}
}

// Save persists a trained pipeline under a name
func (s *MemoryStore) Save(_ context.Context, name string, trained *core.TrainedPipeline) error {
	// Re-validate the pairing so a mismatched pair can never be stored
	validated, err := core.NewTrainedPipeline(trained.Vocabulary, trained.Model)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipelines[name] = validated

	s.logger.Debug("Pipeline stored",
		zap.String("name", name),
		zap.Int("vocab_size", len(validated.Vocabulary)))
	return nil
}

// Load retrieves a trained pipeline by name
func (s *MemoryStore) Load(_ context.Context, name string) (*core.TrainedPipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trained, ok := s.pipelines[name]
	if !ok {
		return nil, ErrNotFound
	}
	return trained, nil
}
