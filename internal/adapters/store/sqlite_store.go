package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/linear-spam-filter/internal/core"
)

// SQLiteStore is a SQLite implementation of the PipelineStore interface.
// Vocabulary and model are written in one row inside one transaction so
// the pair can never be torn.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite pipeline store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS spam_pipeline (
			name TEXT PRIMARY KEY,
			vocab_size INTEGER,
			vocabulary TEXT,
			algorithm TEXT,
			weights TEXT,
			bias REAL,
			trained_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Save persists a trained pipeline under a name
func (s *SQLiteStore) Save(ctx context.Context, name string, trained *core.TrainedPipeline) error {
	validated, err := core.NewTrainedPipeline(trained.Vocabulary, trained.Model)
	if err != nil {
		return err
	}

	vocabJSON, err := json.Marshal(validated.Vocabulary)
	if err != nil {
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}
	weightsJSON, err := json.Marshal(validated.Model.Weights)
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO spam_pipeline (name, vocab_size, vocabulary, algorithm, weights, bias, trained_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, name, len(validated.Vocabulary), string(vocabJSON), validated.Model.Algorithm,
		string(weightsJSON), validated.Model.Bias, validated.Model.TrainedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store pipeline: %w", err)
	}

	s.logger.Info("Pipeline stored",
		zap.String("name", name),
		zap.Int("vocab_size", len(validated.Vocabulary)),
		zap.String("algorithm", validated.Model.Algorithm))
	return nil
}

// Load retrieves a trained pipeline by name
func (s *SQLiteStore) Load(ctx context.Context, name string) (*core.TrainedPipeline, error) {
	var vocabSize int
	var vocabJSON, algorithm, weightsJSON, trainedAt string
	var bias float64

	err := s.db.QueryRowContext(ctx, `
		SELECT vocab_size, vocabulary, algorithm, weights, bias, trained_at
		FROM spam_pipeline
		WHERE name = ?
	`, name).Scan(&vocabSize, &vocabJSON, &algorithm, &weightsJSON, &bias, &trainedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query pipeline: %w", err)
	}

	return decodeRow(name, vocabSize, vocabJSON, algorithm, weightsJSON, bias, trainedAt)
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
