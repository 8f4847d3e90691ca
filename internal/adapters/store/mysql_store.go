package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/linear-spam-filter/internal/core"
)

// MySQLStore is a MySQL implementation of the PipelineStore interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL pipeline store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS spam_pipeline (
			name VARCHAR(191) PRIMARY KEY,
			vocab_size INT,
			vocabulary MEDIUMTEXT,
			algorithm VARCHAR(64),
			weights MEDIUMTEXT,
			bias DOUBLE,
			trained_at VARCHAR(64)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Save persists a trained pipeline under a name
func (s *MySQLStore) Save(ctx context.Context, name string, trained *core.TrainedPipeline) error {
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
		INSERT INTO spam_pipeline (name, vocab_size, vocabulary, algorithm, weights, bias, trained_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			vocab_size = VALUES(vocab_size),
			vocabulary = VALUES(vocabulary),
			algorithm = VALUES(algorithm),
			weights = VALUES(weights),
			bias = VALUES(bias),
			trained_at = VALUES(trained_at)
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
func (s *MySQLStore) Load(ctx context.Context, name string) (*core.TrainedPipeline, error) {
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
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
