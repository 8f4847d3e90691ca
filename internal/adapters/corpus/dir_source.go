package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mikey/linear-spam-filter/internal/core"
)

// DirSource enumerates a labeled corpus from a directory layout with one
// file per message: spam under one subdirectory, ham under another. The
// label comes from the subdirectory a message lives in.
type DirSource struct {
	root    string
	spamDir string
	hamDir  string
	logger  *zap.Logger
}

// NewDirSource creates a new directory corpus source
func NewDirSource(root, spamDir, hamDir string, logger *zap.Logger) *DirSource {
	return &DirSource{
		root:    root,
		spamDir: spamDir,
		hamDir:  hamDir,
		logger:  logger,
	}
}

// Messages enumerates all corpus messages. A file that cannot be read
// becomes an item carrying a SourceUnreadableError; the enumeration only
// fails when a whole group directory is missing.
func (s *DirSource) Messages(ctx context.Context) ([]core.CorpusItem, error) {
	groups := []struct {
		dir    string
		isSpam bool
	}{
		{s.spamDir, true},
		{s.hamDir, false},
	}

	var items []core.CorpusItem
	for _, group := range groups {
		dir := filepath.Join(s.root, group.dir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if entry.IsDir() {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			item := core.CorpusItem{ID: path, IsSpam: group.isSpam}
			data, err := os.ReadFile(path)
			if err != nil {
				item.Err = &core.SourceUnreadableError{ID: path, Err: err}
			} else {
				item.RawText = string(data)
			}
			items = append(items, item)
		}
	}

	s.logger.Debug("Corpus enumerated",
		zap.String("root", s.root),
		zap.Int("messages", len(items)))

	return items, nil
}
