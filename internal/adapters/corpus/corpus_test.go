package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/linear-spam-filter/internal/core"
)

func writeCorpusFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func corpusLayout(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "spam"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "ham"), 0o755))
	writeCorpusFile(t, filepath.Join(root, "spam"), "0001.txt", "buy cheap meds")
	writeCorpusFile(t, filepath.Join(root, "spam"), "0002.txt", "limited offer")
	writeCorpusFile(t, filepath.Join(root, "ham"), "0001.txt", "meeting notes")
	return root
}

func TestDirSource_Messages(t *testing.T) {
	t.Run("labels come from the subdirectory", func(t *testing.T) {
		root := corpusLayout(t)
		source := NewDirSource(root, "spam", "ham", zap.NewNop())

		items, err := source.Messages(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 3)

		spam, ham := 0, 0
		for _, item := range items {
			require.NoError(t, item.Err)
			assert.NotEmpty(t, item.RawText)
			if item.IsSpam {
				spam++
			} else {
				ham++
			}
		}
		assert.Equal(t, 2, spam)
		assert.Equal(t, 1, ham)
	})

	t.Run("unreadable file becomes an item error", func(t *testing.T) {
		root := corpusLayout(t)
		// A dangling symlink enumerates but cannot be read
		require.NoError(t, os.Symlink(
			filepath.Join(root, "missing"),
			filepath.Join(root, "spam", "dangling.txt")))
		source := NewDirSource(root, "spam", "ham", zap.NewNop())

		items, err := source.Messages(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 4)

		var unreadable int
		for _, item := range items {
			if item.Err != nil {
				var sourceErr *core.SourceUnreadableError
				assert.ErrorAs(t, item.Err, &sourceErr)
				assert.True(t, item.IsSpam)
				unreadable++
			}
		}
		assert.Equal(t, 1, unreadable)
	})

	t.Run("missing group directory fails the enumeration", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, "spam"), 0o755))
		source := NewDirSource(root, "spam", "ham", zap.NewNop())

		_, err := source.Messages(context.Background())
		assert.Error(t, err)
	})

	t.Run("nested directories are skipped", func(t *testing.T) {
		root := corpusLayout(t)
		require.NoError(t, os.Mkdir(filepath.Join(root, "spam", "archive"), 0o755))
		source := NewDirSource(root, "spam", "ham", zap.NewNop())

		items, err := source.Messages(context.Background())
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})
}

func TestFileSource_Fetch(t *testing.T) {
	source := NewFileSource()

	t.Run("reads raw text by path", func(t *testing.T) {
		dir := t.TempDir()
		writeCorpusFile(t, dir, "mail.txt", "Subject: hi\n\nhello")

		raw, err := source.Fetch(context.Background(), filepath.Join(dir, "mail.txt"))
		require.NoError(t, err)
		assert.Equal(t, "Subject: hi\n\nhello", raw)
	})

	t.Run("missing file reports source unreadable", func(t *testing.T) {
		_, err := source.Fetch(context.Background(), filepath.Join(t.TempDir(), "gone.txt"))
		var sourceErr *core.SourceUnreadableError
		require.ErrorAs(t, err, &sourceErr)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
