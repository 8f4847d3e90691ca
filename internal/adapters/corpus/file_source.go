package corpus

import (
	"context"
	"os"

	"github.com/mikey/linear-spam-filter/internal/core"
)

// FileSource resolves message identifiers as filesystem paths
type FileSource struct{}

// NewFileSource creates a new file message source
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Fetch reads the raw text of the message at the given path
func (s *FileSource) Fetch(_ context.Context, id string) (string, error) {
	data, err := os.ReadFile(id)
	if err != nil {
		return "", &core.SourceUnreadableError{ID: id, Err: err}
	}
	return string(data), nil
}
