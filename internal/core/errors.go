package core

import (
	"errors"
	"fmt"
)

var (
	// ErrVocabularyNotBuilt is returned when prediction is attempted
	// before a vocabulary has been built
	ErrVocabularyNotBuilt = errors.New("vocabulary not built")
	// ErrModelNotTrained is returned when prediction is attempted after
	// vocabulary construction but before a model has been trained
	ErrModelNotTrained = errors.New("model not trained")
)

// SourceUnreadableError reports a message whose raw text could not be
// retrieved. The affected item is skipped; the batch continues.
type SourceUnreadableError struct {
	ID  string
	Err error
}

func (e *SourceUnreadableError) Error() string {
	return fmt.Sprintf("message source unreadable: %s: %v", e.ID, e.Err)
}

func (e *SourceUnreadableError) Unwrap() error {
	return e.Err
}
