package utils

import (
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TextProcessor prepares raw message text for the normalization
// pipeline, which only deals in ASCII-safe lowercase text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	// If no limit or text is already within limits, return as is
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	// First truncate to the byte limit
	truncated := text[:maxSize]

	// Ensure the truncated text ends with a valid UTF-8 sequence
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated
}

// FoldToASCII decomposes accented characters to their base letters and
// drops anything left outside the ASCII range
func (tp *TextProcessor) FoldToASCII(text string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool {
			return r > unicode.MaxASCII
		})),
	)
	folded, _, err := transform.String(t, text)
	if err != nil {
		tp.logger.Debug("ASCII folding failed, keeping original text", zap.Error(err))
		return text
	}
	return folded
}

// ProcessText truncates and folds text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.FoldToASCII(tp.TruncateText(text, maxSize))
}
