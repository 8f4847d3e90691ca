package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTextProcessor_TruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	t.Run("short text passes through", func(t *testing.T) {
		assert.Equal(t, "hello", tp.TruncateText("hello", 100))
	})

	t.Run("zero max size disables truncation", func(t *testing.T) {
		long := strings.Repeat("a", 1000)
		assert.Equal(t, long, tp.TruncateText(long, 0))
	})

	t.Run("truncates to the byte limit", func(t *testing.T) {
		assert.Equal(t, "hel", tp.TruncateText("hello", 3))
	})

	t.Run("never splits a multi-byte rune", func(t *testing.T) {
		// "café" is 5 bytes; cutting at 4 lands inside the é
		out := tp.TruncateText("café", 4)
		assert.Equal(t, "caf", out)
		assert.True(t, utf8.ValidString(out))
	})
}

func TestTextProcessor_FoldToASCII(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	t.Run("accents fold to base letters", func(t *testing.T) {
		assert.Equal(t, "cafe", tp.FoldToASCII("café"))
		assert.Equal(t, "resume", tp.FoldToASCII("résumé"))
	})

	t.Run("non-latin characters are dropped", func(t *testing.T) {
		assert.Equal(t, "free  now", tp.FoldToASCII("free 金 now"))
	})

	t.Run("ascii passes through", func(t *testing.T) {
		assert.Equal(t, "plain ascii 123", tp.FoldToASCII("plain ascii 123"))
	})
}

func TestTextProcessor_ProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	assert.Equal(t, "caf", tp.ProcessText("café latte", 4))
}
