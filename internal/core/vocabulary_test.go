package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildVocabulary(t *testing.T) {
	corpus := []TokenizedMessage{
		{"buy", "cheap", "meds", "buy"},
		{"meeting", "notes", "buy"},
		{"cheap", "meds"},
	}

	t.Run("ranked by descending frequency", func(t *testing.T) {
		vocab := BuildVocabulary(corpus, 10)
		// buy=3, cheap=2, meds=2, meeting=1, notes=1
		assert.Equal(t, Vocabulary{"buy", "cheap", "meds", "meeting", "notes"}, vocab)
	})

	t.Run("truncated to k", func(t *testing.T) {
		vocab := BuildVocabulary(corpus, 2)
		assert.Equal(t, Vocabulary{"buy", "cheap"}, vocab)
	})

	t.Run("fewer distinct stems than k returns all", func(t *testing.T) {
		vocab := BuildVocabulary(corpus, 100)
		assert.Len(t, vocab, 5)
	})

	t.Run("k zero yields empty vocabulary", func(t *testing.T) {
		assert.Empty(t, BuildVocabulary(corpus, 0))
	})

	t.Run("negative k yields empty vocabulary", func(t *testing.T) {
		assert.Empty(t, BuildVocabulary(corpus, -1))
	})

	t.Run("empty corpus yields empty vocabulary", func(t *testing.T) {
		assert.Empty(t, BuildVocabulary(nil, 10))
	})
}

func TestBuildVocabulary_TieBreak(t *testing.T) {
	// Equal counts rank by first-seen order in the corpus scan
	corpus := []TokenizedMessage{
		{"zebra", "apple"},
		{"mango", "zebra", "apple", "mango"},
	}
	vocab := BuildVocabulary(corpus, 3)
	assert.Equal(t, Vocabulary{"zebra", "apple", "mango"}, vocab)
}

func TestBuildVocabulary_Deterministic(t *testing.T) {
	corpus := []TokenizedMessage{
		{"a", "b", "c", "d", "e", "f", "g"},
		{"g", "f", "e", "a"},
		{"h", "i", "j", "a", "b"},
	}
	first := BuildVocabulary(corpus, 6)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, BuildVocabulary(corpus, 6))
	}
}

func TestBuildVocabulary_CountsEveryOccurrence(t *testing.T) {
	// Within-message repetition counts per occurrence, not per message
	corpus := []TokenizedMessage{
		{"spam", "spam", "spam"},
		{"ham"},
		{"ham"},
	}
	vocab := BuildVocabulary(corpus, 1)
	assert.Equal(t, Vocabulary{"spam"}, vocab)
}
