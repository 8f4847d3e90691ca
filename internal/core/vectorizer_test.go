package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorize(t *testing.T) {
	vocab := Vocabulary{"buy", "cheap", "meds", "meeting"}

	t.Run("membership sets columns", func(t *testing.T) {
		vec := Vectorize(TokenizedMessage{"cheap", "meds", "cheap"}, vocab)
		assert.Equal(t, FeatureVector{0, 1, 1, 0}, vec)
	})

	t.Run("width always matches vocabulary", func(t *testing.T) {
		assert.Len(t, Vectorize(TokenizedMessage{"unrelated"}, vocab), len(vocab))
		assert.Len(t, Vectorize(nil, vocab), len(vocab))
	})

	t.Run("empty message yields all zeros", func(t *testing.T) {
		vec := Vectorize(TokenizedMessage{}, vocab)
		assert.Equal(t, FeatureVector{0, 0, 0, 0}, vec)
	})

	t.Run("empty vocabulary yields empty vector", func(t *testing.T) {
		assert.Empty(t, Vectorize(TokenizedMessage{"buy"}, Vocabulary{}))
	})

	t.Run("membership round trip", func(t *testing.T) {
		for j, stem := range vocab {
			with := Vectorize(TokenizedMessage{stem}, vocab)
			assert.Equal(t, 1.0, with[j])

			without := Vectorize(TokenizedMessage{"something else"}, vocab)
			assert.Equal(t, 0.0, without[j])
		}
	})
}

func TestVectorizeAll(t *testing.T) {
	vocab := Vocabulary{"a", "b"}
	corpus := []TokenizedMessage{
		{"a"},
		{},
		{"b", "a"},
	}

	matrix := VectorizeAll(corpus, vocab)
	assert.Len(t, matrix, 3)
	assert.Equal(t, FeatureVector{1, 0}, matrix[0])
	assert.Equal(t, FeatureVector{0, 0}, matrix[1])
	assert.Equal(t, FeatureVector{1, 1}, matrix[2])
}
