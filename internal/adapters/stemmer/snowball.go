package stemmer

import (
	"github.com/kljensen/snowball"
)

// Snowball stems tokens with the Snowball English (Porter2) algorithm.
// It is pure and deterministic, which is what keeps vocabularies built
// at training time valid at inference time.
type Snowball struct{}

// NewSnowball creates a new Snowball stemmer
func NewSnowball() *Snowball {
	return &Snowball{}
}

// Stem returns the canonical stem for a token. Tokens the algorithm
// rejects pass through unchanged rather than failing the pipeline.
func (s *Snowball) Stem(token string) string {
	stemmed, err := snowball.Stem(token, "english", false)
	if err != nil {
		return token
	}
	return stemmed
}
