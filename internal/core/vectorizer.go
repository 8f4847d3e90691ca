package core

// Vectorize maps a tokenized message onto a vocabulary, producing a
// binary presence vector. The output width is always the vocabulary
// size; an empty message yields all zeros.
func Vectorize(msg TokenizedMessage, vocab Vocabulary) FeatureVector {
	present := make(map[string]struct{}, len(msg))
	for _, stem := range msg {
		present[stem] = struct{}{}
	}

	vec := make(FeatureVector, len(vocab))
	for j, stem := range vocab {
		if _, ok := present[stem]; ok {
			vec[j] = 1
		}
	}
	return vec
}

// VectorizeAll vectorizes a corpus, row i corresponding to message i
func VectorizeAll(corpus []TokenizedMessage, vocab Vocabulary) FeatureMatrix {
	matrix := make(FeatureMatrix, len(corpus))
	for i, msg := range corpus {
		matrix[i] = Vectorize(msg, vocab)
	}
	return matrix
}
