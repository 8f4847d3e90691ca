package core

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// identityStemmer keeps tokens unchanged so tests can reason about exact
// vocabulary contents
type identityStemmer struct{}

func (identityStemmer) Stem(token string) string { return token }

// countingClassifier labels a row spam when any feature is set and
// records how often it is called
type countingClassifier struct {
	trainCalls   int
	predictCalls int
	trainErr     error
}

func (c *countingClassifier) Train(_ context.Context, features FeatureMatrix, labels []Label) (*Model, error) {
	c.trainCalls++
	if c.trainErr != nil {
		return nil, c.trainErr
	}
	width := 0
	if len(features) > 0 {
		width = len(features[0])
	}
	return &Model{Algorithm: "fake", Weights: make([]float64, width)}, nil
}

func (c *countingClassifier) Predict(_ context.Context, model *Model, features FeatureMatrix) ([]Label, error) {
	c.predictCalls++
	labels := make([]Label, len(features))
	for i, row := range features {
		for _, v := range row {
			if v != 0 {
				labels[i] = Spam
				break
			}
		}
	}
	return labels, nil
}

// sliceSource serves a fixed corpus
type sliceSource struct {
	items []CorpusItem
}

func (s sliceSource) Messages(_ context.Context) ([]CorpusItem, error) {
	return s.items, nil
}

// mapSource resolves identifiers from a map
type mapSource map[string]string

func (m mapSource) Fetch(_ context.Context, id string) (string, error) {
	raw, ok := m[id]
	if !ok {
		return "", &SourceUnreadableError{ID: id, Err: os.ErrNotExist}
	}
	return raw, nil
}

func newTestPipeline(clf Classifier) *Pipeline {
	return NewPipeline(identityStemmer{}, clf, zap.NewNop(), 10, nil, 0)
}

func TestPipeline_Train(t *testing.T) {
	t.Run("reaches ready and freezes the pair", func(t *testing.T) {
		clf := &countingClassifier{}
		p := newTestPipeline(clf)
		source := sliceSource{items: []CorpusItem{
			{ID: "1", IsSpam: true, RawText: "buy cheap meds"},
			{ID: "2", IsSpam: false, RawText: "meeting notes"},
		}}

		trained, err := p.Train(context.Background(), source)
		require.NoError(t, err)
		assert.Equal(t, StateReady, p.State())
		assert.Equal(t, 1, clf.trainCalls)
		assert.Len(t, trained.Model.Weights, len(trained.Vocabulary))
		assert.Same(t, trained, p.Trained())
	})

	t.Run("skips unreadable messages without aborting", func(t *testing.T) {
		clf := &countingClassifier{}
		p := newTestPipeline(clf)
		source := sliceSource{items: []CorpusItem{
			{ID: "1", IsSpam: true, RawText: "buy cheap meds"},
			{ID: "2", IsSpam: true, Err: &SourceUnreadableError{ID: "2", Err: os.ErrPermission}},
			{ID: "3", IsSpam: false, RawText: "meeting notes"},
		}}

		trained, err := p.Train(context.Background(), source)
		require.NoError(t, err)
		// the unreadable message contributes nothing to the vocabulary
		assert.NotContains(t, trained.Vocabulary, "")
		assert.Len(t, trained.Vocabulary, 5)
	})

	t.Run("fails when nothing is readable", func(t *testing.T) {
		p := newTestPipeline(&countingClassifier{})
		source := sliceSource{items: []CorpusItem{
			{ID: "1", IsSpam: true, Err: &SourceUnreadableError{ID: "1", Err: os.ErrPermission}},
		}}

		_, err := p.Train(context.Background(), source)
		assert.Error(t, err)
	})

	t.Run("classifier failure leaves vocabulary built", func(t *testing.T) {
		clf := &countingClassifier{trainErr: errors.New("diverged")}
		p := newTestPipeline(clf)
		source := sliceSource{items: []CorpusItem{
			{ID: "1", IsSpam: true, RawText: "buy cheap meds"},
		}}

		_, err := p.Train(context.Background(), source)
		require.Error(t, err)
		assert.Equal(t, StateVocabularyBuilt, p.State())
	})
}

func TestPipeline_PredictSamples(t *testing.T) {
	source := mapSource{
		"spammy": "buy cheap meds now",
		"hammy":  "unrelated words only",
	}

	trainedPipeline := func(t *testing.T) *Pipeline {
		t.Helper()
		p := newTestPipeline(&countingClassifier{})
		_, err := p.Train(context.Background(), sliceSource{items: []CorpusItem{
			{ID: "1", IsSpam: true, RawText: "buy cheap meds now"},
			{ID: "2", IsSpam: false, RawText: "meeting notes attached"},
		}})
		require.NoError(t, err)
		return p
	}

	t.Run("empty batch is a no-op", func(t *testing.T) {
		clf := &countingClassifier{}
		p := newTestPipeline(clf)
		_, err := p.Train(context.Background(), sliceSource{items: []CorpusItem{
			{ID: "1", IsSpam: true, RawText: "buy"},
		}})
		require.NoError(t, err)

		results, err := p.PredictSamples(context.Background(), source, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Zero(t, clf.predictCalls)
	})

	t.Run("untrained pipeline reports vocabulary not built", func(t *testing.T) {
		p := newTestPipeline(&countingClassifier{})
		_, err := p.PredictSamples(context.Background(), source, []string{"spammy"})
		assert.ErrorIs(t, err, ErrVocabularyNotBuilt)
	})

	t.Run("vocabulary without model reports model not trained", func(t *testing.T) {
		p := newTestPipeline(&countingClassifier{trainErr: errors.New("diverged")})
		_, err := p.Train(context.Background(), sliceSource{items: []CorpusItem{
			{ID: "1", IsSpam: true, RawText: "buy"},
		}})
		require.Error(t, err)

		_, err = p.PredictSamples(context.Background(), source, []string{"spammy"})
		assert.ErrorIs(t, err, ErrModelNotTrained)
		assert.NotErrorIs(t, err, ErrVocabularyNotBuilt)
	})

	t.Run("results align with identifiers across unreadable items", func(t *testing.T) {
		p := trainedPipeline(t)
		ids := []string{"spammy", "missing", "hammy"}

		results, err := p.PredictSamples(context.Background(), source, ids)
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, "spammy", results[0].ID)
		assert.True(t, results[0].IsSpam)
		assert.NoError(t, results[0].Err)

		assert.Equal(t, "missing", results[1].ID)
		var unreadable *SourceUnreadableError
		assert.ErrorAs(t, results[1].Err, &unreadable)

		assert.Equal(t, "hammy", results[2].ID)
		assert.False(t, results[2].IsSpam)
		assert.NoError(t, results[2].Err)
	})
}

func TestPipeline_ClassifyTokens(t *testing.T) {
	t.Run("fails before ready", func(t *testing.T) {
		p := newTestPipeline(&countingClassifier{})
		result, err := p.ClassifyTokens(context.Background(), TokenizedMessage{"buy"})
		assert.ErrorIs(t, err, ErrVocabularyNotBuilt)
		assert.Nil(t, result)
	})

	t.Run("classifies against the frozen vocabulary", func(t *testing.T) {
		p := newTestPipeline(&countingClassifier{})
		_, err := p.Train(context.Background(), sliceSource{items: []CorpusItem{
			{ID: "1", IsSpam: true, RawText: "buy cheap meds"},
			{ID: "2", IsSpam: false, RawText: "meeting notes"},
		}})
		require.NoError(t, err)

		result, err := p.ClassifyTokens(context.Background(), TokenizedMessage{"cheap"})
		require.NoError(t, err)
		assert.True(t, result.IsSpam)

		result, err = p.ClassifyTokens(context.Background(), TokenizedMessage{"unknown"})
		require.NoError(t, err)
		assert.False(t, result.IsSpam)
	})
}

func TestPipeline_Adopt(t *testing.T) {
	t.Run("installs a matched pair", func(t *testing.T) {
		p := newTestPipeline(&countingClassifier{})
		trained, err := NewTrainedPipeline(Vocabulary{"a", "b"}, &Model{Algorithm: "fake", Weights: []float64{1, -1}})
		require.NoError(t, err)

		require.NoError(t, p.Adopt(trained))
		assert.Equal(t, StateReady, p.State())
	})

	t.Run("rejects a mismatched pair", func(t *testing.T) {
		p := newTestPipeline(&countingClassifier{})
		err := p.Adopt(&TrainedPipeline{
			Vocabulary: Vocabulary{"a", "b"},
			Model:      &Model{Algorithm: "fake", Weights: []float64{1}},
		})
		assert.Error(t, err)
		assert.Equal(t, StateUntrained, p.State())
	})

	t.Run("rejects nil", func(t *testing.T) {
		p := newTestPipeline(&countingClassifier{})
		assert.ErrorIs(t, p.Adopt(nil), ErrModelNotTrained)
	})
}

func TestNewTrainedPipeline(t *testing.T) {
	t.Run("width mismatch is rejected", func(t *testing.T) {
		_, err := NewTrainedPipeline(Vocabulary{"a"}, &Model{Weights: []float64{1, 2}})
		assert.Error(t, err)
	})

	t.Run("nil model is rejected", func(t *testing.T) {
		_, err := NewTrainedPipeline(Vocabulary{"a"}, nil)
		assert.ErrorIs(t, err, ErrModelNotTrained)
	})

	t.Run("empty vocabulary pairs with empty weights", func(t *testing.T) {
		_, err := NewTrainedPipeline(Vocabulary{}, &Model{Weights: []float64{}})
		assert.NoError(t, err)
	})
}
