package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/linear-spam-filter/internal/adapters/classifier"
	"github.com/mikey/linear-spam-filter/internal/adapters/stemmer"
	"github.com/mikey/linear-spam-filter/internal/core"
)

type staticSource struct {
	items []core.CorpusItem
}

func (s staticSource) Messages(_ context.Context) ([]core.CorpusItem, error) {
	return s.items, nil
}

type staticMessages map[string]string

func (m staticMessages) Fetch(_ context.Context, id string) (string, error) {
	raw, ok := m[id]
	if !ok {
		return "", &core.SourceUnreadableError{ID: id}
	}
	return raw, nil
}

// Trains the real stemmer and classifier end to end on a tiny corpus
// and classifies held-out messages.
func TestPipeline_EndToEnd(t *testing.T) {
	logger := zap.NewNop()
	clf := classifier.NewLogisticRegression(logger, 500, 0.5, 0)
	p := core.NewPipeline(stemmer.NewSnowball(), clf, logger, 20, nil, 0)

	source := staticSource{items: []core.CorpusItem{
		{ID: "s1", IsSpam: true, RawText: "Buy CHEAP meds now!!! Visit http://pills.example"},
		{ID: "s2", IsSpam: true, RawText: "cheap meds, cheap pills, buy today for $9"},
		{ID: "s3", IsSpam: true, RawText: "limited offer: buy meds now"},
		{ID: "h1", IsSpam: false, RawText: "meeting notes attached for the project"},
		{ID: "h2", IsSpam: false, RawText: "schedule the project meeting and share notes"},
		{ID: "h3", IsSpam: false, RawText: "project schedule attached"},
	}}

	trained, err := p.Train(context.Background(), source)
	require.NoError(t, err)
	require.Equal(t, core.StateReady, p.State())
	require.Len(t, trained.Model.Weights, len(trained.Vocabulary))

	t.Run("held-out spam is flagged", func(t *testing.T) {
		result, err := p.ClassifyTokens(context.Background(), p.Tokenize("cheap meds available, buy now"))
		require.NoError(t, err)
		assert.True(t, result.IsSpam)
		assert.Greater(t, result.Score, 0.5)
	})

	t.Run("held-out ham passes", func(t *testing.T) {
		result, err := p.ClassifyTokens(context.Background(), p.Tokenize("notes from the project meeting"))
		require.NoError(t, err)
		assert.False(t, result.IsSpam)
		assert.Less(t, result.Score, 0.5)
	})

	t.Run("batch prediction aligns with identifiers", func(t *testing.T) {
		messages := staticMessages{
			"spam.txt": "Subject: offer\n\nbuy cheap meds now",
			"ham.txt":  "Subject: minutes\n\nproject meeting notes attached",
		}

		results, err := p.PredictSamples(context.Background(), messages, []string{"spam.txt", "gone.txt", "ham.txt"})
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.True(t, results[0].IsSpam)
		assert.Error(t, results[1].Err)
		assert.False(t, results[2].IsSpam)
	})
}

// Retraining on a different corpus replaces the frozen pair wholesale.
func TestPipeline_Retrain(t *testing.T) {
	logger := zap.NewNop()
	clf := classifier.NewLogisticRegression(logger, 200, 0.5, 0)
	p := core.NewPipeline(stemmer.NewSnowball(), clf, logger, 5, nil, 0)

	_, err := p.Train(context.Background(), staticSource{items: []core.CorpusItem{
		{ID: "1", IsSpam: true, RawText: "alpha beta"},
		{ID: "2", IsSpam: false, RawText: "gamma delta"},
	}})
	require.NoError(t, err)
	first := p.Trained()

	_, err = p.Train(context.Background(), staticSource{items: []core.CorpusItem{
		{ID: "1", IsSpam: true, RawText: "epsilon zeta"},
		{ID: "2", IsSpam: false, RawText: "eta theta"},
	}})
	require.NoError(t, err)
	second := p.Trained()

	assert.NotEqual(t, first.Vocabulary, second.Vocabulary)
	assert.Equal(t, core.StateReady, p.State())
}
