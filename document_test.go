package sentiment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	text := "I love this product. This is terrible and awful. The table is on the floor."
	doc, err := NewDocument(context.Background(), NewLexiconScorer(), text)
	require.NoError(t, err)

	assert.Equal(t, text, doc.Text)
	assert.Equal(t, Negative, doc.Result.Label)
	assert.Equal(t, LexiconBackend, doc.Metadata.Backend)
	assert.False(t, doc.Metadata.ProcessedAt.IsZero())

	sentences := doc.Sentences()
	require.Len(t, sentences, 3)
	assert.Equal(t, 3, doc.Metadata.SentenceCount)

	expected := []Label{Positive, Negative, Neutral}
	for i, s := range sentences {
		assert.Equal(t, expected[i], s.Result.Label, s.Text)
		assert.NotContains(t, s.Text, "  ")
	}
	assert.Equal(t, "I love this product.", sentences[0].Text)
}

func TestNewDocumentOptions(t *testing.T) {
	doc, err := NewDocument(context.Background(), NewLexiconScorer(), "Great. Awful.", WithSegmentation(false))
	require.NoError(t, err)
	assert.Empty(t, doc.Sentences())
	assert.Equal(t, 0, doc.Metadata.SentenceCount)

	doc, err = NewDocument(context.Background(), NewLexiconScorer(), "Great! 🙂", WithTimeout(time.Second))
	require.NoError(t, err)
	for _, s := range doc.Sentences() {
		assert.NotEmpty(t, Normalize(s.Text))
	}
}

func TestNewDocumentErrors(t *testing.T) {
	_, err := NewDocument(context.Background(), NewLexiconScorer(), "  ")
	assert.True(t, IsKind(err, KindInputValidation))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewDocument(ctx, NewLexiconScorer(), "Great.")
	assert.ErrorIs(t, err, context.Canceled)
}
