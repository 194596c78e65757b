package sentiment

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelCodec(t *testing.T) {
	codec := NewLabelCodec()
	require.NoError(t, codec.Fit([]string{"positive", "negative", "neutral", "positive"}))

	assert.Equal(t, []Label{Negative, Neutral, Positive}, codec.Labels())
	assert.Equal(t, 3, codec.Len())

	for id, label := range codec.Labels() {
		t.Run(label.String(), func(t *testing.T) {
			got, err := codec.Encode(string(label))
			require.NoError(t, err)
			assert.Equal(t, id, got)

			back, err := codec.Decode(got)
			require.NoError(t, err)
			assert.Equal(t, label, back)
		})
	}
}

func TestLabelCodecErrors(t *testing.T) {
	unfitted := NewLabelCodec()
	_, err := unfitted.Encode("positive")
	assert.ErrorIs(t, err, ErrNotFitted)

	codec := NewLabelCodec()
	require.NoError(t, codec.Fit([]string{"b", "a"}))
	assert.ErrorIs(t, codec.Fit([]string{"c"}), ErrAlreadyFitted)

	_, err = codec.Encode("c")
	assert.True(t, IsKind(err, KindCodecMismatch))

	for _, id := range []int{-1, 2, 100} {
		_, err := codec.Decode(id)
		assert.True(t, IsKind(err, KindCodecMismatch), "id %d", id)
		assert.ErrorIs(t, err, ErrOutOfRange, "id %d", id)
	}

	_, err = codec.EncodeAll([]string{"a", "b", "z"})
	assert.Error(t, err)

	assert.True(t, IsKind(NewLabelCodec().Fit(nil), KindTraining))
}

func TestLabelCodecGob(t *testing.T) {
	codec := NewLabelCodec()
	require.NoError(t, codec.Fit([]string{"neutral", "positive", "negative"}))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(codec))
	var restored LabelCodec
	require.NoError(t, gob.NewDecoder(&buf).Decode(&restored))

	// Lookups work before the index is rebuilt.
	id, err := restored.Encode("positive")
	require.NoError(t, err)
	assert.Equal(t, 2, id)

	restored.buildIndex()
	ids, err := restored.EncodeAll([]string{"negative", "neutral", "positive"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, ids)
}
