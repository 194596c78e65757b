package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubScorer returns canned outcomes and counts calls.
type stubScorer struct {
	result Result
	err    error
	panic  any
	calls  int
}

func (s *stubScorer) Backend() Backend { return s.result.Backend }

func (s *stubScorer) Score(_ context.Context, _ string) (Result, error) {
	s.calls++
	if s.panic != nil {
		panic(s.panic)
	}
	return s.result, s.err
}

func TestHandleRejectsBlankText(t *testing.T) {
	tests := []struct {
		desc string
		req  Request
	}{
		{"Missing text", Request{}},
		{"Empty text", NewRequest("")},
		{"Whitespace text", NewRequest("   ")},
		{"Tabs and newlines", NewRequest("\t\n")},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			scorer := &stubScorer{}
			resp := Handle(context.Background(), scorer, tt.req)

			require.IsType(t, Failure{}, resp)
			failure := resp.(Failure)
			assert.False(t, failure.Succeeded())
			assert.Equal(t, KindInputValidation, failure.Kind)
			assert.Equal(t, StatusBadRequest, failure.Status)
			assert.Zero(t, scorer.calls, "scorer must not be called")
		})
	}
}

func TestHandleSuccess(t *testing.T) {
	resp := Handle(context.Background(), NewLexiconScorer(), NewRequest("I love this!"))
	require.IsType(t, Success{}, resp)
	success := resp.(Success)
	assert.True(t, success.Succeeded())
	assert.Equal(t, "I love this!", success.Text)
	assert.Equal(t, Positive, success.Sentiment)
	assert.Equal(t, LexiconBackend, success.Backend)
	assert.NotNil(t, success.WordAnalysis)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "positive", body["sentiment"])
	assert.Equal(t, "I love this!", body["text"])
	assert.Contains(t, body, "confidence")
	assert.Contains(t, body, "emotions")
	assert.Contains(t, body["word_analysis"], "positive_words")
}

func TestHandleLearnedShape(t *testing.T) {
	scorer := &stubScorer{result: Result{Label: Negative, Backend: LearnedBackend, Confidence: 1.7}}
	resp := Handle(context.Background(), scorer, NewRequest("bad"))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"bad","sentiment":"negative","confidence":1.7,"backend":"learned","success":true}`, string(data))
}

func TestHandleFailures(t *testing.T) {
	tests := []struct {
		desc   string
		scorer *stubScorer
		kind   ErrorKind
		status string
	}{
		{"Unexpected error", &stubScorer{err: errors.New("boom")}, KindUnexpectedScoring, StatusInternal},
		{"Codec mismatch", &stubScorer{err: newError(KindCodecMismatch, "bad id", ErrOutOfRange)}, KindCodecMismatch, StatusInternal},
		{"Normalizes to nothing", &stubScorer{err: newError(KindInputValidation, "empty", ErrEmptyInput)}, KindInputValidation, StatusBadRequest},
		{"Panic", &stubScorer{panic: "index out of range"}, KindUnexpectedScoring, StatusInternal},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			resp := Handle(context.Background(), tt.scorer, NewRequest("some text"))
			require.IsType(t, Failure{}, resp)
			failure := resp.(Failure)
			assert.Equal(t, tt.kind, failure.Kind)
			assert.Equal(t, tt.status, failure.Status)
			assert.NotEmpty(t, failure.Error)

			data, err := json.Marshal(resp)
			require.NoError(t, err)
			var body map[string]any
			require.NoError(t, json.Unmarshal(data, &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, failure.Error, body["error"])
			assert.Len(t, body, 2)
		})
	}
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"text": "hello"}`))
	require.NoError(t, err)
	require.NotNil(t, req.Text)
	assert.Equal(t, "hello", *req.Text)

	req, err = ParseRequest([]byte(`{}`))
	require.NoError(t, err)
	assert.Nil(t, req.Text)

	_, err = ParseRequest([]byte(`{"text": `))
	assert.True(t, IsKind(err, KindInputValidation))
}
