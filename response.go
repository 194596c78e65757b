package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Request is the input accepted at the request boundary. A nil Text means the
// field was absent.
type Request struct {
	Text *string `json:"text"`
}

// NewRequest returns a request carrying text.
func NewRequest(text string) Request {
	return Request{Text: &text}
}

// A Response is either a Success or a Failure.
type Response interface {
	Succeeded() bool
	response()
}

// Success is the response for a scored text.
type Success struct {
	Text         string        `json:"text"`
	Sentiment    Label         `json:"sentiment"`
	Confidence   float64       `json:"confidence"`
	Backend      Backend       `json:"backend"`
	Emotions     []string      `json:"emotions,omitempty"`
	WordAnalysis *WordAnalysis `json:"word_analysis,omitempty"`
}

// Succeeded returns true.
func (Success) Succeeded() bool { return true }
func (Success) response()       {}

// MarshalJSON adds the success flag.
func (s Success) MarshalJSON() ([]byte, error) {
	type body Success
	return json.Marshal(struct {
		body
		Success bool `json:"success"`
	}{body(s), true})
}

// Failure is the response for a request that could not be scored. Status is
// StatusBadRequest for missing or empty text and StatusInternal otherwise.
type Failure struct {
	Kind   ErrorKind `json:"-"`
	Status string    `json:"-"`
	Error  string    `json:"error"`
}

// Succeeded returns false.
func (Failure) Succeeded() bool { return false }
func (Failure) response()       {}

// MarshalJSON adds the success flag.
func (f Failure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error   string `json:"error"`
		Success bool   `json:"success"`
	}{f.Error, false})
}

// ParseRequest decodes a JSON request body.
func ParseRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, newError(KindInputValidation, "invalid JSON data", err)
	}
	return req, nil
}

// FailureFrom converts err into a Failure.
func FailureFrom(err error) Failure {
	e := &Error{Kind: KindOf(err)}
	return Failure{Kind: e.Kind, Status: e.Status(), Error: err.Error()}
}

// Handle validates req, scores it with scorer and shapes the outcome. A panic
// inside the scorer is reported as an internal failure.
func Handle(ctx context.Context, scorer Scorer, req Request) (resp Response) {
	if req.Text == nil {
		return FailureFrom(newError(KindInputValidation, "no text provided", nil))
	}
	text := *req.Text
	if strings.TrimSpace(text) == "" {
		return FailureFrom(newError(KindInputValidation, "empty text provided", ErrEmptyInput))
	}

	defer func() {
		if r := recover(); r != nil {
			resp = FailureFrom(newError(KindUnexpectedScoring, fmt.Sprintf("panic while scoring: %v", r), nil))
		}
	}()

	result, err := scorer.Score(ctx, text)
	if err != nil {
		return FailureFrom(err)
	}
	return Success{
		Text:         text,
		Sentiment:    result.Label,
		Confidence:   result.Confidence,
		Backend:      result.Backend,
		Emotions:     result.Emotions,
		WordAnalysis: result.WordAnalysis,
	}
}
