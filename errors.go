package sentiment

import (
	"errors"
	"fmt"
)

// ErrorKind is the category of a pipeline failure.
type ErrorKind string

const (
	// KindInputValidation marks text that is empty once normalized.
	KindInputValidation ErrorKind = "input_validation"
	// KindArtifactMissing marks an absent classifier, vectorizer or label codec.
	KindArtifactMissing ErrorKind = "artifact_missing"
	// KindArtifactCorrupt marks an artifact that exists but cannot be decoded.
	KindArtifactCorrupt ErrorKind = "artifact_corrupt"
	// KindCodecMismatch marks ids or artifacts that do not belong to the same training run.
	KindCodecMismatch ErrorKind = "codec_mismatch"
	// KindUnexpectedScoring marks any other failure during extraction or prediction.
	KindUnexpectedScoring ErrorKind = "unexpected_scoring"
	// KindTraining marks a training run that cannot proceed with the given corpus.
	KindTraining ErrorKind = "training"
)

// Status classes reported at the request boundary.
const (
	StatusBadRequest = "bad_request"
	StatusInternal   = "internal"
)

var (
	// ErrEmptyInput is returned when text normalizes to the empty string.
	ErrEmptyInput = errors.New("empty text provided")
	// ErrOutOfRange is returned when a class id is outside the fitted label space.
	ErrOutOfRange = errors.New("class id out of range")
	// ErrNotFitted is returned when a transform is attempted before fitting.
	ErrNotFitted = errors.New("not fitted")
	// ErrAlreadyFitted is returned when Fit is called a second time.
	ErrAlreadyFitted = errors.New("already fitted")
)

// Error is a categorized pipeline error.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. This lets callers
// match on a kind with errors.Is(err, &Error{Kind: KindCodecMismatch}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

// Status classifies the error for the request boundary.
func (e *Error) Status() string {
	if e.Kind == KindInputValidation {
		return StatusBadRequest
	}
	return StatusInternal
}

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of err, or KindUnexpectedScoring for errors that
// were not produced by this package.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpectedScoring
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	return errors.Is(err, &Error{Kind: kind})
}
