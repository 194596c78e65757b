package sentiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
)

// A Scorer assigns a sentiment to raw text. The learned pipeline and the
// lexicon fallback both implement it, so callers do not care which backend
// is active.
type Scorer interface {
	Score(ctx context.Context, text string) (Result, error)
	Backend() Backend
}

// Pipeline is the learned scoring path: normalize, vectorize, classify and
// decode. It only reads its artifacts and is safe for concurrent use.
type Pipeline struct {
	artifacts *Artifacts
}

// NewPipeline wraps a validated artifact set.
func NewPipeline(artifacts *Artifacts) (*Pipeline, error) {
	if artifacts == nil {
		return nil, newError(KindArtifactMissing, "no artifacts", nil)
	}
	if err := artifacts.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{artifacts: artifacts}, nil
}

// Backend returns LearnedBackend.
func (p *Pipeline) Backend() Backend {
	return LearnedBackend
}

// Artifacts returns the artifact set behind the pipeline.
func (p *Pipeline) Artifacts() *Artifacts {
	return p.artifacts
}

// Score classifies text. Confidence is the largest absolute decision value
// across classes: a distance to the separating boundary, not a probability.
func (p *Pipeline) Score(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	clean := Normalize(text)
	if clean == "" {
		return Result{}, newError(KindInputValidation, "text is empty after normalization", ErrEmptyInput)
	}

	vec, err := p.artifacts.Vectorizer.Transform(clean)
	if err != nil {
		return Result{}, newError(KindUnexpectedScoring, "feature extraction failed", err)
	}
	decision := p.artifacts.Classifier.DecisionFunction(vec)

	best, confidence := 0, 0.0
	for k, d := range decision {
		if d > decision[best] {
			best = k
		}
		confidence = math.Max(confidence, math.Abs(d))
	}
	label, err := p.artifacts.Codec.Decode(best)
	if err != nil {
		return Result{}, err
	}

	scores := make(map[Label]float64, len(decision))
	for k, d := range decision {
		l, err := p.artifacts.Codec.Decode(k)
		if err != nil {
			return Result{}, err
		}
		scores[l] = d
	}

	return Result{
		Label:      label,
		Backend:    LearnedBackend,
		Confidence: confidence,
		Scores:     scores,
	}, nil
}

// NewScorer loads the artifacts in dir and returns the learned pipeline. When
// the set is missing or corrupt it logs the reason and returns the lexicon
// fallback instead. Artifacts that load but disagree with each other are
// still an error, since that indicates mixed training runs. opts configure the
// fallback.
func NewScorer(dir string, logger *slog.Logger, opts ...LexiconOption) (Scorer, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if strings.TrimSpace(dir) == "" {
		logger.Warn("no artifact directory configured, using lexicon fallback")
		return NewLexiconScorer(opts...), nil
	}

	artifacts, err := ArtifactsFromDisk(dir)
	switch {
	case err == nil:
		logger.Info("loaded artifacts", "dir", dir, "run_id", artifacts.RunID,
			"vocabulary", artifacts.Vectorizer.Len(), "params", artifacts.Classifier.Params.String())
		return NewPipeline(artifacts)
	case IsKind(err, KindArtifactMissing), IsKind(err, KindArtifactCorrupt):
		logger.Warn("artifacts unavailable, using lexicon fallback", "dir", dir, "error", err)
		return NewLexiconScorer(opts...), nil
	default:
		return nil, fmt.Errorf("loading artifacts from %s: %w", dir, err)
	}
}
