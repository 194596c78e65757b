package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// Lexicon holds the word lists of the fallback scorer.
type Lexicon struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
	Neutral  []string `json:"neutral"`
}

// DefaultLexicon returns the compiled-in word lists.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: append([]string(nil), positiveWords...),
		Negative: append([]string(nil), negativeWords...),
		Neutral:  append([]string(nil), neutralIndicators...),
	}
}

// LoadLexicon reads word lists from a JSON file shaped like Lexicon. Lists
// left out of the file keep their compiled-in defaults.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("error reading lexicon file: %w", err)
	}
	var external Lexicon
	if err := json.Unmarshal(data, &external); err != nil {
		return Lexicon{}, fmt.Errorf("error parsing lexicon JSON: %w", err)
	}

	lex := DefaultLexicon()
	if external.Positive != nil {
		lex.Positive = lowerAll(external.Positive)
	}
	if external.Negative != nil {
		lex.Negative = lowerAll(external.Negative)
	}
	if external.Neutral != nil {
		lex.Neutral = lowerAll(external.Neutral)
	}
	return lex, nil
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// A Matcher decides whether a token counts toward a word list.
type Matcher interface {
	Match(token string, words []string) bool
}

// SubstringMatcher counts a token when it contains any list entry, so "loved"
// matches "love" and, less helpfully, "goodbye" matches "good". This loose
// policy is the documented behavior of the fallback.
type SubstringMatcher struct{}

// Match implements Matcher.
func (SubstringMatcher) Match(token string, words []string) bool {
	for _, w := range words {
		if strings.Contains(token, w) {
			return true
		}
	}
	return false
}

// ExactMatcher counts a token only when it equals a list entry.
type ExactMatcher struct{}

// Match implements Matcher.
func (ExactMatcher) Match(token string, words []string) bool {
	for _, w := range words {
		if token == w {
			return true
		}
	}
	return false
}

// LexiconOption configures a LexiconScorer.
type LexiconOption func(*LexiconScorer)

// UsingLexicon replaces the word lists.
func UsingLexicon(lex Lexicon) LexiconOption {
	return func(s *LexiconScorer) {
		s.lexicon = lex
	}
}

// UsingMatcher replaces the token matching policy.
func UsingMatcher(m Matcher) LexiconOption {
	return func(s *LexiconScorer) {
		s.matcher = m
	}
}

// LexiconScorer is the model-free fallback. It counts tokens that match
// fixed positive, negative and neutral word lists and derives a heuristic
// confidence from how dense those matches are. It is a safety net with lower
// fidelity than the learned pipeline and its confidence is not calibrated.
type LexiconScorer struct {
	lexicon Lexicon
	matcher Matcher
}

// NewLexiconScorer creates a fallback scorer with the compiled-in lists and
// substring matching unless options say otherwise.
func NewLexiconScorer(opts ...LexiconOption) *LexiconScorer {
	s := &LexiconScorer{
		lexicon: DefaultLexicon(),
		matcher: SubstringMatcher{},
	}
	for _, applyOpt := range opts {
		applyOpt(s)
	}
	return s
}

// Backend returns LexiconBackend.
func (s *LexiconScorer) Backend() Backend {
	return LexiconBackend
}

// Score rejects blank text, then normalizes and analyzes it.
func (s *LexiconScorer) Score(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, newError(KindInputValidation, "text is empty", ErrEmptyInput)
	}
	return s.Analyze(Normalize(text)), nil
}

// Analyze scores already normalized text. It never fails; text without any
// words is neutral.
func (s *LexiconScorer) Analyze(text string) Result {
	words := strings.Fields(strings.ToLower(text))

	var pos, neg, neu int
	for _, w := range words {
		if s.matcher.Match(w, s.lexicon.Positive) {
			pos++
		}
		if s.matcher.Match(w, s.lexicon.Negative) {
			neg++
		}
		if s.matcher.Match(w, s.lexicon.Neutral) {
			neu++
		}
	}

	density := 0.0
	if len(words) > 0 {
		density = float64(pos+neg+neu) / float64(len(words))
	}
	base := math.Min(0.6+density*0.3, 0.95)

	var (
		label      Label
		confidence float64
	)
	switch {
	case pos > neg && pos > neu:
		label = Positive
		confidence = base + 0.05*float64(pos-max(neg, neu))
	case neg > pos && neg > neu:
		label = Negative
		confidence = base + 0.05*float64(neg-max(pos, neu))
	default:
		label = Neutral
		confidence = base
	}
	confidence = clamp(confidence, 0.5, 0.98)

	return Result{
		Label:      label,
		Backend:    LexiconBackend,
		Confidence: math.Round(confidence*1000) / 1000,
		Emotions:   append([]string(nil), emotionTags[label]...),
		WordAnalysis: &WordAnalysis{
			PositiveWords: pos,
			NegativeWords: neg,
			NeutralWords:  neu,
			TotalWords:    len(words),
		},
	}
}

// emotionTags are the illustrative top-3 tags reported for each outcome.
var emotionTags = map[Label][]string{
	Positive: {"joy", "satisfaction", "optimism"},
	Negative: {"disappointment", "frustration", "concern"},
	Neutral:  {"calm", "balanced", "informative"},
}

var positiveWords = []string{
	"good", "great", "excellent", "amazing", "wonderful", "love", "fantastic",
	"awesome", "happy", "perfect", "beautiful", "brilliant", "outstanding",
	"superb", "marvelous", "delighted", "thrilled", "excited", "pleased",
	"satisfied", "joy", "cheerful", "optimistic", "grateful", "blessed",
	"incredible", "magnificent", "spectacular", "phenomenal", "exceptional",
	"best", "better", "positive", "nice", "lovely",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "hate", "horrible", "disappointed", "worst",
	"sad", "angry", "frustrated", "disgusting", "annoying", "boring",
	"stupid", "ugly", "nasty", "rude", "mean", "cruel", "harsh", "bitter",
	"depressed", "miserable", "unhappy", "upset", "worried", "concerned",
	"dreadful", "appalling", "shocking", "outrageous",
	"worse", "negative", "poor", "lacking",
}

var neutralIndicators = []string{
	"okay", "fine", "alright", "normal", "average", "standard", "typical",
	"usual", "regular", "moderate", "fair", "adequate", "acceptable",
}
