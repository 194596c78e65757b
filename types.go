package sentiment

// Label is a sentiment class name.
type Label string

const (
	Negative Label = "negative"
	Neutral  Label = "neutral"
	Positive Label = "positive"
)

// String returns the label text.
func (l Label) String() string {
	return string(l)
}

// Backend identifies which scoring path produced a Result.
type Backend string

const (
	// LearnedBackend is the TF-IDF + kernel classifier path.
	LearnedBackend Backend = "learned"
	// LexiconBackend is the word-list fallback.
	LexiconBackend Backend = "lexicon"
)

// A Result is the outcome of scoring one text.
type Result struct {
	Label   Label   `json:"label"`   // Winning class.
	Backend Backend `json:"backend"` // Scoring path that produced the result.

	// Confidence has different meanings per backend. For LexiconBackend it is a
	// heuristic score in [0.5, 0.98]. For LearnedBackend it is the largest
	// absolute decision value across classes, which is a margin and not a
	// calibrated probability.
	Confidence float64 `json:"confidence"`

	// Scores holds the per-class decision values (learned path only).
	Scores map[Label]float64 `json:"scores,omitempty"`

	Emotions     []string      `json:"emotions,omitempty"`      // Illustrative emotion tags (lexicon path only).
	WordAnalysis *WordAnalysis `json:"word_analysis,omitempty"` // Word counts behind the decision (lexicon path only).
}

// WordAnalysis reports the lexicon counters for one text.
type WordAnalysis struct {
	PositiveWords int `json:"positive_words"`
	NegativeWords int `json:"negative_words"`
	NeutralWords  int `json:"neutral_words"`
	TotalWords    int `json:"total_words"`
}
