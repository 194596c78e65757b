package sentiment

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// VectorizerConfig controls vocabulary construction.
type VectorizerConfig struct {
	MaxFeatures    int    // Vocabulary cap; 0 means unlimited.
	MaxNGram       int    // Upper n-gram bound.
	MinTokenLength int    // Shorter tokens are ignored.
	StopWords      string // ISO 639-1 stop-word language; "" disables filtering.
}

// DefaultVectorizerConfig returns the reference configuration: 10,000
// features, unigrams and bigrams, English stop words.
func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{
		MaxFeatures:    10000,
		MaxNGram:       2,
		MinTokenLength: 2,
		StopWords:      "en",
	}
}

// VectorizerOption changes a VectorizerConfig.
type VectorizerOption func(*VectorizerConfig)

// WithMaxFeatures caps the vocabulary size.
func WithMaxFeatures(n int) VectorizerOption {
	return func(c *VectorizerConfig) { c.MaxFeatures = n }
}

// WithNGramRange sets the upper n-gram bound.
func WithNGramRange(maxN int) VectorizerOption {
	return func(c *VectorizerConfig) { c.MaxNGram = maxN }
}

// WithMinTokenLength sets the minimum token length.
func WithMinTokenLength(n int) VectorizerOption {
	return func(c *VectorizerConfig) { c.MinTokenLength = n }
}

// WithStopWords selects the stop-word language. Pass "" to keep every token.
func WithStopWords(lang string) VectorizerOption {
	return func(c *VectorizerConfig) { c.StopWords = lang }
}

// A FeatureVector is a sparse TF-IDF vector. Indices are ascending and every
// index lies in [0, Dim).
type FeatureVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// validate checks that v is a well-formed vector of dimension dim.
func (v FeatureVector) validate(dim int) error {
	if v.Dim != dim {
		return fmt.Errorf("dimension %d, want %d", v.Dim, dim)
	}
	if len(v.Indices) != len(v.Values) {
		return fmt.Errorf("%d indices but %d values", len(v.Indices), len(v.Values))
	}
	for k, idx := range v.Indices {
		if idx < 0 || idx >= dim || (k > 0 && idx <= v.Indices[k-1]) {
			return fmt.Errorf("index %d at position %d is out of order or outside [0, %d)", idx, k, dim)
		}
	}
	return nil
}

// NNZ returns the number of stored entries.
func (v FeatureVector) NNZ() int {
	return len(v.Indices)
}

// At returns the value at index i.
func (v FeatureVector) At(i int) float64 {
	k := sort.SearchInts(v.Indices, i)
	if k < len(v.Indices) && v.Indices[k] == i {
		return v.Values[k]
	}
	return 0
}

// Dot returns the inner product of two sparse vectors.
func (v FeatureVector) Dot(w FeatureVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(w.Indices) {
		switch {
		case v.Indices[i] == w.Indices[j]:
			sum += v.Values[i] * w.Values[j]
			i++
			j++
		case v.Indices[i] < w.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// DotDense returns the inner product with a dense vector of length Dim.
func (v FeatureVector) DotDense(w []float64) float64 {
	var sum float64
	for k, idx := range v.Indices {
		sum += v.Values[k] * w[idx]
	}
	return sum
}

// SquaredNorm returns the squared L2 norm.
func (v FeatureVector) SquaredNorm() float64 {
	return floats.Dot(v.Values, v.Values)
}

// Vectorizer learns a vocabulary and IDF weights from a corpus and turns text
// into FeatureVectors. After Fit it is read-only and safe for concurrent use.
type Vectorizer struct {
	config     VectorizerConfig
	tokenizer  *ngramTokenizer
	stopWords  *stopWordFilter
	vocabulary map[string]int
	idf        []float64
	fitted     bool
}

// NewVectorizer creates an unfitted vectorizer.
func NewVectorizer(opts ...VectorizerOption) *Vectorizer {
	config := DefaultVectorizerConfig()
	for _, applyOpt := range opts {
		applyOpt(&config)
	}
	return newVectorizerFromConfig(config)
}

func newVectorizerFromConfig(config VectorizerConfig) *Vectorizer {
	filter := newStopWordFilter(config.StopWords)
	return &Vectorizer{
		config:    config,
		stopWords: filter,
		tokenizer: NewNGramTokenizer(
			UsingNGramRange(config.MaxNGram),
			UsingMinTokenLength(config.MinTokenLength),
			UsingStopWords(filter.IsStopWord),
		),
	}
}

// Config returns the configuration the vectorizer was built with.
func (v *Vectorizer) Config() VectorizerConfig {
	return v.config
}

// Fit builds the vocabulary and IDF statistics. It may be called once.
func (v *Vectorizer) Fit(corpus []string) error {
	if v.fitted {
		return ErrAlreadyFitted
	}

	counts := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]bool)
		for _, term := range v.tokenizer.Tokenize(doc) {
			counts[term]++
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}
	if len(counts) == 0 {
		return newError(KindTraining, "empty vocabulary after tokenization", nil)
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	if v.config.MaxFeatures > 0 && len(terms) > v.config.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if counts[terms[i]] != counts[terms[j]] {
				return counts[terms[i]] > counts[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.config.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	v.stopWords.freeze()
	v.fitted = true
	return nil
}

// FitTransform fits the vectorizer and transforms the same corpus.
func (v *Vectorizer) FitTransform(corpus []string) ([]FeatureVector, error) {
	if err := v.Fit(corpus); err != nil {
		return nil, err
	}
	return v.TransformAll(corpus)
}

// Transform converts normalized text into an L2-normalized TF-IDF vector.
// Terms outside the fitted vocabulary contribute nothing.
func (v *Vectorizer) Transform(text string) (FeatureVector, error) {
	if !v.fitted {
		return FeatureVector{}, ErrNotFitted
	}

	tf := make(map[int]float64)
	for _, term := range v.tokenizer.Tokenize(text) {
		if idx, found := v.vocabulary[term]; found {
			tf[idx]++
		}
	}

	vec := FeatureVector{
		Dim:     len(v.idf),
		Indices: make([]int, 0, len(tf)),
		Values:  make([]float64, 0, len(tf)),
	}
	for idx := range tf {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)
	for _, idx := range vec.Indices {
		vec.Values = append(vec.Values, tf[idx]*v.idf[idx])
	}

	if norm := floats.Norm(vec.Values, 2); norm > 0 {
		floats.Scale(1/norm, vec.Values)
	}
	return vec, nil
}

// TransformAll transforms every document in corpus.
func (v *Vectorizer) TransformAll(corpus []string) ([]FeatureVector, error) {
	vecs := make([]FeatureVector, len(corpus))
	for i, doc := range corpus {
		vec, err := v.Transform(doc)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// Len returns the vocabulary size.
func (v *Vectorizer) Len() int {
	return len(v.idf)
}

// Vocabulary returns a copy of the term-to-index mapping.
func (v *Vectorizer) Vocabulary() map[string]int {
	vocab := make(map[string]int, len(v.vocabulary))
	for term, idx := range v.vocabulary {
		vocab[term] = idx
	}
	return vocab
}

// IDF returns the inverse document frequency of term and whether the term is
// in the vocabulary.
func (v *Vectorizer) IDF(term string) (float64, bool) {
	idx, found := v.vocabulary[term]
	if !found {
		return 0, false
	}
	return v.idf[idx], true
}

// vectorizerState is the gob form of a fitted Vectorizer. Terms are stored in
// index order so the vocabulary can be rebuilt without gaps.
type vectorizerState struct {
	Config VectorizerConfig
	Terms  []string
	IDF    []float64
}

// GobEncode implements gob.GobEncoder.
func (v *Vectorizer) GobEncode() ([]byte, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}
	terms := make([]string, len(v.vocabulary))
	for term, idx := range v.vocabulary {
		terms[idx] = term
	}

	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(vectorizerState{Config: v.config, Terms: terms, IDF: v.idf})
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (v *Vectorizer) GobDecode(data []byte) error {
	var state vectorizerState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}
	if len(state.Terms) != len(state.IDF) {
		return fmt.Errorf("vectorizer has %d terms but %d idf weights", len(state.Terms), len(state.IDF))
	}

	*v = *newVectorizerFromConfig(state.Config)
	v.vocabulary = make(map[string]int, len(state.Terms))
	for idx, term := range state.Terms {
		if _, dup := v.vocabulary[term]; dup {
			return fmt.Errorf("duplicate vocabulary term %q", term)
		}
		v.vocabulary[term] = idx
		v.stopWords.remember(strings.Fields(term))
	}
	v.stopWords.freeze()
	v.idf = state.IDF
	v.fitted = true
	return nil
}
