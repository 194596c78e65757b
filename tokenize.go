package sentiment

import (
	"strings"
)

// TokenTester reports whether a token should be dropped.
type TokenTester func(string) bool

// Tokenizer splits normalized text into the terms counted by the vectorizer.
type Tokenizer interface {
	Tokenize(string) []string
}

// ngramTokenizer splits on whitespace, filters stop words and short tokens,
// then emits every n-gram from 1 up to maxN over the surviving tokens.
type ngramTokenizer struct {
	maxN       int
	minLength  int
	isStopWord TokenTester
}

// TokenizerOptFunc configures an ngramTokenizer.
type TokenizerOptFunc func(*ngramTokenizer)

// UsingNGramRange sets the upper n-gram bound.
func UsingNGramRange(maxN int) TokenizerOptFunc {
	return func(tokenizer *ngramTokenizer) {
		tokenizer.maxN = maxN
	}
}

// UsingMinTokenLength drops tokens shorter than n bytes.
func UsingMinTokenLength(n int) TokenizerOptFunc {
	return func(tokenizer *ngramTokenizer) {
		tokenizer.minLength = n
	}
}

// UsingStopWords gives a function that tests whether a token is a stop word.
func UsingStopWords(x TokenTester) TokenizerOptFunc {
	return func(tokenizer *ngramTokenizer) {
		tokenizer.isStopWord = x
	}
}

// NewNGramTokenizer returns the tokenizer used by the vectorizer. By default it
// keeps unigrams and bigrams of tokens with at least two characters.
func NewNGramTokenizer(opts ...TokenizerOptFunc) *ngramTokenizer {
	tok := &ngramTokenizer{
		maxN:       2,
		minLength:  2,
		isStopWord: func(_ string) bool { return false },
	}
	for _, applyOpt := range opts {
		applyOpt(tok)
	}
	if tok.maxN < 1 {
		tok.maxN = 1
	}
	return tok
}

// Words returns the whitespace-split tokens of text that survive filtering.
func (t *ngramTokenizer) Words(text string) []string {
	fields := strings.Fields(text)
	words := fields[:0]
	for _, f := range fields {
		if len(f) < t.minLength || t.isStopWord(f) {
			continue
		}
		words = append(words, f)
	}
	return words
}

// Tokenize returns all n-grams of text, unigrams first.
func (t *ngramTokenizer) Tokenize(text string) []string {
	words := t.Words(text)
	if t.maxN == 1 {
		return words
	}

	terms := make([]string, 0, len(words)*t.maxN)
	terms = append(terms, words...)
	for n := 2; n <= t.maxN; n++ {
		for i := 0; i+n <= len(words); i++ {
			terms = append(terms, strings.Join(words[i:i+n], " "))
		}
	}
	return terms
}
