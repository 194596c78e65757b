package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNGramTokenizer(t *testing.T) {
	tests := []struct {
		desc     string
		opts     []TokenizerOptFunc
		text     string
		expected []string
	}{
		{"Unigrams and bigrams", nil, "big red dog", []string{"big", "red", "dog", "big red", "red dog"}},
		{"Short tokens dropped", nil, "a big dog", []string{"big", "dog", "big dog"}},
		{"Unigrams only", []TokenizerOptFunc{UsingNGramRange(1)}, "big red dog", []string{"big", "red", "dog"}},
		{"Trigrams", []TokenizerOptFunc{UsingNGramRange(3)}, "big red dog",
			[]string{"big", "red", "dog", "big red", "red dog", "big red dog"}},
		{"Minimum length one", []TokenizerOptFunc{UsingMinTokenLength(1)}, "a dog", []string{"a", "dog", "a dog"}},
		{"Stop words removed before n-grams",
			[]TokenizerOptFunc{UsingStopWords(func(s string) bool { return s == "the" })},
			"the big the dog", []string{"big", "dog", "big dog"}},
		{"Empty", nil, "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := NewNGramTokenizer(tt.opts...).Tokenize(tt.text)
			assert.ElementsMatch(t, tt.expected, got)
			if len(tt.expected) > 0 {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestStopWordFilter(t *testing.T) {
	filter := newStopWordFilter("en")
	tests := []struct {
		word string
		stop bool
	}{
		{"the", true},
		{"and", true},
		{"spreadsheet", false},
		{"42", false},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.stop, filter.IsStopWord(tt.word))
			// Second lookup is served from the cache.
			assert.Equal(t, tt.stop, filter.IsStopWord(tt.word))
		})
	}

	assert.False(t, newStopWordFilter("").IsStopWord("the"))
}

func TestStopWordFilterFrozen(t *testing.T) {
	filter := newStopWordFilter("en")
	assert.False(t, filter.IsStopWord("movie"))
	filter.freeze()

	assert.True(t, filter.IsStopWord("the"))
	assert.False(t, filter.IsStopWord("spreadsheet"))
	assert.Equal(t, 1, filter.size())

	filter.remember([]string{"film"})
	assert.Equal(t, 2, filter.size())
	assert.False(t, filter.IsStopWord("film"))
}
