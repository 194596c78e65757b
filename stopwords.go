package sentiment

import (
	"strings"
	"sync"
	"unicode"

	"github.com/bbalet/stopwords"
)

// stopWordFilter answers stop-word queries for one language. The underlying
// library only exposes a cleaning function, so answers seen while fitting are
// remembered. Once frozen the cache is read-only and misses are computed
// without being stored.
type stopWordFilter struct {
	lang   string
	mu     sync.RWMutex
	known  map[string]bool
	frozen bool
}

func newStopWordFilter(lang string) *stopWordFilter {
	return &stopWordFilter{lang: lang, known: make(map[string]bool)}
}

// IsStopWord reports whether word would be removed as a stop word. Tokens
// without letters are never stop words; the library drops them as non-words.
func (f *stopWordFilter) IsStopWord(word string) bool {
	if f == nil || f.lang == "" || !hasLetter(word) {
		return false
	}

	f.mu.RLock()
	stop, found := f.known[word]
	frozen := f.frozen
	f.mu.RUnlock()
	if found {
		return stop
	}

	stop = strings.TrimSpace(stopwords.CleanString(word, f.lang, false)) == ""
	if frozen {
		return stop
	}

	f.mu.Lock()
	if !f.frozen {
		f.known[word] = stop
	}
	f.mu.Unlock()
	return stop
}

// remember records words as known non-stop words.
func (f *stopWordFilter) remember(words []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range words {
		f.known[w] = false
	}
}

// freeze stops the cache from growing.
func (f *stopWordFilter) freeze() {
	f.mu.Lock()
	f.frozen = true
	f.mu.Unlock()
}

func (f *stopWordFilter) size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.known)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
