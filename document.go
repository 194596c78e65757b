package sentiment

import (
	"context"
	"strings"
	"sync"
	"time"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// A DocOpt represents a setting that changes the document creation process.
//
// For example, it might disable the per-sentence breakdown:
//
//	doc, err := sentiment.NewDocument(ctx, scorer, "...", sentiment.WithSegmentation(false))
type DocOpt func(opts *DocOpts)

// DocOpts controls the Document creation process.
type DocOpts struct {
	Segment bool          // If true, score every sentence as well as the whole text
	Timeout time.Duration // Processing timeout; 0 disables it
}

// WithSegmentation can enable (the default) or disable sentence segmentation.
func WithSegmentation(include bool) DocOpt {
	return func(opts *DocOpts) {
		opts.Segment = include
	}
}

// WithTimeout sets a timeout for document processing.
func WithTimeout(timeout time.Duration) DocOpt {
	return func(opts *DocOpts) {
		opts.Timeout = timeout
	}
}

var defaultOpts = DocOpts{
	Segment: true,
	Timeout: 30 * time.Second,
}

// A Sentence is one segment of a Document with its own result. Start and End
// are byte offsets into the document text.
type Sentence struct {
	Text   string `json:"text"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Result Result `json:"result"`
}

// DocumentMetadata describes how a Document was produced.
type DocumentMetadata struct {
	Backend          Backend   `json:"backend"`
	ProcessedAt      time.Time `json:"processed_at"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	SentenceCount    int       `json:"sentence_count"`
}

// A Document is a body of text scored as a whole and sentence by sentence.
type Document struct {
	Text     string
	Result   Result
	Metadata DocumentMetadata

	sentences []Sentence
}

// Sentences returns `doc`'s sentences. Sentences that normalize to nothing,
// such as a lone emoji, are left out.
func (doc *Document) Sentences() []Sentence {
	return doc.sentences
}

var (
	segmenterOnce sync.Once
	segmenter     *sentences.DefaultSentenceTokenizer
	segmenterErr  error
)

func sentenceSegmenter() (*sentences.DefaultSentenceTokenizer, error) {
	segmenterOnce.Do(func() {
		segmenter, segmenterErr = english.NewSentenceTokenizer(nil)
	})
	return segmenter, segmenterErr
}

// NewDocument scores text with scorer according to the user-specified
// options. The whole text must be scorable; individual sentences that are not
// are skipped.
func NewDocument(ctx context.Context, scorer Scorer, text string, opts ...DocOpt) (*Document, error) {
	startTime := time.Now()

	base := defaultOpts
	for _, applyOpt := range opts {
		applyOpt(&base)
	}
	if base.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, base.Timeout)
		defer cancel()
	}

	result, err := scorer.Score(ctx, text)
	if err != nil {
		return nil, err
	}
	doc := Document{
		Text:   text,
		Result: result,
		Metadata: DocumentMetadata{
			Backend:     scorer.Backend(),
			ProcessedAt: startTime,
		},
	}

	if base.Segment {
		tokenizer, err := sentenceSegmenter()
		if err != nil {
			return nil, newError(KindUnexpectedScoring, "loading sentence tokenizer", err)
		}
		for _, s := range tokenizer.Tokenize(text) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			trimmed := strings.TrimSpace(s.Text)
			if Normalize(trimmed) == "" {
				continue
			}
			res, err := scorer.Score(ctx, trimmed)
			if err != nil {
				return nil, err
			}
			doc.sentences = append(doc.sentences, Sentence{
				Text:   trimmed,
				Start:  s.Start,
				End:    s.End,
				Result: res,
			})
		}
		doc.Metadata.SentenceCount = len(doc.sentences)
	}

	doc.Metadata.ProcessingTimeMs = time.Since(startTime).Milliseconds()
	return &doc, nil
}
