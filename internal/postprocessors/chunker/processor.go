// Package chunker splits documents into overlapping, token-bounded chunks.
//
// Words are never split. A chunk grows word by word while the summed
// per-word token count stays within the budget. Consecutive chunks share
// up to Overlap words.
package chunker

import (
	"context"
	"strings"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
)

// DefaultMaxTokens is the default token budget per chunk.
const DefaultMaxTokens = domain.DefaultMaxTokens

// DefaultOverlap is the default number of words shared by consecutive chunks.
const DefaultOverlap = domain.DefaultOverlap

// Processor splits document content into chunks.
// It implements the PostProcessor interface.
type Processor struct {
	maxTokens int
	overlap   int
	tokenizer driven.Tokenizer
}

// Verify interface compliance.
var _ driven.PostProcessor = (*Processor)(nil)

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxTokens sets the token budget per chunk.
func WithMaxTokens(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithOverlap sets the number of words shared by consecutive chunks.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithTokenizer sets the tokenizer used to measure words.
func WithTokenizer(t driven.Tokenizer) Option {
	return func(p *Processor) {
		if t != nil {
			p.tokenizer = t
		}
	}
}

// New creates a chunker. Without WithTokenizer every word counts as one token.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxTokens: DefaultMaxTokens,
		overlap:   DefaultOverlap,
		tokenizer: wordCounter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxTokens returns the token budget.
func (p *Processor) MaxTokens() int { return p.maxTokens }

// Overlap returns the word overlap.
func (p *Processor) Overlap() int { return p.overlap }

// Process splits the document content into chunks.
// Input chunks are ignored. Positions are relative to the document.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	texts := p.Chunk(doc.Content)
	if len(texts) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			Position: i,
			Source:   doc.ID,
			Content:  text,
		}
	}
	return chunks, nil
}

// Chunk splits text into chunk strings, words joined by single spaces.
func (p *Processor) Chunk(text string) []string {
	words := strings.Fields(text)
	spans := p.spans(words)

	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = strings.Join(words[s.start:s.end], " ")
	}
	return out
}

// span is a half-open word range [start, end).
type span struct {
	start, end int
}

func (p *Processor) spans(words []string) []span {
	if len(words) == 0 {
		return nil
	}

	// Each word is measured once.
	costs := make([]int, len(words))
	for i, w := range words {
		costs[i] = p.tokenizer.Count(w)
	}

	var spans []span
	start := 0
	for {
		end, total := start, 0
		for end < len(words) {
			if end > start && total+costs[end] > p.maxTokens {
				break
			}
			total += costs[end]
			end++
			if total > p.maxTokens {
				// A single oversized word stands alone.
				break
			}
		}
		spans = append(spans, span{start: start, end: end})
		if end == len(words) {
			return spans
		}
		start += max(1, end-start-p.overlap)
	}
}

// wordCounter counts every word as one token.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }
func (wordCounter) Name() string          { return "words" }
