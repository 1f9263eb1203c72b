package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/postprocessors/chunker"
)

// RegisterDefaults registers the built-in processors. The tokenizer is
// shared by every processor that measures text.
func RegisterDefaults(r *Registry, tok driven.Tokenizer) {
	r.Register("chunker", func(cfg map[string]any) (driven.PostProcessor, error) {
		return buildChunker(cfg, tok)
	})
}

// buildChunker reads:
//   - max_tokens (int): token budget per chunk (default 800)
//   - overlap (int): words shared by consecutive chunks (default 100)
func buildChunker(cfg map[string]any, tok driven.Tokenizer) (driven.PostProcessor, error) {
	opts := []chunker.Option{chunker.WithTokenizer(tok)}

	if v, ok, err := intFromConfig(cfg, "max_tokens"); err != nil {
		return nil, err
	} else if ok {
		if v <= 0 {
			return nil, fmt.Errorf("%w: chunker max_tokens must be positive", domain.ErrInvalidInput)
		}
		opts = append(opts, chunker.WithMaxTokens(v))
	}
	if v, ok, err := intFromConfig(cfg, "overlap"); err != nil {
		return nil, err
	} else if ok {
		if v < 0 {
			return nil, fmt.Errorf("%w: chunker overlap must not be negative", domain.ErrInvalidInput)
		}
		opts = append(opts, chunker.WithOverlap(v))
	}

	return chunker.New(opts...), nil
}

// intFromConfig extracts an int that may arrive as int, int64 or float64
// depending on whether it came from code, TOML or JSON.
func intFromConfig(cfg map[string]any, key string) (int, bool, error) {
	val, ok := cfg[key]
	if !ok {
		return 0, false, nil
	}
	switch v := val.(type) {
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		return int(v), true, nil
	default:
		return 0, false, fmt.Errorf("%w: %s must be a number, got %T", domain.ErrInvalidInput, key, val)
	}
}
