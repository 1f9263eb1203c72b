// Package tiktoken provides a BPE token counter backed by tiktoken-go.
// Encodings are loaded from the embedded offline loader, so counting never
// touches the network.
package tiktoken

import (
	"fmt"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
)

// DefaultEncoding is the encoding used by OpenAI embedding and chat models.
const DefaultEncoding = "cl100k_base"

// Verify interface compliance.
var _ driven.Tokenizer = (*Tokenizer)(nil)

var loaderOnce sync.Once

// Tokenizer counts tokens with a fixed encoding.
type Tokenizer struct {
	name string
	enc  *tiktoken.Tiktoken
}

// New creates a tokenizer for the named encoding.
func New(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &Tokenizer{name: encoding, enc: enc}, nil
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Name returns the encoding name.
func (t *Tokenizer) Name() string {
	return t.name
}
