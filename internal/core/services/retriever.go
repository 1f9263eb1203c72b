package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/logger"
	"github.com/custodia-labs/weldsafe/internal/tracing"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = domain.DefaultTopK

// Retriever finds the chunks nearest to a question.
type Retriever struct {
	embedder driven.EmbeddingService
	corpus   *SnapshotHolder
}

// NewRetriever creates a retriever over the served corpus.
func NewRetriever(embedder driven.EmbeddingService, corpus *SnapshotHolder) *Retriever {
	return &Retriever{embedder: embedder, corpus: corpus}
}

// Retrieve returns up to k chunks in rank order, nearest first.
// An empty corpus yields no chunks and no error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (_ []domain.RetrievedChunk, err error) {
	ctx, span := tracing.Start(ctx, "retrieve", attribute.Int("k", k))
	defer func() { tracing.End(span, err) }()

	if k <= 0 {
		k = DefaultTopK
	}

	snap := r.corpus.Current()
	if snap == nil || snap.Index == nil {
		return nil, nil
	}
	if snap.Index.Len() != len(snap.Chunks) {
		return nil, domain.NewRetrievalInconsistencyError(len(snap.Chunks), snap.Index.Len())
	}
	if len(snap.Chunks) == 0 {
		return nil, nil
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, domain.NewEmbeddingCallError("embed query", err)
	}

	hits, err := snap.Index.Search(vec, k)
	if err != nil {
		return nil, domain.NewEmbeddingCallError("search", err)
	}

	out := make([]domain.RetrievedChunk, 0, len(hits))
	for rank, h := range hits {
		if h.Position < 0 || h.Position >= len(snap.Chunks) {
			return nil, &domain.Error{
				Kind: domain.KindRetrievalInconsistency,
				Op:   fmt.Sprintf("position %d outside %d chunks", h.Position, len(snap.Chunks)),
			}
		}
		out = append(out, domain.RetrievedChunk{
			Chunk:    snap.Chunks[h.Position],
			Rank:     rank,
			Distance: h.Distance,
		})
	}

	logger.Debug("Retrieved %d chunks for %q", len(out), query)
	return out, nil
}
