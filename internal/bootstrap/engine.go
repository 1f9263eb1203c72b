package bootstrap

import (
	"context"
	"errors"

	"github.com/custodia-labs/weldsafe/internal/adapters/driven/tokenizer/tiktoken"
	"github.com/custodia-labs/weldsafe/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/core/services"
	"github.com/custodia-labs/weldsafe/internal/logger"
	"github.com/custodia-labs/weldsafe/internal/postprocessors"
)

type engineDeps struct {
	embedder driven.EmbeddingService
	llm      driven.LLMService
	prompts  driven.PromptStore
	store    driven.CorpusStore
	cfg      *domain.AppSettings
}

// newEngine loads the persisted index and wires the query path. A missing
// index is served as empty; a corrupt or incompatible one is fatal.
func newEngine(ctx context.Context, d engineDeps) (*services.AnswerEngine, *services.SnapshotHolder, error) {
	snap, err := d.store.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrIndexNotBuilt):
		logger.Warn("No index built yet, every question gets the fallback answer. Run 'weldsafe index build'")
		snap = nil
	case err != nil:
		return nil, nil, err
	}
	if err := services.CheckCompatible(snap, d.embedder); err != nil {
		return nil, nil, err
	}

	holder := services.NewSnapshotHolder(snap)
	composer := services.NewComposer(d.llm, d.prompts, services.ComposerConfig{
		BlockThreshold: d.cfg.Answer.BlockThreshold,
	})
	engine := services.NewAnswerEngine(
		services.NewRetriever(d.embedder, holder),
		composer,
		holder,
		d.prompts,
		services.EngineConfig{
			TopK:        d.cfg.Retrieval.TopK,
			MaxDistance: d.cfg.Retrieval.MaxDistance,
		},
	)
	if snap != nil {
		logger.Info("Serving index %s (%d chunks)", snap.Manifest.BuildID, snap.Manifest.ChunkCount)
	}
	return engine, holder, nil
}

// newIndexService builds the chunking pipeline from settings around the
// cl100k_base tokenizer.
func newIndexService(embedder driven.EmbeddingService, store driven.CorpusStore, chunking domain.ChunkingSettings) (*services.IndexService, error) {
	tok, err := tiktoken.New(tiktoken.DefaultEncoding)
	if err != nil {
		return nil, err
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry, tok)
	pipeline, err := postprocessors.FromConfig(registry, domain.PipelineConfigFor(chunking))
	if err != nil {
		return nil, err
	}

	return services.NewIndexService(embedder, pipeline, flat.Builder{}, store, services.IndexConfig{
		Tokenizer: tok.Name(),
		Chunking:  chunking,
	}), nil
}
