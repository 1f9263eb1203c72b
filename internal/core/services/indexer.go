package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driving"
	"github.com/custodia-labs/weldsafe/internal/logger"
	"github.com/custodia-labs/weldsafe/internal/tracing"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// Embedding pool defaults.
const (
	DefaultEmbedBatchSize = 64
	DefaultEmbedWorkers   = 4
)

// IndexConfig tunes a build and records how it was made.
type IndexConfig struct {
	// BatchSize is the number of texts per embedding request.
	BatchSize int

	// Workers is the number of concurrent embedding requests.
	Workers int

	// Tokenizer names the encoding the chunker measured with.
	Tokenizer string

	// Chunking is recorded in the manifest.
	Chunking domain.ChunkingSettings
}

// IndexService builds the persisted corpus from plain-text documents.
type IndexService struct {
	embedder driven.EmbeddingService
	pipeline driven.PostProcessorPipeline
	builder  driven.VectorIndexBuilder
	store    driven.CorpusStore
	cfg      IndexConfig
}

// NewIndexService creates an index service.
func NewIndexService(
	embedder driven.EmbeddingService,
	pipeline driven.PostProcessorPipeline,
	builder driven.VectorIndexBuilder,
	store driven.CorpusStore,
	cfg IndexConfig,
) *IndexService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultEmbedBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultEmbedWorkers
	}
	return &IndexService{
		embedder: embedder,
		pipeline: pipeline,
		builder:  builder,
		store:    store,
		cfg:      cfg,
	}
}

// Build chunks, embeds and persists every *.txt file in corpusDir, in
// lexical order. Any failure is a CorpusBuildError and nothing is
// persisted, so the previous index stays in place.
func (s *IndexService) Build(ctx context.Context, corpusDir string) (_ *domain.Manifest, err error) {
	ctx, span := tracing.Start(ctx, "index.build", attribute.String("corpus", corpusDir))
	defer func() { tracing.End(span, err) }()

	logger.Section("Index Build")

	docs, err := readCorpus(corpusDir)
	if err != nil {
		return nil, domain.NewCorpusBuildError("read corpus", err)
	}
	if len(docs) == 0 {
		return nil, domain.NewCorpusBuildError("read corpus",
			fmt.Errorf("%w: no .txt documents in %s", domain.ErrInvalidInput, corpusDir))
	}

	var chunks []domain.Chunk
	for i := range docs {
		docChunks, err := s.pipeline.Process(ctx, &docs[i])
		if err != nil {
			return nil, domain.NewCorpusBuildError("chunk "+docs[i].ID, err)
		}
		for _, c := range docChunks {
			c.Position = len(chunks)
			chunks = append(chunks, c)
		}
		logger.Debug("%s: %d chunks", docs[i].ID, len(docChunks))
	}
	logger.Info("Chunked %d documents into %d chunks", len(docs), len(chunks))

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		return nil, domain.NewCorpusBuildError("embed", err)
	}

	idx, err := s.builder.Build(vectors)
	if err != nil {
		return nil, domain.NewCorpusBuildError("build index", err)
	}

	m, err := s.store.Save(ctx, &driven.Snapshot{
		Manifest: domain.Manifest{
			EmbeddingModel: s.embedder.ModelName(),
			Tokenizer:      s.cfg.Tokenizer,
			MaxTokens:      s.cfg.Chunking.MaxTokens,
			OverlapTokens:  s.cfg.Chunking.Overlap,
		},
		Chunks: chunks,
		Index:  idx,
	})
	if err != nil {
		return nil, domain.NewCorpusBuildError("save", err)
	}
	return m, nil
}

// Info returns the manifest of the persisted index.
func (s *IndexService) Info(ctx context.Context) (*domain.Manifest, error) {
	return s.store.Manifest(ctx)
}

// embedAll embeds texts in batches on a worker pool. Each batch writes
// its own slice of the result, so the output order equals the input
// order. The first failure cancels the remaining batches.
func (s *IndexService) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("create embedding pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		done     atomic.Int64
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	batches := (len(texts) + s.cfg.BatchSize - 1) / s.cfg.BatchSize
	for b := 0; b < batches; b++ {
		start := b * s.cfg.BatchSize
		end := min(start+s.cfg.BatchSize, len(texts))

		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			vecs, err := s.embedder.EmbedBatch(ctx, texts[start:end])
			if err == nil && len(vecs) != end-start {
				err = fmt.Errorf("got %d vectors for %d texts", len(vecs), end-start)
			}
			if err != nil {
				fail(fmt.Errorf("batch %d: %w", b, err))
				return
			}
			copy(out[start:end], vecs)
			logger.Debug("Embedded batch %d/%d", done.Add(1), batches)
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("submit batch %d: %w", b, err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// readCorpus loads every *.txt file of dir in lexical order.
func readCorpus(dir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var docs []domain.Document
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".txt") {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		docs = append(docs, domain.Document{
			ID:      name,
			Title:   strings.TrimSuffix(base, "_clean"),
			Path:    path,
			Content: string(data),
		})
	}
	return docs, nil
}
