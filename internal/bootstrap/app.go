package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/weldsafe/internal/adapters/driven/ai"
	"github.com/custodia-labs/weldsafe/internal/adapters/driven/config/file"
	"github.com/custodia-labs/weldsafe/internal/adapters/driven/storage/corpus"
	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driving"
	"github.com/custodia-labs/weldsafe/internal/core/services"
	"github.com/custodia-labs/weldsafe/internal/logger"
	"github.com/custodia-labs/weldsafe/internal/normalisers"
	"github.com/custodia-labs/weldsafe/internal/tracing"
)

// PromptsDir is the prompt directory inside the data directory.
const PromptsDir = "prompts"

// Options configures New.
type Options struct {
	// DataDir holds config, index, database and prompts.
	// Empty uses ~/.weldsafe.
	DataDir string

	// Version is reported to the tracer.
	Version string
}

// App owns every long-lived resource of one process.
type App struct {
	settings *services.SettingsService
	cfg      *domain.AppSettings
	store    *corpus.Store
	policy   *ai.Policy

	mu           sync.Mutex
	embedder     driven.EmbeddingService
	llm          driven.LLMService
	prompts      *file.PromptStore
	holder       *services.SnapshotHolder
	engine       *services.AnswerEngine
	storage      *storage
	conversation *services.ConversationService
	closers      []func() error
}

// New reads settings and starts logging and tracing. No provider is
// contacted until a service that needs one is requested.
func New(ctx context.Context, opts Options) (*App, error) {
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = services.DefaultDataDir()
	}

	configStore, err := file.NewConfigStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settings := services.NewSettingsService(configStore, dataDir)
	cfg, err := settings.Get()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	a := &App{
		settings: settings,
		cfg:      cfg,
		store:    corpus.New(cfg.Index.Dir),
		policy:   ai.NewPolicy(cfg.AI, ai.NewRateLimiter(cfg.AI.RequestsPerSecond, burstFor(cfg.AI.RequestsPerSecond))),
	}

	closeLog, err := logger.Configure(logger.Options{File: cfg.Log.File})
	if err != nil {
		return nil, fmt.Errorf("configure log file: %w", err)
	}
	a.closers = append(a.closers, closeLog)

	shutdown, err := tracing.Init(ctx, tracing.Options{
		Enabled:  cfg.Tracing.Enabled,
		Endpoint: cfg.Tracing.Endpoint,
		Version:  opts.Version,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() error { return shutdown(context.Background()) })

	return a, nil
}

func burstFor(rps float64) int {
	if rps < 1 {
		return 1
	}
	return int(rps)
}

// Settings returns the settings service.
func (a *App) Settings() driving.SettingsService {
	return a.settings
}

// Config returns the settings read at startup.
func (a *App) Config() *domain.AppSettings {
	return a.cfg
}

// Corpus returns the corpus preparation service. It needs no provider.
func (a *App) Corpus() driving.CorpusService {
	return services.NewCorpusService(normalisers.DefaultRegistry(), normalisers.Clean)
}

// Manifest reads the persisted manifest without loading the corpus.
func (a *App) Manifest(ctx context.Context) (*domain.Manifest, error) {
	return a.store.Manifest(ctx)
}

// Indexer returns the index builder. Only the embedding provider is required.
func (a *App) Indexer(ctx context.Context) (driving.IndexService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	embedder, err := a.embedderLocked(ctx)
	if err != nil {
		return nil, err
	}
	return newIndexService(embedder, a.store, a.cfg.Chunking)
}

// Answers returns the answer engine. The first call checks both providers
// and loads the index; any failure is returned and nothing is cached.
func (a *App) Answers(ctx context.Context) (driving.AnswerService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	engine, err := a.engineLocked(ctx)
	if err != nil {
		return nil, err
	}
	return engine, nil
}

// Conversation returns the chat router backed by the configured storage.
func (a *App) Conversation(ctx context.Context) (driving.ConversationService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conversation != nil {
		return a.conversation, nil
	}
	engine, err := a.engineLocked(ctx)
	if err != nil {
		return nil, err
	}
	st, err := a.storageLocked(ctx)
	if err != nil {
		return nil, err
	}

	transcriber, err := ai.CreateTranscriber(&a.cfg.Transcription, &a.cfg.LLM, a.policy)
	if err != nil {
		logger.Warn("Voice messages disabled: %v", err)
		transcriber = nil
	}
	if transcriber == nil {
		logger.Info("No transcription key configured, voice messages are disabled")
	}

	dialogue := services.NewDialogueService(st.profiles, st.sessions, a.cfg.Bot.SupportURL)
	a.conversation = services.NewConversationService(engine, dialogue, st.profiles, st.chatLog, transcriber)
	return a.conversation, nil
}

// Profiles returns the profile service. It needs no provider.
func (a *App) Profiles(ctx context.Context) (driving.ProfileService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, err := a.storageLocked(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewProfileService(st.profiles, st.chatLog), nil
}

// Healthy reports false after the engine detected an inconsistent index.
func (a *App) Healthy() bool {
	a.mu.Lock()
	engine := a.engine
	a.mu.Unlock()
	return engine == nil || engine.Healthy()
}

// Watch reloads the served index whenever a new build replaces it, until
// ctx is cancelled. Answers must have been called first.
func (a *App) Watch(ctx context.Context) error {
	a.mu.Lock()
	holder, embedder := a.holder, a.embedder
	a.mu.Unlock()
	if holder == nil {
		return errors.New("answer engine not started")
	}

	w := corpus.NewWatcher(a.store, func(ctx context.Context) error {
		return a.reload(ctx, holder, embedder)
	})
	return w.Run(ctx)
}

// reload swaps in the persisted index if it matches the query embedder
// and refreshes the prompts served with it.
func (a *App) reload(ctx context.Context, holder *services.SnapshotHolder, embedder driven.EmbeddingService) error {
	swapped, err := holder.Reload(ctx, a.store, embedder)
	if err != nil {
		return err
	}
	if a.prompts != nil {
		a.prompts.Reload()
	}
	if !swapped {
		return nil
	}

	a.mu.Lock()
	engine := a.engine
	a.mu.Unlock()
	if engine != nil {
		engine.ResetHealth()
	}
	return nil
}

// Close releases providers, storage and the log and trace sinks, in
// reverse order of creation.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) embedderLocked(ctx context.Context) (driven.EmbeddingService, error) {
	if a.embedder != nil {
		return a.embedder, nil
	}
	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &a.cfg.Embedding, a.policy)
	if err != nil {
		return nil, err
	}
	a.embedder = embedder
	a.closers = append(a.closers, embedder.Close)
	return embedder, nil
}

func (a *App) engineLocked(ctx context.Context) (*services.AnswerEngine, error) {
	if a.engine != nil {
		return a.engine, nil
	}

	embedder, err := a.embedderLocked(ctx)
	if err != nil {
		return nil, err
	}
	if a.llm == nil {
		llm, err := ai.CreateAndValidateLLMService(ctx, &a.cfg.LLM, a.policy)
		if err != nil {
			return nil, err
		}
		a.llm = llm
		a.closers = append(a.closers, llm.Close)
	}
	if a.prompts == nil {
		prompts, err := file.NewPromptStore(filepath.Join(a.settings.DataDir(), PromptsDir))
		if err != nil {
			return nil, fmt.Errorf("open prompts: %w", err)
		}
		a.prompts = prompts
	}

	engine, holder, err := newEngine(ctx, engineDeps{
		embedder: embedder,
		llm:      a.llm,
		prompts:  a.prompts,
		store:    a.store,
		cfg:      a.cfg,
	})
	if err != nil {
		return nil, err
	}
	a.engine, a.holder = engine, holder
	return engine, nil
}

func (a *App) storageLocked(ctx context.Context) (*storage, error) {
	if a.storage != nil {
		return a.storage, nil
	}
	st, err := openStorage(ctx, a.cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.storage = st
	a.closers = append(a.closers, st.close)
	return st, nil
}
