package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if the provider can produce embeddings.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StorageDriver selects the profile store and chat log backend.
type StorageDriver string

// Available storage drivers.
const (
	StorageSQLite   StorageDriver = "sqlite"
	StoragePostgres StorageDriver = "postgres"
	StorageMemory   StorageDriver = "memory"
)

// IsValid returns true if the driver is recognised.
func (d StorageDriver) IsValid() bool {
	switch d {
	case StorageSQLite, StoragePostgres, StorageMemory:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings controls how documents are split.
type ChunkingSettings struct {
	// MaxTokens is the per-chunk token budget.
	MaxTokens int

	// Overlap is how many words consecutive chunks share.
	Overlap int
}

// RetrievalSettings controls nearest-neighbour retrieval.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// MaxDistance is the squared L2 distance above which a chunk is
	// not considered grounding. Zero disables the threshold.
	MaxDistance float64
}

// AnswerSettings controls answer layout.
type AnswerSettings struct {
	// BlockThreshold is the visible length above which answers are split into blocks.
	BlockThreshold int
}

// IndexSettings locates the persisted index.
type IndexSettings struct {
	// Dir holds the manifest, chunk store and vector file.
	Dir string
}

// AIRuntimeSettings bounds calls to AI providers.
type AIRuntimeSettings struct {
	// TimeoutSeconds bounds each provider call.
	TimeoutSeconds int

	// MaxRetries is the number of retries after a transient failure.
	MaxRetries int

	// RequestsPerSecond caps the provider request rate. Zero disables the limit.
	RequestsPerSecond float64
}

// Timeout returns the per-call timeout as a duration.
func (a AIRuntimeSettings) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// ServerSettings configures the HTTP gateway.
type ServerSettings struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
}

// StorageSettings configures the profile store and chat log.
type StorageSettings struct {
	// Driver selects the backend.
	Driver StorageDriver

	// DSN is a file path for sqlite or a connection string for postgres.
	DSN string
}

// LogSettings configures the structured log sink.
type LogSettings struct {
	// File is the rotating JSON log path. Empty disables the file sink.
	File string
}

// TracingSettings configures OpenTelemetry export.
type TracingSettings struct {
	// Enabled turns tracing on.
	Enabled bool

	// Endpoint is the OTLP HTTP endpoint (host:port).
	Endpoint string
}

// TranscriptionSettings configures speech-to-text.
type TranscriptionSettings struct {
	// Model is the transcription model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key. Falls back to the LLM key when empty.
	APIKey string
}

// BotSettings holds chat-facing texts that operators may change.
type BotSettings struct {
	// SupportURL is sent in reply to /support.
	SupportURL string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding     EmbeddingSettings
	LLM           LLMSettings
	Chunking      ChunkingSettings
	Retrieval     RetrievalSettings
	Answer        AnswerSettings
	Index         IndexSettings
	AI            AIRuntimeSettings
	Server        ServerSettings
	Storage       StorageSettings
	Log           LogSettings
	Tracing       TracingSettings
	Transcription TranscriptionSettings
	Bot           BotSettings
}

// Defaults for AppSettings.
const (
	DefaultMaxTokens         = 800
	DefaultOverlap           = 100
	DefaultTopK              = 10
	DefaultMaxDistance       = 1.5
	DefaultBlockThreshold    = 330
	DefaultAITimeoutSeconds  = 60
	DefaultAIMaxRetries      = 3
	DefaultRequestsPerSecond = 5
	DefaultServerAddr        = ":8080"
	DefaultTracingEndpoint   = "localhost:4318"
	DefaultTranscribeModel   = "whisper-1"
	DefaultSupportURL        = "https://t.me/ai_safety_coach_support"
)

// DefaultAppSettings returns settings with sensible defaults.
// Paths are left empty and resolved against the data directory by the settings service.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Chunking: ChunkingSettings{
			MaxTokens: DefaultMaxTokens,
			Overlap:   DefaultOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK:        DefaultTopK,
			MaxDistance: DefaultMaxDistance,
		},
		Answer: AnswerSettings{
			BlockThreshold: DefaultBlockThreshold,
		},
		AI: AIRuntimeSettings{
			TimeoutSeconds:    DefaultAITimeoutSeconds,
			MaxRetries:        DefaultAIMaxRetries,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
		Storage: StorageSettings{
			Driver: StorageSQLite,
		},
		Tracing: TracingSettings{
			Endpoint: DefaultTracingEndpoint,
		},
		Transcription: TranscriptionSettings{
			Model: DefaultTranscribeModel,
		},
		Bot: BotSettings{
			SupportURL: DefaultSupportURL,
		},
	}
}

// Validate checks settings that would otherwise fail deep inside a build or a query.
func (s AppSettings) Validate() error {
	if s.Chunking.MaxTokens <= 0 {
		return fmt.Errorf("%w: chunking.max_tokens must be positive", ErrInvalidInput)
	}
	if s.Chunking.Overlap < 0 {
		return fmt.Errorf("%w: chunking.overlap must not be negative", ErrInvalidInput)
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", ErrInvalidInput)
	}
	if s.Retrieval.MaxDistance < 0 {
		return fmt.Errorf("%w: retrieval.max_distance must not be negative", ErrInvalidInput)
	}
	if s.Answer.BlockThreshold <= 0 {
		return fmt.Errorf("%w: answer.block_threshold must be positive", ErrInvalidInput)
	}
	if s.Embedding.Provider != "" && !s.Embedding.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: %s does not support embeddings", ErrInvalidInput, s.Embedding.Provider)
	}
	if !s.Storage.Driver.IsValid() {
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidInput, s.Storage.Driver)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4.1-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so new processors need no struct changes.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor returns the chunking pipeline for the given settings.
func PipelineConfigFor(c ChunkingSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"max_tokens": c.MaxTokens,
				"overlap":    c.Overlap,
			},
		},
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfigFor(ChunkingSettings{MaxTokens: DefaultMaxTokens, Overlap: DefaultOverlap})
}
