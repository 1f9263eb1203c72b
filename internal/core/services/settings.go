package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyMaxTokens         = "chunking.max_tokens"
	keyOverlap           = "chunking.overlap"
	keyTopK              = "retrieval.top_k"
	keyMaxDistance       = "retrieval.max_distance"
	keyBlockThreshold    = "answer.block_threshold"
	keyIndexDir          = "index.dir"
	keyAITimeout         = "ai.timeout_seconds"
	keyAIMaxRetries      = "ai.max_retries"
	keyAIRate            = "ai.requests_per_second"
	keyServerAddr        = "server.addr"
	keyStorageDriver     = "storage.driver"
	keyStorageDSN        = "storage.dsn"
	keyLogFile           = "log.file"
	keyTracingEnabled    = "tracing.enabled"
	keyTracingEndpoint   = "tracing.endpoint"
	keyTranscribeModel   = "transcription.model"
	keyTranscribeBaseURL = "transcription.base_url"
	keyTranscribeAPIKey  = "transcription.api_key"
	keySupportURL        = "bot.support_url"
)

// Environment variables that override the config file.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOllamaHost   = "OLLAMA_HOST"
	EnvDatabaseURL  = "WELDSAFE_DATABASE_URL"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
)

// settingKeys lists every recognised key in display order.
var settingKeys = []struct {
	key  string
	kind valueKind
}{
	{keyEmbedProvider, kindString},
	{keyEmbedModel, kindString},
	{keyEmbedBaseURL, kindString},
	{keyEmbedAPIKey, kindString},
	{keyLLMProvider, kindString},
	{keyLLMModel, kindString},
	{keyLLMBaseURL, kindString},
	{keyLLMAPIKey, kindString},
	{keyMaxTokens, kindInt},
	{keyOverlap, kindInt},
	{keyTopK, kindInt},
	{keyMaxDistance, kindFloat},
	{keyBlockThreshold, kindInt},
	{keyIndexDir, kindString},
	{keyAITimeout, kindInt},
	{keyAIMaxRetries, kindInt},
	{keyAIRate, kindFloat},
	{keyServerAddr, kindString},
	{keyStorageDriver, kindString},
	{keyStorageDSN, kindString},
	{keyLogFile, kindString},
	{keyTracingEnabled, kindBool},
	{keyTracingEndpoint, kindString},
	{keyTranscribeModel, kindString},
	{keyTranscribeBaseURL, kindString},
	{keyTranscribeAPIKey, kindString},
	{keySupportURL, kindString},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	dataDir     string
	getenv      func(string) string
}

// NewSettingsService creates a new settings service. Relative defaults
// (index, database, log file) are placed under dataDir.
func NewSettingsService(configStore driven.ConfigStore, dataDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		dataDir:     dataDir,
		getenv:      os.Getenv,
	}
}

// DefaultDataDir returns ~/.weldsafe, or .weldsafe when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".weldsafe"
	}
	return filepath.Join(home, ".weldsafe")
}

// DataDir returns the directory that holds config, index and database.
func (s *SettingsService) DataDir() string {
	return s.dataDir
}

// Keys lists the recognised configuration keys.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Get retrieves current application settings: defaults, then the config
// file, then environment overrides. Invalid stored values keep the default.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()

	for _, k := range settingKeys {
		if _, ok := s.configStore.Get(k.key); !ok {
			continue
		}
		_ = apply(&settings, k.key, s.stored(k.key, k.kind))
	}

	s.applyEnv(&settings)
	s.resolvePaths(&settings)
	return &settings, nil
}

// Set parses value for key, validates the resulting settings and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := kindOf(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	typed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := apply(settings, key, typed); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return s.configStore.Save()
}

func kindOf(key string) (valueKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return 0, false
}

func (s *SettingsService) stored(key string, kind valueKind) any {
	switch kind {
	case kindInt:
		return s.configStore.GetInt(key)
	case kindFloat:
		return s.configStore.GetFloat(key)
	case kindBool:
		return s.configStore.GetBool(key)
	default:
		return s.configStore.GetString(key)
	}
}

func parseValue(kind valueKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case kindInt:
		return strconv.Atoi(raw)
	case kindFloat:
		return strconv.ParseFloat(raw, 64)
	case kindBool:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}

// apply writes one typed value into settings.
//
//nolint:gocyclo // One case per key.
func apply(s *domain.AppSettings, key string, v any) error {
	str, _ := v.(string)
	num, _ := v.(int)
	flt, _ := v.(float64)
	flag, _ := v.(bool)

	switch key {
	case keyEmbedProvider:
		p := domain.AIProvider(str)
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, str)
		}
		s.Embedding.Provider = p
	case keyEmbedModel:
		s.Embedding.Model = str
	case keyEmbedBaseURL:
		s.Embedding.BaseURL = str
	case keyEmbedAPIKey:
		s.Embedding.APIKey = str
	case keyLLMProvider:
		p := domain.AIProvider(str)
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, str)
		}
		s.LLM.Provider = p
	case keyLLMModel:
		s.LLM.Model = str
	case keyLLMBaseURL:
		s.LLM.BaseURL = str
	case keyLLMAPIKey:
		s.LLM.APIKey = str
	case keyMaxTokens:
		s.Chunking.MaxTokens = num
	case keyOverlap:
		s.Chunking.Overlap = num
	case keyTopK:
		s.Retrieval.TopK = num
	case keyMaxDistance:
		s.Retrieval.MaxDistance = flt
	case keyBlockThreshold:
		s.Answer.BlockThreshold = num
	case keyIndexDir:
		s.Index.Dir = str
	case keyAITimeout:
		s.AI.TimeoutSeconds = num
	case keyAIMaxRetries:
		s.AI.MaxRetries = num
	case keyAIRate:
		s.AI.RequestsPerSecond = flt
	case keyServerAddr:
		s.Server.Addr = str
	case keyStorageDriver:
		d := domain.StorageDriver(str)
		if !d.IsValid() {
			return fmt.Errorf("%w: unknown storage driver %q", domain.ErrInvalidInput, str)
		}
		s.Storage.Driver = d
	case keyStorageDSN:
		s.Storage.DSN = str
	case keyLogFile:
		s.Log.File = str
	case keyTracingEnabled:
		s.Tracing.Enabled = flag
	case keyTracingEndpoint:
		s.Tracing.Endpoint = str
	case keyTranscribeModel:
		s.Transcription.Model = str
	case keyTranscribeBaseURL:
		s.Transcription.BaseURL = str
	case keyTranscribeAPIKey:
		s.Transcription.APIKey = str
	case keySupportURL:
		s.Bot.SupportURL = str
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return nil
}

// applyEnv fills keys and endpoints from the environment. A key set in
// the config file wins over the environment.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	keyFor := func(p domain.AIProvider) string {
		switch p {
		case domain.AIProviderOpenAI:
			return s.getenv(EnvOpenAIKey)
		case domain.AIProviderAnthropic:
			return s.getenv(EnvAnthropicKey)
		default:
			return ""
		}
	}

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = keyFor(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = keyFor(settings.LLM.Provider)
	}
	if settings.Transcription.APIKey == "" {
		settings.Transcription.APIKey = s.getenv(EnvOpenAIKey)
	}

	if host := s.getenv(EnvOllamaHost); host != "" {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = host
		}
		if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = host
		}
	}

	if dsn := s.getenv(EnvDatabaseURL); dsn != "" {
		settings.Storage.DSN = dsn
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			settings.Storage.Driver = domain.StoragePostgres
		}
	}
}

// resolvePaths fills empty paths from the data directory and expands "~/".
func (s *SettingsService) resolvePaths(settings *domain.AppSettings) {
	if settings.Index.Dir == "" {
		settings.Index.Dir = filepath.Join(s.dataDir, "index")
	}
	if settings.Storage.DSN == "" && settings.Storage.Driver == domain.StorageSQLite {
		settings.Storage.DSN = filepath.Join(s.dataDir, "weldsafe.db")
	}
	if settings.Log.File == "" {
		settings.Log.File = filepath.Join(s.dataDir, "logs", "weldsafe.log")
	}

	settings.Index.Dir = expandHome(settings.Index.Dir)
	settings.Log.File = expandHome(settings.Log.File)
	if settings.Storage.Driver == domain.StorageSQLite {
		settings.Storage.DSN = expandHome(settings.Storage.DSN)
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
