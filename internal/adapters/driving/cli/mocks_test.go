package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driving"
)

// mockRuntime serves canned services; a nil service makes its getter fail with err.
type mockRuntime struct {
	settings *mockSettings
	corpus   *mockCorpus
	indexer  *mockIndexer
	answers  *mockAnswers
	profiles *mockProfiles
	manifest *domain.Manifest
	cfg      *domain.AppSettings
	err      error
}

func (m *mockRuntime) Settings() driving.SettingsService {
	if m.settings == nil {
		return nil
	}
	return m.settings
}

func (m *mockRuntime) Config() *domain.AppSettings {
	if m.cfg == nil {
		cfg := domain.DefaultAppSettings()
		return &cfg
	}
	return m.cfg
}

func (m *mockRuntime) Corpus() driving.CorpusService { return m.corpus }

func (m *mockRuntime) Manifest(context.Context) (*domain.Manifest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.manifest, nil
}

func (m *mockRuntime) Indexer(context.Context) (driving.IndexService, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.indexer, nil
}

func (m *mockRuntime) Answers(context.Context) (driving.AnswerService, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.answers, nil
}

func (m *mockRuntime) Conversation(context.Context) (driving.ConversationService, error) {
	return nil, domain.ErrLLMUnavailable
}

func (m *mockRuntime) Profiles(context.Context) (driving.ProfileService, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.profiles, nil
}

func (m *mockRuntime) Healthy() bool { return true }

func (m *mockRuntime) Watch(context.Context) error { return nil }

type mockSettings struct {
	settings domain.AppSettings
	setKey   string
	setValue string
	setErr   error
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Set(key, value string) error {
	m.setKey, m.setValue = key, value
	return m.setErr
}

func (m *mockSettings) Keys() []string {
	return []string{"llm.provider", "retrieval.top_k"}
}

func (m *mockSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettings) DataDir() string { return "/data/weldsafe" }

type mockCorpus struct {
	report   *driving.PrepareReport
	err      error
	src, dst string
}

func (m *mockCorpus) Prepare(_ context.Context, src, dst string) (*driving.PrepareReport, error) {
	m.src, m.dst = src, dst
	return m.report, m.err
}

type mockIndexer struct {
	manifest *domain.Manifest
	err      error
	dir      string
}

func (m *mockIndexer) Build(_ context.Context, dir string) (*domain.Manifest, error) {
	m.dir = dir
	return m.manifest, m.err
}

func (m *mockIndexer) Info(context.Context) (*domain.Manifest, error) {
	return m.manifest, m.err
}

type mockAnswers struct {
	answer   *domain.Answer
	err      error
	question string
}

func (m *mockAnswers) Answer(ctx context.Context, question string) (string, error) {
	a, err := m.Ask(ctx, question)
	if err != nil {
		return "", err
	}
	return a.Text, nil
}

func (m *mockAnswers) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

func (m *mockAnswers) Retrieve(context.Context, string, int) ([]domain.RetrievedChunk, error) {
	return nil, m.err
}

func (m *mockAnswers) Manifest() domain.Manifest { return domain.Manifest{} }

type mockProfiles struct {
	profile    *domain.Profile
	history    []domain.ChatEntry
	historyErr error
	limit      int
}

func (m *mockProfiles) Get(_ context.Context, userID int64) (*domain.Profile, error) {
	if m.profile == nil || m.profile.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return m.profile, nil
}

func (m *mockProfiles) History(_ context.Context, _ int64, limit int) ([]domain.ChatEntry, error) {
	m.limit = limit
	return m.history, m.historyErr
}

// run executes the root command against rt and returns its output.
func run(t *testing.T, rt Runtime, args ...string) (string, error) {
	t.Helper()
	previous := app
	app = rt
	askJSON, indexInfoJSON, profileJSON, profileHistory = false, false, false, 0

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		app = previous
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func testManifest() *domain.Manifest {
	return &domain.Manifest{
		BuildID:        "20250301-abc",
		ChunkCount:     3,
		Dimensions:     1536,
		EmbeddingModel: "text-embedding-3-small",
		Tokenizer:      "cl100k_base",
		MaxTokens:      800,
		OverlapTokens:  100,
		Documents:      []domain.DocumentRef{{Name: "gas_clean.txt", Chunks: 2}, {Name: "helmet_clean.txt", Chunks: 1}},
	}
}
