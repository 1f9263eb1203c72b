package services

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
)

// keywordFeatures are the dimensions of the keyword embedder. Text with
// none of them maps to a separate "other" dimension, far from everything.
var keywordFeatures = []string{
	"газ", "балон", "вентил", "відкрив", "зварюв", "струм", "окуляр", "каск", "опік",
}

// keywordEmbedder implements driven.EmbeddingService with deterministic
// bag-of-stems vectors, so related texts land close to each other.
type keywordEmbedder struct {
	mu       sync.Mutex
	batches  [][]string
	embedErr error
	batchErr error
	model    string
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{model: "mock-embed"}
}

func keywordVector(text string) []float32 {
	text = strings.ToLower(text)
	vec := make([]float32, len(keywordFeatures)+1)
	var hits float64
	for i, f := range keywordFeatures {
		if strings.Contains(text, f) {
			vec[i] = 1
			hits++
		}
	}
	if hits == 0 {
		vec[len(keywordFeatures)] = 1
		return vec
	}
	norm := float32(1 / math.Sqrt(hits))
	for i := range vec {
		vec[i] *= norm
	}
	return vec
}

func (m *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return keywordVector(text), nil
}

func (m *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, texts)
	m.mu.Unlock()

	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = keywordVector(t)
	}
	return out, nil
}

func (m *keywordEmbedder) Dimensions() int {
	return len(keywordFeatures) + 1
}

func (m *keywordEmbedder) ModelName() string {
	return m.model
}

func (m *keywordEmbedder) Ping(_ context.Context) error {
	return nil
}

func (m *keywordEmbedder) Close() error {
	return nil
}

func (m *keywordEmbedder) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

func (m *mockLLMService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptAnswerPolicy: "Відповідай лише за фрагментами.",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockAnswerService implements driving.AnswerService for router tests.
type mockAnswerService struct {
	answer    *domain.Answer
	err       error
	questions []string
}

func (m *mockAnswerService) Answer(ctx context.Context, q string) (string, error) {
	a, err := m.Ask(ctx, q)
	if err != nil {
		return "", err
	}
	return a.Text, nil
}

func (m *mockAnswerService) Ask(_ context.Context, q string) (*domain.Answer, error) {
	m.questions = append(m.questions, q)
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockAnswerService) Retrieve(_ context.Context, _ string, _ int) ([]domain.RetrievedChunk, error) {
	return nil, nil
}

func (m *mockAnswerService) Manifest() domain.Manifest {
	return domain.Manifest{}
}

// mockTranscriber implements driven.Transcriber for testing.
type mockTranscriber struct {
	text     string
	err      error
	filename string
	audio    []byte
}

func (m *mockTranscriber) Transcribe(_ context.Context, filename string, audio io.Reader) (string, error) {
	m.filename = filename
	data, _ := io.ReadAll(audio)
	m.audio = data
	return m.text, m.err
}

// mockCorpusStore implements driven.CorpusStore for holder tests.
type mockCorpusStore struct {
	snap    *driven.Snapshot
	loadErr error
	loads   int
}

func (m *mockCorpusStore) Save(_ context.Context, snap *driven.Snapshot) (*domain.Manifest, error) {
	m.snap = snap
	return &snap.Manifest, nil
}

func (m *mockCorpusStore) Load(_ context.Context) (*driven.Snapshot, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snap == nil {
		return nil, domain.ErrIndexNotBuilt
	}
	return m.snap, nil
}

func (m *mockCorpusStore) Manifest(_ context.Context) (*domain.Manifest, error) {
	if m.snap == nil {
		return nil, domain.ErrIndexNotBuilt
	}
	return &m.snap.Manifest, nil
}

func (m *mockCorpusStore) ManifestPath() string {
	return "manifest.json"
}

// failingProfileStore implements driven.ProfileStore and fails every call.
type failingProfileStore struct{}

var errStoreDown = errors.New("store down")

func (failingProfileStore) Upsert(context.Context, *domain.Profile) error { return errStoreDown }
func (failingProfileStore) Get(context.Context, int64) (*domain.Profile, error) {
	return nil, errStoreDown
}
func (failingProfileStore) Exists(context.Context, int64) (bool, error) { return false, errStoreDown }
func (failingProfileStore) Close() error                                 { return nil }
