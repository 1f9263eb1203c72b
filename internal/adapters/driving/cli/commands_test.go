package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driving"
)

func TestCommands_RequireRuntime(t *testing.T) {
	commands := [][]string{
		{"ask", "питання"},
		{"prepare", "src"},
		{"index", "build"},
		{"index", "info"},
		{"profile", "show", "1"},
		{"settings", "show"},
		{"serve"},
	}

	for _, args := range commands {
		t.Run(args[0], func(t *testing.T) {
			_, err := run(t, nil, args...)

			assert.ErrorIs(t, err, errNotConfigured)
		})
	}
}

func TestAskCmd_PlainOutput(t *testing.T) {
	answers := &mockAnswers{answer: &domain.Answer{
		Text: "<b>Балон</b> кріпи ланцюгом &amp; перевір вентиль (ДСТУ 7237:2011, 4.1).",
	}}

	out, err := run(t, &mockRuntime{answers: answers}, "ask", "Як", "кріпити", "балон?")

	require.NoError(t, err)
	assert.Equal(t, "Як кріпити балон?", answers.question)
	assert.Equal(t, "Балон кріпи ланцюгом & перевір вентиль (ДСТУ 7237:2011, 4.1).\n", out)
}

func TestAskCmd_JSONOutput(t *testing.T) {
	answers := &mockAnswers{answer: &domain.Answer{
		Text:      "Негайно вимкни живлення.",
		Emergency: true,
		Citations: []domain.Citation{{Standard: "НПАОП 0.00-1.71-13", Clause: "2.3"}, {Standard: "ДСТУ 2456"}},
	}}

	out, err := run(t, &mockRuntime{answers: answers}, "ask", "--json", "Колегу б'є струмом")

	require.NoError(t, err)
	var got askOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Emergency)
	assert.False(t, got.Fallback)
	assert.Equal(t, []string{"НПАОП 0.00-1.71-13, 2.3", "ДСТУ 2456"}, got.Citations)
}

func TestAskCmd_Errors(t *testing.T) {
	t.Run("index not built", func(t *testing.T) {
		rt := &mockRuntime{err: domain.NewIndexLoadError("read manifest", domain.ErrIndexNotBuilt)}

		_, err := run(t, rt, "ask", "питання")

		assert.ErrorIs(t, err, domain.ErrIndexNotBuilt)
		assert.Contains(t, err.Error(), "weldsafe index build")
	})

	t.Run("generation failure", func(t *testing.T) {
		answers := &mockAnswers{err: domain.NewGenerationCallError("compose", errors.New("503"))}

		_, err := run(t, &mockRuntime{answers: answers}, "ask", "питання")

		assert.ErrorIs(t, err, domain.ErrGenerationCall)
		assert.Contains(t, err.Error(), "answer failed")
	})

	t.Run("no question", func(t *testing.T) {
		_, err := run(t, &mockRuntime{answers: &mockAnswers{}}, "ask")

		assert.Error(t, err)
	})
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "a < b", plainText("<b>a</b> &lt; b"))
	assert.Equal(t, "без розмітки", plainText("без розмітки"))
}

func TestPrepareCmd(t *testing.T) {
	corpus := &mockCorpus{report: &driving.PrepareReport{
		Written: []string{"corpus/a_clean.txt"},
		Skipped: map[string]string{"z.png": "unsupported type", "b.txt": "empty"},
		Failed:  map[string]string{"broken.pdf": "malformed PDF"},
	}}

	out, err := run(t, &mockRuntime{corpus: corpus}, "prepare", "sources")

	require.NoError(t, err)
	assert.Equal(t, "sources", corpus.src)
	assert.Equal(t, DefaultCorpusDir, corpus.dst)
	assert.Contains(t, out, "Prepared 1 file(s) into corpus")
	assert.Contains(t, out, "Skipped (2):\n  b.txt: empty\n  z.png: unsupported type\n")
	assert.Contains(t, out, "Failed (1):\n  broken.pdf: malformed PDF\n")
}

func TestPrepareCmd_CustomDestination(t *testing.T) {
	corpus := &mockCorpus{report: &driving.PrepareReport{}}

	out, err := run(t, &mockRuntime{corpus: corpus}, "prepare", "sources", "out")

	require.NoError(t, err)
	assert.Equal(t, "out", corpus.dst)
	assert.NotContains(t, out, "Skipped")
}

func TestPrepareCmd_Error(t *testing.T) {
	corpus := &mockCorpus{err: domain.NewCorpusBuildError("walk sources", domain.ErrInvalidInput)}

	_, err := run(t, &mockRuntime{corpus: corpus}, "prepare", "sources")

	assert.ErrorIs(t, err, domain.ErrCorpusBuild)
}

func TestIndexBuildCmd(t *testing.T) {
	indexer := &mockIndexer{manifest: testManifest()}

	out, err := run(t, &mockRuntime{indexer: indexer}, "index", "build", "my-corpus")

	require.NoError(t, err)
	assert.Equal(t, "my-corpus", indexer.dir)
	assert.Contains(t, out, "Indexed 3 chunks from 2 document(s)")
	assert.Contains(t, out, "Embedding: text-embedding-3-small (1536 dimensions)")
	assert.Contains(t, out, "Chunking: 800 tokens (cl100k_base), 100 words overlap")
	assert.Contains(t, out, "gas_clean.txt (2 chunks)")
}

func TestIndexBuildCmd_Failure(t *testing.T) {
	indexer := &mockIndexer{err: domain.NewCorpusBuildError("embed batch", errors.New("rate limited"))}

	_, err := run(t, &mockRuntime{indexer: indexer}, "index", "build")

	require.Error(t, err)
	assert.Equal(t, DefaultCorpusDir, indexer.dir)
	assert.Equal(t, domain.KindCorpusBuild, domain.KindOf(err))
}

func TestIndexBuildCmd_ProviderUnavailable(t *testing.T) {
	_, err := run(t, &mockRuntime{err: domain.ErrEmbeddingUnavailable}, "index", "build")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndexInfoCmd(t *testing.T) {
	out, err := run(t, &mockRuntime{manifest: testManifest()}, "index", "info")

	require.NoError(t, err)
	assert.Contains(t, out, "Build: 20250301-abc")
	assert.Contains(t, out, "helmet_clean.txt (1 chunks)")
}

func TestIndexInfoCmd_JSON(t *testing.T) {
	out, err := run(t, &mockRuntime{manifest: testManifest()}, "index", "info", "--json")

	require.NoError(t, err)
	var got domain.Manifest
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, *testManifest(), got)
}

func TestIndexInfoCmd_NotBuilt(t *testing.T) {
	rt := &mockRuntime{err: domain.NewIndexLoadError("read manifest", domain.ErrIndexNotBuilt)}

	_, err := run(t, rt, "index", "info")

	assert.ErrorIs(t, err, domain.ErrIndexNotBuilt)
	assert.Contains(t, err.Error(), "first")
}

func TestProfileShowCmd(t *testing.T) {
	profiles := &mockProfiles{profile: &domain.Profile{
		UserID:     42,
		FirstName:  "Ігор",
		LastName:   "Петренко",
		Phone:      "+380671234567",
		Specialty:  "Зварювальник",
		Experience: domain.ExperienceThreeFive,
		Username:   "welder",
		RefSource:  "qr-site-7",
		UpdatedAt:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}}

	out, err := run(t, &mockRuntime{profiles: profiles}, "profile", "show", "42")

	require.NoError(t, err)
	assert.Contains(t, out, "Name:       Ігор Петренко")
	assert.Contains(t, out, "Experience: "+domain.ExperienceThreeFive.Label())
	assert.Contains(t, out, "Username:   @welder")
	assert.Contains(t, out, "Referral:   qr-site-7")
	assert.Contains(t, out, "Updated:    2025-03-01T10:00:00Z")
}

func TestProfileShowCmd_JSON(t *testing.T) {
	profiles := &mockProfiles{profile: &domain.Profile{UserID: 7, FirstName: "Олег", Experience: domain.ExperienceOneTwo}}

	out, err := run(t, &mockRuntime{profiles: profiles}, "profile", "show", "--json", "7")

	require.NoError(t, err)
	var got profileOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "Олег", got.FirstName)
	assert.Equal(t, string(domain.ExperienceOneTwo), got.Experience)
}

func TestProfileShowCmd_Errors(t *testing.T) {
	_, err := run(t, &mockRuntime{profiles: &mockProfiles{}}, "profile", "show", "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = run(t, &mockRuntime{profiles: &mockProfiles{}}, "profile", "show", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user 99 is not registered")
}

func TestProfileShowCmd_History(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	profiles := &mockProfiles{
		profile: &domain.Profile{UserID: 42, FirstName: "Ігор", Experience: domain.ExperienceOneTwo},
		history: []domain.ChatEntry{
			{UserID: 42, Time: at, Role: domain.RoleQuestion, Type: domain.MessageText, Content: "Як відкривати балон?"},
			{UserID: 42, Time: at, Role: domain.RoleAnswer, Type: domain.MessageText, Content: "Плавно."},
		},
	}

	out, err := run(t, &mockRuntime{profiles: profiles}, "profile", "show", "--history", "5", "42")

	require.NoError(t, err)
	assert.Equal(t, 5, profiles.limit)
	assert.Contains(t, out, "[2025-03-01T09:00:00Z] question Як відкривати балон?")
	assert.Less(t, strings.Index(out, "Як відкривати балон?"), strings.Index(out, "Плавно."))

	out, err = run(t, &mockRuntime{profiles: profiles}, "profile", "show", "--json", "--history", "2", "42")

	require.NoError(t, err)
	var got profileOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.History, 2)
	assert.Equal(t, "answer", got.History[1].Role)
	assert.Equal(t, "Плавно.", got.History[1].Content)
}

func TestProfileShowCmd_HistoryErrors(t *testing.T) {
	profiles := &mockProfiles{
		profile:    &domain.Profile{UserID: 42},
		historyErr: errors.New("db down"),
	}

	_, err := run(t, &mockRuntime{profiles: profiles}, "profile", "show", "--history", "3", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")

	_, err = run(t, &mockRuntime{profiles: profiles}, "profile", "show", "--history=-1", "42")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := run(t, &mockRuntime{profiles: profiles}, "profile", "show", "42")
	require.NoError(t, err)
	assert.NotContains(t, out, "logged messages")
}

func TestServeCmd_FailsFastWithoutProvider(t *testing.T) {
	_, err := run(t, &mockRuntime{err: domain.ErrLLMUnavailable}, "serve")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestChatCmd_RequiresTerminal(t *testing.T) {
	_, err := run(t, &mockRuntime{answers: &mockAnswers{}}, "chat")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}
