package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/policy"
)

func plainChunks() []domain.RetrievedChunk {
	return []domain.RetrievedChunk{{Chunk: domain.Chunk{Source: "burns_clean.txt", Content: "Охолоди опік проточною водою."}}}
}

func TestComposer_EmptyAfterPolicies(t *testing.T) {
	llm := &mockLLMService{reply: "(ДСТУ 9999-2020)"}
	c := NewComposer(llm, newMockPromptStore(), ComposerConfig{})

	_, err := c.Compose(context.Background(), "Як охолодити опік?", plainChunks(), policy.Emergency{})

	assert.ErrorIs(t, err, domain.ErrGenerationCall)
}

func TestComposer_AllBoldLongAnswerIsKept(t *testing.T) {
	first := strings.TrimSpace(strings.Repeat("Перекрий газ і вимкни апарат. ", 8))
	second := strings.TrimSpace(strings.Repeat("Охолоди опік водою. ", 7))
	llm := &mockLLMService{reply: "**" + first + "**\n\n**" + second + "**"}
	c := NewComposer(llm, newMockPromptStore(), ComposerConfig{BlockThreshold: 330})

	answer, err := c.Compose(context.Background(), "Що робити при опіку?", plainChunks(), policy.Emergency{})

	require.NoError(t, err)
	require.NotEmpty(t, answer.Blocks)
	assert.Contains(t, answer.Text, "Перекрий газ")
	assert.Contains(t, answer.Text, "Охолоди опік водою.")
	assert.Equal(t, policy.Render(answer.Blocks), answer.Text)
}

func TestComposer_EmergencyBlocksMatchText(t *testing.T) {
	body := strings.TrimSpace(strings.Repeat("Охолоди уражене місце проточною водою 15 хвилин. ", 8))
	llm := &mockLLMService{reply: "<b>Перша допомога</b>\n" + policy.Directive + "\n" + body}
	c := NewComposer(llm, newMockPromptStore(), ComposerConfig{BlockThreshold: 330})
	emergency := policy.Emergency{Detected: true, Triggers: []string{"опік"}}

	answer, err := c.Compose(context.Background(), "Отримав опік", plainChunks(), emergency)

	require.NoError(t, err)
	assert.True(t, answer.Emergency)
	require.NotEmpty(t, answer.Blocks)
	assert.Equal(t, policy.Directive+"\n\n"+policy.Render(answer.Blocks), answer.Text)
	assert.Equal(t, 1, strings.Count(answer.Text, "Стоп роботу!"))
	assert.Equal(t, "Перша допомога", answer.Blocks[0].Heading)
	for _, b := range answer.Blocks {
		assert.NotEmpty(t, b.Lines, b.Heading)
	}
}
