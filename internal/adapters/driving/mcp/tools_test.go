package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

func newTestServer(t *testing.T, answers *mockAnswerService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Answers: answers})
	require.NoError(t, err)
	return server
}

func TestServer_handleAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the composed answer", func(t *testing.T) {
		answers := &mockAnswerService{answer: &domain.Answer{
			Text:      "Відкривай вентиль плавно (ДСТУ ISO 14175-2008, 5.3.2).",
			Emergency: true,
			Citations: []domain.Citation{{Standard: "ДСТУ ISO 14175-2008", Clause: "5.3.2"}},
			Sources: []domain.RetrievedChunk{{
				Chunk:    domain.Chunk{Position: 4, Source: "gas_clean.txt", Content: "Відкривай газ плавно."},
				Distance: 0.25,
			}},
		}}
		server := newTestServer(t, answers)

		_, output, err := server.handleAnswer(ctx, nil, AnswerInput{Question: "  Як відкривати балон?  "})

		require.NoError(t, err)
		assert.Equal(t, "Як відкривати балон?", answers.question)
		assert.Equal(t, "Відкривай вентиль плавно (ДСТУ ISO 14175-2008, 5.3.2).", output.Answer)
		assert.True(t, output.Emergency)
		assert.False(t, output.Fallback)
		assert.Equal(t, []string{"ДСТУ ISO 14175-2008, 5.3.2"}, output.Citations)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, 4, output.Sources[0].Position)
		assert.Equal(t, "gas_clean.txt", output.Sources[0].Source)
		_, err = uuid.Parse(output.RequestID)
		assert.NoError(t, err)
	})

	t.Run("reports the error kind", func(t *testing.T) {
		answers := &mockAnswerService{err: domain.NewGenerationCallError("compose", errors.New("503"))}
		server := newTestServer(t, answers)

		_, _, err := server.handleAnswer(ctx, nil, AnswerInput{Question: "питання"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrGenerationCall)
		assert.Contains(t, err.Error(), "GenerationCallError")
	})
}

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		k         int
		expectedK int
	}{
		{"default k", 0, defaultRetrieveK},
		{"explicit k", 3, 3},
		{"k is capped", 500, maxRetrieveK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := &mockAnswerService{chunks: []domain.RetrievedChunk{
				{Chunk: domain.Chunk{Position: 1, Source: "a_clean.txt", Content: "каска"}, Rank: 0, Distance: 0.1},
				{Chunk: domain.Chunk{Position: 7, Source: "b_clean.txt", Content: "окуляри"}, Rank: 1, Distance: 0.4},
			}}
			server := newTestServer(t, answers)

			_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Question: "каска", K: tt.k})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedK, answers.k)
			assert.Equal(t, 2, output.Count)
			assert.Equal(t, 1, output.Chunks[1].Rank)
			assert.Equal(t, "окуляри", output.Chunks[1].Content)
			assert.InDelta(t, 0.4, output.Chunks[1].Distance, 1e-6)
		})
	}

	t.Run("empty result is an empty list", func(t *testing.T) {
		server := newTestServer(t, &mockAnswerService{})

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Question: "каска"})

		require.NoError(t, err)
		assert.NotNil(t, output.Chunks)
		assert.Zero(t, output.Count)
	})

	t.Run("returns error on inconsistency", func(t *testing.T) {
		server := newTestServer(t, &mockAnswerService{err: domain.NewRetrievalInconsistencyError(3, 2)})

		_, _, err := server.handleRetrieve(ctx, nil, RetrieveInput{Question: "каска"})

		assert.ErrorIs(t, err, domain.ErrRetrievalInconsistency)
	})
}
