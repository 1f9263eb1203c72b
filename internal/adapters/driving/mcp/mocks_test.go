package mcp

import (
	"context"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer   *domain.Answer
	chunks   []domain.RetrievedChunk
	manifest domain.Manifest
	err      error

	question string
	k        int
}

func (m *mockAnswerService) Answer(ctx context.Context, q string) (string, error) {
	a, err := m.Ask(ctx, q)
	if err != nil {
		return "", err
	}
	return a.Text, nil
}

func (m *mockAnswerService) Ask(_ context.Context, q string) (*domain.Answer, error) {
	m.question = q
	return m.answer, m.err
}

func (m *mockAnswerService) Retrieve(_ context.Context, q string, k int) ([]domain.RetrievedChunk, error) {
	m.question = q
	m.k = k
	return m.chunks, m.err
}

func (m *mockAnswerService) Manifest() domain.Manifest {
	return m.manifest
}
