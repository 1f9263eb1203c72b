package gateway

import (
	"context"
	"io"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

type mockAnswerService struct {
	answer   *domain.Answer
	manifest domain.Manifest
	err      error
	question string
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

func (m *mockAnswerService) Retrieve(context.Context, string, int) ([]domain.RetrievedChunk, error) {
	return nil, m.err
}

func (m *mockAnswerService) Manifest() domain.Manifest {
	return m.manifest
}

type mockConversation struct {
	reply *domain.Reply
	err   error

	incoming domain.Incoming
	filename string
	audio    string
}

func (m *mockConversation) Handle(_ context.Context, in domain.Incoming) (*domain.Reply, error) {
	m.incoming = in
	return m.reply, m.err
}

func (m *mockConversation) HandleVoice(_ context.Context, in domain.Incoming, filename string, audio io.Reader) (*domain.Reply, error) {
	m.incoming = in
	m.filename = filename
	data, _ := io.ReadAll(audio)
	m.audio = string(data)
	return m.reply, m.err
}

type healthFlag bool

func (h healthFlag) Healthy() bool { return bool(h) }
