package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driving"
	"github.com/custodia-labs/weldsafe/internal/logger"
	"github.com/custodia-labs/weldsafe/internal/policy"
	"github.com/custodia-labs/weldsafe/internal/tracing"
)

// Ensure AnswerEngine implements the interface.
var _ driving.AnswerService = (*AnswerEngine)(nil)

// EngineConfig tunes the query path.
type EngineConfig struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// MaxDistance is the grounding threshold. Zero keeps every chunk.
	MaxDistance float64
}

// AnswerEngine answers one question at a time from the served corpus.
// It keeps no state between questions.
type AnswerEngine struct {
	retriever *Retriever
	composer  *Composer
	corpus    *SnapshotHolder
	prompts   driven.PromptStore
	detector  *policy.EmergencyDetector
	clarity   policy.Clarity
	grounding policy.Grounding
	topK      int

	inconsistent atomic.Bool
}

// NewAnswerEngine wires the query path.
func NewAnswerEngine(
	retriever *Retriever,
	composer *Composer,
	corpus *SnapshotHolder,
	prompts driven.PromptStore,
	cfg EngineConfig,
) *AnswerEngine {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &AnswerEngine{
		retriever: retriever,
		composer:  composer,
		corpus:    corpus,
		prompts:   prompts,
		detector:  policy.NewEmergencyDetector(),
		clarity:   policy.DefaultClarity(),
		grounding: policy.Grounding{MaxDistance: cfg.MaxDistance},
		topK:      cfg.TopK,
	}
}

// Answer returns the answer text for a question.
func (e *AnswerEngine) Answer(ctx context.Context, question string) (string, error) {
	a, err := e.Ask(ctx, question)
	if err != nil {
		return "", err
	}
	return a.Text, nil
}

// Ask answers a question and returns the structured result.
//
// Vague questions get a clarification request and questions without
// grounding get the fallback text; neither calls the model. Emergency
// questions always open with the stop-work directive.
func (e *AnswerEngine) Ask(ctx context.Context, question string) (_ *domain.Answer, err error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	emergency := e.detector.Detect(question)
	ctx, span := tracing.Start(ctx, "answer", attribute.Bool("emergency", emergency.Detected))
	defer func() { tracing.End(span, err) }()

	if !emergency.Detected && !e.clarity.IsClear(question) {
		logger.Debug("Question %q is too vague", question)
		return &domain.Answer{Text: e.clarification(), Clarification: true}, nil
	}

	chunks, err := e.retriever.Retrieve(ctx, question, e.topK)
	if err != nil {
		e.observe(err)
		return nil, err
	}

	grounded := e.grounding.Filter(chunks)
	if len(grounded) == 0 {
		logger.Debug("No chunk within distance %.2f of %q", e.grounding.MaxDistance, question)
		return &domain.Answer{
			Text:      policy.Fallback(emergency.Detected),
			Emergency: emergency.Detected,
			Fallback:  true,
		}, nil
	}

	answer, err := e.composer.Compose(ctx, question, grounded, emergency)
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// Retrieve returns the nearest chunks without composing an answer.
func (e *AnswerEngine) Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievedChunk, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	chunks, err := e.retriever.Retrieve(ctx, question, k)
	if err != nil {
		e.observe(err)
	}
	return chunks, err
}

// Manifest describes the corpus being served.
func (e *AnswerEngine) Manifest() domain.Manifest {
	return e.corpus.Manifest()
}

// Healthy is false once a retrieval inconsistency has been seen.
func (e *AnswerEngine) Healthy() bool {
	return !e.inconsistent.Load()
}

// ResetHealth clears the inconsistency flag, typically after a reload.
func (e *AnswerEngine) ResetHealth() {
	e.inconsistent.Store(false)
}

func (e *AnswerEngine) clarification() string {
	if e.prompts != nil {
		if text, err := e.prompts.Load(driven.PromptClarification); err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
	}
	return policy.ClarificationText
}

// observe raises an alert for corrupted state.
func (e *AnswerEngine) observe(err error) {
	if !errors.Is(err, domain.ErrRetrievalInconsistency) {
		return
	}
	e.inconsistent.Store(true)
	m := e.corpus.Manifest()
	logger.Error("Retrieval inconsistency in index %s: %v", m.BuildID, err)
	logger.Event("retrieval inconsistency",
		zap.Bool("alert", true),
		zap.String("build_id", m.BuildID),
		zap.Error(err),
	)
}
