package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ollama/ollama/api"
	"go.opentelemetry.io/otel/attribute"

	"github.com/custodia-labs/weldsafe/internal/adapters/driven/ai/apierr"
	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/logger"
	"github.com/custodia-labs/weldsafe/internal/tracing"
)

// Backoff bounds.
const (
	DefaultBaseDelay = 500 * time.Millisecond
	DefaultMaxDelay  = 30 * time.Second
)

// Policy bounds every provider call: a per-attempt timeout, a shared
// rate limiter and retries with exponential backoff for transient errors.
type Policy struct {
	// Timeout bounds a single attempt. Zero means no extra deadline.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BaseDelay is the first backoff; it doubles per retry up to MaxDelay.
	// MaxDelay also caps a server-sent Retry-After.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Limiter is shared by all wrapped services. May be nil.
	Limiter *RateLimiter
}

// NewPolicy builds a policy from runtime settings and a shared limiter.
func NewPolicy(rt domain.AIRuntimeSettings, limiter *RateLimiter) *Policy {
	return &Policy{
		Timeout:    rt.Timeout(),
		MaxRetries: rt.MaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
		Limiter:    limiter,
	}
}

// Do runs fn until it succeeds, fails permanently, or retries run out.
// A 429 that survives all retries is reported as domain.ErrRateLimited.
func (p *Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if p.Limiter != nil {
			if werr := p.Limiter.Wait(ctx); werr != nil {
				return werr
			}
		}

		err = p.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !IsTransient(err) || attempt >= p.MaxRetries {
			break
		}

		delay := p.backoff(attempt)
		if ra := retryAfter(err); ra > 0 {
			delay = ra
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
			if p.Limiter != nil {
				p.Limiter.RecordRateLimitError(delay)
			}
		}
		logger.Warn("%s failed (attempt %d/%d), retrying in %s: %v", op, attempt+1, p.MaxRetries+1, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if isRateLimit(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrRateLimited, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (p *Policy) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.Timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	return fn(ctx)
}

func (p *Policy) backoff(attempt int) time.Duration {
	d := p.BaseDelay
	if d <= 0 {
		d = DefaultBaseDelay
	}
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return d
}

// IsTransient reports whether a provider error is worth retrying:
// timeouts, network failures, 408, 429 and 5xx.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var se *apierr.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var oe api.StatusError
	if errors.As(err, &oe) {
		return oe.StatusCode == http.StatusTooManyRequests || oe.StatusCode >= http.StatusInternalServerError
	}
	var ne net.Error
	return errors.As(err, &ne)
}

func isRateLimit(err error) bool {
	var se *apierr.StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests
	}
	var oe api.StatusError
	return errors.As(err, &oe) && oe.StatusCode == http.StatusTooManyRequests
}

func retryAfter(err error) time.Duration {
	var se *apierr.StatusError
	if errors.As(err, &se) {
		return se.RetryAfter
	}
	return 0
}

// Ensure wrappers implement the ports.
var (
	_ driven.EmbeddingService = (*ResilientEmbedding)(nil)
	_ driven.LLMService       = (*ResilientLLM)(nil)
	_ driven.Transcriber      = (*ResilientTranscriber)(nil)
)

// ResilientEmbedding applies a Policy and tracing to an EmbeddingService.
type ResilientEmbedding struct {
	next   driven.EmbeddingService
	policy *Policy
}

// NewResilientEmbedding wraps next.
func NewResilientEmbedding(next driven.EmbeddingService, policy *Policy) *ResilientEmbedding {
	return &ResilientEmbedding{next: next, policy: policy}
}

// Embed generates one embedding.
func (s *ResilientEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := tracing.Start(ctx, "embed",
		attribute.String("model", s.next.ModelName()),
		attribute.Int("texts", 1))
	var out []float32
	err := s.policy.Do(ctx, "embed", func(ctx context.Context) error {
		v, err := s.next.Embed(ctx, text)
		out = v
		return err
	})
	tracing.End(span, err)
	return out, err
}

// EmbedBatch generates embeddings for texts in input order.
func (s *ResilientEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, span := tracing.Start(ctx, "embed",
		attribute.String("model", s.next.ModelName()),
		attribute.Int("texts", len(texts)))
	var out [][]float32
	err := s.policy.Do(ctx, "embed batch", func(ctx context.Context) error {
		v, err := s.next.EmbedBatch(ctx, texts)
		out = v
		return err
	})
	tracing.End(span, err)
	return out, err
}

// Dimensions returns the embedding vector size.
func (s *ResilientEmbedding) Dimensions() int { return s.next.Dimensions() }

// ModelName returns the wrapped model name.
func (s *ResilientEmbedding) ModelName() string { return s.next.ModelName() }

// Ping is not retried; startup checks must fail fast.
func (s *ResilientEmbedding) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close closes the wrapped service.
func (s *ResilientEmbedding) Close() error { return s.next.Close() }

// ResilientLLM applies a Policy and tracing to an LLMService.
type ResilientLLM struct {
	next   driven.LLMService
	policy *Policy
}

// NewResilientLLM wraps next.
func NewResilientLLM(next driven.LLMService, policy *Policy) *ResilientLLM {
	return &ResilientLLM{next: next, policy: policy}
}

// Chat returns a single completion.
func (s *ResilientLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	ctx, span := tracing.Start(ctx, "generate",
		attribute.String("model", s.next.ModelName()),
		attribute.Int("messages", len(messages)))
	var out string
	err := s.policy.Do(ctx, "generate", func(ctx context.Context) error {
		v, err := s.next.Chat(ctx, messages, opts)
		out = v
		return err
	})
	tracing.End(span, err)
	return out, err
}

// ModelName returns the wrapped model name.
func (s *ResilientLLM) ModelName() string { return s.next.ModelName() }

// Ping is not retried; startup checks must fail fast.
func (s *ResilientLLM) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close closes the wrapped service.
func (s *ResilientLLM) Close() error { return s.next.Close() }

// ResilientTranscriber applies a Policy to a Transcriber. The audio is
// buffered once so every attempt uploads the same bytes.
type ResilientTranscriber struct {
	next   driven.Transcriber
	policy *Policy
}

// NewResilientTranscriber wraps next.
func NewResilientTranscriber(next driven.Transcriber, policy *Policy) *ResilientTranscriber {
	return &ResilientTranscriber{next: next, policy: policy}
}

// Transcribe returns the recognised text.
func (s *ResilientTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}
	ctx, span := tracing.Start(ctx, "transcribe", attribute.Int("bytes", len(data)))
	var out string
	err = s.policy.Do(ctx, "transcribe", func(ctx context.Context) error {
		v, err := s.next.Transcribe(ctx, filename, bytes.NewReader(data))
		out = v
		return err
	})
	tracing.End(span, err)
	return out, err
}
