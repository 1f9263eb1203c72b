package gateway

import (
	"errors"

	"github.com/custodia-labs/weldsafe/internal/core/ports/driving"
)

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("gateway: answer service is required")

// HealthChecker reports whether the served corpus is consistent.
type HealthChecker interface {
	Healthy() bool
}

// Ports aggregates the driving ports used by the gateway.
type Ports struct {
	// Answers serves /v1/answer and /v1/index.
	Answers driving.AnswerService

	// Conversation serves /v1/messages and /v1/voice. Optional.
	Conversation driving.ConversationService

	// Health backs /healthz. Nil reports healthy.
	Health HealthChecker
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Answers == nil {
		return ErrMissingAnswerService
	}
	return nil
}
