// Package tui provides the interactive chat terminal for weldsafe.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/weldsafe/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Answers answers questions from the served corpus.
	Answers driving.AnswerService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Answers == nil {
		return ErrMissingAnswerService
	}
	return nil
}
