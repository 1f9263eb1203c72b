package mcp

import (
	"github.com/custodia-labs/weldsafe/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Answers composes answers and exposes retrieval and the manifest.
	Answers driving.AnswerService

	// Version is reported to clients. Empty reports "dev".
	Version string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Answers == nil {
		return ErrMissingAnswerService
	}
	return nil
}

func (p *Ports) version() string {
	if p.Version == "" {
		return "dev"
	}
	return p.Version
}
