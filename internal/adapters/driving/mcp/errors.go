// Package mcp provides an MCP (Model Context Protocol) server adapter for weldsafe.
// It lets AI assistants ask grounded safety questions and inspect retrieval.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")
