package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/logger"
)

// Retrieval bounds for the retrieve tool.
const (
	defaultRetrieveK = 10
	maxRetrieveK     = 50
)

// AnswerInput is the input schema for the answer tool.
type AnswerInput struct {
	Question string `json:"question" jsonschema:"the occupational-safety question, preferably in Ukrainian"`
}

// AnswerOutput is the output schema for the answer tool.
type AnswerOutput struct {
	Answer        string        `json:"answer"`
	Emergency     bool          `json:"emergency"`
	Fallback      bool          `json:"fallback"`
	Clarification bool          `json:"clarification"`
	Citations     []string      `json:"citations,omitempty"`
	Sources       []ChunkOutput `json:"sources,omitempty"`
	RequestID     string        `json:"request_id"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Question string `json:"question" jsonschema:"the text to find grounding chunks for"`
	K        int    `json:"k,omitempty" jsonschema:"number of chunks to return (default 10, max 50)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks    []ChunkOutput `json:"chunks"`
	Count     int           `json:"count"`
	RequestID string        `json:"request_id"`
}

// ChunkOutput is one retrieved corpus chunk.
type ChunkOutput struct {
	Rank     int     `json:"rank"`
	Position int     `json:"position"`
	Source   string  `json:"source"`
	Distance float32 `json:"distance"`
	Content  string  `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "answer",
		Description: "Answer a welding or occupational-safety question from the indexed regulations, in Ukrainian",
	}, s.handleAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the corpus chunks nearest to a question without composing an answer",
	}, s.handleRetrieve)
}

func (s *Server) handleAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	requestID := uuid.NewString()
	question := strings.TrimSpace(input.Question)
	logger.Event("mcp.answer", zap.String("request_id", requestID), zap.String("question", question))

	answer, err := s.ports.Answers.Ask(ctx, question)
	if err != nil {
		return nil, AnswerOutput{}, fmt.Errorf("%s (request %s): %w", domain.KindOf(err), requestID, err)
	}

	output := AnswerOutput{
		Answer:        answer.Text,
		Emergency:     answer.Emergency,
		Fallback:      answer.Fallback,
		Clarification: answer.Clarification,
		Sources:       chunkOutputs(answer.Sources),
		RequestID:     requestID,
	}
	for _, c := range answer.Citations {
		output.Citations = append(output.Citations, c.String())
	}
	return nil, output, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = defaultRetrieveK
	}
	if k > maxRetrieveK {
		k = maxRetrieveK
	}

	requestID := uuid.NewString()
	chunks, err := s.ports.Answers.Retrieve(ctx, strings.TrimSpace(input.Question), k)
	if err != nil {
		return nil, RetrieveOutput{}, fmt.Errorf("%s (request %s): %w", domain.KindOf(err), requestID, err)
	}

	return nil, RetrieveOutput{
		Chunks:    chunkOutputs(chunks),
		Count:     len(chunks),
		RequestID: requestID,
	}, nil
}

func chunkOutputs(chunks []domain.RetrievedChunk) []ChunkOutput {
	if len(chunks) == 0 {
		return []ChunkOutput{}
	}
	out := make([]ChunkOutput, len(chunks))
	for i := range chunks {
		out[i] = ChunkOutput{
			Rank:     chunks[i].Rank,
			Position: chunks[i].Position,
			Source:   chunks[i].Source,
			Distance: chunks[i].Distance,
			Content:  chunks[i].Content,
		}
	}
	return out
}
