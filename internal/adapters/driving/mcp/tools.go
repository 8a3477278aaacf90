package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer        string         `json:"answer"`
	Grounded      bool           `json:"grounded"`
	LowConfidence bool           `json:"low_confidence"`
	Sources       []SourceOutput `json:"sources,omitempty"`
}

// SourceOutput represents a single source supporting the answer.
type SourceOutput struct {
	Title string  `json:"title"`
	URI   string  `json:"uri,omitempty"`
	Page  int     `json:"page,omitempty"`
	Score float64 `json:"score"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question grounded in the locally indexed documents",
	}, s.handleAsk)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:        answer.Text,
		Grounded:      answer.Grounded,
		LowConfidence: answer.LowConfidence,
		Sources:       make([]SourceOutput, len(answer.Results)),
	}

	for i := range answer.Results {
		base := answer.Results[i].Meta.Base()
		title := base.Title
		if title == "" {
			title = base.SourceID
		}
		output.Sources[i] = SourceOutput{
			Title: title,
			URI:   base.URI,
			Page:  answer.Results[i].Meta.Section(),
			Score: answer.Results[i].FinalScore,
		}
	}

	return nil, output, nil
}
