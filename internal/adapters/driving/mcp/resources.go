package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for aska resources.
	uriScheme = "aska://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for corpus statistics.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Indexed corpus statistics",
		MIMEType:    "application/json",
	}, s.handleStatsResource)
}

// handleStatsResource returns the indexed state of every enabled corpus.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Ask.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stats: %w", err)
	}

	// Build simplified stats list.
	type statsInfo struct {
		Corpus  string `json:"corpus"`
		Sources int    `json:"sources"`
		Chunks  int    `json:"chunks"`
	}

	infos := make([]statsInfo, len(stats))
	for i, st := range stats {
		infos[i] = statsInfo{
			Corpus:  st.Corpus.String(),
			Sources: st.Sources,
			Chunks:  st.Chunks,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
