package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ManifestURI addresses the manifest of the served index.
const ManifestURI = "weldsafe://manifest"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         ManifestURI,
		Name:        "manifest",
		Description: "Build manifest of the corpus currently being served",
		MIMEType:    "application/json",
	}, s.handleManifestResource)
}

// handleManifestResource returns the manifest of the served snapshot.
// Before any index is loaded every field is zero.
func (s *Server) handleManifestResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.ports.Answers.Manifest(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling manifest: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
