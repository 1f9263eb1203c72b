package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleManifestResource(t *testing.T) {
	manifest := domain.Manifest{
		Version:        domain.ManifestVersion,
		BuildID:        "abc123",
		ChunkCount:     42,
		Dimensions:     1536,
		EmbeddingModel: "text-embedding-3-small",
		Documents:      []domain.DocumentRef{{Name: "gas_clean.txt", Chunks: 42}},
	}
	server := newTestServer(t, &mockAnswerService{manifest: manifest})

	result, err := server.handleManifestResource(context.Background(), makeReadResourceRequest(ManifestURI))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, ManifestURI, result.Contents[0].URI)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var got domain.Manifest
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
	assert.Equal(t, manifest, got)
}
