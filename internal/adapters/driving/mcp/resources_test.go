package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleCacheStatsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stats as JSON", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Check: &mockCheckService{},
			Cache: &mockCacheService{stats: domain.CacheStats{Queries: 4, Pages: 9, Embedded: 7, ContentBytes: 2048}},
		})
		require.NoError(t, err)

		req := makeReadResourceRequest("plagcheck://cache/stats")
		result, err := server.handleCacheStatsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var got map[string]int64
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
		assert.Equal(t, int64(4), got["queries"])
		assert.Equal(t, int64(9), got["pages"])
		assert.Equal(t, int64(2048), got["content_bytes"])
	})

	t.Run("no cache service returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Check: &mockCheckService{}})
		require.NoError(t, err)

		_, err = server.handleCacheStatsResource(ctx, makeReadResourceRequest("plagcheck://cache/stats"))
		assert.Error(t, err)
	})

	t.Run("stats failure is wrapped", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Check: &mockCheckService{},
			Cache: &mockCacheService{err: errors.New("disk gone")},
		})
		require.NoError(t, err)

		_, err = server.handleCacheStatsResource(ctx, makeReadResourceRequest("plagcheck://cache/stats"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading cache stats")
	})
}
