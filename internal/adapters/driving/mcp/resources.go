package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for plagcheck resources.
	uriScheme = "plagcheck://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "cache/stats",
		Name:        "cache-stats",
		Description: "Number of cached search queries and pages",
		MIMEType:    "application/json",
	}, s.handleCacheStatsResource)
}

// handleCacheStatsResource returns cache usage counters.
func (s *Server) handleCacheStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Cache == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	stats, err := s.ports.Cache.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading cache stats: %w", err)
	}

	info := struct {
		Queries      int64 `json:"queries"`
		Pages        int64 `json:"pages"`
		Embedded     int64 `json:"embedded"`
		ContentBytes int64 `json:"content_bytes"`
	}{int64(stats.Queries), int64(stats.Pages), int64(stats.Embedded), stats.ContentBytes}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling cache stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
