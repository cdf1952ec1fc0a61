package mcp

import (
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Check runs the detection pipeline.
	Check driving.CheckService

	// Cache reports cache usage. Optional.
	Cache driving.CacheService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Check == nil {
		return ErrMissingCheckService
	}
	return nil
}
