// Package mcp provides an MCP (Model Context Protocol) server adapter for plagcheck.
// It lets AI assistants locate review sections, inspect windows and run checks
// on local documents.
package mcp

import "errors"

// ErrMissingCheckService is returned when the check service is not provided.
var ErrMissingCheckService = errors.New("mcp: check service is required")
