// Package mcp provides an MCP (Model Context Protocol) server adapter for comply.
// It lets AI assistants score reports against disclosure frameworks and
// retrieve passages from the indexed corpus.
package mcp

import "errors"

// ErrMissingComplianceService is returned when the compliance service is not provided.
var ErrMissingComplianceService = errors.New("mcp: compliance service is required")
