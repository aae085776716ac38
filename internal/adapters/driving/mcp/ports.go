package mcp

import (
	"github.com/custodia-labs/comply/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Compliance scores documents against framework checklists.
	Compliance driving.ComplianceService

	// Advisor generates improvement tips and draft disclosures.
	// Optional: the improve and draft tools are not registered without it.
	Advisor driving.AdvisorService

	// Corpus retrieves passages from indexed documents.
	// Optional: the retrieve tool is not registered without it.
	Corpus driving.CorpusService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Compliance == nil {
		return ErrMissingComplianceService
	}
	return nil
}
