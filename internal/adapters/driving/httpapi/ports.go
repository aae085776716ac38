// Package httpapi serves the comply JSON API over HTTP.
package httpapi

import (
	"errors"

	"github.com/custodia-labs/comply/internal/core/ports/driving"
)

// ErrMissingComplianceService is returned when Ports has no compliance service.
var ErrMissingComplianceService = errors.New("httpapi: compliance service is required")

// Ports aggregates the driving ports served by the API.
type Ports struct {
	// Compliance backs /api/analyze/{framework} and /api/frameworks.
	Compliance driving.ComplianceService

	// Advisor backs improve, draft and summary. Optional.
	Advisor driving.AdvisorService

	// Corpus backs embed, documents and chat. Optional.
	Corpus driving.CorpusService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Compliance == nil {
		return ErrMissingComplianceService
	}
	return nil
}
