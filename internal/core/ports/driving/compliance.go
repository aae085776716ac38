package driving

import (
	"context"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// ComplianceService scores documents against framework checklists.
type ComplianceService interface {
	// Check scores docText against the named framework's checklist and, unless
	// disabled, generates advice for every result that is not LikelyMet.
	Check(ctx context.Context, framework, docText string, opts CheckOptions) (*domain.ComplianceReport, error)

	// Frameworks lists the registered frameworks.
	Frameworks() []*domain.Framework
}

// CheckOptions configures a single Check call.
type CheckOptions struct {
	// SkipAdvice disables advice generation even when an LLM is configured.
	SkipAdvice bool
}
