package driving

import (
	"context"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// AdvisorService generates disclosure guidance with the generation service.
type AdvisorService interface {
	// Improve returns a short actionable tip for meeting a requirement.
	Improve(ctx context.Context, framework, question string) (string, error)

	// Draft proposes a disclosure paragraph for a requirement, grounded on the
	// most relevant passages of docText when any are relevant enough.
	Draft(ctx context.Context, framework, question, docText string) (*domain.Draft, error)

	// Summarise returns 3 to 5 bullet points describing the document.
	Summarise(ctx context.Context, docText string) ([]string, error)
}
