package driven

import "github.com/custodia-labs/comply/internal/core/domain"

// ChecklistStore provides the framework checklists.
// Checklists are loaded once at startup and treated as immutable afterwards;
// callers must not modify returned values.
type ChecklistStore interface {
	// Get returns the framework registered under name.
	// Returns domain.ErrUnknownFramework if none is registered.
	Get(name string) (*domain.Framework, error)

	// List returns all frameworks ordered by name.
	List() []*domain.Framework
}
