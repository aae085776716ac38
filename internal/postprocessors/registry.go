package postprocessors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
)

// BuilderFunc builds a processor from its pipeline.<name>.* settings.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry maps the processor names accepted in pipeline.processors to builders.
type Registry struct {
	builders map[string]BuilderFunc
}

func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register binds name to builder, replacing any earlier binding.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build constructs the named processor. Unknown names are invalid input,
// since they come straight from user configuration.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q (available: %s)",
			domain.ErrInvalidInput, name, strings.Join(r.Names(), ", "))
	}
	proc, err := builder(cfg)
	if err != nil {
		return nil, fmt.Errorf("processor %s: %w", name, err)
	}
	return proc, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
