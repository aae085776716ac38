// Package checklist provides the framework checklist registry.
//
// Built-in checklists are embedded in the binary. A user directory may add
// frameworks or replace built-in ones; the file name stem is the framework
// name. The registry is built once and never mutated afterwards.
package checklist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/comply/internal/adapters/driven/checklist/builtin"
	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
	"github.com/custodia-labs/comply/internal/logger"
)

// Pattern matches checklist files at any depth.
const Pattern = "**/*.{json,yaml,yml}"

// Ensure Store implements the interface.
var _ driven.ChecklistStore = (*Store)(nil)

// Store is an immutable registry of frameworks keyed by name.
type Store struct {
	frameworks map[string]*domain.Framework
}

// Option configures Load.
type Option func(*loadConfig)

type loadConfig struct {
	dir      string
	policies map[string]domain.StatusPolicy
	builtins bool
}

// WithDir adds checklists from a user directory. A missing directory is ignored.
func WithDir(dir string) Option {
	return func(c *loadConfig) {
		c.dir = dir
	}
}

// WithPolicies overrides the status policy of the named frameworks.
func WithPolicies(policies map[string]domain.StatusPolicy) Option {
	return func(c *loadConfig) {
		c.policies = policies
	}
}

// WithoutBuiltins skips the embedded checklists.
func WithoutBuiltins() Option {
	return func(c *loadConfig) {
		c.builtins = false
	}
}

// Load builds the registry from the built-in checklists and the configured
// user directory. Any malformed file fails the whole load.
func Load(opts ...Option) (*Store, error) {
	cfg := loadConfig{builtins: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store{frameworks: make(map[string]*domain.Framework)}

	if cfg.builtins {
		if err := s.loadFS(builtin.FS, "builtin"); err != nil {
			return nil, err
		}
	}

	if cfg.dir != "" {
		info, err := os.Stat(cfg.dir)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("checklist directory %s does not exist, skipping", cfg.dir)
		case err != nil:
			return nil, fmt.Errorf("stat checklist directory: %w", err)
		case !info.IsDir():
			return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, cfg.dir)
		default:
			if err := s.loadFS(os.DirFS(cfg.dir), cfg.dir); err != nil {
				return nil, err
			}
		}
	}

	for name, policy := range cfg.policies {
		fw, ok := s.frameworks[name]
		if !ok {
			logger.Warn("status policy set for unknown framework %q", name)
			continue
		}
		if !policy.IsValid() {
			return nil, fmt.Errorf("%w: framework %s: unknown status policy %q",
				domain.ErrInvalidInput, name, policy)
		}
		fw.Policy = policy
	}

	return s, nil
}

// loadFS decodes every checklist file in fsys. Later files replace earlier
// frameworks of the same name.
func (s *Store) loadFS(fsys fs.FS, source string) error {
	matches, err := doublestar.Glob(fsys, Pattern)
	if err != nil {
		return fmt.Errorf("glob %s: %w", source, err)
	}
	sort.Strings(matches)

	for _, match := range matches {
		data, err := fs.ReadFile(fsys, match)
		if err != nil {
			return fmt.Errorf("read checklist %s: %w", match, err)
		}

		name := frameworkName(match)
		fw, err := Decode(name, data)
		if err != nil {
			return fmt.Errorf("load %s: %w", match, err)
		}

		if _, exists := s.frameworks[name]; exists {
			logger.Info("checklist %s from %s replaces existing framework", name, source)
		}
		s.frameworks[name] = fw
		logger.Debug("loaded framework %s (%d requirements) from %s", name, fw.Checklist.Len(), source)
	}
	return nil
}

// Get returns the framework registered under name, case-insensitively.
func (s *Store) Get(name string) (*domain.Framework, error) {
	fw, ok := s.frameworks[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFramework, name)
	}
	return fw, nil
}

// List returns all frameworks ordered by name.
func (s *Store) List() []*domain.Framework {
	out := make([]*domain.Framework, 0, len(s.frameworks))
	for _, fw := range s.frameworks {
		out = append(out, fw)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// frameworkName derives the registry key from a file path.
func frameworkName(p string) string {
	base := path.Base(p)
	return strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
}
