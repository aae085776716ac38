package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/comply/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts live in a configurable directory and fall back to embedded defaults.
//
// Initialisation is lazy: nothing touches the filesystem until the first Load.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains the embedded default prompts.
// They are written out as the initial content of each prompt file.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAdviceSystem: `You are a sustainability reporting advisor. Provide clear, actionable advice (2-3 sentences) to help a company improve its %s disclosure to meet the following guideline.`,

	driven.PromptAdviceUser: `%s Guideline: "%s"

Document Excerpt:
"%s"

How can the company improve its disclosure to meet the requirement?`,

	driven.PromptImproveSystem: `You are a sustainability disclosure expert helping companies improve %s alignment.

Given a disclosure requirement (e.g. "Report Scope 1 greenhouse gas emissions"), provide a concise, actionable tip that helps the company meet or improve on this requirement in their ESG or annual report.

Your advice should:
- Use plain language.
- Be no more than 2-3 sentences.
- Be specific and practical.
- Focus on what information to include and how.

Respond ONLY with a JSON object like:
{ "advice": "..." }`,

	driven.PromptDraftSystem: `You are a corporate sustainability expert specialising in %s reporting.

Given a specific requirement and the content of a company's draft ESG report, generate a short paragraph that could be added to the report to help meet the requirement.

Use a formal, objective, report-style tone. Ground the draft in the uploaded document content where it is available.

Respond ONLY with a JSON object like:
{ "draft": "..." }`,

	driven.PromptSummarySystem: `You are a corporate analyst summarising companies' sustainability, ESG, and annual reports.

Summarise the uploaded report in 3-5 bullet points. Focus on tone, key themes, and climate relevance.
Respond ONLY with a JSON object like:
{ "summary": ["point 1", "point 2", "point 3"] }`,

	driven.PromptChatSystem: `You are a helpful assistant that analyses and explains company reports.

Always refer to the uploaded document simply as "the report". Never call it excerpts, segments or chunks.
Respond naturally and clearly, using only what is in the report. Cite page numbers (e.g. "p. 3") where possible.

If something is not mentioned in the report, say "The report does not mention..." and stop there.

Focus specifically on the uploaded document: %s.

Use the following information to answer the user's question:

%s`,

	driven.PromptFollowUpSystem: `You are a helpful assistant. Based on the assistant's previous answer, suggest 2-3 concise follow-up questions the user might want to ask next.
Be proactive, relevant, and helpful. Format your response as a plain numbered list without extra commentary.`,
}

// DefaultPrompt returns the embedded default for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.comply/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// The first call creates the prompt directory and default files.
// A missing or unreadable file falls back to the embedded default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil {
			err = errors.New("empty prompt file")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Double-check so a concurrent load is not overwritten.
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Names returns the well-known prompt names in sorted order.
func (s *PromptStore) Names() []string {
	names := make([]string, 0, len(defaultPrompts))
	for name := range defaultPrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	var files strings.Builder
	for _, name := range s.Names() {
		files.WriteString("- `" + name + ".txt`\n")
	}

	content := `# Comply Prompts

This directory contains the prompts used by comply's LLM features.

## Files

` + files.String() + `
## Customisation

Edit any file to customise LLM behaviour. A running ` + "`comply serve`" + ` picks up
changes immediately; other commands read the files on their next run.

## Format Placeholders

Prompts use Go fmt placeholders (` + "`%s`" + `). Keep the same number of
placeholders in the same order when editing a prompt.
`
	return os.WriteFile(path, []byte(content), 0600)
}
