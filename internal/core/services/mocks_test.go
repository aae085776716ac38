package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockConfigStore is a map-backed driven.ConfigStore.
type mockConfigStore struct {
	mu     sync.Mutex
	values map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func (m *mockConfigStore) GetBool(key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	v, _ := m.Get(key)
	s, _ := v.([]string)
	return s
}

func (m *mockConfigStore) Keys(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string {
	return "/tmp/comply/config.toml"
}

// mockValidator records validation calls.
type mockValidator struct {
	embedErr  error
	llmErr    error
	embedding *domain.EmbeddingSettings
	llm       *domain.LLMSettings
}

func (m *mockValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.embedErr
}

func (m *mockValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.llmErr
}

// mockEmbedder maps texts to fixed vectors. Unknown texts get fallback.
type mockEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	batches  [][]string
	err      error
	short    bool
	model    string // defaults to "mock-embed"
	dims     int    // defaults to 3
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, texts)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, ok := m.vectors[t]
		if !ok {
			v = m.fallback
			if v == nil {
				v = []float32{0, 0, 1}
			}
		}
		out = append(out, v)
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func (m *mockEmbedder) Dimensions() int {
	if m.dims != 0 {
		return m.dims
	}
	return 3
}

func (m *mockEmbedder) ModelName() string {
	if m.model != "" {
		return m.model
	}
	return "mock-embed"
}

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// llmCall is one recorded Chat invocation.
type llmCall struct {
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

// mockLLM answers Chat calls with reply, or with respond when set.
type mockLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	respond func(messages []driven.ChatMessage, opts driven.ChatOptions) (string, error)
	calls   []llmCall
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return m.Chat(ctx, []driven.ChatMessage{{Role: "user", Content: prompt}}, driven.ChatOptions{
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, llmCall{messages: messages, opts: opts})
	respond := m.respond
	m.mu.Unlock()

	if respond != nil {
		return respond(messages, opts)
	}
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) recorded() []llmCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llmCall(nil), m.calls...)
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// testPrompts are short templates with the same placeholders as the real ones.
var testPrompts = map[string]string{
	driven.PromptAdviceSystem:   "advise on %s",
	driven.PromptAdviceUser:     "framework=%s question=%s excerpt=%s",
	driven.PromptImproveSystem:  "improve for %s",
	driven.PromptDraftSystem:    "draft for %s",
	driven.PromptSummarySystem:  "summarise",
	driven.PromptChatSystem:     "doc=%s context=%s",
	driven.PromptFollowUpSystem: "follow up",
}

// mockPromptStore serves testPrompts.
type mockPromptStore struct {
	err error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := testPrompts[name]
	if !ok {
		return "", errors.New("unknown prompt " + name)
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockChecklistStore serves a fixed set of frameworks.
type mockChecklistStore struct {
	frameworks map[string]*domain.Framework
}

func newMockChecklistStore(frameworks ...*domain.Framework) *mockChecklistStore {
	m := &mockChecklistStore{frameworks: make(map[string]*domain.Framework)}
	for _, fw := range frameworks {
		m.frameworks[fw.Name] = fw
	}
	return m
}

func (m *mockChecklistStore) Get(name string) (*domain.Framework, error) {
	fw, ok := m.frameworks[strings.ToLower(name)]
	if !ok {
		return nil, domain.ErrUnknownFramework
	}
	return fw, nil
}

func (m *mockChecklistStore) List() []*domain.Framework {
	out := make([]*domain.Framework, 0, len(m.frameworks))
	for _, fw := range m.frameworks {
		out = append(out, fw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
