package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
	"github.com/custodia-labs/comply/internal/core/ports/driving"
	"github.com/custodia-labs/comply/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyLLMProvider        = "llm.provider"
	keyLLMModel           = "llm.model"
	keyLLMBaseURL         = "llm.base_url"
	keyLLMAPIKey          = "llm.api_key"
	keyMaxWords           = "scoring.max_words"
	keyWorkers            = "scoring.workers"
	keyAdviceConcurrency  = "scoring.advice_concurrency"
	keyRetryMaxAttempts   = "retry.max_attempts"
	keyRetryBaseDelayMS   = "retry.base_delay_ms"
	keyRetryRPS           = "retry.requests_per_second"
	keyRetryBurst         = "retry.burst"
	keyServerAddr         = "server.addr"
	keyCorpusTopK         = "corpus.top_k"
	keyCorpusChunkSize    = "corpus.chunk_size"
	keyCorpusPath         = "corpus.path"
	keyChecklistDir       = "checklists.dir"
	keyPipelineProcessors = "pipeline.processors"

	frameworksPrefix   = "frameworks."
	statusPolicySuffix = ".status_policy"
)

// Environment variables consulted when no API key is configured.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
)

type setting struct {
	key   string
	value any
}

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindProvider
	kindPolicy
)

// settableKeys lists every key accepted by Set with its value kind.
var settableKeys = map[string]keyKind{
	keyEmbedProvider:     kindProvider,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyLLMProvider:       kindProvider,
	keyLLMModel:          kindString,
	keyLLMBaseURL:        kindString,
	keyLLMAPIKey:         kindString,
	keyMaxWords:          kindInt,
	keyWorkers:           kindInt,
	keyAdviceConcurrency: kindInt,
	keyRetryMaxAttempts:  kindInt,
	keyRetryBaseDelayMS:  kindInt,
	keyRetryRPS:          kindFloat,
	keyRetryBurst:        kindInt,
	keyServerAddr:        kindString,
	keyCorpusTopK:        kindInt,
	keyCorpusChunkSize:   kindInt,
	keyCorpusPath:        kindString,
	keyChecklistDir:      kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings. Config values win over
// environment fallbacks, which win over defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Scoring: domain.ScoringSettings{
			MaxWords:          s.getInt(keyMaxWords, defaults.Scoring.MaxWords),
			Workers:           s.getInt(keyWorkers, defaults.Scoring.Workers),
			AdviceConcurrency: s.getInt(keyAdviceConcurrency, defaults.Scoring.AdviceConcurrency),
		},
		Retry: domain.RetrySettings{
			MaxAttempts:       s.getInt(keyRetryMaxAttempts, defaults.Retry.MaxAttempts),
			BaseDelay:         s.getDelay(keyRetryBaseDelayMS, defaults.Retry.BaseDelay),
			RequestsPerSecond: s.getFloat(keyRetryRPS, defaults.Retry.RequestsPerSecond),
			Burst:             s.getInt(keyRetryBurst, defaults.Retry.Burst),
		},
		Corpus: domain.CorpusSettings{
			Path:      s.configStore.GetString(keyCorpusPath),
			TopK:      s.getInt(keyCorpusTopK, defaults.Corpus.TopK),
			ChunkSize: s.getInt(keyCorpusChunkSize, defaults.Corpus.ChunkSize),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
		ChecklistDir: s.configStore.GetString(keyChecklistDir),
		Policies:     s.getPolicies(),
	}

	// The default model only makes sense for the provider it belongs to.
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envKey(settings.LLM.Provider)
	}

	return settings, nil
}

// Save persists application settings. API keys that only came from the
// environment are not written to disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []setting{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyMaxWords, settings.Scoring.MaxWords},
		{keyWorkers, settings.Scoring.Workers},
		{keyAdviceConcurrency, settings.Scoring.AdviceConcurrency},
		{keyRetryMaxAttempts, settings.Retry.MaxAttempts},
		{keyRetryBaseDelayMS, int(settings.Retry.BaseDelay / time.Millisecond)},
		{keyRetryRPS, settings.Retry.RequestsPerSecond},
		{keyRetryBurst, settings.Retry.Burst},
		{keyServerAddr, settings.Server.Addr},
		{keyCorpusTopK, settings.Corpus.TopK},
		{keyCorpusChunkSize, settings.Corpus.ChunkSize},
		{keyCorpusPath, settings.Corpus.Path},
		{keyChecklistDir, settings.ChecklistDir},
	}

	if key := settings.Embedding.APIKey; key != "" && key != s.envKey(settings.Embedding.Provider) {
		values = append(values, setting{keyEmbedAPIKey, key})
	}
	if key := settings.LLM.APIKey; key != "" && key != s.envKey(settings.LLM.Provider) {
		values = append(values, setting{keyLLMAPIKey, key})
	}

	for name, policy := range settings.Policies {
		values = append(values, setting{frameworksPrefix + name + statusPolicySuffix, policy.String()})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value according to the key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	kind, ok := settableKeys[key]
	if !ok && isPolicyKey(key) {
		kind, ok = kindPolicy, true
	}
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindProvider:
		provider := domain.AIProvider(strings.ToLower(value))
		if !provider.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
		if key == keyEmbedProvider && !supportsEmbedding(provider) {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
		}
		parsed = provider.String()
	case kindPolicy:
		policy, ok := domain.ParseStatusPolicy(value)
		if !ok || value == "" {
			return fmt.Errorf("%w: unknown status policy %q", domain.ErrInvalidInput, value)
		}
		parsed = policy.String()
	default:
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	logger.Debug("setting %s updated", key)
	return nil
}

// Keys returns the configuration keys accepted by Set, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settableKeys)+1)
	for k := range settableKeys {
		keys = append(keys, k)
	}
	keys = append(keys, frameworksPrefix+"<name>"+statusPolicySuffix)
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the corpus post-processor pipeline configuration.
// Returns the fixed-width chunker if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	chunkSize := s.getInt(keyCorpusChunkSize, domain.DefaultAppSettings().Corpus.ChunkSize)
	cfg := domain.DefaultPipelineConfig(chunkSize)

	if processors := s.configStore.GetStringSlice(keyPipelineProcessors); len(processors) > 0 {
		cfg.Processors = processors
	}

	for _, name := range cfg.Processors {
		overrides := s.loadProcessorConfig("pipeline." + name + ".")
		if len(overrides) == 0 {
			continue
		}
		existing := cfg.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for k, v := range overrides {
			existing[k] = v
		}
		cfg.ProcessorConfigs[name] = existing
	}

	return cfg
}

// loadProcessorConfig loads config keys with a given prefix into a map.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)
	for _, fullKey := range s.configStore.Keys(prefix) {
		if val, exists := s.configStore.Get(fullKey); exists {
			cfg[strings.TrimPrefix(fullKey, prefix)] = val
		}
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDelay(key string, defaultVal time.Duration) time.Duration {
	ms := s.configStore.GetInt(key)
	if ms <= 0 {
		return defaultVal
	}
	return time.Duration(ms) * time.Millisecond
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		logger.Warn("ignoring unknown provider %q for %s", val, key)
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getPolicies() map[string]domain.StatusPolicy {
	policies := make(map[string]domain.StatusPolicy)
	for _, key := range s.configStore.Keys(frameworksPrefix) {
		if !isPolicyKey(key) {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(key, frameworksPrefix), statusPolicySuffix)
		raw := s.configStore.GetString(key)
		policy, ok := domain.ParseStatusPolicy(raw)
		if !ok {
			logger.Warn("ignoring unknown status policy %q for framework %s", raw, name)
			continue
		}
		policies[name] = policy
	}
	return policies
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicKey)
	default:
		return ""
	}
}

func isPolicyKey(key string) bool {
	if !strings.HasPrefix(key, frameworksPrefix) || !strings.HasSuffix(key, statusPolicySuffix) {
		return false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(key, frameworksPrefix), statusPolicySuffix)
	return name != "" && !strings.Contains(name, ".")
}

func supportsEmbedding(provider domain.AIProvider) bool {
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			return true
		}
	}
	return false
}
