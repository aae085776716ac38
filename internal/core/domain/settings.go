package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ScoringSettings tunes the matching engine.
type ScoringSettings struct {
	// MaxWords bounds the size of a scoring chunk.
	MaxWords int

	// Workers is the number of goroutines scanning variants. Zero means GOMAXPROCS.
	Workers int

	// AdviceConcurrency bounds concurrent advice generation calls per report.
	AdviceConcurrency int
}

// RetrySettings bounds retries and request rate against AI providers.
type RetrySettings struct {
	// MaxAttempts is the total number of attempts per call, including the first.
	MaxAttempts int

	// BaseDelay is the first backoff delay; it doubles on every retry.
	BaseDelay time.Duration

	// RequestsPerSecond caps the call rate. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the token bucket size.
	Burst int
}

// CorpusSettings configures the chat corpus index.
type CorpusSettings struct {
	// Path is the data directory of the sqlite corpus store.
	Path string

	// TopK is the number of passages retrieved per question.
	TopK int

	// ChunkSize is the fixed chunk width, in characters, used when indexing.
	ChunkSize int
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	Scoring ScoringSettings
	Retry   RetrySettings
	Corpus  CorpusSettings
	Server  ServerSettings

	// ChecklistDir holds user-supplied checklist files.
	ChecklistDir string

	// Policies overrides the status policy per framework name.
	Policies map[string]StatusPolicy
}

// DefaultAppSettings returns settings with sensible defaults.
// Embedding and LLM default to OpenAI; the API key comes from config or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Scoring: ScoringSettings{
			MaxWords:          200,
			AdviceConcurrency: 4,
		},
		Retry: RetrySettings{
			MaxAttempts:       3,
			BaseDelay:         500 * time.Millisecond,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Corpus: CorpusSettings{
			TopK:      15,
			ChunkSize: 500,
		},
		Server: ServerSettings{
			Addr: "127.0.0.1:8080",
		},
		Policies: map[string]StatusPolicy{},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig selects the post-processors that chunk corpus documents.
type PipelineConfig struct {
	// Processors are processor names in execution order.
	Processors []string

	// ProcessorConfigs holds per-processor settings keyed by processor name.
	ProcessorConfigs map[string]map[string]any
}

// DefaultPipelineConfig returns the fixed-width chunker with no overlap.
func DefaultPipelineConfig(chunkSize int) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": chunkSize,
				"overlap":    0,
			},
		},
	}
}
