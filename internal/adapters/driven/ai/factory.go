// Package ai provides factory functions for creating AI service adapters
// and the retry decorators every adapter is wrapped in.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/comply/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/comply/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/comply/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/comply/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/comply/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the AI services built from settings.
type InitResult struct {
	// EmbeddingService is nil when embeddings are not configured.
	EmbeddingService driven.EmbeddingService

	// LLMService is nil when generation is not configured.
	LLMService driven.LLMService

	// Warnings are non-fatal configuration issues.
	Warnings []string
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init builds the embedding and generation services from settings, each
// wrapped in a retry policy built from settings.Retry. It does not contact
// the providers. A provider that cannot be built is reported as a warning
// and left nil.
func Init(settings *domain.AppSettings) *InitResult {
	result := &InitResult{}
	policy := NewPolicy(settings.Retry)

	emb, err := CreateEmbeddingService(&settings.Embedding)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedding: %v", err))
	case emb == nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("embedding: %s is not configured; compliance checks are disabled", settings.Embedding.Provider))
	default:
		result.EmbeddingService = NewResilientEmbedding(emb, policy)
	}

	llm, err := CreateLLMService(&settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("llm: %v", err))
	case llm == nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("llm: %s is not configured; advice, drafts and chat are disabled", settings.LLM.Provider))
	default:
		result.LLMService = NewResilientLLM(llm, policy)
	}

	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'comply settings set' to fix", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'comply settings set' to fix", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates an embedding service and pings it.
// Unconfigured settings are valid.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(settings)
	if svc != nil {
		svc.Close()
	}
	return err
}

// ValidateLLMConfig creates an LLM service and pings it.
// Unconfigured settings are valid.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateAndValidateLLMService(settings)
	if svc != nil {
		svc.Close()
	}
	return err
}

// CreateEmbeddingService creates the embedding adapter for the configured provider.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
		})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the LLM adapter for the configured provider.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
