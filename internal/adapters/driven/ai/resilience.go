package ai

import (
	"context"
	"errors"
	"net"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
	"github.com/custodia-labs/comply/internal/logger"
)

// Policy retries idempotent provider calls on transient failures with
// exponential backoff, and rate-limits every attempt.
// A Policy is safe for concurrent use and is shared by all decorated services
// so that they draw from one request budget.
type Policy struct {
	maxAttempts int
	baseDelay   time.Duration
	limiter     *rate.Limiter
}

// NewPolicy creates a policy from retry settings. MaxAttempts below 1 is
// treated as 1. RequestsPerSecond of zero disables rate limiting.
func NewPolicy(settings domain.RetrySettings) *Policy {
	p := &Policy{
		maxAttempts: settings.MaxAttempts,
		baseDelay:   settings.BaseDelay,
	}
	if p.maxAttempts < 1 {
		p.maxAttempts = 1
	}
	if settings.RequestsPerSecond > 0 {
		burst := settings.Burst
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), burst)
	}
	return p
}

// Do runs fn until it succeeds, fails permanently, exhausts the attempts or
// ctx is done. The delay before retry n is baseDelay * 2^(n-1).
func (p *Policy) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if p.limiter != nil {
			if werr := p.limiter.Wait(ctx); werr != nil {
				if err != nil {
					return err
				}
				return werr
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !Retryable(err) || attempt == p.maxAttempts {
			return err
		}

		delay := p.baseDelay << (attempt - 1)
		logger.Warn("%s failed (attempt %d/%d), retrying in %s: %v", op, attempt, p.maxAttempts, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}

// Retryable reports whether err is a transient provider or network failure.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if domain.IsTransient(err) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// ResilientEmbedding retries embedding calls under a Policy.
type ResilientEmbedding struct {
	driven.EmbeddingService
	policy *Policy
}

// Ensure ResilientEmbedding implements the interface.
var _ driven.EmbeddingService = (*ResilientEmbedding)(nil)

// NewResilientEmbedding wraps svc with policy.
func NewResilientEmbedding(svc driven.EmbeddingService, policy *Policy) *ResilientEmbedding {
	return &ResilientEmbedding{EmbeddingService: svc, policy: policy}
}

// Embed implements driven.EmbeddingService.
func (r *ResilientEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := r.policy.Do(ctx, "embed", func(ctx context.Context) error {
		var err error
		vec, err = r.EmbeddingService.Embed(ctx, text)
		return err
	})
	return vec, err
}

// EmbedBatch implements driven.EmbeddingService.
func (r *ResilientEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vecs [][]float32
	err := r.policy.Do(ctx, "embed batch", func(ctx context.Context) error {
		var err error
		vecs, err = r.EmbeddingService.EmbedBatch(ctx, texts)
		return err
	})
	return vecs, err
}

// ResilientLLM retries generation calls under a Policy.
type ResilientLLM struct {
	driven.LLMService
	policy *Policy
}

// Ensure ResilientLLM implements the interface.
var _ driven.LLMService = (*ResilientLLM)(nil)

// NewResilientLLM wraps svc with policy.
func NewResilientLLM(svc driven.LLMService, policy *Policy) *ResilientLLM {
	return &ResilientLLM{LLMService: svc, policy: policy}
}

// Generate implements driven.LLMService.
func (r *ResilientLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var out string
	err := r.policy.Do(ctx, "generate", func(ctx context.Context) error {
		var err error
		out, err = r.LLMService.Generate(ctx, prompt, opts)
		return err
	})
	return out, err
}

// Chat implements driven.LLMService.
func (r *ResilientLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var out string
	err := r.policy.Do(ctx, "chat", func(ctx context.Context) error {
		var err error
		out, err = r.LLMService.Chat(ctx, messages, opts)
		return err
	})
	return out, err
}
