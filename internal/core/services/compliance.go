package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/engine"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
	"github.com/custodia-labs/comply/internal/core/ports/driving"
	"github.com/custodia-labs/comply/internal/logger"
)

// Ensure ComplianceService implements the interface.
var _ driving.ComplianceService = (*ComplianceService)(nil)

const (
	// defaultAdviceConcurrency bounds in-flight advice calls when none is configured.
	defaultAdviceConcurrency = 4

	// maxExcerptRunes caps the excerpt sent with each advice request.
	maxExcerptRunes = 1000
)

// ComplianceService scores documents against framework checklists and
// attaches generated advice to requirements that are not met.
type ComplianceService struct {
	checklists        driven.ChecklistStore
	engine            *engine.Engine
	llm               driven.LLMService // Optional
	prompts           driven.PromptStore
	adviceConcurrency int
}

// NewComplianceService creates a compliance service.
// llm may be nil, in which case reports carry no advice.
func NewComplianceService(
	checklists driven.ChecklistStore,
	eng *engine.Engine,
	llm driven.LLMService,
	prompts driven.PromptStore,
	adviceConcurrency int,
) *ComplianceService {
	if adviceConcurrency <= 0 {
		adviceConcurrency = defaultAdviceConcurrency
	}
	return &ComplianceService{
		checklists:        checklists,
		engine:            eng,
		llm:               llm,
		prompts:           prompts,
		adviceConcurrency: adviceConcurrency,
	}
}

// Check scores docText against the named framework and generates advice for
// every result that is not LikelyMet. Advice failures never fail the report.
func (s *ComplianceService) Check(
	ctx context.Context, framework, docText string, opts driving.CheckOptions,
) (*domain.ComplianceReport, error) {
	fw, err := s.checklists.Get(framework)
	if err != nil {
		return nil, err
	}

	report, err := s.engine.ScoreChecklist(ctx, docText, fw.Checklist, fw.Policy)
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", fw.Name, err)
	}
	report.Framework = fw.Name

	if opts.SkipAdvice || s.llm == nil {
		return report, nil
	}

	s.generateAdvice(ctx, fw, report)
	return report, nil
}

// Frameworks lists the registered frameworks.
func (s *ComplianceService) Frameworks() []*domain.Framework {
	return s.checklists.List()
}

// generateAdvice fills Advice for eligible results with at most
// adviceConcurrency calls in flight. Each result is written by exactly one
// goroutine, so no locking is needed.
func (s *ComplianceService) generateAdvice(ctx context.Context, fw *domain.Framework, report *domain.ComplianceReport) {
	pending := report.NeedsAdvice()
	if len(pending) == 0 {
		return
	}

	system, err := s.prompts.Load(driven.PromptAdviceSystem)
	if err != nil {
		logger.Error("advice skipped for framework %s: %v", fw.Name, err)
		return
	}
	user, err := s.prompts.Load(driven.PromptAdviceUser)
	if err != nil {
		logger.Error("advice skipped for framework %s: %v", fw.Name, err)
		return
	}

	title := fw.DisplayName()
	systemMsg := fmt.Sprintf(system, title)

	logger.Debug("Generating advice for %d of %d requirements", len(pending), len(report.Results))

	// Failures are logged and never returned, so siblings keep running.
	var g errgroup.Group
	g.SetLimit(s.adviceConcurrency)

	for _, i := range pending {
		result := &report.Results[i]
		g.Go(func() error {
			messages := []driven.ChatMessage{
				{Role: "system", Content: systemMsg},
				{Role: "user", Content: fmt.Sprintf(user, title, result.Question, truncateRunes(result.TopChunk, maxExcerptRunes))},
			}
			advice, err := s.llm.Chat(ctx, messages, driven.ChatOptions{})
			if err != nil {
				logger.Error("advice failed for framework %s requirement %s: %v", fw.Name, result.ID, err)
				return nil
			}
			result.Advice = strings.TrimSpace(advice)
			return nil
		})
	}

	// Every worker returns nil, so Wait only joins them.
	_ = g.Wait()
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
