package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/engine"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
	"github.com/custodia-labs/comply/internal/core/ports/driving"
	"github.com/custodia-labs/comply/internal/logger"
)

// Ensure AdvisorService implements the interface.
var _ driving.AdvisorService = (*AdvisorService)(nil)

const (
	// LowMatchThreshold is the best chunk similarity below which a draft is
	// invented rather than grounded on the document.
	LowMatchThreshold = 0.40

	// draftContextChunks is the number of top chunks passed to the draft prompt.
	draftContextChunks = 2

	maxSummaryPoints = 5
)

// Generation parameters per request type.
var (
	draftOptions   = driven.ChatOptions{MaxTokens: 600, Temperature: 0.5, JSON: true}
	summaryOptions = driven.ChatOptions{MaxTokens: 400, Temperature: 0.4, JSON: true}
	improveOptions = driven.ChatOptions{JSON: true}
)

// AdvisorService generates disclosure guidance for single requirements.
type AdvisorService struct {
	checklists driven.ChecklistStore
	engine     *engine.Engine
	embedder   driven.EmbeddingService
	llm        driven.LLMService
	prompts    driven.PromptStore
}

// NewAdvisorService creates an advisor service.
// Every operation fails with ErrLLMUnavailable when llm is nil.
func NewAdvisorService(
	checklists driven.ChecklistStore,
	eng *engine.Engine,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
) *AdvisorService {
	return &AdvisorService{
		checklists: checklists,
		engine:     eng,
		embedder:   embedder,
		llm:        llm,
		prompts:    prompts,
	}
}

// Improve returns a short actionable tip for meeting a requirement.
func (s *AdvisorService) Improve(ctx context.Context, framework, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	system, err := s.frameworkPrompt(driven.PromptImproveSystem, framework)
	if err != nil {
		return "", err
	}

	reply, err := s.chat(ctx, system, question, improveOptions)
	if err != nil {
		return "", err
	}

	var out struct {
		Advice string `json:"advice"`
	}
	if err := decodeReply(reply, &out); err != nil {
		return "", err
	}
	advice := strings.TrimSpace(out.Advice)
	if advice == "" {
		return "", fmt.Errorf("%w: empty advice", domain.ErrParse)
	}
	return advice, nil
}

// Draft proposes a disclosure paragraph. The top chunks of docText ground the
// draft unless the best match is below LowMatchThreshold.
func (s *AdvisorService) Draft(ctx context.Context, framework, question, docText string) (*domain.Draft, error) {
	question = strings.TrimSpace(question)
	if question == "" || strings.TrimSpace(docText) == "" {
		return nil, fmt.Errorf("%w: question and document text are required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	system, err := s.frameworkPrompt(driven.PromptDraftSystem, framework)
	if err != nil {
		return nil, err
	}

	chunks := s.engine.Chunks(docText)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document has no usable text", domain.ErrInvalidInput)
	}

	top, topScore, err := s.rankChunks(ctx, question, chunks)
	if err != nil {
		return nil, err
	}

	lowMatch := topScore < LowMatchThreshold
	logger.Debug("Draft for %q: top score %.3f, low match %t", question, topScore, lowMatch)

	var user string
	if lowMatch {
		user = fmt.Sprintf("Requirement: %s\n\nThe uploaded document does not contain relevant information. "+
			"Please invent a plausible paragraph that would help meet this requirement.", question)
	} else {
		user = fmt.Sprintf("Requirement: %s\n\nDocument:\n%s", question, strings.Join(top, "\n\n"))
	}

	reply, err := s.chat(ctx, system, user, draftOptions)
	if err != nil {
		return nil, err
	}

	var out struct {
		Draft string `json:"draft"`
	}
	if err := decodeReply(reply, &out); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(out.Draft)
	if text == "" {
		return nil, fmt.Errorf("%w: empty draft", domain.ErrParse)
	}

	return &domain.Draft{Text: text, LowMatch: lowMatch, TopScore: topScore}, nil
}

// Summarise returns up to five bullet points describing the document.
func (s *AdvisorService) Summarise(ctx context.Context, docText string) ([]string, error) {
	if strings.TrimSpace(docText) == "" {
		return nil, fmt.Errorf("%w: document text is required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	system, err := s.prompts.Load(driven.PromptSummarySystem)
	if err != nil {
		return nil, fmt.Errorf("load summary prompt: %w", err)
	}

	reply, err := s.chat(ctx, system, "Document:\n"+docText, summaryOptions)
	if err != nil {
		return nil, err
	}

	var out struct {
		Summary []string `json:"summary"`
	}
	if err := decodeReply(reply, &out); err != nil {
		return nil, err
	}

	points := make([]string, 0, len(out.Summary))
	for _, p := range out.Summary {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: empty summary", domain.ErrParse)
	}
	if len(points) > maxSummaryPoints {
		points = points[:maxSummaryPoints]
	}
	return points, nil
}

// frameworkPrompt loads a prompt whose single placeholder is the framework title.
func (s *AdvisorService) frameworkPrompt(name, framework string) (string, error) {
	fw, err := s.checklists.Get(framework)
	if err != nil {
		return "", err
	}
	tmpl, err := s.prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load %s prompt: %w", name, err)
	}
	return fmt.Sprintf(tmpl, fw.DisplayName()), nil
}

// rankChunks embeds the question with the chunks in one batch and returns the
// best draftContextChunks chunk texts with the top score.
func (s *AdvisorService) rankChunks(ctx context.Context, question string, chunks []domain.Chunk) ([]string, float64, error) {
	texts := make([]string, 0, len(chunks)+1)
	texts = append(texts, question)
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}

	vecs, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: embed draft context: %w", domain.ErrUpstream, err)
	}
	if len(vecs) != len(texts) {
		return nil, 0, fmt.Errorf("%w: embed draft context: got %d vectors for %d texts",
			domain.ErrUpstream, len(vecs), len(texts))
	}
	if _, err := engine.CheckDimensions(s.embedder.Dimensions(), vecs); err != nil {
		return nil, 0, fmt.Errorf("embed draft context: %w", err)
	}

	order := make([]int, len(chunks))
	scores := make([]float64, len(chunks))
	for i := range chunks {
		order[i] = i
		scores[i] = engine.Cosine(vecs[0], vecs[i+1])
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	n := min(draftContextChunks, len(order))
	top := make([]string, n)
	for i := 0; i < n; i++ {
		top[i] = chunks[order[i]].Text
	}
	return top, scores[order[0]], nil
}

// chat sends a system and user message pair.
func (s *AdvisorService) chat(ctx context.Context, system, user string, opts driven.ChatOptions) (string, error) {
	reply, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, opts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	return reply, nil
}
