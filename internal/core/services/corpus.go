package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/engine"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
	"github.com/custodia-labs/comply/internal/core/ports/driving"
	"github.com/custodia-labs/comply/internal/logger"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// DefaultTopK is the number of passages retrieved when none is configured.
const DefaultTopK = 15

// noDocumentPrompt is the system prompt used when no document is selected.
const noDocumentPrompt = "You are a helpful assistant. No document was uploaded. Respond helpfully and clearly."

// CorpusService indexes documents for chat and answers questions about them
// with passages retrieved by embedding similarity.
type CorpusService struct {
	store    driven.CorpusStore
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	llm      driven.LLMService // Optional
	prompts  driven.PromptStore
	topK     int
}

// NewCorpusService creates a corpus service. topK <= 0 uses DefaultTopK.
func NewCorpusService(
	store driven.CorpusStore,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	topK int,
) *CorpusService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &CorpusService{
		store:    store,
		pipeline: pipeline,
		embedder: embedder,
		llm:      llm,
		prompts:  prompts,
		topK:     topK,
	}
}

// Index chunks text through the pipeline, embeds every chunk in one batch and
// stores the result under name, replacing any earlier document of that name.
func (s *CorpusService) Index(ctx context.Context, name, text string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: document text is required", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	doc := domain.Document{Name: name}
	chunks, err := s.pipeline.Process(ctx, &doc, text)
	if err != nil {
		return 0, fmt.Errorf("process %s: %w", name, err)
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: document has no indexable text", domain.ErrInvalidInput)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w: embed %s: %w", domain.ErrUpstream, name, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w: embed %s: got %d vectors for %d chunks",
			domain.ErrUpstream, name, len(vectors), len(chunks))
	}
	dim, err := engine.CheckDimensions(s.embedder.Dimensions(), vectors)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", name, err)
	}
	doc.EmbeddingModel = s.embedder.ModelName()
	doc.Dimensions = dim

	if err := s.store.Replace(ctx, doc, chunks, vectors); err != nil {
		return 0, fmt.Errorf("store %s: %w", name, err)
	}

	logger.Info("Indexed %s: %d chunks", name, len(chunks))
	return len(chunks), nil
}

// Documents lists indexed documents.
func (s *CorpusService) Documents(ctx context.Context) ([]domain.Document, error) {
	return s.store.Documents(ctx)
}

// Remove deletes an indexed document.
func (s *CorpusService) Remove(ctx context.Context, name string) error {
	return s.store.Delete(ctx, strings.TrimSpace(name))
}

// Retrieve returns the topK stored passages most similar to query. An empty
// name searches every document. Equal scores keep corpus order.
func (s *CorpusService) Retrieve(ctx context.Context, name, query string, topK int) (*domain.Retrieval, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if topK <= 0 {
		topK = s.topK
	}

	stored, err := s.store.Vectors(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}
	if len(stored) == 0 {
		if name != "" {
			return nil, fmt.Errorf("document %q: %w", name, domain.ErrNotFound)
		}
		return &domain.Retrieval{Passages: []domain.Passage{}, Citations: []string{}}, nil
	}

	model := s.embedder.ModelName()
	if err := checkModel(stored, model, 0); err != nil {
		return nil, err
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrUpstream, err)
	}
	if _, err := engine.CheckDimensions(s.embedder.Dimensions(), [][]float32{queryVec}); err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if err := checkModel(stored, model, len(queryVec)); err != nil {
		return nil, err
	}

	passages := make([]domain.Passage, len(stored))
	for i, sc := range stored {
		passages[i] = domain.Passage{
			Document: sc.Document,
			Page:     sc.Chunk.Page,
			Text:     sc.Chunk.Text,
			Score:    engine.Cosine(queryVec, sc.Vector),
		}
	}
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})
	if len(passages) > topK {
		passages = passages[:topK]
	}

	return &domain.Retrieval{
		Passages:  passages,
		Citations: citations(passages),
	}, nil
}

// Ask answers the last user message. With a document name, passages from
// that document ground the answer and follow-up questions are suggested.
func (s *CorpusService) Ask(ctx context.Context, name string, messages []domain.ChatMessage) (*domain.ChatAnswer, error) {
	question, ok := lastUserMessage(messages)
	if !ok {
		return nil, fmt.Errorf("%w: a user message is required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	name = strings.TrimSpace(name)
	if name == "" {
		answer, err := s.chat(ctx, noDocumentPrompt, messages)
		if err != nil {
			return nil, err
		}
		return &domain.ChatAnswer{Answer: answer, Sources: []string{}, FollowUps: []string{}}, nil
	}

	retrieval, err := s.Retrieve(ctx, name, question, 0)
	if err != nil {
		return nil, err
	}

	tmpl, err := s.prompts.Load(driven.PromptChatSystem)
	if err != nil {
		return nil, fmt.Errorf("load chat prompt: %w", err)
	}
	system := fmt.Sprintf(tmpl, name, contextBlock(retrieval.Passages))

	conversation := make([]domain.ChatMessage, 0, len(messages)+1)
	conversation = append(conversation, domain.ChatMessage{Role: "user", Content: "(User uploaded: " + name + ")"})
	conversation = append(conversation, messages...)

	answer, err := s.chat(ctx, system, conversation)
	if err != nil {
		return nil, err
	}

	return &domain.ChatAnswer{
		Answer:    answer,
		Sources:   retrieval.Citations,
		FollowUps: s.followUps(ctx, question, answer),
	}, nil
}

// followUps asks for suggested next questions. Failures are logged and
// yield no suggestions.
func (s *CorpusService) followUps(ctx context.Context, question, answer string) []string {
	system, err := s.prompts.Load(driven.PromptFollowUpSystem)
	if err != nil {
		logger.Error("follow-up prompt unavailable: %v", err)
		return []string{}
	}

	reply, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: question},
		{Role: "assistant", Content: answer},
	}, driven.ChatOptions{})
	if err != nil {
		logger.Error("follow-up suggestion failed: %v", err)
		return []string{}
	}

	suggestions := parseNumbered(reply)
	if suggestions == nil {
		return []string{}
	}
	return suggestions
}

func (s *CorpusService) chat(ctx context.Context, system string, messages []domain.ChatMessage) (string, error) {
	conversation := make([]driven.ChatMessage, 0, len(messages)+1)
	conversation = append(conversation, driven.ChatMessage{Role: "system", Content: system})
	conversation = append(conversation, messages...)

	reply, err := s.llm.Chat(ctx, conversation, driven.ChatOptions{})
	if err != nil {
		return "", fmt.Errorf("%w: chat: %w", domain.ErrUpstream, err)
	}
	return strings.TrimSpace(reply), nil
}

func lastUserMessage(messages []domain.ChatMessage) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" && strings.TrimSpace(messages[i].Content) != "" {
			return messages[i].Content, true
		}
	}
	return "", false
}

// contextBlock renders passages as "[<doc> (p. N)]: text" joined by blank lines.
func contextBlock(passages []domain.Passage) string {
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		page := ""
		if p.Page > 0 {
			page = " (p. " + strconv.Itoa(p.Page) + ")"
		}
		parts = append(parts, "["+p.Document+page+"]: "+p.Text)
	}
	return strings.Join(parts, "\n\n")
}

// citations groups pages by document in first-seen order and formats each
// group as "<doc>, pp. 1, 3, 7" with pages sorted and unique.
func citations(passages []domain.Passage) []string {
	var order []string
	pages := make(map[string]map[int]struct{})
	for _, p := range passages {
		if p.Page <= 0 {
			continue
		}
		set, ok := pages[p.Document]
		if !ok {
			set = make(map[int]struct{})
			pages[p.Document] = set
			order = append(order, p.Document)
		}
		set[p.Page] = struct{}{}
	}

	out := make([]string, 0, len(order))
	for _, doc := range order {
		sorted := make([]int, 0, len(pages[doc]))
		for page := range pages[doc] {
			sorted = append(sorted, page)
		}
		sort.Ints(sorted)

		nums := make([]string, len(sorted))
		for i, page := range sorted {
			nums[i] = strconv.Itoa(page)
		}
		out = append(out, doc+", pp. "+strings.Join(nums, ", "))
	}
	return out
}

// checkModel rejects stored chunks embedded by a model other than model, or
// whose vectors are not dim long when dim > 0. Chunks indexed before the
// model was recorded are only checked by length.
func checkModel(stored []driven.StoredChunk, model string, dim int) error {
	for _, sc := range stored {
		if sc.Model != "" && sc.Model != model {
			return fmt.Errorf("document %q was indexed with %s but the embedding model is %s; index it again: %w",
				sc.Document, sc.Model, model, domain.ErrStaleIndex)
		}
		if dim > 0 && len(sc.Vector) != dim {
			return fmt.Errorf("document %q has %d-dimension vectors but %s returns %d; index it again: %w",
				sc.Document, len(sc.Vector), model, dim, domain.ErrStaleIndex)
		}
	}
	return nil
}
