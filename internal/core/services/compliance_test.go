package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/engine"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
	"github.com/custodia-labs/comply/internal/core/ports/driving"
	"github.com/custodia-labs/comply/internal/postprocessors/sentence"
)

const (
	emissionsChunk = "Scope one emissions were reported."
	boardChunk     = "The board oversees climate risk."
	testReport     = emissionsChunk + "\n\n\n" + boardChunk

	emissionsQuestion = "Are scope 1 emissions disclosed?"
	waterQuestion     = "Is water withdrawal disclosed?"
	boardQuestion     = "Is the governance structure described?"
)

func testFramework() *domain.Framework {
	return &domain.Framework{
		Name:   "gri",
		Title:  "GRI",
		Policy: domain.StatusPolicyPercent,
		Checklist: &domain.Checklist{
			Framework: "gri",
			Sections: []domain.ChecklistSection{
				{
					Name: "Environment",
					Items: []domain.ChecklistItem{
						{ID: "gri-305-1", Question: emissionsQuestion},
						{ID: "gri-303-3", Question: waterQuestion},
					},
				},
				{
					Name:  "Governance",
					Items: []domain.ChecklistItem{{ID: "gri-2-9", Question: boardQuestion}},
				},
			},
		},
	}
}

// testComplianceEmbedder scores the emissions question as a perfect match and
// everything else as orthogonal to both chunks.
func testComplianceEmbedder() *mockEmbedder {
	return &mockEmbedder{vectors: map[string][]float32{
		emissionsChunk:    {1, 0, 0},
		boardChunk:        {0, 1, 0},
		emissionsQuestion: {1, 0, 0},
	}}
}

func newTestComplianceService(emb *mockEmbedder, llm driven.LLMService, concurrency int) *ComplianceService {
	eng := engine.New(emb, sentence.New(sentence.WithMaxWords(3)), engine.WithWorkers(2))
	return NewComplianceService(newMockChecklistStore(testFramework()), eng, llm, &mockPromptStore{}, concurrency)
}

// questionOf extracts the requirement question from a rendered advice_user prompt.
func questionOf(messages []driven.ChatMessage) string {
	content := messages[len(messages)-1].Content
	start := strings.Index(content, "question=") + len("question=")
	end := strings.Index(content, " excerpt=")
	return content[start:end]
}

func TestComplianceService_Check_WithAdvice(t *testing.T) {
	llm := &mockLLM{respond: func(messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
		return "\n  Disclose: " + questionOf(messages) + "  \n", nil
	}}
	svc := newTestComplianceService(testComplianceEmbedder(), llm, 2)

	report, err := svc.Check(context.Background(), "GRI", testReport, driving.CheckOptions{})
	require.NoError(t, err)

	assert.Equal(t, "gri", report.Framework)
	require.Len(t, report.Results, 3)

	met := report.Results[0]
	assert.Equal(t, domain.StatusLikelyMet, met.Status)
	assert.Empty(t, met.Advice)

	assert.Equal(t, "Disclose: "+waterQuestion, report.Results[1].Advice)
	assert.Equal(t, "Disclose: "+boardQuestion, report.Results[2].Advice)

	calls := llm.recorded()
	require.Len(t, calls, 2)
	for _, call := range calls {
		require.Len(t, call.messages, 2)
		assert.Equal(t, "system", call.messages[0].Role)
		assert.Equal(t, "advise on GRI", call.messages[0].Content)
		assert.Equal(t, "user", call.messages[1].Role)
		assert.Contains(t, call.messages[1].Content, "framework=GRI")
		// Orthogonal questions tie on every chunk and keep the first.
		assert.Contains(t, call.messages[1].Content, "excerpt="+emissionsChunk)
	}
}

func TestComplianceService_Check_AdviceFailureDegrades(t *testing.T) {
	llm := &mockLLM{respond: func(messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
		if questionOf(messages) == waterQuestion {
			return "", domain.ErrRateLimited
		}
		return "Add a governance section.", nil
	}}
	svc := newTestComplianceService(testComplianceEmbedder(), llm, 2)

	report, err := svc.Check(context.Background(), "gri", testReport, driving.CheckOptions{})
	require.NoError(t, err)

	assert.Empty(t, report.Results[1].Advice)
	assert.True(t, report.Results[1].AdviceEligible)
	assert.Equal(t, "Add a governance section.", report.Results[2].Advice)
	assert.Len(t, llm.recorded(), 2)
}

func TestComplianceService_Check_SkipAdvice(t *testing.T) {
	llm := &mockLLM{reply: "unused"}
	svc := newTestComplianceService(testComplianceEmbedder(), llm, 2)

	report, err := svc.Check(context.Background(), "gri", testReport, driving.CheckOptions{SkipAdvice: true})
	require.NoError(t, err)

	assert.Empty(t, llm.recorded())
	for _, r := range report.Results {
		assert.Empty(t, r.Advice)
	}
}

func TestComplianceService_Check_WithoutLLM(t *testing.T) {
	svc := newTestComplianceService(testComplianceEmbedder(), nil, 2)

	report, err := svc.Check(context.Background(), "gri", testReport, driving.CheckOptions{})
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	assert.Empty(t, report.Results[1].Advice)
}

func TestComplianceService_Check_PromptFailureSkipsAdvice(t *testing.T) {
	llm := &mockLLM{reply: "unused"}
	emb := testComplianceEmbedder()
	eng := engine.New(emb, sentence.New(sentence.WithMaxWords(3)))
	svc := NewComplianceService(newMockChecklistStore(testFramework()), eng, llm,
		&mockPromptStore{err: errors.New("permission denied")}, 2)

	report, err := svc.Check(context.Background(), "gri", testReport, driving.CheckOptions{})
	require.NoError(t, err)

	assert.Len(t, report.Results, 3)
	assert.Empty(t, llm.recorded())
}

func TestComplianceService_Check_UnknownFramework(t *testing.T) {
	svc := newTestComplianceService(testComplianceEmbedder(), nil, 2)

	_, err := svc.Check(context.Background(), "iso14001", testReport, driving.CheckOptions{})

	assert.ErrorIs(t, err, domain.ErrUnknownFramework)
}

func TestComplianceService_Check_EmbeddingFailure(t *testing.T) {
	emb := testComplianceEmbedder()
	emb.err = errors.New("connection refused")
	llm := &mockLLM{reply: "unused"}
	svc := newTestComplianceService(emb, llm, 2)

	report, err := svc.Check(context.Background(), "gri", testReport, driving.CheckOptions{})

	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Empty(t, llm.recorded())
}

func TestComplianceService_Check_EmptyDocument(t *testing.T) {
	svc := newTestComplianceService(testComplianceEmbedder(), nil, 2)

	_, err := svc.Check(context.Background(), "gri", "   ", driving.CheckOptions{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComplianceService_Check_BoundsAdviceConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	llm := &mockLLM{respond: func([]driven.ChatMessage, driven.ChatOptions) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return "ok", nil
	}}
	svc := newTestComplianceService(testComplianceEmbedder(), llm, 1)

	report, err := svc.Check(context.Background(), "gri", testReport, driving.CheckOptions{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), peak.Load())
	assert.Equal(t, "ok", report.Results[1].Advice)
	assert.Equal(t, "ok", report.Results[2].Advice)
}

func TestComplianceService_Frameworks(t *testing.T) {
	tcfd := &domain.Framework{Name: "tcfd", Checklist: &domain.Checklist{Framework: "tcfd"}}
	eng := engine.New(testComplianceEmbedder(), sentence.New())
	svc := NewComplianceService(newMockChecklistStore(tcfd, testFramework()), eng, nil, &mockPromptStore{}, 0)

	frameworks := svc.Frameworks()

	require.Len(t, frameworks, 2)
	assert.Equal(t, "gri", frameworks[0].Name)
	assert.Equal(t, "tcfd", frameworks[1].Name)
	assert.Equal(t, defaultAdviceConcurrency, svc.adviceConcurrency)
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"émissions", 2, "ém"},
		{"hello", 0, ""},
		{"", 3, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateRunes(tt.in, tt.n), "truncateRunes(%q, %d)", tt.in, tt.n)
	}

	long := strings.Repeat("x", maxExcerptRunes+50)
	assert.Len(t, truncateRunes(long, maxExcerptRunes), maxExcerptRunes)
}
