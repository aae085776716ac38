package mcp

import (
	"context"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driving"
)

// mockComplianceService is a mock implementation of driving.ComplianceService.
type mockComplianceService struct {
	report     *domain.ComplianceReport
	frameworks []*domain.Framework
	err        error

	gotFramework string
	gotDocText   string
	gotOpts      driving.CheckOptions
}

func (m *mockComplianceService) Check(
	_ context.Context,
	framework, docText string,
	opts driving.CheckOptions,
) (*domain.ComplianceReport, error) {
	m.gotFramework = framework
	m.gotDocText = docText
	m.gotOpts = opts
	return m.report, m.err
}

func (m *mockComplianceService) Frameworks() []*domain.Framework {
	return m.frameworks
}

// mockAdvisorService is a mock implementation of driving.AdvisorService.
type mockAdvisorService struct {
	advice  string
	draft   *domain.Draft
	summary []string
	err     error
}

func (m *mockAdvisorService) Improve(_ context.Context, _, _ string) (string, error) {
	return m.advice, m.err
}

func (m *mockAdvisorService) Draft(_ context.Context, _, _, _ string) (*domain.Draft, error) {
	return m.draft, m.err
}

func (m *mockAdvisorService) Summarise(_ context.Context, _ string) ([]string, error) {
	return m.summary, m.err
}

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	retrieval *domain.Retrieval
	answer    *domain.ChatAnswer
	documents []domain.Document
	chunks    int
	err       error

	gotName  string
	gotQuery string
	gotTopK  int
}

func (m *mockCorpusService) Index(_ context.Context, name, _ string) (int, error) {
	m.gotName = name
	return m.chunks, m.err
}

func (m *mockCorpusService) Documents(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockCorpusService) Remove(_ context.Context, name string) error {
	m.gotName = name
	return m.err
}

func (m *mockCorpusService) Retrieve(_ context.Context, name, query string, topK int) (*domain.Retrieval, error) {
	m.gotName = name
	m.gotQuery = query
	m.gotTopK = topK
	return m.retrieval, m.err
}

func (m *mockCorpusService) Ask(_ context.Context, name string, _ []domain.ChatMessage) (*domain.ChatAnswer, error) {
	m.gotName = name
	return m.answer, m.err
}

func testFrameworks() []*domain.Framework {
	return []*domain.Framework{
		{
			Name:   "gri",
			Title:  "GRI",
			Policy: domain.StatusPolicyPercent,
			Checklist: &domain.Checklist{
				Framework: "gri",
				Sections: []domain.ChecklistSection{
					{Name: "Emissions", Items: []domain.ChecklistItem{
						{ID: "gri-305-1", Section: "Emissions", Question: "Are scope 1 emissions disclosed?"},
						{ID: "gri-305-2", Section: "Emissions", Question: "Are scope 2 emissions disclosed?", Threshold: 0.55},
					}},
				},
			},
		},
		{
			Name:   "tcfd",
			Policy: domain.StatusPolicySimilarity,
			Checklist: &domain.Checklist{
				Framework: "tcfd",
				Sections: []domain.ChecklistSection{
					{Name: "Governance", Items: []domain.ChecklistItem{
						{ID: "tcfd-gov-a", Question: "Does the board oversee climate risk?"},
					}},
				},
			},
		},
	}
}
