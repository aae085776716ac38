package httpapi

import (
	"context"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driving"
)

// --- Mock implementations ---

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

type mockAdvisorService struct {
	advice  string
	draft   *domain.Draft
	summary []string
	err     error

	gotFramework string
	gotQuestion  string
}

func (m *mockAdvisorService) Improve(_ context.Context, framework, question string) (string, error) {
	m.gotFramework = framework
	m.gotQuestion = question
	return m.advice, m.err
}

func (m *mockAdvisorService) Draft(_ context.Context, framework, question, _ string) (*domain.Draft, error) {
	m.gotFramework = framework
	m.gotQuestion = question
	return m.draft, m.err
}

func (m *mockAdvisorService) Summarise(_ context.Context, _ string) ([]string, error) {
	return m.summary, m.err
}

type mockCorpusService struct {
	chunks    int
	documents []domain.Document
	answer    *domain.ChatAnswer
	err       error

	gotName     string
	gotText     string
	gotMessages []domain.ChatMessage
}

func (m *mockCorpusService) Index(_ context.Context, name, text string) (int, error) {
	m.gotName = name
	m.gotText = text
	return m.chunks, m.err
}

func (m *mockCorpusService) Documents(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockCorpusService) Remove(_ context.Context, name string) error {
	m.gotName = name
	return m.err
}

func (m *mockCorpusService) Retrieve(_ context.Context, _, _ string, _ int) (*domain.Retrieval, error) {
	return &domain.Retrieval{}, m.err
}

func (m *mockCorpusService) Ask(_ context.Context, name string, messages []domain.ChatMessage) (*domain.ChatAnswer, error) {
	m.gotName = name
	m.gotMessages = messages
	return m.answer, m.err
}
