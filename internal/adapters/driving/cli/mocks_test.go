package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driving"
)

// --- Mock implementations ---

type mockComplianceService struct {
	err          error
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
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ComplianceReport{
		Framework: framework,
		Results: []domain.MatchResult{
			{
				ID: "gri-305-1", Section: "Emissions", Question: "Are scope 1 emissions disclosed?",
				Similarity: 0.72, Threshold: 0.6, MatchScore: 100, Status: domain.StatusLikelyMet,
				TopChunk: "Scope 1 emissions were 1,200 tCO2e.",
			},
			{
				ID: "gri-305-3", Section: "Emissions", Question: "Are scope 3 emissions disclosed?",
				Similarity: 0.3, Threshold: 0.6, MatchScore: 50, Status: domain.StatusNotMet,
				AdviceEligible: true, Advice: "Report material scope 3 categories.",
			},
		},
	}, nil
}

func (m *mockComplianceService) Frameworks() []*domain.Framework {
	return []*domain.Framework{
		{
			Name: "gri", Title: "GRI", Policy: domain.StatusPolicyPercent,
			Checklist: &domain.Checklist{Sections: []domain.ChecklistSection{
				{Name: "Emissions", Items: []domain.ChecklistItem{{ID: "gri-305-1"}, {ID: "gri-305-3"}}},
			}},
		},
	}
}

type mockAdvisorService struct {
	err          error
	gotFramework string
	gotQuestion  string
	gotDocText   string
	lowMatch     bool
}

func (m *mockAdvisorService) Improve(_ context.Context, framework, question string) (string, error) {
	m.gotFramework = framework
	m.gotQuestion = question
	return "Set a science-based target.", m.err
}

func (m *mockAdvisorService) Draft(_ context.Context, framework, question, docText string) (*domain.Draft, error) {
	m.gotFramework = framework
	m.gotQuestion = question
	m.gotDocText = docText
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Draft{Text: "The board reviews climate risk quarterly.", LowMatch: m.lowMatch, TopScore: 0.31}, nil
}

func (m *mockAdvisorService) Summarise(_ context.Context, docText string) ([]string, error) {
	m.gotDocText = docText
	return []string{"Net zero by 2040.", "Scope 3 not reported."}, m.err
}

type mockCorpusService struct {
	err         error
	gotName     string
	gotText     string
	gotMessages []domain.ChatMessage
	documents   []domain.Document
}

func (m *mockCorpusService) Index(_ context.Context, name, text string) (int, error) {
	m.gotName = name
	m.gotText = text
	return 4, m.err
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
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ChatAnswer{
		Answer:    "Emissions fell 12%.",
		Sources:   []string{"annual.txt, pp. 2, 5"},
		FollowUps: []string{"What drove the fall?"},
	}, nil
}

type mockSettingsService struct {
	settings domain.AppSettings
	setErr   error
	set      map[string]string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"embedding.provider", "scoring.max_words"}
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

type testServices struct {
	compliance *mockComplianceService
	advisor    *mockAdvisorService
	corpus     *mockCorpusService
	settings   *mockSettingsService
}

// setupTestServices installs mocks and returns a cleanup func restoring the previous services.
func setupTestServices() (*testServices, func()) {
	prev := &Services{
		Compliance:    complianceService,
		Advisor:       advisorService,
		Corpus:        corpusService,
		Settings:      settingsService,
		PromptWatcher: promptWatcher,
		Close:         closeServices,
	}
	prevBootstrap := bootstrap

	ts := &testServices{
		compliance: &mockComplianceService{},
		advisor:    &mockAdvisorService{},
		corpus: &mockCorpusService{documents: []domain.Document{
			{ID: "doc-1", Name: "annual.txt", Chunks: 12, IndexedAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
				EmbeddingModel: "nomic-embed-text", Dimensions: 768},
			{ID: "doc-2", Name: "legacy.txt", Chunks: 3, IndexedAt: time.Date(2024, 11, 2, 8, 0, 0, 0, time.UTC)},
		}},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
	}
	bootstrap = nil
	SetServices(&Services{
		Compliance: ts.compliance,
		Advisor:    ts.advisor,
		Corpus:     ts.corpus,
		Settings:   ts.settings,
	})

	return ts, func() {
		SetServices(prev)
		bootstrap = prevBootstrap
	}
}

// execute runs rootCmd with args and returns its combined output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
