package main

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/comply/internal/adapters/driven/ai"
	"github.com/custodia-labs/comply/internal/adapters/driven/checklist"
	"github.com/custodia-labs/comply/internal/adapters/driven/config/file"
	"github.com/custodia-labs/comply/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/comply/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/comply/internal/adapters/driving/cli"
	"github.com/custodia-labs/comply/internal/core/engine"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
	"github.com/custodia-labs/comply/internal/core/services"
	"github.com/custodia-labs/comply/internal/logger"
	"github.com/custodia-labs/comply/internal/postprocessors"
	"github.com/custodia-labs/comply/internal/postprocessors/sentence"
)

// buildServices wires the driven adapters into the core services.
func buildServices(opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("config store: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	checklistDir := settings.ChecklistDir
	if checklistDir == "" {
		base, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		checklistDir = filepath.Join(base, "checklists")
	}
	checklists, err := checklist.Load(checklist.WithDir(checklistDir), checklist.WithPolicies(settings.Policies))
	if err != nil {
		return nil, fmt.Errorf("loading checklists: %w", err)
	}

	aiServices := ai.Init(settings)
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		aiServices.Close()
		return nil, fmt.Errorf("prompt store: %w", err)
	}

	eng := engine.New(
		aiServices.EmbeddingService,
		sentence.New(sentence.WithMaxWords(settings.Scoring.MaxWords)),
		engine.WithWorkers(settings.Scoring.Workers),
	)

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipelineCfg := settingsService.GetPipelineConfig()
	pipeline, err := postprocessors.Build(registry, pipelineCfg.Processors, pipelineCfg.ProcessorConfigs)
	if err != nil {
		aiServices.Close()
		return nil, fmt.Errorf("building corpus pipeline: %w", err)
	}

	var (
		corpusStore driven.CorpusStore
		closeStore  = func() {}
	)
	if opts.Ephemeral {
		logger.Debug("Using in-memory corpus store")
		corpusStore = memory.NewCorpusStore()
	} else {
		db, err := sqlite.NewStore(settings.Corpus.Path)
		if err != nil {
			aiServices.Close()
			return nil, fmt.Errorf("opening corpus: %w", err)
		}
		logger.Debug("Corpus database: %s", db.Path())
		corpusStore = db.CorpusStore()
		closeStore = func() {
			if err := db.Close(); err != nil {
				logger.Warn("closing corpus database: %v", err)
			}
		}
	}

	return &cli.Services{
		Compliance: services.NewComplianceService(
			checklists, eng, aiServices.LLMService, prompts, settings.Scoring.AdviceConcurrency),
		Advisor: services.NewAdvisorService(
			checklists, eng, aiServices.EmbeddingService, aiServices.LLMService, prompts),
		Corpus: services.NewCorpusService(
			corpusStore, pipeline, aiServices.EmbeddingService, aiServices.LLMService, prompts, settings.Corpus.TopK),
		Settings:      settingsService,
		PromptWatcher: file.NewPromptWatcher(prompts, prompts.Dir()),
		Close: func() {
			closeStore()
			aiServices.Close()
		},
	}, nil
}
