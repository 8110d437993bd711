package main

import (
	"github.com/sceptic-ai/sceptic-go/internal/analysis"
	"github.com/sceptic-ai/sceptic-go/internal/jobs"
	"github.com/sceptic-ai/sceptic-go/internal/ledger"
	"github.com/sceptic-ai/sceptic-go/internal/predict"
	"github.com/sceptic-ai/sceptic-go/internal/repo"
	"github.com/sceptic-ai/sceptic-go/internal/storage"
)

// newManager assembles the analysis pipeline from configuration. The
// returned cleanup closes the worker pool, journal, and archive.
func newManager() (*jobs.Manager, func(), error) {
	var predictor analysis.Predictor
	if cfg.Predictor.Enabled {
		external, err := predict.NewExternal(cfg.Predictor, logger)
		if err != nil {
			logger.WithError(err).Warn("external predictor unavailable, using heuristic path")
		} else {
			predictor = external
		}
	}

	classifier := analysis.NewClassifier(cfg.Analysis.AIThreshold, cfg.Analysis.UncertainBand, predictor, logger)
	scorer := analysis.NewScorer(cfg.Analysis.RiskMultiplier)
	analyzer := analysis.NewAnalyzer(scorer, classifier, logger)

	source := repo.NewGitHubSource(cfg.GitHub.Token, cfg.GitHub.RateLimit)
	aggregator := repo.NewAggregator(source, analyzer, repo.Options{
		MaxFiles:     cfg.GitHub.MaxFiles,
		MaxFileBytes: cfg.GitHub.MaxFileBytes,
		Concurrency:  cfg.GitHub.FetchConcurrency,
		FetchTimeout: cfg.GitHub.FetchTimeout,
	}, logger)

	var led ledger.Ledger = ledger.Disabled{}
	var journal *ledger.Journal
	if cfg.Ledger.Enabled && cfg.Ledger.Endpoint != "" {
		led = ledger.NewRemote(cfg.Ledger.Endpoint, cfg.Ledger.ExplorerBase, cfg.Ledger.Timeout)
		j, err := ledger.OpenJournal(cfg.Ledger.JournalPath)
		if err != nil {
			logger.WithError(err).Warn("ledger journal unavailable")
		} else {
			journal = j
		}
	}

	var archive *storage.Archive
	if cfg.Archive.Enabled {
		a, err := storage.NewArchive(cfg.Archive.Path, logger)
		if err != nil {
			logger.WithError(err).Warn("result archive unavailable")
		} else {
			archive = a
		}
	}

	manager := jobs.NewManager(cfg, analyzer, aggregator, led, journal, archive, logger)

	cleanup := func() {
		manager.Close()
		if journal != nil {
			journal.Close()
		}
		if archive != nil {
			archive.Close()
		}
	}
	return manager, cleanup, nil
}
