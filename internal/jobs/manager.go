package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sceptic-ai/sceptic-go/internal/analysis"
	"github.com/sceptic-ai/sceptic-go/internal/config"
	scepticerrors "github.com/sceptic-ai/sceptic-go/internal/errors"
	"github.com/sceptic-ai/sceptic-go/internal/ledger"
	"github.com/sceptic-ai/sceptic-go/internal/models"
	"github.com/sceptic-ai/sceptic-go/internal/repo"
	"github.com/sceptic-ai/sceptic-go/internal/storage"
	"github.com/sirupsen/logrus"
)

// Manager owns the analysis job lifecycle: it is the only component that
// creates jobs, moves them through their states, and stores their results.
type Manager struct {
	cfg        *config.Config
	store      *Store
	pool       *Pool
	analyzer   *analysis.Analyzer
	aggregator *repo.Aggregator
	ledger     ledger.Ledger
	journal    *ledger.Journal
	archive    *storage.Archive
	policy     ledger.Policy
	logger     *logrus.Logger
}

// NewManager wires the lifecycle together. The aggregator, ledger, journal,
// and archive are optional; a nil ledger disables anchoring entirely.
func NewManager(cfg *config.Config, analyzer *analysis.Analyzer, aggregator *repo.Aggregator,
	led ledger.Ledger, journal *ledger.Journal, archive *storage.Archive, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{
		cfg:        cfg,
		store:      NewStore(cfg.Jobs.CacheCapacity),
		pool:       NewPool(cfg.Jobs.Workers, cfg.Jobs.QueueDepth, logger),
		analyzer:   analyzer,
		aggregator: aggregator,
		ledger:     led,
		journal:    journal,
		archive:    archive,
		policy: ledger.Policy{
			HighRiskThreshold: cfg.Ledger.HighRiskThreshold,
			AIConfidence:      cfg.Ledger.AIConfidence,
		},
		logger: logger,
	}
}

// SubmitCode accepts a direct code submission. Small inputs complete
// synchronously; larger ones are dispatched to the background pool and the
// caller polls by id. The language hint is advisory only: extraction is
// language-agnostic.
func (m *Manager) SubmitCode(ctx context.Context, code, language string) (models.AnalysisJob, error) {
	if strings.TrimSpace(code) == "" {
		return models.AnalysisJob{}, scepticerrors.InputError("code is empty")
	}
	if len(code) > m.cfg.Analysis.MaxCodeBytes {
		return models.AnalysisJob{}, scepticerrors.InputErrorf(
			"code exceeds the %d byte limit", m.cfg.Analysis.MaxCodeBytes)
	}

	job := m.newJob("")
	m.logger.WithFields(logrus.Fields{
		"job":      job.ID,
		"bytes":    len(code),
		"language": language,
	}).Info("code submission accepted")

	work := func(ctx context.Context) (*models.AnalysisResult, error) {
		return m.analyzer.Analyze(ctx, code), nil
	}

	if len(code) <= m.cfg.Jobs.SyncLimit {
		m.store.Insert(job)
		m.run(job.ID, work)
		return m.store.Get(job.ID)
	}

	return m.dispatch(job, work)
}

// SubmitRepository accepts a repository reference for background analysis.
func (m *Manager) SubmitRepository(ctx context.Context, rawURL string, maxFiles int) (models.AnalysisJob, error) {
	if m.aggregator == nil {
		return models.AnalysisJob{}, scepticerrors.ConfigError("repository analysis is not configured")
	}

	ref, err := repo.ParseURL(rawURL)
	if err != nil {
		return models.AnalysisJob{}, err
	}

	job := m.newJob(rawURL)
	m.logger.WithFields(logrus.Fields{
		"job":  job.ID,
		"repo": ref.FullName(),
	}).Info("repository submission accepted")

	work := func(ctx context.Context) (*models.AnalysisResult, error) {
		return m.aggregator.AnalyzeRepository(ctx, ref, maxFiles)
	}
	return m.dispatch(job, work)
}

// GetResult returns the current job state and result. On a store miss the
// archive and then the ledger journal are consulted before reporting
// not-found; an evicted high-risk result can still be summarized.
func (m *Manager) GetResult(ctx context.Context, id string) (models.AnalysisJob, error) {
	job, err := m.store.Get(id)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.AnalysisJob{}, err
	}

	if m.archive != nil {
		archived, err := m.archive.Get(ctx, id)
		if err == nil {
			return *archived, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.WithError(err).Warn("archive lookup failed")
		}
	}

	if m.journal != nil {
		record, receipt, err := m.journal.Get(id)
		if err == nil {
			return jobFromRecord(record, receipt), nil
		}
	}

	return models.AnalysisJob{}, fmt.Errorf("analysis %s: %w", id, ErrNotFound)
}

// List returns archived analyses, newest first.
func (m *Manager) List(ctx context.Context, limit int) ([]*models.AnalysisJob, error) {
	if m.archive == nil {
		return nil, scepticerrors.ConfigError("result archive is not configured")
	}
	return m.archive.List(ctx, limit)
}

// Close drains the worker pool.
func (m *Manager) Close() {
	m.pool.Close()
}

func (m *Manager) newJob(repoURL string) models.AnalysisJob {
	now := time.Now()
	return models.AnalysisJob{
		ID:        "analysis_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		RepoURL:   repoURL,
		State:     models.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// dispatch queues background work, undoing the insert when the pool pushes
// back so a rejected submission leaves no trace.
func (m *Manager) dispatch(job models.AnalysisJob, work func(context.Context) (*models.AnalysisResult, error)) (models.AnalysisJob, error) {
	m.store.Insert(job)
	if err := m.pool.Submit(func() { m.run(job.ID, work) }); err != nil {
		m.store.Delete(job.ID)
		return models.AnalysisJob{}, err
	}
	return job, nil
}

// run executes one job to a terminal state. Any error or panic inside the
// work function lands the job in failed; it is never left in processing.
func (m *Manager) run(id string, work func(context.Context) (*models.AnalysisResult, error)) {
	ctx := context.Background()

	if err := m.store.Update(id, func(j *models.AnalysisJob) { j.State = models.JobProcessing }); err != nil {
		m.logger.WithError(err).WithField("job", id).Warn("job vanished before processing")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.WithField("job", id).Errorf("recovered panic in analysis: %v", r)
			m.fail(id, fmt.Sprintf("internal error: %v", r))
		}
	}()

	result, err := work(ctx)
	if err != nil {
		m.fail(id, err.Error())
		return
	}

	m.anchor(ctx, id, result)

	if err := m.store.Update(id, func(j *models.AnalysisJob) {
		j.State = models.JobCompleted
		j.Result = result
	}); err != nil {
		m.logger.WithError(err).WithField("job", id).Warn("job vanished before completion")
	}
	m.archiveJob(ctx, id)
}

func (m *Manager) fail(id, message string) {
	m.store.Update(id, func(j *models.AnalysisJob) {
		j.State = models.JobFailed
		j.Error = message
	})
	m.archiveJob(context.Background(), id)
}

// anchor applies the ledger gating rule: only high-risk results or
// high-confidence AI detections are written. A failed write degrades to a
// warning on the result; the analysis itself still completes.
func (m *Manager) anchor(ctx context.Context, id string, result *models.AnalysisResult) {
	if m.ledger == nil || !m.policy.ShouldStore(result) {
		return
	}

	record := ledger.Record{
		ID:         id,
		Prediction: result.Prediction,
		Confidence: result.Confidence,
		RiskScore:  result.RiskScore,
		Timestamp:  time.Now(),
	}

	writeCtx, cancel := context.WithTimeout(ctx, m.cfg.Ledger.Timeout)
	defer cancel()

	receipt, err := m.ledger.StoreRecord(writeCtx, record)
	if err != nil {
		if errors.Is(err, ledger.ErrDisabled) {
			return
		}
		m.logger.WithError(err).WithField("job", id).Warn("ledger write failed")
		result.Warnings = append(result.Warnings, fmt.Sprintf("ledger write failed: %v", err))
		return
	}

	result.LedgerTx = receipt.TxHash
	result.ExplorerURL = receipt.ExplorerURL
	m.logger.WithFields(logrus.Fields{"job": id, "tx": receipt.TxHash}).Info("result anchored to ledger")

	if m.journal != nil {
		if err := m.journal.Put(record, receipt); err != nil {
			m.logger.WithError(err).Warn("journal write failed")
		}
	}
}

func (m *Manager) archiveJob(ctx context.Context, id string) {
	if m.archive == nil {
		return
	}
	job, err := m.store.Get(id)
	if err != nil {
		return
	}
	if err := m.archive.Save(ctx, &job); err != nil {
		m.logger.WithError(err).WithField("job", id).Warn("archive write failed")
	}
}

func jobFromRecord(record *ledger.Record, receipt *ledger.Receipt) models.AnalysisJob {
	job := models.AnalysisJob{
		ID:        record.ID,
		State:     models.JobCompleted,
		CreatedAt: record.Timestamp,
		UpdatedAt: record.Timestamp,
		Result: &models.AnalysisResult{
			Prediction: record.Prediction,
			Confidence: record.Confidence,
			RiskScore:  record.RiskScore,
		},
	}
	if receipt != nil {
		job.Result.LedgerTx = receipt.TxHash
		job.Result.ExplorerURL = receipt.ExplorerURL
	}
	if record.RepoURL != "" {
		job.RepoURL = record.RepoURL
	}
	return job
}
