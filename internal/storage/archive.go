// Package storage persists completed analyses to a local SQLite archive so
// past results can be listed after they age out of the in-memory job store.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sceptic-ai/sceptic-go/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when an analysis id has no archive row.
var ErrNotFound = errors.New("not found")

// Archive stores finished jobs in SQLite.
type Archive struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewArchive opens (or creates) the archive database at path.
func NewArchive(path string, logger *logrus.Logger) (*Archive, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	// WAL keeps reads open while background jobs write.
	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	a := &Archive{db: db, logger: logger}
	if err := a.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return a, nil
}

func (a *Archive) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		repo_url TEXT,
		status TEXT NOT NULL,
		prediction TEXT,
		confidence REAL,
		risk_score REAL,
		error TEXT,
		result_json TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at DESC);
	`
	_, err := a.db.Exec(schema)
	return err
}

// Save upserts a finished job.
func (a *Archive) Save(ctx context.Context, job *models.AnalysisJob) error {
	var (
		prediction string
		confidence float64
		riskScore  float64
		resultJSON []byte
	)
	if job.Result != nil {
		prediction = string(job.Result.Prediction)
		confidence = job.Result.Confidence
		riskScore = job.Result.RiskScore
		var err error
		resultJSON, err = json.Marshal(job.Result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO analyses (id, repo_url, status, prediction, confidence, risk_score, error, result_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			prediction = excluded.prediction,
			confidence = excluded.confidence,
			risk_score = excluded.risk_score,
			error = excluded.error,
			result_json = excluded.result_json,
			updated_at = excluded.updated_at`,
		job.ID, job.RepoURL, string(job.State), prediction, confidence, riskScore,
		job.Error, string(resultJSON), job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save analysis %s: %w", job.ID, err)
	}
	return nil
}

type analysisRow struct {
	ID         string    `db:"id"`
	RepoURL    string    `db:"repo_url"`
	Status     string    `db:"status"`
	Error      string    `db:"error"`
	ResultJSON string    `db:"result_json"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r analysisRow) toJob() (*models.AnalysisJob, error) {
	job := &models.AnalysisJob{
		ID:        r.ID,
		RepoURL:   r.RepoURL,
		State:     models.JobState(r.Status),
		Error:     r.Error,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.ResultJSON != "" {
		var result models.AnalysisResult
		if err := json.Unmarshal([]byte(r.ResultJSON), &result); err != nil {
			return nil, fmt.Errorf("unmarshal result for %s: %w", r.ID, err)
		}
		job.Result = &result
	}
	return job, nil
}

// Get returns one archived job by id.
func (a *Archive) Get(ctx context.Context, id string) (*models.AnalysisJob, error) {
	var row analysisRow
	err := a.db.GetContext(ctx, &row, `
		SELECT id, repo_url, status, error, result_json, created_at, updated_at
		FROM analyses WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, err)
	}
	return row.toJob()
}

// List returns archived jobs, newest first.
func (a *Archive) List(ctx context.Context, limit int) ([]*models.AnalysisJob, error) {
	if limit < 1 {
		limit = 50
	}
	var rows []analysisRow
	err := a.db.SelectContext(ctx, &rows, `
		SELECT id, repo_url, status, error, result_json, created_at, updated_at
		FROM analyses ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	jobs := make([]*models.AnalysisJob, 0, len(rows))
	for _, row := range rows {
		job, err := row.toJob()
		if err != nil {
			a.logger.WithError(err).Warn("skipping unreadable archive row")
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}
