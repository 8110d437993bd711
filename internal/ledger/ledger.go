// Package ledger defines the tamper-evident record collaborator and the
// gating policy that decides which results are worth anchoring.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/sceptic-ai/sceptic-go/internal/models"
)

// ErrDisabled is returned by the no-op ledger when no endpoint is configured.
var ErrDisabled = errors.New("ledger is not configured")

// ErrNotFound is returned when a record id has no ledger entry.
var ErrNotFound = errors.New("ledger record not found")

// Record is the summary anchored for one analysis.
type Record struct {
	ID         string                 `json:"id"`
	RepoURL    string                 `json:"repo_url,omitempty"`
	Prediction models.AuthorshipLabel `json:"prediction"`
	Confidence float64                `json:"confidence"`
	RiskScore  float64                `json:"risk_score"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Receipt points at the stored record.
type Receipt struct {
	TxHash      string `json:"tx_hash"`
	ExplorerURL string `json:"explorer_url"`
}

// Ledger is the external record store. Writes are delegated; the gating rule
// deciding when to write belongs to the analysis core.
type Ledger interface {
	StoreRecord(ctx context.Context, record Record) (Receipt, error)
	FetchRecord(ctx context.Context, id string) (*Record, error)
}

// Policy is the fixed gating rule: anchor only high-risk results or
// high-confidence AI detections.
type Policy struct {
	HighRiskThreshold float64
	AIConfidence      float64
}

// ShouldStore applies the gating rule to a result.
func (p Policy) ShouldStore(result *models.AnalysisResult) bool {
	if result == nil {
		return false
	}
	if result.RiskScore >= p.HighRiskThreshold {
		return true
	}
	return result.Prediction == models.AuthorAI && result.Confidence >= p.AIConfidence
}

// Disabled is the no-op ledger used when no endpoint is configured. Its
// absence must never crash the system.
type Disabled struct{}

// StoreRecord always reports the ledger as unconfigured.
func (Disabled) StoreRecord(context.Context, Record) (Receipt, error) {
	return Receipt{}, ErrDisabled
}

// FetchRecord always reports the ledger as unconfigured.
func (Disabled) FetchRecord(context.Context, string) (*Record, error) {
	return nil, ErrDisabled
}
