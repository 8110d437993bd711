package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sceptic-ai/sceptic-go/internal/models"
)

func TestPolicyShouldStore(t *testing.T) {
	policy := Policy{HighRiskThreshold: 70, AIConfidence: 0.8}

	tests := []struct {
		name   string
		result *models.AnalysisResult
		want   bool
	}{
		{"nil result", nil, false},
		{"low risk human", &models.AnalysisResult{Prediction: models.AuthorHuman, Confidence: 0.2, RiskScore: 10}, false},
		{"risk at threshold", &models.AnalysisResult{Prediction: models.AuthorHuman, Confidence: 0.2, RiskScore: 70}, true},
		{"risk above threshold", &models.AnalysisResult{Prediction: models.AuthorHuman, Confidence: 0.2, RiskScore: 95}, true},
		{"confident AI low risk", &models.AnalysisResult{Prediction: models.AuthorAI, Confidence: 0.85, RiskScore: 10}, true},
		{"AI at confidence boundary", &models.AnalysisResult{Prediction: models.AuthorAI, Confidence: 0.8, RiskScore: 10}, true},
		{"hesitant AI low risk", &models.AnalysisResult{Prediction: models.AuthorAI, Confidence: 0.76, RiskScore: 10}, false},
		{"uncertain never stored on confidence", &models.AnalysisResult{Prediction: models.AuthorUncertain, Confidence: 0.99, RiskScore: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.ShouldStore(tt.result))
		})
	}
}

func TestDisabledLedger(t *testing.T) {
	var l Ledger = Disabled{}

	_, err := l.StoreRecord(context.Background(), Record{ID: "x"})
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = l.FetchRecord(context.Background(), "x")
	assert.ErrorIs(t, err, ErrDisabled)
}
