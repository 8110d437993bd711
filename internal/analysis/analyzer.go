package analysis

import (
	"context"

	"github.com/sceptic-ai/sceptic-go/internal/models"
	"github.com/sirupsen/logrus"
)

// Analyzer runs the full per-unit pipeline: features, scan, risk score,
// authorship. Single files and repository members go through the same path.
type Analyzer struct {
	extractor  *Extractor
	scanner    *Scanner
	scorer     *Scorer
	classifier *Classifier
	logger     *logrus.Logger
}

// NewAnalyzer wires the pipeline components together.
func NewAnalyzer(scorer *Scorer, classifier *Classifier, logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Analyzer{
		extractor:  NewExtractor(),
		scanner:    NewScanner(),
		scorer:     scorer,
		classifier: classifier,
		logger:     logger,
	}
}

// Classifier exposes the authorship component for repository-level labeling.
func (a *Analyzer) Classifier() *Classifier {
	return a.classifier
}

// Analyze produces the complete result for one unit of source text.
func (a *Analyzer) Analyze(ctx context.Context, code string) *models.AnalysisResult {
	features := a.extractor.Extract(code)
	findings := a.scanner.Scan(code)
	report := a.scorer.Score(features, findings)
	cls := a.classifier.Classify(ctx, features, code)

	a.logger.WithFields(logrus.Fields{
		"lines":      features.NumLines,
		"findings":   len(findings),
		"risk_score": report.RiskScore,
		"prediction": cls.Label,
	}).Debug("analysis complete")

	return &models.AnalysisResult{
		Prediction:  cls.Label,
		Confidence:  cls.Confidence,
		Source:      cls.Source,
		SourceProbs: cls.SourceProbs,
		Features:    features,
		Security:    report,
		RiskScore:   report.RiskScore,
	}
}
