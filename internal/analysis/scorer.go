package analysis

import (
	"math"

	"github.com/sceptic-ai/sceptic-go/internal/models"
)

// Quality thresholds and the scores charged when they are violated.
const (
	indentationThreshold = 0.7
	lineLengthThreshold  = 120.0
	complexityThreshold  = 15
	commentThreshold     = 0.05
	namingThreshold      = 0.7
	namingMinIdentifiers = 5
	funcLengthThreshold  = 30.0

	indentationPenalty = 3
	lineLengthPenalty  = 2
	complexityPenalty  = 4
	commentPenalty     = 2
	namingPenalty      = 3
	funcLengthPenalty  = 3
)

// Risk level boundaries on the normalized 0-100 scale.
const (
	HighRiskBoundary   = 70.0
	MediumRiskBoundary = 30.0
)

// Scorer normalizes findings and quality signals into a bounded risk score.
// It never fails; the extractor and scanner feeding it cannot fail either.
type Scorer struct {
	multiplier float64
}

// NewScorer creates a scorer with the given normalization multiplier.
func NewScorer(multiplier float64) *Scorer {
	if multiplier <= 0 {
		multiplier = 2.5
	}
	return &Scorer{multiplier: multiplier}
}

// Score sums finding scores and quality-issue scores, normalizes via the
// fixed multiplier, and clamps to [0,100]. Exactly one level flag is true.
func (s *Scorer) Score(features models.CodeFeatureVector, findings []models.VulnerabilityFinding) models.SecurityReport {
	raw := 0
	for _, f := range findings {
		raw += f.Score
	}

	quality := make(map[string]models.QualityIssue)

	if features.IndentationConsistency < indentationThreshold {
		quality["indentation_consistency"] = models.QualityIssue{
			Value:       features.IndentationConsistency,
			Description: "Poor indentation consistency",
			Score:       indentationPenalty,
		}
		raw += indentationPenalty
	}
	if features.AvgLineLength > lineLengthThreshold {
		quality["line_length"] = models.QualityIssue{
			Value:       features.AvgLineLength,
			Description: "Lines too long on average",
			Score:       lineLengthPenalty,
		}
		raw += lineLengthPenalty
	}
	if features.CyclomaticComplexity > complexityThreshold {
		quality["complexity"] = models.QualityIssue{
			Value:       float64(features.CyclomaticComplexity),
			Description: "High cyclomatic complexity",
			Score:       complexityPenalty,
		}
		raw += complexityPenalty
	}
	if features.CommentRatio < commentThreshold {
		quality["documentation"] = models.QualityIssue{
			Value:       features.CommentRatio,
			Description: "Poor documentation/comments",
			Score:       commentPenalty,
		}
		raw += commentPenalty
	}
	if features.NumIdentifiers >= namingMinIdentifiers && features.NamingConsistency < namingThreshold {
		quality["naming"] = models.QualityIssue{
			Value:       features.NamingConsistency,
			Description: "Inconsistent identifier naming",
			Score:       namingPenalty,
		}
		raw += namingPenalty
	}
	if features.AvgFunctionLength > funcLengthThreshold {
		quality["function_length"] = models.QualityIssue{
			Value:       features.AvgFunctionLength,
			Description: "Function bodies too long on average",
			Score:       funcLengthPenalty,
		}
		raw += funcLengthPenalty
	}

	score := math.Min(100, float64(raw)*s.multiplier)

	report := models.SecurityReport{
		Vulnerabilities: findings,
		CodeQuality:     quality,
		RiskScore:       score,
	}
	report.HighRisk = score >= HighRiskBoundary
	report.MediumRisk = score >= MediumRiskBoundary && score < HighRiskBoundary
	report.LowRisk = score < MediumRiskBoundary

	return report
}
