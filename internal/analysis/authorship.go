package analysis

import (
	"context"
	"math"

	"github.com/sceptic-ai/sceptic-go/internal/models"
	"github.com/sirupsen/logrus"
)

// Predictor is the authorship-likelihood capability. The pipeline depends
// only on this contract; a trained model plugs in here without touching the
// rest of the system.
type Predictor interface {
	// Predict returns the probability in [0,1] that the code was
	// machine-generated.
	Predict(ctx context.Context, features models.CodeFeatureVector, code string) (float64, error)
}

// HeuristicPredictor derives the AI likelihood from a fixed set of boolean
// style indicators. It is the fallback when no trained model is configured.
type HeuristicPredictor struct{}

// Indicator bands. Machine-generated code tends toward moderate commenting,
// mid-range line lengths, low branching density, and very regular indentation.
const (
	commentBandLow     = 0.05
	commentBandHigh    = 0.40
	lineLengthBandLow  = 30.0
	lineLengthBandHigh = 90.0
	densityBandLow     = 0.05
	densityBandHigh    = 0.40
	indentRegularMin   = 0.9
)

// Predict scores one point per indicator that holds and returns the fraction.
func (HeuristicPredictor) Predict(_ context.Context, f models.CodeFeatureVector, _ string) (float64, error) {
	indicators := []bool{
		f.CommentRatio >= commentBandLow && f.CommentRatio <= commentBandHigh,
		f.AvgLineLength >= lineLengthBandLow && f.AvgLineLength <= lineLengthBandHigh,
		complexityDensity(f) >= densityBandLow && complexityDensity(f) <= densityBandHigh,
		f.IndentationConsistency >= indentRegularMin && f.NumLines > 1,
	}

	hits := 0
	for _, ok := range indicators {
		if ok {
			hits++
		}
	}
	return float64(hits) / float64(len(indicators)), nil
}

func complexityDensity(f models.CodeFeatureVector) float64 {
	if f.NumLines == 0 {
		return 0
	}
	return float64(f.CyclomaticComplexity) / float64(f.NumLines)
}

// Known generator profiles for source attribution.
var aiSources = []string{"ChatGPT-4", "DeepSeek-Coder", "Claude-3.7", "Gemini-1.5", "Copilot"}

// Classifier turns a predictor probability into an authorship label. The
// label thresholds stay fixed regardless of which predictor variant runs.
type Classifier struct {
	threshold float64
	upper     float64
	lower     float64
	predictor Predictor
	fallback  HeuristicPredictor
	logger    *logrus.Logger
}

// NewClassifier creates a classifier backed by the given predictor. A nil
// predictor selects the heuristic path. The band cutoffs are precomputed and
// rounded to two decimals so a probability exactly at a band edge, like the
// 0.75 of three heuristic indicators out of four, compares cleanly.
func NewClassifier(threshold, band float64, predictor Predictor, logger *logrus.Logger) *Classifier {
	if logger == nil {
		logger = logrus.New()
	}
	return &Classifier{
		threshold: threshold,
		upper:     round2(threshold + band),
		lower:     round2(threshold - band),
		predictor: predictor,
		logger:    logger,
	}
}

// Classification is the authorship verdict for one sample.
type Classification struct {
	Label       models.AuthorshipLabel
	Confidence  float64
	Source      string
	SourceProbs map[string]float64
}

// Classify computes the AI likelihood and maps it onto a label. A failing
// external predictor degrades to the heuristic path rather than failing the
// analysis.
func (c *Classifier) Classify(ctx context.Context, features models.CodeFeatureVector, code string) Classification {
	confidence, err := c.probability(ctx, features, code)
	if err != nil {
		c.logger.WithError(err).Warn("external predictor failed, using heuristic path")
		confidence, _ = c.fallback.Predict(ctx, features, code)
	}

	label := c.Label(confidence)

	cls := Classification{
		Label:      label,
		Confidence: confidence,
	}

	if label == models.AuthorAI {
		cls.SourceProbs = attributeSource(confidence, features)
		cls.Source = argmax(cls.SourceProbs)
	} else {
		cls.Source = string(models.AuthorHuman)
	}
	return cls
}

// Label maps an AI likelihood onto the three-way label. Probabilities
// strictly inside the band around the threshold read as Uncertain; the band
// edges belong to the outer labels.
func (c *Classifier) Label(confidence float64) models.AuthorshipLabel {
	switch {
	case confidence >= c.upper:
		return models.AuthorAI
	case confidence <= c.lower:
		return models.AuthorHuman
	default:
		return models.AuthorUncertain
	}
}

// Threshold exposes the fixed AI boundary for repository-level labeling.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

func (c *Classifier) probability(ctx context.Context, features models.CodeFeatureVector, code string) (float64, error) {
	if c.predictor == nil {
		return c.fallback.Predict(ctx, features, code)
	}
	return c.predictor.Predict(ctx, features, code)
}

// attributeSource spreads the AI likelihood across generator profiles using
// style-weighted priors: very regular indentation leans ChatGPT, dense
// branching leans DeepSeek, rich commenting leans Claude.
func attributeSource(confidence float64, f models.CodeFeatureVector) map[string]float64 {
	chatgpt := math.Min(0.95, confidence*(f.IndentationConsistency/0.5))
	deepseek := math.Min(0.90, confidence*(float64(f.CyclomaticComplexity)/10))
	claude := math.Min(0.85, confidence*(float64(f.NumComments)/10))
	gemini := math.Min(0.80, confidence*0.8)
	copilot := math.Min(0.75, confidence*0.7)

	total := chatgpt + deepseek + claude + gemini + copilot
	if total <= 0 {
		probs := make(map[string]float64, len(aiSources))
		for _, s := range aiSources {
			probs[s] = 1.0 / float64(len(aiSources))
		}
		return probs
	}

	return map[string]float64{
		"ChatGPT-4":      chatgpt / total,
		"DeepSeek-Coder": deepseek / total,
		"Claude-3.7":     claude / total,
		"Gemini-1.5":     gemini / total,
		"Copilot":        copilot / total,
	}
}

func argmax(probs map[string]float64) string {
	best := ""
	bestP := math.Inf(-1)
	for _, s := range aiSources {
		if p, ok := probs[s]; ok && p > bestP {
			best, bestP = s, p
		}
	}
	return best
}
