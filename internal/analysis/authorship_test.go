package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sceptic-ai/sceptic-go/internal/models"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestHeuristicPredictorIndicators(t *testing.T) {
	tests := []struct {
		name     string
		features models.CodeFeatureVector
		want     float64
	}{
		{
			"all indicators hit",
			models.CodeFeatureVector{
				NumLines:               20,
				CommentRatio:           0.2,
				AvgLineLength:          60,
				CyclomaticComplexity:   4, // density 0.2
				IndentationConsistency: 1.0,
			},
			1.0,
		},
		{
			"no indicator hits",
			models.CodeFeatureVector{
				NumLines:               20,
				CommentRatio:           0.0,
				AvgLineLength:          10,
				CyclomaticComplexity:   0,
				IndentationConsistency: 0.5,
			},
			0.0,
		},
		{
			"regular indentation needs more than one line",
			models.CodeFeatureVector{
				NumLines:               1,
				CommentRatio:           0.0,
				AvgLineLength:          14,
				CyclomaticComplexity:   1,
				IndentationConsistency: 1.0,
			},
			0.0, // density 1.0 is above band, indentation gated by line count
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := HeuristicPredictor{}.Predict(context.Background(), tt.features, "")
			require.NoError(t, err)
			assert.InDelta(t, tt.want, p, 0.001)
		})
	}
}

func TestLabelBands(t *testing.T) {
	c := NewClassifier(0.65, 0.10, nil, quietLogger())

	tests := []struct {
		confidence float64
		want       models.AuthorshipLabel
	}{
		{0.0, models.AuthorHuman},
		{0.25, models.AuthorHuman},
		{0.55, models.AuthorHuman},
		{0.56, models.AuthorUncertain},
		{0.65, models.AuthorUncertain},
		{0.74, models.AuthorUncertain},
		{0.75, models.AuthorAI},
		{1.0, models.AuthorAI},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Label(tt.confidence), "confidence %v", tt.confidence)
	}
}

type erroringPredictor struct{}

func (erroringPredictor) Predict(context.Context, models.CodeFeatureVector, string) (float64, error) {
	return 0, errors.New("model endpoint unreachable")
}

func TestClassifyFallsBackToHeuristic(t *testing.T) {
	c := NewClassifier(0.65, 0.10, erroringPredictor{}, quietLogger())

	// Features that trip every heuristic indicator, so fallback reads as AI.
	f := models.CodeFeatureVector{
		NumLines:               20,
		CommentRatio:           0.2,
		AvgLineLength:          60,
		CyclomaticComplexity:   4,
		IndentationConsistency: 1.0,
	}

	cls := c.Classify(context.Background(), f, "x")

	assert.Equal(t, models.AuthorAI, cls.Label)
	assert.Equal(t, 1.0, cls.Confidence)
}

func TestClassifySingleStatementIsHuman(t *testing.T) {
	fv := NewExtractor().Extract("print('hello')")
	c := NewClassifier(0.65, 0.10, nil, quietLogger())

	cls := c.Classify(context.Background(), fv, "print('hello')")

	assert.Equal(t, models.AuthorHuman, cls.Label)
	assert.Equal(t, string(models.AuthorHuman), cls.Source)
	assert.Nil(t, cls.SourceProbs)
}

func TestClassifyAIAttribution(t *testing.T) {
	c := NewClassifier(0.65, 0.10, erroringPredictor{}, quietLogger())
	f := models.CodeFeatureVector{
		NumLines:               40,
		NumComments:            8,
		CommentRatio:           0.2,
		AvgLineLength:          60,
		CyclomaticComplexity:   8,
		IndentationConsistency: 1.0,
	}

	cls := c.Classify(context.Background(), f, "x")

	require.Equal(t, models.AuthorAI, cls.Label)
	require.Len(t, cls.SourceProbs, 5)

	sum := 0.0
	for _, p := range cls.SourceProbs {
		assert.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 0.001)
	assert.Contains(t, cls.SourceProbs, cls.Source)
}
