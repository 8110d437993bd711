// Package predict holds the external authorship predictor. The trained model
// is consumed as an opaque collaborator behind analysis.Predictor; when it is
// unreachable the classifier falls back to the heuristic path.
package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sceptic-ai/sceptic-go/internal/config"
	"github.com/sceptic-ai/sceptic-go/internal/models"
	"github.com/sirupsen/logrus"
)

const systemPrompt = `You are a code-authorship detector. Given a source code
sample and its extracted lexical features, respond with only a single number
between 0 and 1: the probability the code was machine-generated.`

// External queries a remote model for the machine-generation probability.
type External struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *logrus.Logger
}

// NewExternal creates the remote predictor from configuration. Returns an
// error when no API key is available so callers can wire the heuristic path
// instead of a predictor that can never succeed.
func NewExternal(cfg config.PredictorConfig, logger *logrus.Logger) (*External, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("external predictor requires an API key")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &External{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// Predict implements analysis.Predictor under a bounded deadline so a hung
// collaborator cannot starve the worker pool.
func (e *External) Predict(ctx context.Context, features models.CodeFeatureVector, code string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	payload, err := json.Marshal(features)
	if err != nil {
		return 0, fmt.Errorf("marshal features: %w", err)
	}

	// Long samples are truncated; the feature vector already summarizes them.
	sample := code
	if len(sample) > 8000 {
		sample = sample[:8000]
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Features: %s\n\nCode:\n%s", payload, sample)},
		},
		Temperature: 0,
		MaxTokens:   8,
	})
	if err != nil {
		return 0, fmt.Errorf("predictor call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("predictor returned no choices")
	}

	return parseProbability(resp.Choices[0].Message.Content)
}

func parseProbability(s string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("predictor returned non-numeric output %q", s)
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("predictor probability %v out of range", p)
	}
	return p, nil
}
