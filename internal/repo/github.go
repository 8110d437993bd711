package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/sceptic-ai/sceptic-go/internal/models"
	"golang.org/x/time/rate"
)

// GitHubSource lists and downloads repository files through the GitHub API.
// All calls go through a shared rate limiter; 429-class responses surface as
// ErrRateLimited so the aggregator can fail the whole job.
type GitHubSource struct {
	client      *github.Client
	rateLimiter *rate.Limiter
}

// NewGitHubSource creates a source. An empty token uses unauthenticated
// access with its much lower quota.
func NewGitHubSource(token string, requestsPerSecond int) *GitHubSource {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}
	return &GitHubSource{
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// List enumerates the repository tree recursively and returns blob entries.
func (s *GitHubSource) List(ctx context.Context, ref models.RepoRef) ([]models.FileRef, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	tree, _, err := s.client.Git.GetTree(ctx, ref.Owner, ref.Repo, ref.Branch, true)
	if err != nil {
		return nil, classify(err, "list repository tree")
	}

	files := make([]models.FileRef, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		files = append(files, models.FileRef{
			Path:        entry.GetPath(),
			Size:        int64(entry.GetSize()),
			DownloadRef: entry.GetPath(),
		})
	}
	return files, nil
}

// Fetch downloads one file's decoded text content.
func (s *GitHubSource) Fetch(ctx context.Context, ref models.RepoRef, file models.FileRef) (string, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	content, _, _, err := s.client.Repositories.GetContents(ctx, ref.Owner, ref.Repo, file.DownloadRef,
		&github.RepositoryContentGetOptions{Ref: ref.Branch})
	if err != nil {
		return "", classify(err, "fetch file content")
	}
	if content == nil {
		return "", fmt.Errorf("fetch file content: %s is not a file", file.Path)
	}

	text, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode file content: %w", err)
	}
	return text, nil
}

// classify maps GitHub client errors onto source sentinels.
func classify(err error, op string) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%s: %w (resets %s)", op, ErrRateLimited, rateErr.Rate.Reset.Format(time.RFC3339))
	}
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %w (secondary limit)", op, ErrRateLimited)
	}
	return fmt.Errorf("%s: %w", op, err)
}
