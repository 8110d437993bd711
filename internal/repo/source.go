// Package repo fans per-file analysis out over a repository listing and
// folds the results into one repository-level report.
package repo

import (
	"context"
	"errors"

	"github.com/sceptic-ai/sceptic-go/internal/models"
)

// Sentinel errors surfaced by sources.
var (
	// ErrRateLimited marks a remote rate-limit response. The whole
	// repository job fails on it rather than silently truncating.
	ErrRateLimited = errors.New("remote API rate limit exceeded")
	// ErrNoSuitableFiles means the listing held nothing with a recognized
	// source extension.
	ErrNoSuitableFiles = errors.New("no suitable files in repository")
)

// Source enumerates and downloads repository files. The GitHub client
// implements it; tests supply fakes.
type Source interface {
	// List returns candidate files for the given reference.
	List(ctx context.Context, ref models.RepoRef) ([]models.FileRef, error)
	// Fetch downloads one file's text content.
	Fetch(ctx context.Context, ref models.RepoRef, file models.FileRef) (string, error)
}

// sourceExtensions are the recognized code file suffixes.
var sourceExtensions = map[string]bool{
	"py": true, "js": true, "java": true, "c": true, "cpp": true,
	"cs": true, "ts": true, "rs": true, "go": true, "rb": true,
	"php": true, "sol": true,
}
