package repo

import (
	"regexp"
	"strings"

	"github.com/sceptic-ai/sceptic-go/internal/errors"
	"github.com/sceptic-ai/sceptic-go/internal/models"
)

var (
	hostPrefixRe = regexp.MustCompile(`^(https?://)?(www\.)?github\.com/`)
	// blob/tree are view segments, not path components; they collapse to a
	// single separator so the branch segment stays intact.
	viewSegmentRe = regexp.MustCompile(`/(blob|tree)/`)
)

// branchCandidates are names treated as a branch segment rather than the
// start of a file path when parsing a URL.
var branchCandidates = map[string]bool{
	"main": true, "master": true, "dev": true, "development": true,
}

// ParseURL normalizes a GitHub repository URL into a reference. Malformed
// references are input errors: rejected synchronously, no job created.
func ParseURL(rawURL string) (models.RepoRef, error) {
	cleaned := hostPrefixRe.ReplaceAllString(strings.TrimSpace(rawURL), "")
	cleaned = strings.Trim(viewSegmentRe.ReplaceAllString(cleaned, "/"), "/")
	if cleaned == "" {
		return models.RepoRef{}, errors.InputError("repository reference is empty")
	}

	parts := strings.Split(cleaned, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return models.RepoRef{}, errors.InputErrorf("malformed repository reference %q", rawURL)
	}

	ref := models.RepoRef{
		Owner:  parts[0],
		Repo:   parts[1],
		Branch: "main",
	}

	if len(parts) > 2 {
		if branchCandidates[parts[2]] {
			ref.Branch = parts[2]
			if len(parts) > 3 {
				ref.FilePath = strings.Join(parts[3:], "/")
			}
		} else {
			ref.FilePath = strings.Join(parts[2:], "/")
		}
	}

	return ref, nil
}

// recognizedExtension reports whether a path carries a known code suffix.
func recognizedExtension(path string) bool {
	idx := strings.LastIndex(path, ".")
	if idx < 0 || idx == len(path)-1 {
		return false
	}
	return sourceExtensions[path[idx+1:]]
}
