package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sceptic-ai/sceptic-go/internal/analysis"
	"github.com/sceptic-ai/sceptic-go/internal/models"
)

// stubSource serves a canned listing and per-path content or errors.
type stubSource struct {
	files     []models.FileRef
	content   map[string]string
	fetchErrs map[string]error
	listErr   error
}

func (s *stubSource) List(_ context.Context, _ models.RepoRef) ([]models.FileRef, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.files, nil
}

func (s *stubSource) Fetch(_ context.Context, _ models.RepoRef, file models.FileRef) (string, error) {
	if err, ok := s.fetchErrs[file.Path]; ok {
		return "", err
	}
	return s.content[file.Path], nil
}

func testAggregator(t *testing.T, src Source, opts Options) *Aggregator {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	classifier := analysis.NewClassifier(0.65, 0.10, nil, logger)
	analyzer := analysis.NewAnalyzer(analysis.NewScorer(2.5), classifier, logger)
	return NewAggregator(src, analyzer, opts, logger)
}

func testRef() models.RepoRef {
	return models.RepoRef{Owner: "acme", Repo: "widgets", Branch: "main"}
}

func TestAnalyzeRepositoryHappyPath(t *testing.T) {
	src := &stubSource{
		files: []models.FileRef{
			{Path: "app.py", Size: 60},
			{Path: "util.py", Size: 30},
			{Path: "README.md", Size: 10},
		},
		content: map[string]string{
			"app.py":  "import os\nos.system(cmd)\n",
			"util.py": "def add(a, b):\n    return a + b\n",
		},
	}

	result, err := testAggregator(t, src, Options{Concurrency: 2}).
		AnalyzeRepository(context.Background(), testRef(), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, result.FilesAnalyzed)
	assert.Equal(t, 0, result.FilesSkipped)
	assert.False(t, result.Truncated)
	assert.Greater(t, result.RiskScore, 0.0)
	assert.NotEmpty(t, result.Security.Vulnerabilities)
	assert.NotEmpty(t, result.Security.SeverityCounts)
}

func TestAnalyzeRepositoryNoSuitableFiles(t *testing.T) {
	src := &stubSource{
		files: []models.FileRef{
			{Path: "README.md", Size: 10},
			{Path: "Makefile", Size: 20},
		},
	}

	_, err := testAggregator(t, src, Options{}).
		AnalyzeRepository(context.Background(), testRef(), 0)

	assert.ErrorIs(t, err, ErrNoSuitableFiles)
}

func TestAnalyzeRepositoryListingFailure(t *testing.T) {
	src := &stubSource{listErr: errors.New("boom")}

	_, err := testAggregator(t, src, Options{}).
		AnalyzeRepository(context.Background(), testRef(), 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestAnalyzeRepositoryRateLimitAbortsJob(t *testing.T) {
	t.Run("on listing", func(t *testing.T) {
		src := &stubSource{listErr: ErrRateLimited}
		_, err := testAggregator(t, src, Options{}).
			AnalyzeRepository(context.Background(), testRef(), 0)
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("on fetch", func(t *testing.T) {
		src := &stubSource{
			files: []models.FileRef{
				{Path: "a.py", Size: 10},
				{Path: "b.py", Size: 10},
			},
			content:   map[string]string{"a.py": "x = 1\n"},
			fetchErrs: map[string]error{"b.py": ErrRateLimited},
		}
		_, err := testAggregator(t, src, Options{Concurrency: 1}).
			AnalyzeRepository(context.Background(), testRef(), 0)
		assert.ErrorIs(t, err, ErrRateLimited)
	})
}

func TestAnalyzeRepositorySkipsBrokenAndEmptyFiles(t *testing.T) {
	src := &stubSource{
		files: []models.FileRef{
			{Path: "good.py", Size: 30},
			{Path: "broken.py", Size: 30},
			{Path: "empty.py", Size: 0},
		},
		content:   map[string]string{"good.py": "def f():\n    return 1\n"},
		fetchErrs: map[string]error{"broken.py": errors.New("connection reset")},
	}

	result, err := testAggregator(t, src, Options{Concurrency: 2}).
		AnalyzeRepository(context.Background(), testRef(), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesAnalyzed)
	assert.Equal(t, 2, result.FilesSkipped)
}

func TestAnalyzeRepositoryOversizedFilesCountAsSkipped(t *testing.T) {
	src := &stubSource{
		files: []models.FileRef{
			{Path: "small.py", Size: 10},
			{Path: "huge.py", Size: 2 << 20},
		},
		content: map[string]string{"small.py": "x = 1\n"},
	}

	result, err := testAggregator(t, src, Options{MaxFileBytes: 1 << 20}).
		AnalyzeRepository(context.Background(), testRef(), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesAnalyzed)
	assert.Equal(t, 1, result.FilesSkipped)
}

func TestAnalyzeRepositoryTruncatesSmallestFirst(t *testing.T) {
	var files []models.FileRef
	content := map[string]string{}
	for i := 0; i < 5; i++ {
		path := fmt.Sprintf("f%d.py", i)
		files = append(files, models.FileRef{Path: path, Size: int64(100 - i*10)})
		content[path] = fmt.Sprintf("x%d = %d\n", i, i)
	}
	src := &stubSource{files: files, content: content}

	result, err := testAggregator(t, src, Options{MaxFiles: 10, Concurrency: 1}).
		AnalyzeRepository(context.Background(), testRef(), 2)
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.Equal(t, 2, result.FilesAnalyzed)
}

func TestAnalyzeRepositoryPinnedFile(t *testing.T) {
	src := &stubSource{
		files: []models.FileRef{
			{Path: "src/app.py", Size: 30},
			{Path: "src/other.py", Size: 30},
		},
		content: map[string]string{"src/app.py": "eval(data)\n"},
	}

	ref := testRef()
	ref.FilePath = "src/app.py"

	result, err := testAggregator(t, src, Options{}).
		AnalyzeRepository(context.Background(), ref, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesAnalyzed)
	assert.NotEmpty(t, result.Security.Vulnerabilities)

	ref.FilePath = "src/missing.py"
	_, err = testAggregator(t, src, Options{}).
		AnalyzeRepository(context.Background(), ref, 0)
	assert.ErrorIs(t, err, ErrNoSuitableFiles)
}

func TestMergeFindingsDeduplicates(t *testing.T) {
	guarded := models.VulnerabilityFinding{
		Category: models.CategoryCall, Name: "Code Evaluation",
		Severity: models.SeverityHigh, Score: 5, Guarded: true, Occurrences: 1,
	}
	bare := models.VulnerabilityFinding{
		Category: models.CategoryCall, Name: "Code Evaluation",
		Severity: models.SeverityCritical, Score: 10, Occurrences: 2,
	}
	results := []*models.AnalysisResult{
		{Security: models.SecurityReport{Vulnerabilities: []models.VulnerabilityFinding{guarded}}},
		{Security: models.SecurityReport{Vulnerabilities: []models.VulnerabilityFinding{bare}}},
	}

	merged := mergeFindings(results)
	require.Len(t, merged, 1)

	f := merged[0]
	assert.Equal(t, 3, f.Occurrences)
	assert.False(t, f.Guarded)
	assert.Equal(t, 10, f.Score)
	assert.Equal(t, models.SeverityCritical, f.Severity)
}
