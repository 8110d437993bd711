package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sceptic-ai/sceptic-go/internal/analysis"
	scepticerrors "github.com/sceptic-ai/sceptic-go/internal/errors"
	"github.com/sceptic-ai/sceptic-go/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options bound the aggregation fan-out.
type Options struct {
	// MaxFiles caps how many files one repository job analyzes.
	MaxFiles int
	// MaxFileBytes skips individual files larger than this.
	MaxFileBytes int64
	// Concurrency bounds the per-file download fan-out.
	Concurrency int
	// FetchTimeout bounds each content download.
	FetchTimeout time.Duration
}

// Aggregator runs the per-file pipeline over a repository listing. A failed
// listing fails the whole job; a failed individual file is skipped and
// counted.
type Aggregator struct {
	source   Source
	analyzer *analysis.Analyzer
	opts     Options
	logger   *logrus.Logger
}

// NewAggregator creates a repository aggregator.
func NewAggregator(source Source, analyzer *analysis.Analyzer, opts Options, logger *logrus.Logger) *Aggregator {
	if opts.MaxFiles < 1 {
		opts.MaxFiles = 50
	}
	if opts.MaxFileBytes < 1 {
		opts.MaxFileBytes = 1 << 20
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Aggregator{source: source, analyzer: analyzer, opts: opts, logger: logger}
}

// AnalyzeRepository lists the repository, analyzes each matching file, and
// folds the per-file results into one repository-level result. maxFiles
// overrides the configured file budget when positive.
func (a *Aggregator) AnalyzeRepository(ctx context.Context, ref models.RepoRef, maxFiles int) (*models.AnalysisResult, error) {
	if maxFiles <= 0 || maxFiles > a.opts.MaxFiles {
		maxFiles = a.opts.MaxFiles
	}
	listing, err := a.source.List(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		return nil, scepticerrors.CollaboratorErrorf(err, "list files for %s", ref.FullName())
	}

	// A pinned file path narrows the job to that single file.
	if ref.FilePath != "" {
		return a.analyzeSingle(ctx, ref, listing)
	}

	candidates, oversized := a.filter(listing)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSuitableFiles, ref.FullName())
	}

	// Smallest files first maximizes coverage inside the file budget.
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Size < candidates[j].Size })

	truncated := len(candidates) > maxFiles
	if truncated {
		candidates = candidates[:maxFiles]
	}

	results, skipped, err := a.fanOut(ctx, ref, candidates)
	if err != nil {
		return nil, err
	}
	skipped += oversized

	if len(results) == 0 {
		return nil, fmt.Errorf("no files from %s could be analyzed (%d skipped)", ref.FullName(), skipped)
	}

	combined := a.combine(results)
	combined.FilesAnalyzed = len(results)
	combined.FilesSkipped = skipped
	combined.Truncated = truncated

	a.logger.WithFields(logrus.Fields{
		"repo":      ref.FullName(),
		"analyzed":  combined.FilesAnalyzed,
		"skipped":   skipped,
		"truncated": truncated,
	}).Info("repository aggregation complete")

	return combined, nil
}

func (a *Aggregator) analyzeSingle(ctx context.Context, ref models.RepoRef, listing []models.FileRef) (*models.AnalysisResult, error) {
	for _, file := range listing {
		if file.Path != ref.FilePath {
			continue
		}
		fetchCtx, cancel := context.WithTimeout(ctx, a.opts.FetchTimeout)
		content, err := a.source.Fetch(fetchCtx, ref, file)
		cancel()
		if err != nil {
			return nil, scepticerrors.CollaboratorErrorf(err, "fetch %s", file.Path)
		}
		result := a.analyzer.Analyze(ctx, content)
		result.FilesAnalyzed = 1
		return result, nil
	}
	return nil, fmt.Errorf("%w: %s not found in %s", ErrNoSuitableFiles, ref.FilePath, ref.FullName())
}

// filter keeps recognized, non-empty files under the size ceiling and counts
// the oversized ones as skipped.
func (a *Aggregator) filter(listing []models.FileRef) (kept []models.FileRef, oversized int) {
	for _, file := range listing {
		if !recognizedExtension(file.Path) {
			continue
		}
		if file.Size > a.opts.MaxFileBytes {
			oversized++
			continue
		}
		kept = append(kept, file)
	}
	return kept, oversized
}

// fanOut fetches and analyzes candidates under a bounded concurrency. A
// rate-limit response aborts everything; any other per-file failure only
// skips that file.
func (a *Aggregator) fanOut(ctx context.Context, ref models.RepoRef, candidates []models.FileRef) ([]*models.AnalysisResult, int, error) {
	var (
		mu      sync.Mutex
		results []*models.AnalysisResult
		skipped int
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.opts.Concurrency)

	for _, file := range candidates {
		file := file
		eg.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(egCtx, a.opts.FetchTimeout)
			content, err := a.source.Fetch(fetchCtx, ref, file)
			cancel()

			if err != nil {
				if errors.Is(err, ErrRateLimited) {
					return err
				}
				a.logger.WithError(err).WithField("path", file.Path).Warn("skipping file")
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			if content == "" {
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}

			result := a.analyzer.Analyze(egCtx, content)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, 0, fmt.Errorf("repository analysis aborted: %w", err)
	}
	return results, skipped, nil
}

// combine folds per-file results into the repository-level result: risk and
// confidence averaged, structural counts summed, findings deduplicated by
// category and name with occurrence counts and a severity tally.
func (a *Aggregator) combine(results []*models.AnalysisResult) *models.AnalysisResult {
	n := float64(len(results))
	var features models.CodeFeatureVector
	var riskSum, confSum float64
	var indentSum, namingSum, lineLenSum, commentSum, funcLenSum float64

	for _, r := range results {
		f := r.Features
		features.NumLines += f.NumLines
		features.NumChars += f.NumChars
		features.NumSpaces += f.NumSpaces
		features.NumTabs += f.NumTabs
		features.NumKeywords += f.NumKeywords
		features.NumComments += f.NumComments
		features.NumFunctions += f.NumFunctions
		features.NumClasses += f.NumClasses
		features.NumLoops += f.NumLoops
		features.NumIdentifiers += f.NumIdentifiers
		features.CyclomaticComplexity += f.CyclomaticComplexity
		if f.MaxLineLength > features.MaxLineLength {
			features.MaxLineLength = f.MaxLineLength
		}
		indentSum += f.IndentationConsistency
		namingSum += f.NamingConsistency
		lineLenSum += f.AvgLineLength
		commentSum += f.CommentRatio
		funcLenSum += f.AvgFunctionLength

		riskSum += r.RiskScore
		confSum += r.Confidence
	}

	features.IndentationConsistency = indentSum / n
	features.NamingConsistency = namingSum / n
	features.AvgLineLength = lineLenSum / n
	features.CommentRatio = commentSum / n
	features.AvgFunctionLength = funcLenSum / n

	riskScore := riskSum / n
	confidence := confSum / n

	report := models.SecurityReport{
		Vulnerabilities: mergeFindings(results),
		CodeQuality:     map[string]models.QualityIssue{},
		RiskScore:       riskScore,
	}
	report.SeverityCounts = tallySeverities(report.Vulnerabilities)
	report.HighRisk = riskScore >= analysis.HighRiskBoundary
	report.MediumRisk = riskScore >= analysis.MediumRiskBoundary && riskScore < analysis.HighRiskBoundary
	report.LowRisk = riskScore < analysis.MediumRiskBoundary

	label := a.analyzer.Classifier().Label(confidence)

	combined := &models.AnalysisResult{
		Prediction: label,
		Confidence: confidence,
		Features:   features,
		Security:   report,
		RiskScore:  riskScore,
	}

	if label == models.AuthorAI {
		combined.Source = dominantSource(results)
	} else {
		combined.Source = string(models.AuthorHuman)
	}
	return combined
}

// mergeFindings concatenates per-file findings and deduplicates them by
// category and name, summing occurrence counts. Output order is stable.
func mergeFindings(results []*models.AnalysisResult) []models.VulnerabilityFinding {
	type key struct {
		category models.FindingCategory
		name     string
	}
	merged := map[key]models.VulnerabilityFinding{}
	var order []key

	for _, r := range results {
		for _, f := range r.Security.Vulnerabilities {
			k := key{f.Category, f.Name}
			existing, ok := merged[k]
			if !ok {
				merged[k] = f
				order = append(order, k)
				continue
			}
			existing.Occurrences += f.Occurrences
			// An unguarded sighting anywhere outranks a guarded one.
			if !f.Guarded && existing.Guarded {
				existing.Guarded = false
				existing.Score = f.Score
				existing.Severity = f.Severity
				existing.Description = f.Description
			}
			merged[k] = existing
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].category != order[j].category {
			return order[i].category < order[j].category
		}
		return order[i].name < order[j].name
	})

	findings := make([]models.VulnerabilityFinding, 0, len(order))
	for _, k := range order {
		findings = append(findings, merged[k])
	}
	return findings
}

func tallySeverities(findings []models.VulnerabilityFinding) map[models.Severity]int {
	counts := map[models.Severity]int{}
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

func dominantSource(results []*models.AnalysisResult) string {
	counts := map[string]int{}
	for _, r := range results {
		if r.Prediction == models.AuthorAI && r.Source != "" {
			counts[r.Source]++
		}
	}
	best, bestCount := "", 0
	for _, source := range []string{"ChatGPT-4", "DeepSeek-Coder", "Claude-3.7", "Gemini-1.5", "Copilot"} {
		if counts[source] > bestCount {
			best, bestCount = source, counts[source]
		}
	}
	if best == "" {
		return string(models.AuthorAI)
	}
	return best
}
