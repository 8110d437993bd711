package analysis

import (
	"regexp"

	"github.com/sceptic-ai/sceptic-go/internal/models"
)

// guardOpenRe and guardCloseRe bound a protective block lexically. A match
// between a try/begin token and the nearest following handler token is
// treated as guarded. This is a confidence discount, not a correctness proof.
var (
	guardOpenRe  = regexp.MustCompile(`\btry\b|\bbegin\b`)
	guardCloseRe = regexp.MustCompile(`\bexcept\b|\bcatch\b|\bfinally\b|\brescue\b`)
)

// Scanner matches source text against the rule table. Pure and
// deterministic: identical text always yields the identical finding set.
type Scanner struct {
	rules []Rule
}

// NewScanner creates a scanner over the default rule table.
func NewScanner() *Scanner {
	return &Scanner{rules: DefaultRules}
}

// NewScannerWithRules creates a scanner over a custom table.
func NewScannerWithRules(rules []Rule) *Scanner {
	return &Scanner{rules: rules}
}

// Scan evaluates every rule against the text and emits one finding per
// matching rule, in table order. Discountable matches that sit inside a
// protective block keep the finding but at half score, one severity tier
// lower, with the description noting the guard.
func (s *Scanner) Scan(code string) []models.VulnerabilityFinding {
	if code == "" {
		return nil
	}

	guards := guardRanges(code)
	var findings []models.VulnerabilityFinding

	for _, rule := range s.rules {
		locs := rule.Pattern.FindAllStringIndex(code, -1)
		if len(locs) == 0 {
			continue
		}

		f := models.VulnerabilityFinding{
			Category:    rule.Category,
			Name:        rule.Name,
			Severity:    rule.Severity,
			Score:       rule.Score,
			Description: rule.Description,
			Occurrences: len(locs),
		}

		if rule.Discountable && allGuarded(locs, guards) {
			f.Score = rule.Score / 2
			if f.Score < 1 {
				f.Score = 1
			}
			f.Severity = downgrade(rule.Severity)
			f.Description += " (appears guarded by an exception handler)"
			f.Guarded = true
		}

		findings = append(findings, f)
	}

	return findings
}

type span struct{ start, end int }

// guardRanges pairs each protective-block opener with the nearest following
// handler token.
func guardRanges(code string) []span {
	opens := guardOpenRe.FindAllStringIndex(code, -1)
	closes := guardCloseRe.FindAllStringIndex(code, -1)

	var spans []span
	for _, open := range opens {
		for _, close := range closes {
			if close[0] > open[1] {
				spans = append(spans, span{start: open[0], end: close[0]})
				break
			}
		}
	}
	return spans
}

func allGuarded(locs [][]int, guards []span) bool {
	if len(guards) == 0 {
		return false
	}
	for _, loc := range locs {
		if !inGuard(loc[0], guards) {
			return false
		}
	}
	return true
}

func inGuard(pos int, guards []span) bool {
	for _, g := range guards {
		if pos >= g.start && pos < g.end {
			return true
		}
	}
	return false
}

func downgrade(s models.Severity) models.Severity {
	switch s {
	case models.SeverityCritical:
		return models.SeverityHigh
	case models.SeverityHigh:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
