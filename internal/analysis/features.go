package analysis

import (
	"math"
	"regexp"
	"strings"

	"github.com/sceptic-ai/sceptic-go/internal/models"
)

// Lexical patterns shared by the extractor. The keyword and delimiter sets are
// heuristic and language-agnostic: the same extraction runs on every input
// regardless of source language.
var (
	keywordRe     = regexp.MustCompile(`\b(def|class|import|return|if|elif|else|for|while|try|except|with|lambda|yield|async|await|func|function)\b`)
	commentRe     = regexp.MustCompile(`#[^\n]*|//[^\n]*|/\*[\s\S]*?\*/|"""[\s\S]*?"""|'''[\s\S]*?'''`)
	commentLineRe = regexp.MustCompile(`^\s*(#|//|/\*|\*\s|--|"""|''')`)
	decisionRe    = regexp.MustCompile(`\b(if|elif|else|for|while|and|or)\b`)
	boolOpRe      = regexp.MustCompile(`&&|\|\|`)
	funcRe        = regexp.MustCompile(`\b(def|func|function)\b`)
	classRe       = regexp.MustCompile(`\bclass\b`)
	loopRe        = regexp.MustCompile(`\b(for|while)\b`)
	assignRe      = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z_][A-Za-z0-9_]*)[ \t]*:?=([^=]|$)`)

	camelRe  = regexp.MustCompile(`^[a-z][a-z0-9]*([A-Z][a-zA-Z0-9]*)+$`)
	pascalRe = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
	snakeRe  = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Extractor converts raw source text into a fixed feature vector. It is a
// pure function over the input and never fails, whatever bytes it is handed.
type Extractor struct{}

// NewExtractor creates a feature extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract computes the feature vector for the given source text. An empty
// input yields a zero vector with neutral consistency scores.
func (e *Extractor) Extract(code string) models.CodeFeatureVector {
	if code == "" {
		return models.CodeFeatureVector{
			IndentationConsistency: 1.0,
			NamingConsistency:      1.0,
		}
	}

	lines := strings.Split(code, "\n")

	fv := models.CodeFeatureVector{
		NumLines:     len(lines),
		NumChars:     len(code),
		NumSpaces:    strings.Count(code, " "),
		NumTabs:      strings.Count(code, "\t"),
		NumKeywords:  len(keywordRe.FindAllString(code, -1)),
		NumComments:  len(commentRe.FindAllString(code, -1)),
		NumFunctions: len(funcRe.FindAllString(code, -1)),
		NumClasses:   len(classRe.FindAllString(code, -1)),
		NumLoops:     len(loopRe.FindAllString(code, -1)),
	}

	fv.CyclomaticComplexity = len(decisionRe.FindAllString(code, -1)) + len(boolOpRe.FindAllString(code, -1)) + 1
	fv.IndentationConsistency = indentationConsistency(lines)
	fv.AvgLineLength, fv.MaxLineLength = lineLengths(lines)
	fv.CommentRatio = commentRatio(lines)
	fv.AvgFunctionLength = avgFunctionLength(lines)

	idents := assignedIdentifiers(code)
	fv.NumIdentifiers = len(idents)
	fv.NamingConsistency = namingConsistency(idents)

	return fv
}

// indentationConsistency measures how uniform leading whitespace is across
// non-blank lines. Tabs expand to 4 columns. A single shared width scores
// 1.0; otherwise 1 - stddev/4, rounded to two decimals. Extreme variance can
// push the score negative; that quirk is kept as-is.
func indentationConsistency(lines []string) float64 {
	var widths []float64
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		widths = append(widths, float64(indentWidth(line)))
	}
	if len(widths) == 0 {
		return 1.0
	}

	first := widths[0]
	uniform := true
	for _, w := range widths[1:] {
		if w != first {
			uniform = false
			break
		}
	}
	if uniform {
		return 1.0
	}
	return round2(1 - stddev(widths)/4)
}

// indentWidth returns the column width of a line's leading whitespace with
// tabs expanding to the next multiple of 4.
func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width = (width/4 + 1) * 4
		default:
			return width
		}
	}
	return width
}

func lineLengths(lines []string) (avg float64, max int) {
	var total, n int
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		trimmed := strings.TrimRight(line, " \t")
		total += len(trimmed)
		n++
		if len(trimmed) > max {
			max = len(trimmed)
		}
	}
	if n == 0 {
		return 0, 0
	}
	return round2(float64(total) / float64(n)), max
}

func commentRatio(lines []string) float64 {
	if len(lines) == 0 {
		return 0
	}
	commented := 0
	for _, line := range lines {
		if commentLineRe.MatchString(line) {
			commented++
		}
	}
	return float64(commented) / float64(len(lines))
}

// avgFunctionLength is the mean body line count of heuristically matched
// function definitions: a body line is any following line that is blank or
// indented deeper than the definition line.
func avgFunctionLength(lines []string) float64 {
	var total, count int
	for i, line := range lines {
		if !funcRe.MatchString(line) {
			continue
		}
		start := indentWidth(line)
		body := 0
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "" {
				body++
				continue
			}
			if indentWidth(lines[j]) <= start {
				break
			}
			body++
		}
		total += body
		count++
	}
	if count == 0 {
		return 0
	}
	return round2(float64(total) / float64(count))
}

func assignedIdentifiers(code string) []string {
	matches := assignRe.FindAllStringSubmatch(code, -1)
	idents := make([]string, 0, len(matches))
	for _, m := range matches {
		idents = append(idents, m[1])
	}
	return idents
}

// namingConsistency is the share of identifiers in the dominant naming style.
// Fewer than two identifiers reads as fully consistent.
func namingConsistency(idents []string) float64 {
	if len(idents) < 2 {
		return 1.0
	}
	counts := map[string]int{}
	for _, id := range idents {
		switch {
		case camelRe.MatchString(id):
			counts["camel"]++
		case pascalRe.MatchString(id):
			counts["pascal"]++
		case snakeRe.MatchString(id):
			counts["snake"]++
		default:
			counts["other"]++
		}
	}
	dominant := 0
	for _, c := range counts {
		if c > dominant {
			dominant = c
		}
	}
	return float64(dominant) / float64(len(idents))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(values)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
