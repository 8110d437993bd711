package models

import (
	"time"
)

// CodeFeatureVector holds the lexical metrics extracted from a single source
// text. It is fully derived from the input and safe to copy by value.
type CodeFeatureVector struct {
	NumLines               int     `json:"num_lines" db:"num_lines"`
	NumChars               int     `json:"num_chars" db:"num_chars"`
	NumSpaces              int     `json:"num_spaces" db:"num_spaces"`
	NumTabs                int     `json:"num_tabs" db:"num_tabs"`
	NumKeywords            int     `json:"num_keywords" db:"num_keywords"`
	NumComments            int     `json:"num_comments" db:"num_comments"`
	NumFunctions           int     `json:"num_functions" db:"num_functions"`
	NumClasses             int     `json:"num_classes" db:"num_classes"`
	NumLoops               int     `json:"num_loops" db:"num_loops"`
	NumIdentifiers         int     `json:"num_identifiers" db:"num_identifiers"`
	IndentationConsistency float64 `json:"indentation_consistency" db:"indentation_consistency"`
	NamingConsistency      float64 `json:"naming_consistency" db:"naming_consistency"`
	AvgLineLength          float64 `json:"avg_line_length" db:"avg_line_length"`
	MaxLineLength          int     `json:"max_line_length" db:"max_line_length"`
	CyclomaticComplexity   int     `json:"cyclomatic_complexity" db:"cyclomatic_complexity"`
	CommentRatio           float64 `json:"comment_ratio" db:"comment_ratio"`
	AvgFunctionLength      float64 `json:"avg_function_length" db:"avg_function_length"`
}

// Severity buckets a finding by how dangerous the matched construct is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// FindingCategory identifies which rule family produced a finding.
type FindingCategory string

const (
	CategoryImport  FindingCategory = "import"
	CategoryCall    FindingCategory = "function-call"
	CategoryPattern FindingCategory = "literal-pattern"
)

// VulnerabilityFinding is one flagged pattern match in the scanned text.
type VulnerabilityFinding struct {
	Category    FindingCategory `json:"category"`
	Name        string          `json:"name"`
	Severity    Severity        `json:"severity"`
	Score       int             `json:"score"`
	Description string          `json:"description"`
	Guarded     bool            `json:"guarded,omitempty"`
	Occurrences int             `json:"occurrences,omitempty"`
}

// QualityIssue is a code-quality threshold violation contributing to risk.
type QualityIssue struct {
	Value       float64 `json:"value"`
	Description string  `json:"description"`
	Score       int     `json:"score"`
}

// SecurityReport aggregates findings and quality issues into a normalized
// 0-100 risk score with a coarse level.
type SecurityReport struct {
	Vulnerabilities []VulnerabilityFinding  `json:"vulnerabilities"`
	CodeQuality     map[string]QualityIssue `json:"code_quality"`
	SeverityCounts  map[Severity]int        `json:"severity_counts,omitempty"`
	RiskScore       float64                 `json:"risk_score"`
	HighRisk        bool                    `json:"high_risk"`
	MediumRisk      bool                    `json:"medium_risk"`
	LowRisk         bool                    `json:"low_risk"`
}

// Level returns the categorical risk level for the report's score.
func (r *SecurityReport) Level() string {
	switch {
	case r.HighRisk:
		return "high"
	case r.MediumRisk:
		return "medium"
	default:
		return "low"
	}
}

// AuthorshipLabel classifies who most likely wrote a code sample.
type AuthorshipLabel string

const (
	AuthorHuman     AuthorshipLabel = "Human"
	AuthorAI        AuthorshipLabel = "AI"
	AuthorUncertain AuthorshipLabel = "Uncertain"
)

// AnalysisResult is the complete outcome for one analyzed unit, either a
// single file or a whole-repository aggregate.
type AnalysisResult struct {
	Prediction    AuthorshipLabel    `json:"prediction"`
	Confidence    float64            `json:"confidence"`
	Source        string             `json:"source,omitempty"`
	SourceProbs   map[string]float64 `json:"source_probabilities,omitempty"`
	Features      CodeFeatureVector  `json:"features"`
	Security      SecurityReport     `json:"security_analysis"`
	RiskScore     float64            `json:"risk_score"`
	FilesAnalyzed int                `json:"files_analyzed,omitempty"`
	FilesSkipped  int                `json:"files_skipped,omitempty"`
	Truncated     bool               `json:"truncated,omitempty"`
	LedgerTx      string             `json:"ledger_tx,omitempty"`
	ExplorerURL   string             `json:"explorer_url,omitempty"`
	Warnings      []string           `json:"warnings,omitempty"`
}

// JobState tracks where a job is in its lifecycle. Completed and failed are
// terminal and never reverted.
type JobState string

const (
	JobPending    JobState = "pending"
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// AnalysisJob is one unit of tracked analysis work.
type AnalysisJob struct {
	ID        string          `json:"id"`
	RepoURL   string          `json:"repo_url,omitempty"`
	State     JobState        `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Result    *AnalysisResult `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// FileRef identifies one candidate file in a repository listing.
type FileRef struct {
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	DownloadRef string `json:"download_ref"`
}

// RepoRef is a parsed repository reference.
type RepoRef struct {
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	Branch   string `json:"branch"`
	FilePath string `json:"file_path,omitempty"`
}

// FullName returns the owner/repo form used in logs and archive rows.
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Repo
}
