package analysis

import (
	"regexp"

	"github.com/sceptic-ai/sceptic-go/internal/models"
)

// Rule is one entry in the data-driven scan table. Adding a rule never
// touches scanner control flow.
type Rule struct {
	Pattern     *regexp.Regexp
	Category    models.FindingCategory
	Name        string
	Severity    models.Severity
	Score       int
	Description string
	// Discountable marks rules whose score is reduced when the match sits
	// inside a protective block. Only dangerous-call rules qualify.
	Discountable bool
}

// DefaultRules is evaluated in slice order so scan output is deterministic.
var DefaultRules = []Rule{
	// Risky imports and module usage.
	{regexp.MustCompile(`import\s+os\b`), models.CategoryImport, "OS Access", models.SeverityHigh, 8, "Potentially dangerous import: OS Access", false},
	{regexp.MustCompile(`import\s+subprocess\b`), models.CategoryImport, "Command Execution", models.SeverityCritical, 10, "Potentially dangerous import: Command Execution", false},
	{regexp.MustCompile(`import\s+sys\b`), models.CategoryImport, "System Access", models.SeverityMedium, 5, "Potentially dangerous import: System Access", false},
	{regexp.MustCompile(`import\s+(requests|http|urllib)\b`), models.CategoryImport, "Network Access", models.SeverityMedium, 6, "Potentially dangerous import: Network Access", false},
	{regexp.MustCompile(`import\s+socket\b`), models.CategoryImport, "Raw Socket Access", models.SeverityHigh, 7, "Potentially dangerous import: Raw Socket Access", false},
	{regexp.MustCompile(`from\s+cryptography\b`), models.CategoryImport, "Cryptography Usage", models.SeverityMedium, 4, "Potentially dangerous import: Cryptography Usage", false},
	{regexp.MustCompile(`import\s+(flask|django|fastapi)\b`), models.CategoryImport, "Web Framework", models.SeverityLow, 3, "Potentially dangerous import: Web Framework", false},

	// Dangerous function calls.
	{regexp.MustCompile(`\bexec\s*\(`), models.CategoryCall, "Code Execution", models.SeverityCritical, 10, "Potentially dangerous function: Code Execution", true},
	{regexp.MustCompile(`\beval\s*\(`), models.CategoryCall, "Code Evaluation", models.SeverityCritical, 10, "Potentially dangerous function: Code Evaluation", true},
	{regexp.MustCompile(`os\.system\s*\(`), models.CategoryCall, "Command Execution", models.SeverityCritical, 10, "Potentially dangerous function: Command Execution", true},
	{regexp.MustCompile(`subprocess\.`), models.CategoryCall, "Command Execution", models.SeverityCritical, 9, "Potentially dangerous function: Command Execution", true},
	{regexp.MustCompile(`\bopen\s*\(`), models.CategoryCall, "File Operations", models.SeverityHigh, 7, "Potentially dangerous function: File Operations", true},
	{regexp.MustCompile(`__import__\s*\(`), models.CategoryCall, "Dynamic Import", models.SeverityHigh, 8, "Potentially dangerous function: Dynamic Import", true},
	{regexp.MustCompile(`pickle\.`), models.CategoryCall, "Unsafe Deserialization", models.SeverityHigh, 8, "Potentially dangerous function: Unsafe Deserialization", true},
	{regexp.MustCompile(`yaml\.load\s*\(`), models.CategoryCall, "Unsafe YAML Parsing", models.SeverityHigh, 7, "Potentially dangerous function: Unsafe YAML Parsing", true},
	{regexp.MustCompile(`requests?\.get\s*\(`), models.CategoryCall, "HTTP Request", models.SeverityMedium, 5, "Potentially dangerous function: HTTP Request", true},
	{regexp.MustCompile(`\binput\s*\(`), models.CategoryCall, "User Input", models.SeverityMedium, 4, "Potentially dangerous function: User Input", true},

	// Free-form vulnerability patterns, always reported at full score.
	{regexp.MustCompile(`(?i)(password|passwd|secret|api_?key|token)\s*[:=]\s*["'][^"']{4,}["']`), models.CategoryPattern, "Hardcoded Secret", models.SeverityHigh, 8, "Credential or secret embedded in source", false},
	{regexp.MustCompile(`(?i)["'](select|insert|update|delete)\b[^"']*["']\s*(\+|%)`), models.CategoryPattern, "String-Built SQL", models.SeverityHigh, 8, "SQL statement assembled from string concatenation", false},
	{regexp.MustCompile(`\.\./`), models.CategoryPattern, "Path Traversal", models.SeverityMedium, 6, "Relative parent-directory path in source", false},
	{regexp.MustCompile(`\b(curl|wget)\s+https?://`), models.CategoryPattern, "Shell Network Call", models.SeverityMedium, 6, "Network download via shell command", false},
}
