package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	// Analysis thresholds and policy constants
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`

	// Job lifecycle settings
	Jobs JobsConfig `yaml:"jobs" mapstructure:"jobs"`

	// GitHub configuration
	GitHub GitHubConfig `yaml:"github" mapstructure:"github"`

	// External predictor configuration
	Predictor PredictorConfig `yaml:"predictor" mapstructure:"predictor"`

	// Ledger configuration
	Ledger LedgerConfig `yaml:"ledger" mapstructure:"ledger"`

	// Result archive configuration
	Archive ArchiveConfig `yaml:"archive" mapstructure:"archive"`
}

type AnalysisConfig struct {
	// RiskMultiplier normalizes the raw risk sum onto [0,100]. The upstream
	// revisions alternated between 3.0 and 2.5; 2.5 is the fixed policy here.
	RiskMultiplier float64 `yaml:"risk_multiplier" mapstructure:"risk_multiplier"`
	// AIThreshold is the confidence above which a sample is labeled AI.
	AIThreshold float64 `yaml:"ai_threshold" mapstructure:"ai_threshold"`
	// UncertainBand labels samples Uncertain within this distance of the threshold.
	UncertainBand float64 `yaml:"uncertain_band" mapstructure:"uncertain_band"`
	// MaxCodeBytes rejects submissions larger than this before a job is created.
	MaxCodeBytes int `yaml:"max_code_bytes" mapstructure:"max_code_bytes"`
}

type JobsConfig struct {
	// SyncLimit is the largest submission processed synchronously, in bytes.
	SyncLimit int `yaml:"sync_limit" mapstructure:"sync_limit"`
	// CacheCapacity bounds the job store; oldest entries are evicted first.
	CacheCapacity int `yaml:"cache_capacity" mapstructure:"cache_capacity"`
	// Workers is the background pool size.
	Workers int `yaml:"workers" mapstructure:"workers"`
	// QueueDepth bounds the pending queue; submissions beyond it are rejected.
	QueueDepth int `yaml:"queue_depth" mapstructure:"queue_depth"`
}

type GitHubConfig struct {
	Token string `yaml:"token" mapstructure:"token"`
	// RateLimit is requests per second against the GitHub API.
	RateLimit int `yaml:"rate_limit" mapstructure:"rate_limit"`
	// MaxFiles caps how many files one repository job analyzes.
	MaxFiles int `yaml:"max_files" mapstructure:"max_files"`
	// MaxFileBytes skips individual files larger than this.
	MaxFileBytes int64 `yaml:"max_file_bytes" mapstructure:"max_file_bytes"`
	// FetchConcurrency bounds the per-file download fan-out.
	FetchConcurrency int `yaml:"fetch_concurrency" mapstructure:"fetch_concurrency"`
	// FetchTimeout bounds each content download.
	FetchTimeout time.Duration `yaml:"fetch_timeout" mapstructure:"fetch_timeout"`
}

type PredictorConfig struct {
	// Enabled switches the external model on; the heuristic path is the fallback.
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type LedgerConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// HighRiskThreshold gates ledger writes: store when risk score is at or
	// above it, or when authorship is AI with confidence >= AIConfidence.
	HighRiskThreshold float64       `yaml:"high_risk_threshold" mapstructure:"high_risk_threshold"`
	AIConfidence      float64       `yaml:"ai_confidence" mapstructure:"ai_confidence"`
	Endpoint          string        `yaml:"endpoint" mapstructure:"endpoint"`
	ExplorerBase      string        `yaml:"explorer_base" mapstructure:"explorer_base"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// JournalPath is the local bbolt receipt journal.
	JournalPath string `yaml:"journal_path" mapstructure:"journal_path"`
}

type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Analysis: AnalysisConfig{
			RiskMultiplier: 2.5,
			AIThreshold:    0.65,
			UncertainBand:  0.10,
			MaxCodeBytes:   1 << 20, // 1MB
		},
		Jobs: JobsConfig{
			SyncLimit:     4096,
			CacheCapacity: 100,
			Workers:       4,
			QueueDepth:    64,
		},
		GitHub: GitHubConfig{
			RateLimit:        10,
			MaxFiles:         50,
			MaxFileBytes:     1 << 20,
			FetchConcurrency: 8,
			FetchTimeout:     30 * time.Second,
		},
		Predictor: PredictorConfig{
			Model:   "gpt-4o-mini",
			Timeout: 20 * time.Second,
		},
		Ledger: LedgerConfig{
			HighRiskThreshold: 70,
			AIConfidence:      0.8,
			Timeout:           15 * time.Second,
			JournalPath:       filepath.Join(homeDir, ".sceptic", "ledger.db"),
		},
		Archive: ArchiveConfig{
			Enabled: true,
			Path:    filepath.Join(homeDir, ".sceptic", "archive.db"),
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	// Load .env files first (in order of precedence)
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults
	cfg := Default()
	v.SetDefault("analysis", cfg.Analysis)
	v.SetDefault("jobs", cfg.Jobs)
	v.SetDefault("github", cfg.GitHub)
	v.SetDefault("predictor", cfg.Predictor)
	v.SetDefault("ledger", cfg.Ledger)
	v.SetDefault("archive", cfg.Archive)

	// Load from environment variables
	v.SetEnvPrefix("SCEPTIC")
	v.AutomaticEnv()

	// Try to find config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".sceptic")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".sceptic"))
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	// Unmarshal into struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations that would break lifecycle invariants
func (c *Config) Validate() error {
	if c.Jobs.CacheCapacity < 1 {
		return fmt.Errorf("jobs.cache_capacity must be at least 1, got %d", c.Jobs.CacheCapacity)
	}
	if c.Jobs.Workers < 1 {
		return fmt.Errorf("jobs.workers must be at least 1, got %d", c.Jobs.Workers)
	}
	if c.Analysis.RiskMultiplier <= 0 {
		return fmt.Errorf("analysis.risk_multiplier must be positive, got %v", c.Analysis.RiskMultiplier)
	}
	if c.Analysis.AIThreshold <= 0 || c.Analysis.AIThreshold >= 1 {
		return fmt.Errorf("analysis.ai_threshold must be in (0,1), got %v", c.Analysis.AIThreshold)
	}
	if c.GitHub.FetchConcurrency < 1 {
		return fmt.Errorf("github.fetch_concurrency must be at least 1, got %d", c.GitHub.FetchConcurrency)
	}
	return nil
}

// loadEnvFiles loads .env files in order of precedence
func loadEnvFiles() {
	envFiles := []string{
		".env.local", // Local overrides (highest precedence)
		".env",       // Main environment file
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	// Also try loading from home directory
	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".sceptic", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if rateLimit := os.Getenv("GITHUB_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.Atoi(rateLimit); err == nil {
			cfg.GitHub.RateLimit = rl
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Predictor.APIKey = key
	}
	if model := os.Getenv("PREDICTOR_MODEL"); model != "" {
		cfg.Predictor.Model = model
	}
	if url := os.Getenv("PREDICTOR_BASE_URL"); url != "" {
		cfg.Predictor.BaseURL = url
	}
	if v := os.Getenv("PREDICTOR_ENABLED"); v != "" {
		cfg.Predictor.Enabled = v == "true" || v == "1"
	}

	if endpoint := os.Getenv("LEDGER_ENDPOINT"); endpoint != "" {
		cfg.Ledger.Endpoint = endpoint
		cfg.Ledger.Enabled = true
	}
}
