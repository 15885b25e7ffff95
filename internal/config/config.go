package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App           App           `mapstructure:"app"`
	Archive       Archive       `mapstructure:"archive"`
	Storage       Storage       `mapstructure:"storage"`
	AI            AI            `mapstructure:"ai"`
	Eligibility   Eligibility   `mapstructure:"eligibility"`
	Generation    Generation    `mapstructure:"generation"`
	Logging       Logging       `mapstructure:"logging"`
	Observability Observability `mapstructure:"observability"`
}

// App holds general application configuration
type App struct {
	DataDir    string `mapstructure:"data_dir"`
	LockFile   string `mapstructure:"lock_file"`
	ConfigFile string `mapstructure:"config_file"`
}

// Archive holds the clue archive location
type Archive struct {
	Path string `mapstructure:"path"`
}

// Storage holds game and ledger persistence configuration
type Storage struct {
	Backend    string `mapstructure:"backend"` // file, sqlite or memory
	GamesDir   string `mapstructure:"games_dir"`
	LedgerPath string `mapstructure:"ledger_path"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Eligibility holds clue screening configuration
type Eligibility struct {
	CallTimeout         string `mapstructure:"call_timeout"`
	PaceInterval        string `mapstructure:"pace_interval"`
	Concurrency         int    `mapstructure:"concurrency"`
	CandidateCategories int    `mapstructure:"candidate_categories"` // 0 = all
	Rewrite             bool   `mapstructure:"rewrite"`
}

// Generation holds game generation configuration
type Generation struct {
	Seed uint64 `mapstructure:"seed"` // 0 = random
}

// Logging holds logging configuration
type Logging struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// Observability holds analytics configuration
type Observability struct {
	PostHog PostHogConfig `mapstructure:"posthog"`
}

// PostHogConfig holds PostHog configuration
type PostHogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Host    string `mapstructure:"host"`
}

// minCandidateCategories is the smallest useful candidate narrowing: one
// category per round.
const minCandidateCategories = 8

// Load loads the configuration from defaults, the config file, .env and the
// environment. Each call uses a fresh viper instance.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	v := viper.New()

	// Configure viper
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".dailytrivia")
		v.SetConfigType("yaml")
	}

	// Set defaults
	setDefaults(v)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Bind environment variables
	bindEnvironmentVariables(v)

	// Enable automatic environment variable reading
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal into struct
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = v.ConfigFileUsed()

	// Apply post-processing
	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.data_dir", ".dailytrivia")
	v.SetDefault("app.lock_file", "")

	// Archive defaults
	v.SetDefault("archive.path", "data/clues.json")

	// Storage defaults
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.games_dir", "data/games")
	v.SetDefault("storage.ledger_path", "data/used-clues.json")
	v.SetDefault("storage.sqlite_path", ".dailytrivia/dailytrivia.db")

	// AI defaults
	v.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")

	// Eligibility defaults
	v.SetDefault("eligibility.call_timeout", "20s")
	v.SetDefault("eligibility.pace_interval", "250ms")
	v.SetDefault("eligibility.concurrency", 4)
	v.SetDefault("eligibility.candidate_categories", 0)
	v.SetDefault("eligibility.rewrite", true)

	// Generation defaults
	v.SetDefault("generation.seed", 0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	// Observability defaults
	v.SetDefault("observability.posthog.enabled", false)
	v.SetDefault("observability.posthog.host", "https://us.i.posthog.com")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables(v *viper.Viper) {
	// Gemini API key - support multiple formats
	bindEnvKeys(v, "ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys(v, "ai.gemini.model", []string{
		"GEMINI_MODEL",
	})

	bindEnvKeys(v, "observability.posthog.api_key", []string{
		"POSTHOG_API_KEY",
	})

	bindEnvKeys(v, "observability.posthog.host", []string{
		"POSTHOG_HOST",
	})

	bindEnvKeys(v, "archive.path", []string{
		"DAILYTRIVIA_ARCHIVE",
		"CLUE_ARCHIVE",
	})

	bindEnvKeys(v, "storage.backend", []string{
		"DAILYTRIVIA_STORAGE",
	})

	bindEnvKeys(v, "logging.level", []string{
		"LOG_LEVEL",
		"DAILYTRIVIA_LOG_LEVEL",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(v *viper.Viper, viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			v.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	// Expand paths
	paths := []*string{
		&config.App.DataDir,
		&config.App.LockFile,
		&config.Archive.Path,
		&config.Storage.GamesDir,
		&config.Storage.LedgerPath,
		&config.Storage.SQLitePath,
		&config.Logging.FilePath,
	}
	for _, p := range paths {
		if *p != "" {
			*p = expandPath(*p)
		}
	}
	if config.App.LockFile == "" {
		config.App.LockFile = filepath.Join(config.App.DataDir, "generate.lock")
	}

	config.Storage.Backend = strings.ToLower(strings.TrimSpace(config.Storage.Backend))
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
	config.Logging.Output = strings.ToLower(strings.TrimSpace(config.Logging.Output))

	// Validate durations
	durations := map[string]string{
		"eligibility.call_timeout":  config.Eligibility.CallTimeout,
		"eligibility.pace_interval": config.Eligibility.PaceInterval,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig checks values that have a fixed set of options
func validateConfig(config *Config) error {
	var errors []string

	switch config.Storage.Backend {
	case "file":
		if config.Storage.GamesDir == "" || config.Storage.LedgerPath == "" {
			errors = append(errors, "File storage requires storage.games_dir and storage.ledger_path")
		}
	case "sqlite":
		if config.Storage.SQLitePath == "" {
			errors = append(errors, "SQLite storage requires storage.sqlite_path")
		}
	case "memory":
	default:
		errors = append(errors, fmt.Sprintf("Unknown storage backend: %s. Supported: file, sqlite, memory", config.Storage.Backend))
	}

	if config.Eligibility.Concurrency < 1 {
		errors = append(errors, "eligibility.concurrency must be at least 1")
	}
	if n := config.Eligibility.CandidateCategories; n != 0 && n < minCandidateCategories {
		errors = append(errors, fmt.Sprintf("eligibility.candidate_categories must be 0 (all) or at least %d", minCandidateCategories))
	}

	switch config.Logging.Format {
	case "json", "console", "text":
	default:
		errors = append(errors, fmt.Sprintf("Unknown logging format: %s. Supported: json, console", config.Logging.Format))
	}

	switch config.Logging.Output {
	case "stderr", "stdout":
	case "file":
		if config.Logging.FilePath == "" {
			errors = append(errors, "logging.file_path is required when logging.output is file")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown logging output: %s. Supported: stderr, stdout, file", config.Logging.Output))
	}

	if config.Observability.PostHog.Enabled && config.Observability.PostHog.APIKey == "" {
		errors = append(errors, "PostHog enabled but missing API key. Set POSTHOG_API_KEY or observability.posthog.api_key")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// HasGeminiKey reports whether a usable Gemini API key is configured. It
// selects the LLM screening path over the local heuristics.
func (c *Config) HasGeminiKey() bool {
	return isValidAPIKey(c.AI.Gemini.APIKey)
}

// CallTimeoutDuration returns the per-call collaborator timeout.
func (e Eligibility) CallTimeoutDuration() time.Duration {
	return parseDuration(e.CallTimeout)
}

// PaceIntervalDuration returns the minimum spacing between LLM calls.
func (e Eligibility) PaceIntervalDuration() time.Duration {
	return parseDuration(e.PaceInterval)
}

// parseDuration parses a duration already checked by postProcessConfig.
func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, _ := time.ParseDuration(s)
	return d
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	// Check for common placeholder values
	placeholders := []string{
		"your-api-key", "your-gemini-key", "your-google-api-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}
