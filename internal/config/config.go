package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const envPrefix = "GH_STAR_SCOUT_"

// Config represents the application configuration
type Config struct {
	GitHub  GitHubConfig  `json:"github"  envPrefix:"GITHUB_"`
	LLM     LLMConfig     `json:"llm"     envPrefix:"LLM_"`
	View    ViewConfig    `json:"view"    envPrefix:"VIEW_"`
	Logging LoggingConfig `json:"logging"`
	Debug   DebugConfig   `json:"debug"`
}

// GitHubConfig controls access to the star listing endpoint
type GitHubConfig struct {
	Host         string `json:"host"          env:"HOST"          envDefault:"github.com"`
	APIURL       string `json:"api_url"       env:"API_URL"       envDefault:"https://api.github.com"`
	Token        string `json:"-"             env:"TOKEN"`
	UseGHAuth    bool   `json:"use_gh_auth"   env:"USE_GH_AUTH"   envDefault:"true"`
	PageInterval string `json:"page_interval" env:"PAGE_INTERVAL" envDefault:"100ms"`
	Timeout      string `json:"timeout"       env:"TIMEOUT"       envDefault:"30s"`
}

// LLMConfig selects and configures the completion providers
type LLMConfig struct {
	Provider      string   `json:"provider"        env:"PROVIDER"        envDefault:"gemini"`
	Fallback      []string `json:"fallback"        env:"FALLBACK"        envDefault:"openai" envSeparator:","`
	GeminiAPIKey  string   `json:"-"               env:"GEMINI_API_KEY"`
	GeminiModel   string   `json:"gemini_model"    env:"GEMINI_MODEL"    envDefault:"gemini-3-flash-preview"`
	GeminiBaseURL string   `json:"gemini_base_url" env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/"`
	OpenAIAPIKey  string   `json:"-"               env:"OPENAI_API_KEY"`
	OpenAIModel   string   `json:"openai_model"    env:"OPENAI_MODEL"    envDefault:"gpt-4o-mini"`
	OpenAIBaseURL string   `json:"openai_base_url" env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Timeout       string   `json:"timeout"         env:"TIMEOUT"         envDefault:"120s"`
}

// ViewConfig tunes the star list views
type ViewConfig struct {
	PageSize           int `json:"page_size"           env:"PAGE_SIZE"           envDefault:"12"`
	InsightConcurrency int `json:"insight_concurrency" env:"INSIGHT_CONCURRENCY" envDefault:"4"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level     string `json:"level"      env:"LOG_LEVEL"      envDefault:"info"`                                   // debug, info, warn, error
	Format    string `json:"format"     env:"LOG_FORMAT"     envDefault:"text"`                                   // text, json
	Output    string `json:"output"     env:"LOG_OUTPUT"     envDefault:"stderr"`                                 // stdout, stderr, file
	File      string `json:"file"       env:"LOG_FILE"       envDefault:"~/.config/gh-star-scout/logs/app.log"` // log file path when output is file
	AddSource bool   `json:"add_source" env:"LOG_ADD_SOURCE" envDefault:"false"`                                  // add source file and line info to logs
}

// DebugConfig represents debug configuration
type DebugConfig struct {
	Enabled  bool `json:"enabled"   env:"DEBUG"           envDefault:"false"`
	Verbose  bool `json:"verbose"   env:"VERBOSE"         envDefault:"false"`
	TraceAPI bool `json:"trace_api" env:"DEBUG_TRACE_API" envDefault:"false"`
}

// LoadConfig loads configuration from file, environment variables, and command-line flags
func LoadConfig() (*Config, error) {
	return LoadConfigWithOverrides(nil)
}

// LoadConfigWithOverrides loads configuration with optional command-line flag overrides.
// Precedence, lowest first: defaults, config file, environment, flags.
func LoadConfigWithOverrides(flagOverrides map[string]interface{}) (*Config, error) {
	// A missing .env is the normal case
	_ = godotenv.Load()

	config, err := parseEnv(map[string]string{})
	if err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		if err := loadConfigFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := applyEnvironment(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	applyConventionalKeys(config)

	if flagOverrides != nil {
		if err := applyFlagOverrides(config, flagOverrides); err != nil {
			return nil, fmt.Errorf("failed to apply flag overrides: %w", err)
		}
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.ExpandAllPaths()

	return config, nil
}

// Default returns the configuration produced by defaults alone
func Default() *Config {
	config, err := parseEnv(map[string]string{})
	if err != nil {
		// envDefault values are compile-time constants; failing here is a programming error
		panic(err)
	}

	return config
}

func parseEnv(environment map[string]string) (*Config, error) {
	config := &Config{}
	if err := env.ParseWithOptions(config, env.Options{
		Prefix:      envPrefix,
		Environment: environment,
	}); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvironment overlays values that the environment changed from their defaults.
// env fills unset variables with defaults, so parsing straight into config would
// discard whatever the config file provided.
func applyEnvironment(config *Config) error {
	fromEnv, err := parseEnv(env.ToMap(os.Environ()))
	if err != nil {
		return err
	}

	defaults, err := parseEnv(map[string]string{})
	if err != nil {
		return err
	}

	mergeChanged(
		reflect.ValueOf(config).Elem(),
		reflect.ValueOf(fromEnv).Elem(),
		reflect.ValueOf(defaults).Elem(),
	)

	return nil
}

func mergeChanged(target, source, baseline reflect.Value) {
	if target.Kind() == reflect.Struct {
		for i := range target.NumField() {
			mergeChanged(target.Field(i), source.Field(i), baseline.Field(i))
		}

		return
	}

	if !reflect.DeepEqual(source.Interface(), baseline.Interface()) {
		target.Set(source)
	}
}

// applyConventionalKeys falls back to the provider SDKs' usual variable names
func applyConventionalKeys(config *Config) {
	if config.LLM.GeminiAPIKey == "" {
		config.LLM.GeminiAPIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY")
	}

	if config.LLM.OpenAIAPIKey == "" {
		config.LLM.OpenAIAPIKey = firstEnv("OPENAI_API_KEY")
	}

	if config.GitHub.Token == "" {
		config.GitHub.Token = firstEnv("GH_TOKEN", "GITHUB_TOKEN")
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}

	return ""
}

// loadConfigFromFile loads configuration from a JSON file
func loadConfigFromFile(config *Config, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeConfigs(config, &fileConfig)

	return nil
}

// applyFlagOverrides applies command-line flag overrides to configuration
func applyFlagOverrides(config *Config, overrides map[string]interface{}) error {
	for key, value := range overrides {
		switch key {
		case "log-level":
			if str, ok := value.(string); ok && str != "" {
				config.Logging.Level = str
			}
		case "log-format":
			if str, ok := value.(string); ok && str != "" {
				config.Logging.Format = str
			}
		case "verbose":
			if b, ok := value.(bool); ok && b {
				config.Debug.Verbose = b
			}
		case "debug":
			if b, ok := value.(bool); ok && b {
				config.Debug.Enabled = b
			}
		case "provider":
			if str, ok := value.(string); ok && str != "" {
				config.LLM.Provider = str
			}
		case "token":
			if str, ok := value.(string); ok && str != "" {
				config.GitHub.Token = str
			}
		default:
			return fmt.Errorf("unknown override %q", key)
		}
	}

	return nil
}

// mergeConfigs merges non-zero source values into target
func mergeConfigs(target, source *Config) {
	var mergeValues func(t, s reflect.Value)
	mergeValues = func(t, s reflect.Value) {
		if t.Kind() != s.Kind() {
			return
		}

		if t.Kind() == reflect.Struct {
			for i := range s.NumField() {
				mergeValues(t.Field(i), s.Field(i))
			}
		} else if !s.IsZero() {
			t.Set(s)
		}
	}

	mergeValues(reflect.ValueOf(target).Elem(), reflect.ValueOf(source).Elem())
}

// validateConfig validates the configuration for common errors
func validateConfig(config *Config) error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf(
			"invalid log level: %s (must be debug, info, warn, or error)",
			config.Logging.Level,
		)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", config.Logging.Format)
	}

	validLogOutputs := map[string]bool{
		"stdout": true, "stderr": true, "file": true,
	}
	if !validLogOutputs[strings.ToLower(config.Logging.Output)] {
		return fmt.Errorf(
			"invalid log output: %s (must be stdout, stderr, or file)",
			config.Logging.Output,
		)
	}

	validProviders := map[string]bool{
		"gemini": true, "openai": true,
	}
	if !validProviders[strings.ToLower(config.LLM.Provider)] {
		return fmt.Errorf("invalid LLM provider: %s (must be gemini or openai)", config.LLM.Provider)
	}

	for _, name := range config.LLM.Fallback {
		if !validProviders[strings.ToLower(strings.TrimSpace(name))] {
			return fmt.Errorf("invalid fallback LLM provider: %s", name)
		}
	}

	durations := map[string]string{
		"github page interval": config.GitHub.PageInterval,
		"github timeout":       config.GitHub.Timeout,
		"llm timeout":          config.LLM.Timeout,
	}
	for name, value := range durations {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %s", name, value)
		}

		if d < 0 {
			return fmt.Errorf("%s must not be negative: %s", name, value)
		}
	}

	if config.View.PageSize <= 0 {
		return fmt.Errorf("view page size must be positive: %d", config.View.PageSize)
	}

	if config.View.InsightConcurrency <= 0 {
		return fmt.Errorf(
			"insight concurrency must be positive: %d",
			config.View.InsightConcurrency,
		)
	}

	return nil
}

// PageIntervalDuration returns the pause enforced between star page requests
func (g GitHubConfig) PageIntervalDuration() time.Duration {
	return mustDuration(g.PageInterval)
}

// TimeoutDuration returns the per-request HTTP timeout for GitHub
func (g GitHubConfig) TimeoutDuration() time.Duration {
	return mustDuration(g.Timeout)
}

// TimeoutDuration returns the per-request timeout for LLM providers
func (l LLMConfig) TimeoutDuration() time.Duration {
	return mustDuration(l.Timeout)
}

// mustDuration parses an already validated duration, treating bad input as zero
func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}

	return d
}

// getConfigPath returns the path to the configuration file
func getConfigPath() string {
	if configPath := os.Getenv(envPrefix + "CONFIG"); configPath != "" {
		return expandPath(configPath)
	}

	return filepath.Join(GetConfigDir(), "config.json")
}

// expandPath expands ~ to home directory in file paths
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// ExpandAllPaths expands all paths in the configuration
func (c *Config) ExpandAllPaths() {
	c.Logging.File = expandPath(c.Logging.File)
}

// GetConfigDir returns the configuration directory
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".config/gh-star-scout"
	}

	return filepath.Join(homeDir, ".config", "gh-star-scout")
}
