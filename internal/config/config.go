package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/osmarcav/priority-graph/internal/engine"
)

// Config is the complete priograph configuration.
type Config struct {
	Weights   engine.Weights  `mapstructure:"weights"`
	Influence InfluenceConfig `mapstructure:"influence"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Report    ReportConfig    `mapstructure:"report"`
	Advisor   AdvisorConfig   `mapstructure:"advisor"`
}

// InfluenceConfig controls the influence propagation pass.
type InfluenceConfig struct {
	// Iterations is the number of propagation rounds (default: 20)
	Iterations int `mapstructure:"iterations"`
	// Damping is the propagation damping factor (default: 0.85)
	Damping float64 `mapstructure:"damping"`
}

// CacheConfig controls the descendant-index cache.
type CacheConfig struct {
	// Enabled turns the on-disk descendant cache on or off (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Dir is where the .priograph directory is created.
	// Empty means next to the strategy document.
	Dir string `mapstructure:"dir"`
}

// ReportConfig controls report assembly.
type ReportConfig struct {
	// TopN is how many ranked solutions the report shows (default: 10)
	TopN int `mapstructure:"top_n"`
}

// AdvisorConfig controls the Claude-backed advisor.
type AdvisorConfig struct {
	// Model overrides the advisor model. Empty uses the client default.
	Model string `mapstructure:"model"`
	// MaxTokens caps the advisor response length (default: 4096)
	MaxTokens int `mapstructure:"max_tokens"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Weights: engine.DefaultWeights(),
		Influence: InfluenceConfig{
			Iterations: 20,
			Damping:    0.85,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "",
		},
		Report: ReportConfig{
			TopN: 10,
		},
		Advisor: AdvisorConfig{
			Model:     "",
			MaxTokens: 4096,
		},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("weights.readiness", defaults.Weights.Readiness)
	viper.SetDefault("weights.influence", defaults.Weights.Influence)
	viper.SetDefault("weights.leverage", defaults.Weights.Leverage)
	viper.SetDefault("weights.safety", defaults.Weights.Safety)
	viper.SetDefault("weights.blocking", defaults.Weights.Blocking)
	viper.SetDefault("weights.risk_mitigation_bonus", defaults.Weights.RiskMitigationBonus)

	viper.SetDefault("influence.iterations", defaults.Influence.Iterations)
	viper.SetDefault("influence.damping", defaults.Influence.Damping)

	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.dir", defaults.Cache.Dir)

	viper.SetDefault("report.top_n", defaults.Report.TopN)

	viper.SetDefault("advisor.model", defaults.Advisor.Model)
	viper.SetDefault("advisor.max_tokens", defaults.Advisor.MaxTokens)
}

// Load reads the configuration from viper into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// ValidationError is a single configuration failure.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the Config for invalid values and returns every
// failure found.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	for _, w := range []struct {
		field string
		value float64
	}{
		{"weights.readiness", c.Weights.Readiness},
		{"weights.influence", c.Weights.Influence},
		{"weights.leverage", c.Weights.Leverage},
		{"weights.safety", c.Weights.Safety},
		{"weights.blocking", c.Weights.Blocking},
		{"weights.risk_mitigation_bonus", c.Weights.RiskMitigationBonus},
	} {
		if w.value < 0 {
			errors = append(errors, ValidationError{
				Field:   w.field,
				Value:   w.value,
				Message: "must be non-negative",
			})
		}
	}

	if c.Influence.Iterations < 1 {
		errors = append(errors, ValidationError{
			Field:   "influence.iterations",
			Value:   c.Influence.Iterations,
			Message: "must be at least 1",
		})
	}
	if c.Influence.Damping <= 0 || c.Influence.Damping >= 1 {
		errors = append(errors, ValidationError{
			Field:   "influence.damping",
			Value:   c.Influence.Damping,
			Message: "must be between 0 and 1 exclusive",
		})
	}

	if c.Report.TopN < 1 {
		errors = append(errors, ValidationError{
			Field:   "report.top_n",
			Value:   c.Report.TopN,
			Message: "must be at least 1",
		})
	}

	if c.Advisor.MaxTokens < 1 {
		errors = append(errors, ValidationError{
			Field:   "advisor.max_tokens",
			Value:   c.Advisor.MaxTokens,
			Message: "must be at least 1",
		})
	}

	return errors
}

// EngineOptions translates the influence settings into engine options.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		Iterations: c.Influence.Iterations,
		Damping:    c.Influence.Damping,
	}
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "priograph")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".priograph"
	}
	return filepath.Join(home, ".config", "priograph")
}

// ConfigFile returns the path to the config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
