// Package config loads and validates checker configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all checker configuration knobs loaded via Viper.
type Config struct {
	Notion   NotionConfig   `mapstructure:"notion"`
	Checker  CheckerConfig  `mapstructure:"checker"`
	Probe    ProbeConfig    `mapstructure:"probe"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// NotionConfig holds the record store credential, target collection and
// schema mapping.
type NotionConfig struct {
	Token            string `mapstructure:"token"`
	DatabaseID       string `mapstructure:"database_id"`
	TitleProperty    string `mapstructure:"title_property"`
	URLProperty      string `mapstructure:"url_property"`
	StatusProperty   string `mapstructure:"status_property"`
	StatusFilter     string `mapstructure:"status_filter"`
	LabelAvailable   string `mapstructure:"label_available"`
	LabelRedirect    string `mapstructure:"label_redirect"`
	LabelDead        string `mapstructure:"label_dead"`
	LabelError       string `mapstructure:"label_error"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	MaxRetries       int    `mapstructure:"max_retries"`
	BackoffInitialMs int    `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int    `mapstructure:"backoff_max_ms"`
}

// CheckerConfig governs batch execution.
type CheckerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	DelayMs     int `mapstructure:"delay_ms"`
}

// ProbeConfig selects and tunes the probing strategy.
type ProbeConfig struct {
	// Strategy is "http" for the HEAD/GET prober or "browser" for headless
	// Chrome.
	Strategy            string `mapstructure:"strategy"`
	UserAgent           string `mapstructure:"user_agent"`
	HeadTimeoutSeconds  int    `mapstructure:"head_timeout_seconds"`
	RetryTimeoutSeconds int    `mapstructure:"retry_timeout_seconds"`
	MaxRedirects        int    `mapstructure:"max_redirects"`
}

// HeadlessConfig configures the browser prober.
type HeadlessConfig struct {
	NavTimeoutSeconds int `mapstructure:"nav_timeout_seconds"`
}

// MetricsConfig toggles the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CHECKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to Unmarshal unless bound.
	_ = v.BindEnv("notion.token")
	_ = v.BindEnv("notion.database_id")
	_ = v.BindEnv("notion.status_filter")

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("notion.title_property", "Name")
	v.SetDefault("notion.url_property", "URL")
	v.SetDefault("notion.status_property", "Status")
	v.SetDefault("notion.label_available", "Available")
	v.SetDefault("notion.label_redirect", "Redirect")
	v.SetDefault("notion.label_dead", "Dead")
	v.SetDefault("notion.label_error", "Error")
	v.SetDefault("notion.timeout_seconds", 30)
	v.SetDefault("notion.max_retries", 2)
	v.SetDefault("notion.backoff_initial_ms", 250)
	v.SetDefault("notion.backoff_max_ms", 5000)
	v.SetDefault("checker.concurrency", 5)
	v.SetDefault("checker.delay_ms", 500)
	v.SetDefault("probe.strategy", "http")
	v.SetDefault("probe.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("probe.head_timeout_seconds", 10)
	v.SetDefault("probe.retry_timeout_seconds", 30)
	v.SetDefault("probe.max_redirects", 5)
	v.SetDefault("headless.nav_timeout_seconds", 20)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits. A missing token or
// database ID is a fatal startup condition.
func (c Config) Validate() error {
	if c.Notion.Token == "" {
		return fmt.Errorf("notion.token must be set")
	}
	if c.Notion.DatabaseID == "" {
		return fmt.Errorf("notion.database_id must be set")
	}
	if c.Checker.Concurrency <= 0 {
		return fmt.Errorf("checker.concurrency must be > 0")
	}
	if c.Probe.Strategy != "http" && c.Probe.Strategy != "browser" {
		return fmt.Errorf("probe.strategy must be \"http\" or \"browser\"")
	}
	if c.Probe.HeadTimeoutSeconds <= 0 {
		return fmt.Errorf("probe.head_timeout_seconds must be > 0")
	}
	if c.Metrics.Enabled && c.Metrics.Port <= 0 {
		return fmt.Errorf("metrics.port must be > 0 when metrics are enabled")
	}
	return nil
}

// Delay converts the configured inter-probe delay into a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.Checker.DelayMs) * time.Millisecond
}
