package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Tarra732/fusionfx-forever/internal/risk"
)

// Config represents the complete configuration for the risk kernel.
type Config struct {
	Environment string `json:"environment"`
	LogLevel    string `json:"log_level"`
	LogDir      string `json:"log_dir"`

	// Risk limits and penalty curve
	Risk RiskConfig `json:"risk"`

	// Evaluation loop timing
	Kernel KernelConfig `json:"kernel"`

	// Portfolio history storage
	Storage StorageConfig `json:"storage"`

	// Exchange account feed (optional)
	Exchange ExchangeConfig `json:"exchange"`

	// Prometheus and health endpoints
	Monitoring MonitoringConfig `json:"monitoring"`

	// Alert channels (optional)
	Notifications *NotificationConfig `json:"notifications,omitempty"`
}

// RiskConfig holds the risk limits and the VIX penalty curve. The
// penalty thresholds are pointers so an explicit 0, which disables the
// penalty, is distinguishable from an absent field.
type RiskConfig struct {
	BaseRisk               float64               `json:"base_risk"`                // Fraction of balance risked per trade
	MaxDrawdown            float64               `json:"max_drawdown"`             // Drawdown fraction that forces emergency
	MaxPositions           int                   `json:"max_positions"`            // Concurrent open position ceiling
	MaxRiskPerPair         float64               `json:"max_risk_per_pair"`        // Per-pair exposure fraction
	MaxCorrelationExposure float64               `json:"max_correlation_exposure"` // Correlated-cluster exposure fraction
	WinRateThreshold       *float64              `json:"win_rate_threshold,omitempty"`
	SharpeThreshold        *float64              `json:"sharpe_threshold,omitempty"`
	VixCurve               []risk.VixPenaltyRule `json:"vix_curve,omitempty"`
}

// KernelConfig holds evaluation loop timing.
type KernelConfig struct {
	IntervalSeconds     int `json:"interval_seconds"`      // Seconds between evaluation cycles
	FetchTimeoutSeconds int `json:"fetch_timeout_seconds"` // Per-collaborator fetch deadline
	WindowDays          int `json:"window_days"`           // Rolling window for portfolio metrics
}

// StorageConfig selects the portfolio history backend.
type StorageConfig struct {
	Backend string `json:"backend"` // "file" or "redis"
	DataDir string `json:"data_dir"`

	RedisAddr     string `json:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty"`
}

// ExchangeConfig holds the Bybit account feed credentials. Leave the key
// empty to run against the simulated balance feed.
type ExchangeConfig struct {
	APIKey    string `json:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty"`
	Testnet   bool   `json:"testnet"`
	Demo      bool   `json:"demo"`
}

// MonitoringConfig holds the metrics and health endpoints.
type MonitoringConfig struct {
	PrometheusPort int `json:"prometheus_port"`
	HealthPort     int `json:"health_port"`
}

// NotificationConfig holds alert channel settings.
type NotificationConfig struct {
	Enabled       bool   `json:"enabled"`
	TelegramToken string `json:"telegram_token,omitempty"`
	TelegramChat  string `json:"telegram_chat,omitempty"`
	TwilioSID     string `json:"twilio_sid,omitempty"`
	TwilioToken   string `json:"twilio_token,omitempty"`
	TwilioFrom    string `json:"twilio_from,omitempty"`
	TwilioTo      string `json:"twilio_to,omitempty"`
}

// Load reads a JSON config file, fills defaults, applies environment
// overrides and validates the result. An empty path loads pure defaults
// plus environment.
func Load(configFile string) (*Config, error) {
	cfg := &Config{}

	if configFile != "" {
		// Bare names resolve against the configs/ directory.
		if !strings.ContainsAny(configFile, "/\\") {
			configFile = filepath.Join("configs", configFile)
		}
		if !strings.HasSuffix(configFile, ".json") {
			configFile += ".json"
		}

		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.setDefaults()
	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Environment == "" {
		c.Environment = getEnv("ENV", "development")
	}
	if c.LogLevel == "" {
		c.LogLevel = getEnv("LOG_LEVEL", "info")
	}
	if c.LogDir == "" {
		c.LogDir = "logs"
	}

	limits := risk.DefaultLimits()
	if c.Risk.BaseRisk == 0 {
		c.Risk.BaseRisk = limits.BaseRisk
	}
	if c.Risk.MaxDrawdown == 0 {
		c.Risk.MaxDrawdown = limits.MaxDrawdown
	}
	if c.Risk.MaxPositions == 0 {
		c.Risk.MaxPositions = limits.MaxPositions
	}
	if c.Risk.MaxRiskPerPair == 0 {
		c.Risk.MaxRiskPerPair = limits.MaxRiskPerPair
	}
	if c.Risk.MaxCorrelationExposure == 0 {
		c.Risk.MaxCorrelationExposure = limits.MaxCorrelationExposure
	}
	if c.Risk.WinRateThreshold == nil {
		c.Risk.WinRateThreshold = &limits.WinRateThreshold
	}
	if c.Risk.SharpeThreshold == nil {
		c.Risk.SharpeThreshold = &limits.SharpeThreshold
	}
	if len(c.Risk.VixCurve) == 0 {
		c.Risk.VixCurve = risk.DefaultVixPenaltyCurve()
	}

	if c.Kernel.IntervalSeconds == 0 {
		c.Kernel.IntervalSeconds = 300
	}
	if c.Kernel.FetchTimeoutSeconds == 0 {
		c.Kernel.FetchTimeoutSeconds = 10
	}
	if c.Kernel.WindowDays == 0 {
		c.Kernel.WindowDays = 30
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.RedisAddr == "" {
		c.Storage.RedisAddr = "localhost:6379"
	}

	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 8080
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8081
	}
}

// applyEnvironmentOverrides lets deployment environments override the
// file without editing it. Credentials in particular should come from
// the environment.
func (c *Config) applyEnvironmentOverrides() {
	c.Risk.BaseRisk = getEnvFloat("RISK_BASE_RISK", c.Risk.BaseRisk)
	c.Risk.MaxDrawdown = getEnvFloat("RISK_MAX_DRAWDOWN", c.Risk.MaxDrawdown)
	c.Risk.MaxPositions = getEnvInt("RISK_MAX_POSITIONS", c.Risk.MaxPositions)

	c.Kernel.IntervalSeconds = getEnvInt("KERNEL_INTERVAL_SECONDS", c.Kernel.IntervalSeconds)

	c.Storage.Backend = getEnv("STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.RedisAddr = getEnv("REDIS_ADDR", c.Storage.RedisAddr)
	c.Storage.RedisPassword = getEnv("REDIS_PASSWORD", c.Storage.RedisPassword)

	c.Exchange.APIKey = getEnv("BYBIT_API_KEY", c.Exchange.APIKey)
	c.Exchange.APISecret = getEnv("BYBIT_API_SECRET", c.Exchange.APISecret)
	c.Exchange.Testnet = getEnvBool("BYBIT_TESTNET", c.Exchange.Testnet)
	c.Exchange.Demo = getEnvBool("BYBIT_DEMO", c.Exchange.Demo)

	c.Monitoring.PrometheusPort = getEnvInt("PROMETHEUS_PORT", c.Monitoring.PrometheusPort)
	c.Monitoring.HealthPort = getEnvInt("HEALTH_PORT", c.Monitoring.HealthPort)

	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		if c.Notifications == nil {
			c.Notifications = &NotificationConfig{Enabled: true}
		}
		c.Notifications.TelegramToken = token
		c.Notifications.TelegramChat = getEnv("TELEGRAM_CHAT_ID", c.Notifications.TelegramChat)
	}
	if sid := os.Getenv("TWILIO_SID"); sid != "" {
		if c.Notifications == nil {
			c.Notifications = &NotificationConfig{Enabled: true}
		}
		c.Notifications.TwilioSID = sid
		c.Notifications.TwilioToken = getEnv("TWILIO_TOKEN", c.Notifications.TwilioToken)
		c.Notifications.TwilioFrom = getEnv("TWILIO_FROM", c.Notifications.TwilioFrom)
		c.Notifications.TwilioTo = getEnv("TWILIO_TO", c.Notifications.TwilioTo)
	}
}

// Validate rejects configurations the kernel cannot run safely with.
func (c *Config) Validate() error {
	if err := c.Limits().Validate(); err != nil {
		return err
	}
	if err := risk.ValidateVixCurve(c.Risk.VixCurve); err != nil {
		return err
	}
	if c.Kernel.IntervalSeconds <= 0 {
		return fmt.Errorf("kernel interval must be positive, got %d", c.Kernel.IntervalSeconds)
	}
	if c.Kernel.WindowDays <= 0 {
		return fmt.Errorf("metrics window must be positive, got %d days", c.Kernel.WindowDays)
	}
	switch c.Storage.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("unknown storage backend %q (want file or redis)", c.Storage.Backend)
	}
	if c.Monitoring.PrometheusPort == c.Monitoring.HealthPort {
		return fmt.Errorf("prometheus and health ports must differ, both are %d", c.Monitoring.PrometheusPort)
	}
	return nil
}

// Limits converts the risk section into the kernel's limit set. Unset
// threshold pointers fall back to the defaults so the conversion is
// total even before setDefaults runs.
func (c *Config) Limits() risk.Limits {
	defaults := risk.DefaultLimits()
	winRate := defaults.WinRateThreshold
	if c.Risk.WinRateThreshold != nil {
		winRate = *c.Risk.WinRateThreshold
	}
	sharpe := defaults.SharpeThreshold
	if c.Risk.SharpeThreshold != nil {
		sharpe = *c.Risk.SharpeThreshold
	}
	return risk.Limits{
		BaseRisk:               c.Risk.BaseRisk,
		MaxDrawdown:            c.Risk.MaxDrawdown,
		MaxPositions:           c.Risk.MaxPositions,
		MaxRiskPerPair:         c.Risk.MaxRiskPerPair,
		MaxCorrelationExposure: c.Risk.MaxCorrelationExposure,
		WinRateThreshold:       winRate,
		SharpeThreshold:        sharpe,
	}
}

// Interval returns the evaluation loop period.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Kernel.IntervalSeconds) * time.Second
}

// FetchTimeout returns the per-collaborator fetch deadline.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Kernel.FetchTimeoutSeconds) * time.Second
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
