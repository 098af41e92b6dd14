package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "DASHBOARD_CONFIG"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Source    SourceConfig    `yaml:"source"`
	Logger    LoggerConfig    `yaml:"logger"`
	Security  SecurityConfig  `yaml:"security"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SourceConfig points at the remote sales API.
type SourceConfig struct {
	URL      string        `yaml:"url"`
	Timeout  time.Duration `yaml:"timeout"`
	Retries  int           `yaml:"retries"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `yaml:"enable_rate_limit"`
	RateLimitRPS    int      `yaml:"rate_limit_rps"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	TrustedProxies  []string `yaml:"trusted_proxies"`
}

// DashboardConfig holds the widget ranges offered in the sidebar.
type DashboardConfig struct {
	Regions           []string `yaml:"regions"`
	MinYear           int      `yaml:"min_year"`
	MaxYear           int      `yaml:"max_year"`
	DefaultTopSellers int      `yaml:"default_top_sellers"`
	TableRows         int      `yaml:"table_rows"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8501,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Source: SourceConfig{
			URL:      "https://labdados.com/produtos",
			Timeout:  15 * time.Second,
			Retries:  2,
			CacheTTL: time.Minute,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			EnableRateLimit: true,
			RateLimitRPS:    20,
			RateLimitBurst:  10,
			AllowedOrigins:  []string{"http://localhost:8501"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
		Dashboard: DashboardConfig{
			Regions:           []string{"Brasil", "Centro-Oeste", "Nordeste", "Norte", "Sudeste", "Sul"},
			MinYear:           2020,
			MaxYear:           2023,
			DefaultTopSellers: 5,
			TableRows:         100,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by DASHBOARD_CONFIG, a .env file and the process environment, in that order.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	c.Server.Host = getEnvString("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Source.URL = getEnvString("SOURCE_URL", c.Source.URL)
	c.Source.Timeout = getEnvDuration("SOURCE_TIMEOUT", c.Source.Timeout)
	c.Source.Retries = getEnvInt("SOURCE_RETRIES", c.Source.Retries)
	c.Source.CacheTTL = getEnvDuration("SOURCE_CACHE_TTL", c.Source.CacheTTL)

	c.Logger.Level = getEnvString("LOG_LEVEL", c.Logger.Level)
	c.Logger.Format = getEnvString("LOG_FORMAT", c.Logger.Format)

	c.Security.EnableRateLimit = getEnvBool("SECURITY_RATE_LIMIT_ENABLED", c.Security.EnableRateLimit)
	c.Security.RateLimitRPS = getEnvInt("SECURITY_RATE_LIMIT_RPS", c.Security.RateLimitRPS)
	c.Security.RateLimitBurst = getEnvInt("SECURITY_RATE_LIMIT_BURST", c.Security.RateLimitBurst)
	c.Security.AllowedOrigins = getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", c.Security.AllowedOrigins)
	c.Security.TrustedProxies = getEnvStringSlice("SECURITY_TRUSTED_PROXIES", c.Security.TrustedProxies)

	c.Dashboard.MinYear = getEnvInt("DASHBOARD_MIN_YEAR", c.Dashboard.MinYear)
	c.Dashboard.MaxYear = getEnvInt("DASHBOARD_MAX_YEAR", c.Dashboard.MaxYear)
	c.Dashboard.DefaultTopSellers = getEnvInt("DASHBOARD_TOP_SELLERS", c.Dashboard.DefaultTopSellers)
	c.Dashboard.TableRows = getEnvInt("DASHBOARD_TABLE_ROWS", c.Dashboard.TableRows)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Source.URL == "" {
		return fmt.Errorf("source URL cannot be empty")
	}

	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source timeout must be positive")
	}

	if c.Source.Retries < 0 {
		return fmt.Errorf("source retries cannot be negative")
	}

	if c.Source.CacheTTL < 0 {
		return fmt.Errorf("source cache TTL cannot be negative")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if len(c.Dashboard.Regions) == 0 {
		return fmt.Errorf("at least one region must be configured")
	}

	if c.Dashboard.MinYear > c.Dashboard.MaxYear {
		return fmt.Errorf("dashboard year range is empty: %d > %d", c.Dashboard.MinYear, c.Dashboard.MaxYear)
	}

	if c.Dashboard.DefaultTopSellers < 2 || c.Dashboard.DefaultTopSellers > 10 {
		return fmt.Errorf("default top sellers must be between 2 and 10, got %d", c.Dashboard.DefaultTopSellers)
	}

	if c.Dashboard.TableRows <= 0 {
		return fmt.Errorf("table rows must be positive")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
