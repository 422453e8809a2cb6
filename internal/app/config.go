package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (ESHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (ESHOP_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	// ExternalMode selects the current-time source: "real" uses the system
	// clock, "stub" fetches time from the remote provider at ClockURL.
	ExternalMode string `default:"real" usage:"External system mode: real or stub" flag:"external-mode"`

	ERPURL          string        `default:"http://localhost:9001" env:"ERP_URL" usage:"Base URL of the ERP pricing system" flag:"erp-url"`
	TaxURL          string        `default:"http://localhost:9002" env:"TAX_URL" usage:"Base URL of the tax system" flag:"tax-url"`
	ClockURL        string        `default:"http://localhost:9003" env:"CLOCK_URL" usage:"Base URL of the stub time provider" flag:"clock-url"`
	UpstreamTimeout time.Duration `default:"10s" usage:"Timeout for each external system call" flag:"upstream-timeout"`

	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ESHOP",
		Files:     []string{"config.yaml", "/etc/eshop/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set ESHOP_DATABASE_URL or DATABASE_URL")
	}
	if cfg.ExternalMode != "real" && cfg.ExternalMode != "stub" {
		return nil, errors.Errorf("unknown external system mode: %q", cfg.ExternalMode)
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like DATABASE_URL and PORT to the application's
// ESHOP_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
