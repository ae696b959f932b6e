package config

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	FHIRAppID       string        `mapstructure:"FHIR_APP_ID"`
	FHIRBaseURL     string        `mapstructure:"FHIR_BASE_URL"`
	FHIRTimeout     time.Duration `mapstructure:"FHIR_TIMEOUT"`
	FHIRBearerToken string        `mapstructure:"FHIR_BEARER_TOKEN"`
	CSRFEnabled     bool          `mapstructure:"CSRF_ENABLED"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit       string        `mapstructure:"BODY_LIMIT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("FHIR_APP_ID", "my_web_app")
	v.SetDefault("FHIR_BASE_URL", "http://127.0.0.1:8080/fhir/")
	v.SetDefault("FHIR_TIMEOUT", "30s")
	v.SetDefault("CSRF_ENABLED", true)
	v.SetDefault("REQUEST_TIMEOUT", "60s")
	v.SetDefault("BODY_LIMIT", "64K")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("FHIR_APP_ID")
	v.BindEnv("FHIR_BASE_URL")
	v.BindEnv("FHIR_TIMEOUT")
	v.BindEnv("FHIR_BEARER_TOKEN")
	v.BindEnv("CSRF_ENABLED")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("BODY_LIMIT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the initial FHIR target is usable and that the
// timeouts are positive. The URL check only applies at startup; targets set
// later through the web form are accepted unvalidated.
func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "production" {
		return fmt.Errorf("ENV must be \"development\" or \"production\", got %q", c.Env)
	}
	if c.FHIRBaseURL == "" {
		return fmt.Errorf("FHIR_BASE_URL is required")
	}
	u, err := url.Parse(c.FHIRBaseURL)
	if err != nil {
		return fmt.Errorf("FHIR_BASE_URL is not a valid URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("FHIR_BASE_URL must be an absolute URL, got %q", c.FHIRBaseURL)
	}
	if c.FHIRTimeout <= 0 {
		return fmt.Errorf("FHIR_TIMEOUT must be positive, got %s", c.FHIRTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if _, err := ParseByteSize(c.BodyLimit); err != nil {
		return fmt.Errorf("BODY_LIMIT: %w", err)
	}
	return nil
}

// BodyLimitBytes returns BODY_LIMIT in bytes. It is only meaningful on a
// Config that passed Validate.
func (c *Config) BodyLimitBytes() int64 {
	n, _ := ParseByteSize(c.BodyLimit)
	return n
}

// ParseByteSize parses sizes such as "512", "64K", "1M" or "2GB". Suffixes
// are case-insensitive and binary (K = 1024). The result must be positive.
func ParseByteSize(s string) (int64, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimSuffix(v, "B")

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(v, "K"):
		multiplier = 1 << 10
	case strings.HasSuffix(v, "M"):
		multiplier = 1 << 20
	case strings.HasSuffix(v, "G"):
		multiplier = 1 << 30
	}
	if multiplier > 1 {
		v = v[:len(v)-1]
	} else if v != strings.ToUpper(strings.TrimSpace(s)) {
		// A bare "B" suffix without a unit in front of it.
		return 0, fmt.Errorf("invalid size %q", s)
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 || n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n * multiplier, nil
}
