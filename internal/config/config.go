// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL        = "https://api.cardinity.com/v1"
	DefaultTimeout        = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = time.Second

	EnvConsumerKey    = "CARDINITY_CONSUMER_KEY"
	EnvConsumerSecret = "CARDINITY_CONSUMER_SECRET"
	EnvBaseURL        = "CARDINITY_BASE_URL"
)

type RuntimeConfig struct {
	Dev bool
}

type GatewayConfig struct {
	BaseURL        string        `yaml:"base_url" validate:"required,url"`
	ConsumerKey    string        `yaml:"consumer_key" validate:"required"`
	ConsumerSecret string        `yaml:"consumer_secret" validate:"required"`
	Timeout        time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxRetries     *int          `yaml:"max_retries" validate:"omitempty,min=0,max=10"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" validate:"gte=0"`
}

// Retries returns the configured retry budget, DefaultMaxRetries when unset.
func (g GatewayConfig) Retries() int {
	if g.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *g.MaxRetries
}

type LogConfig struct {
	Level    string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format   string `yaml:"format" validate:"omitempty,oneof=json console"`
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" validate:"omitempty,hostname_port"`
}

type Config struct {
	Gateway GatewayConfig `yaml:"gateway"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (skipped when path is empty),
// applies CARDINITY_* environment overrides and defaults, then validates.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	// defaults
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = DefaultBaseURL
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = DefaultTimeout
	}
	if cfg.Gateway.RetryBaseDelay == 0 {
		cfg.Gateway.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvConsumerKey); v != "" {
		cfg.Gateway.ConsumerKey = v
	}
	if v := os.Getenv(EnvConsumerSecret); v != "" {
		cfg.Gateway.ConsumerSecret = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.Gateway.BaseURL = v
	}
}

// Validate checks cfg against its struct tags. Field names in the error use
// the YAML path, e.g. "gateway.consumer_key is required".
func Validate(cfg *Config) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validatorv10.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func describe(fe validatorv10.FieldError) string {
	// Namespace is "Config.gateway.consumer_key"; drop the root type.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "url":
		return field + " must be an absolute URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "hostname_port":
		return field + " must be host:port"
	default:
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
}
