// Package config loads server settings from defaults, an optional YAML file
// and QRS_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "QRS_"

var ErrInvalidConfig = errors.New("invalid configuration")

// Duration wraps time.Duration so it reads "5s" style strings from YAML and env.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	d.Duration = parsed
	return nil
}

// S3 holds the bucket settings used when Storage is "s3".
type S3 struct {
	Bucket         string `yaml:"bucket" env:"BUCKET"`
	Region         string `yaml:"region" env:"REGION"`
	AccessKeyID    string `yaml:"access_key_id" env:"ACCESS_KEY_ID"`
	SecretKey      string `yaml:"secret_key" env:"SECRET_KEY"`
	Endpoint       string `yaml:"endpoint" env:"ENDPOINT"`
	BaseURL        string `yaml:"base_url" env:"BASE_URL"`
	Prefix         string `yaml:"prefix" env:"PREFIX"`
	ForcePathStyle bool   `yaml:"force_path_style" env:"FORCE_PATH_STYLE"`
}

// Config holds all settings.
type Config struct {
	Port      string `yaml:"port" env:"PORT"`
	Env       string `yaml:"env" env:"ENV"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	CanvasSize        int      `yaml:"canvas_size" env:"CANVAS_SIZE"`
	RenderTimeout     Duration `yaml:"render_timeout" env:"RENDER_TIMEOUT"`
	RenderConcurrency int64    `yaml:"render_concurrency" env:"RENDER_CONCURRENCY"`
	MaxLogoBytes      int64    `yaml:"max_logo_bytes" env:"MAX_LOGO_BYTES"`
	UploadMemory      int64    `yaml:"upload_memory" env:"UPLOAD_MEMORY"`
	Encoder           string   `yaml:"encoder" env:"ENCODER"`

	Delivery  string `yaml:"delivery" env:"DELIVERY"`
	Storage   string `yaml:"storage" env:"STORAGE"`
	PublicDir string `yaml:"public_dir" env:"PUBLIC_DIR"`
	PublicURL string `yaml:"public_url" env:"PUBLIC_URL"`
	HistoryDB string `yaml:"history_db" env:"HISTORY_DB"`
	S3        S3     `yaml:"s3" envPrefix:"S3_"`
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() *Config {
	return &Config{
		Port:              "8080",
		Env:               "development",
		LogLevel:          "info",
		LogFormat:         "",
		CanvasSize:        512,
		RenderTimeout:     Duration{5 * time.Second},
		RenderConcurrency: 8,
		MaxLogoBytes:      2 << 20,
		UploadMemory:      1 << 20,
		Encoder:           "yeqown",
		Delivery:          "file",
		Storage:           "local",
		PublicDir:         "public/qr-codes",
		PublicURL:         "/qr-codes/",
		HistoryDB:         "data/history.db",
	}
}

// Load applies defaults, then the YAML file at path (skipped when path is
// empty or missing), then .env and QRS_* environment variables. A bare PORT
// variable is honored when QRS_PORT is not set.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// The .env file is optional.
	_ = godotenv.Load()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	if _, ok := os.LookupEnv(EnvPrefix + "PORT"); !ok {
		if port := os.Getenv("PORT"); port != "" {
			cfg.Port = port
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.CanvasSize <= 0 {
		errs = append(errs, fmt.Errorf("canvas_size must be positive, got %d", c.CanvasSize))
	}
	if c.RenderTimeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("render_timeout must be positive, got %s", c.RenderTimeout))
	}
	if c.RenderConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("render_concurrency must be positive, got %d", c.RenderConcurrency))
	}
	if c.MaxLogoBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_logo_bytes must be positive, got %d", c.MaxLogoBytes))
	}
	if c.UploadMemory <= 0 {
		errs = append(errs, fmt.Errorf("upload_memory must be positive, got %d", c.UploadMemory))
	}
	switch c.Encoder {
	case "yeqown", "skip2":
	default:
		errs = append(errs, fmt.Errorf("encoder must be yeqown or skip2, got %q", c.Encoder))
	}
	switch c.Delivery {
	case "dataurl":
	case "file":
		switch c.Storage {
		case "local":
			if c.PublicDir == "" {
				errs = append(errs, errors.New("public_dir is required for local storage"))
			}
		case "s3":
			if c.S3.Bucket == "" || c.S3.Region == "" {
				errs = append(errs, errors.New("s3.bucket and s3.region are required for s3 storage"))
			}
		default:
			errs = append(errs, fmt.Errorf("storage must be local or s3, got %q", c.Storage))
		}
	default:
		errs = append(errs, fmt.Errorf("delivery must be dataurl or file, got %q", c.Delivery))
	}
	switch c.LogFormat {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log_format must be json or text, got %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

// Addr returns the listen address for Port.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
