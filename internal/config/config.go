package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lehigh-university-libraries/artify/internal/providers"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint   = "https://api-inference.huggingface.co"
	DefaultModel      = "stabilityai/stable-diffusion-xl-base-1.0"
	DefaultPort       = "8888"
	DefaultGalleryKey = "artify.gallery"
)

// HuggingFace holds settings for the inference provider
type HuggingFace struct {
	APIKey     string               `yaml:"-"`
	Endpoint   string               `yaml:"endpoint"`
	Model      string               `yaml:"model"`
	Parameters providers.Parameters `yaml:"parameters"`
}

// Gallery holds settings for the local gallery mirror
type Gallery struct {
	Dir        string `yaml:"dir"`
	Key        string `yaml:"key"`
	QuotaBytes int64  `yaml:"quota_bytes"`
}

// Config holds all configuration for the application
type Config struct {
	Port        string      `yaml:"port"`
	HuggingFace HuggingFace `yaml:"huggingface"`
	Gallery     Gallery     `yaml:"gallery"`
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		Port: DefaultPort,
		HuggingFace: HuggingFace{
			Endpoint:   DefaultEndpoint,
			Model:      DefaultModel,
			Parameters: providers.DefaultParameters(),
		},
		Gallery: Gallery{
			Dir: defaultGalleryDir(),
			Key: DefaultGalleryKey,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence. A missing API key is not an error
// here; generation reports it per request.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.HuggingFace.APIKey = os.Getenv("HUGGINGFACE_API_KEY")
	if v := os.Getenv("HUGGINGFACE_MODEL"); v != "" {
		cfg.HuggingFace.Model = v
	}
	if v := os.Getenv("HUGGINGFACE_ENDPOINT"); v != "" {
		cfg.HuggingFace.Endpoint = v
	}
	if v := os.Getenv("ARTIFY_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("ARTIFY_GALLERY_DIR"); v != "" {
		cfg.Gallery.Dir = v
	}
	if v := os.Getenv("ARTIFY_GALLERY_QUOTA"); v != "" {
		quota, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ARTIFY_GALLERY_QUOTA must be an integer: %w", err)
		}
		cfg.Gallery.QuotaBytes = quota
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that have no sensible fallback
func (c *Config) Validate() error {
	if c.HuggingFace.Endpoint == "" {
		return errors.New("huggingface endpoint is required")
	}
	if c.HuggingFace.Model == "" {
		return errors.New("huggingface model is required")
	}
	if err := c.HuggingFace.Parameters.Validate(); err != nil {
		return fmt.Errorf("invalid generation parameters: %w", err)
	}
	if c.Gallery.Key == "" {
		return errors.New("gallery key is required")
	}
	if c.Gallery.QuotaBytes < 0 {
		return errors.New("gallery quota must not be negative")
	}
	return nil
}

func defaultGalleryDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".artify"
	}
	return filepath.Join(dir, "artify")
}
