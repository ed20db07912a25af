// Package config loads the service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http     HTTPConfig     `yaml:"http"`
	Model    ModelConfig    `yaml:"model"`
	Response ResponseConfig `yaml:"response"`
	Static   StaticConfig   `yaml:"static"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `yaml:"read_timeout" validate:"min=0"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" validate:"min=1"`
	AllowedOrigins []string      `yaml:"allowed_origins" validate:"min=1"`
}

type ModelConfig struct {
	Path             string   `yaml:"path" validate:"required"`
	Strategies       []string `yaml:"strategies" validate:"min=1,dive,oneof=pipeline gob"`
	PredictionColumn string   `yaml:"prediction_column"`
	CandidateColumns []string `yaml:"candidate_columns"`
	CacheSize        int      `yaml:"cache_size" validate:"min=0"`
}

type ResponseConfig struct {
	Round    bool `yaml:"round"`
	Decimals int  `yaml:"decimals" validate:"min=0,max=10"`
}

type StaticConfig struct {
	IndexPath string `yaml:"index_path"`
	Watch     bool   `yaml:"watch"`
	Dir       string `yaml:"dir"`
}

type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" validate:"oneof=json console"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"min=0"`
	MaxBackups int    `yaml:"max_backups" validate:"min=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"min=0"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Http: HTTPConfig{
			Port:           8000,
			ReadTimeout:    30 * time.Second,
			MaxBodyBytes:   1 << 20,
			AllowedOrigins: []string{"*"},
		},
		Model: ModelConfig{
			Path:             "models/insurance_model.json",
			Strategies:       []string{"pipeline", "gob"},
			CandidateColumns: []string{"prediction_label", "prediction", "Label"},
		},
		Response: ResponseConfig{
			Round:    true,
			Decimals: 2,
		},
		Static: StaticConfig{
			Dir: "static",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	config := Default()
	if path != "" {
		file, err := os.Open(path)
		switch {
		case err == nil:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(config); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, err
		}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
