// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type QueueConfig struct {
	Name        string        `yaml:"name"`
	PollTimeout time.Duration `yaml:"poll_timeout"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type ExtractConfig struct {
	GeminiKey      string        `yaml:"gemini_key"`
	Model          string        `yaml:"model"`
	OpenAIKey      string        `yaml:"openai_key"`
	OpenAIBaseURL  string        `yaml:"openai_base_url"`
	OpenAIModel    string        `yaml:"openai_model"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxAttempts    int           `yaml:"max_attempts"`
}

type ReplicateConfig struct {
	APIToken     string        `yaml:"api_token"`
	GimpModel    string        `yaml:"gimp_model"`
	VideoModel   string        `yaml:"video_model"`
	GimpTimeout  time.Duration `yaml:"gimp_timeout"`
	GimpPoll     time.Duration `yaml:"gimp_poll"`
	VideoTimeout time.Duration `yaml:"video_timeout"`
	VideoPoll    time.Duration `yaml:"video_poll"`
}

type StorageConfig struct {
	Bucket    string        `yaml:"bucket"`
	SignedTTL time.Duration `yaml:"signed_ttl"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Queue     QueueConfig     `yaml:"queue"`
	Auth      AuthConfig      `yaml:"auth"`
	Extract   ExtractConfig   `yaml:"extract"`
	Replicate ReplicateConfig `yaml:"replicate"`
	Storage   StorageConfig   `yaml:"storage"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Queue.Name == "" {
		cfg.Queue.Name = "jobs"
	}
	if cfg.Queue.PollTimeout <= 0 {
		cfg.Queue.PollTimeout = time.Second
	}
	if cfg.Extract.Model == "" {
		cfg.Extract.Model = "gemini-2.5-flash"
	}
	if cfg.Extract.OpenAIModel == "" {
		cfg.Extract.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.Extract.RequestTimeout <= 0 {
		cfg.Extract.RequestTimeout = 30 * time.Second
	}
	if cfg.Extract.MaxAttempts <= 0 {
		cfg.Extract.MaxAttempts = 3
	}
	if cfg.Replicate.GimpTimeout <= 0 {
		cfg.Replicate.GimpTimeout = 900 * time.Second
	}
	if cfg.Replicate.GimpPoll <= 0 {
		cfg.Replicate.GimpPoll = 2 * time.Second
	}
	if cfg.Replicate.VideoTimeout <= 0 {
		cfg.Replicate.VideoTimeout = 1800 * time.Second
	}
	if cfg.Replicate.VideoPoll <= 0 {
		cfg.Replicate.VideoPoll = 5 * time.Second
	}
	if cfg.Storage.SignedTTL <= 0 {
		cfg.Storage.SignedTTL = time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
