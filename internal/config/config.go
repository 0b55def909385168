package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Session struct {
		Path string `yaml:"path"`
	} `yaml:"session"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Play struct {
		FeedbackDelay string `yaml:"feedback_delay"`
	} `yaml:"play"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	cfg := Config{}
	cfg.API.BaseURL = "http://localhost:8080"
	cfg.Session.Path = defaultSessionPath()
	return cfg
}

// Load reads YAML config from path. A missing file is not an error: the
// client runs fine on defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = defaultSessionPath()
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quiztour/session.yaml"
	}
	return filepath.Join(home, ".quiztour", "session.yaml")
}
