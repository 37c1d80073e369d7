// Package config loads the runtime configuration from YAML, with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	World struct {
		Name       string `yaml:"name"`
		Population int    `yaml:"population"`
		Seed       int64  `yaml:"seed"`
	} `yaml:"world"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	API struct {
		Port     int    `yaml:"port"`
		AdminKey string `yaml:"admin_key"`
	} `yaml:"api"`

	Loop struct {
		TickInterval string  `yaml:"tick_interval"`
		Speed        float64 `yaml:"speed"`
	} `yaml:"loop"`

	Moderation struct {
		Endpoint string `yaml:"endpoint"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"moderation"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.World.Name = "Demiurge"
	cfg.World.Population = 100
	cfg.World.Seed = 42
	cfg.Database.Path = "data/demiurge.db"
	cfg.API.Port = 8080
	cfg.Loop.TickInterval = "1s"
	cfg.Loop.Speed = 1.0
	return cfg
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults. DEMIURGE_ADMIN_KEY always overrides the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if key := os.Getenv("DEMIURGE_ADMIN_KEY"); key != "" {
		cfg.API.AdminKey = key
	}
	if key := os.Getenv("DEMIURGE_MODERATION_KEY"); key != "" {
		cfg.Moderation.APIKey = key
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.World.Population < 0 {
		return fmt.Errorf("config: population must be non-negative, got %d", c.World.Population)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("config: invalid api port %d", c.API.Port)
	}
	if _, err := c.TickInterval(); err != nil {
		return err
	}
	if c.Loop.Speed < 0 {
		return fmt.Errorf("config: speed must be non-negative, got %f", c.Loop.Speed)
	}
	return nil
}

// TickInterval parses the loop interval.
func (c *Config) TickInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Loop.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("config: invalid tick_interval %q: %w", c.Loop.TickInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: tick_interval must be positive, got %s", d)
	}
	return d, nil
}
