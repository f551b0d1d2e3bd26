// Package config loads process configuration from a YAML file with
// environment variable overrides for the secrets-shaped values.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the full process configuration.
type Config struct {
	// LogLevel is a zap level string ("debug", "info", "warn", "error").
	LogLevel string `yaml:"log_level" env:"FETCHARR_LOG_LEVEL"`
	// DiscordToken authenticates the bot with the chat platform.
	DiscordToken string `yaml:"discord_token" env:"FETCHARR_DISCORD_TOKEN"`
	// PublicFollowup controls the non-ephemeral success broadcast.
	// Defaults to true.
	PublicFollowup *bool `yaml:"public_followup" env:"FETCHARR_PUBLIC_FOLLOWUP"`

	Radarr *Radarr `yaml:"radarr"`
	Sonarr *Sonarr `yaml:"sonarr"`
}

// Radarr configures the movie backend. The optional fields pin a request
// detail to a single value so users are never asked for it.
type Radarr struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key" env:"FETCHARR_RADARR_API_KEY"`

	Monitor             string `yaml:"monitor"`
	QualityProfile      string `yaml:"quality_profile"`
	RootFolder          string `yaml:"rootfolder"`
	MinimumAvailability string `yaml:"minimum_availability"`
}

// Sonarr configures the series backend.
type Sonarr struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key" env:"FETCHARR_SONARR_API_KEY"`

	Monitor        string `yaml:"monitor"`
	QualityProfile string `yaml:"quality_profile"`
	RootFolder     string `yaml:"rootfolder"`
	SeriesType     string `yaml:"series_type"`
	SeasonFolders  *bool  `yaml:"season_folders"`
	// AllowedMonitorTypes restricts which monitor types users may pick
	// (e.g. to keep "All" admin-only). Empty means no restriction.
	AllowedMonitorTypes []string `yaml:"allowed_monitor_types"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DiscordToken == "" {
		return errors.New("discord_token is required")
	}
	if c.Radarr == nil && c.Sonarr == nil {
		return errors.New("at least one media backend is required")
	}
	if c.Radarr != nil {
		if c.Radarr.URL == "" || c.Radarr.APIKey == "" {
			return errors.New("radarr backend needs url and api_key")
		}
	}
	if c.Sonarr != nil {
		if c.Sonarr.URL == "" || c.Sonarr.APIKey == "" {
			return errors.New("sonarr backend needs url and api_key")
		}
	}
	return nil
}

// PublicFollowupEnabled resolves the broadcast flag with its default.
func (c *Config) PublicFollowupEnabled() bool {
	if c.PublicFollowup == nil {
		return true
	}
	return *c.PublicFollowup
}
