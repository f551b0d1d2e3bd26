package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
discord_token: tok
public_followup: false
radarr:
  url: http://radarr:7878
  api_key: rkey
  quality_profile: HD-1080p
  rootfolder: /movies
sonarr:
  url: http://sonarr:8989
  api_key: skey
  season_folders: true
  allowed_monitor_types:
    - all
    - firstSeason
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" || cfg.DiscordToken != "tok" {
		t.Errorf("unexpected top-level config %+v", cfg)
	}
	if cfg.PublicFollowupEnabled() {
		t.Error("public_followup: false should disable the broadcast")
	}
	if cfg.Radarr.QualityProfile != "HD-1080p" || cfg.Radarr.RootFolder != "/movies" {
		t.Errorf("unexpected radarr config %+v", cfg.Radarr)
	}
	if cfg.Sonarr.SeasonFolders == nil || !*cfg.Sonarr.SeasonFolders {
		t.Error("season_folders: true not parsed")
	}
	if len(cfg.Sonarr.AllowedMonitorTypes) != 2 {
		t.Errorf("unexpected monitor restriction %v", cfg.Sonarr.AllowedMonitorTypes)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
discord_token: from-file
radarr:
  url: http://radarr:7878
  api_key: from-file
`)
	t.Setenv("FETCHARR_DISCORD_TOKEN", "from-env")
	t.Setenv("FETCHARR_RADARR_API_KEY", "from-env-too")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DiscordToken != "from-env" {
		t.Errorf("discord token = %q, want env override", cfg.DiscordToken)
	}
	if cfg.Radarr.APIKey != "from-env-too" {
		t.Errorf("radarr api key = %q, want env override", cfg.Radarr.APIKey)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing token", `
radarr:
  url: http://radarr:7878
  api_key: k
`},
		{"no backends", `
discord_token: tok
`},
		{"radarr missing api key", `
discord_token: tok
radarr:
  url: http://radarr:7878
`},
		{"sonarr missing url", `
discord_token: tok
sonarr:
  api_key: k
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestPublicFollowupDefaultsTrue(t *testing.T) {
	cfg := &Config{}
	if !cfg.PublicFollowupEnabled() {
		t.Error("public followup must default to enabled")
	}
}
