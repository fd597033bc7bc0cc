package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./marquee.db" {
			t.Errorf("expected database path ./marquee.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Server.RequestTimeout != 10*time.Second {
			t.Errorf("expected request timeout 10s, got %v", config.Server.RequestTimeout)
		}

		if config.Auth.TokenTTL != 720*time.Hour {
			t.Errorf("expected token ttl 720h, got %v", config.Auth.TokenTTL)
		}

		if config.Cache.Enabled {
			t.Error("expected cache to be disabled by default")
		}

		if config.Auth.Google.Enabled() {
			t.Error("expected google sign-in to be disabled without credentials")
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("partial file keeps defaults", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			testConfig := `
[database]
path = "/custom/path.db"

[server]
port = 8080
request_timeout = "2s"
`
			if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			config, err := LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}

			if config.Database.Path != "/custom/path.db" {
				t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
			}
			if config.Server.Port != 8080 {
				t.Errorf("expected server port 8080, got %d", config.Server.Port)
			}
			if config.Server.RequestTimeout != 2*time.Second {
				t.Errorf("expected request timeout 2s, got %v", config.Server.RequestTimeout)
			}
			if config.Auth.JWTSecret != "change-me" {
				t.Errorf("expected default jwt secret to survive, got %q", config.Auth.JWTSecret)
			}
		})

		t.Run("missing file", func(t *testing.T) {
			_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
			if !errors.Is(err, ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("malformed file", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(configPath, []byte("[server\nport ="), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			_, err := LoadConfig(configPath)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		env := map[string]string{
			"MARQUEE_JWT_SECRET":    "from-env",
			"MARQUEE_SERVER_PORT":   "9090",
			"MARQUEE_CACHE_ENABLED": "true",
		}
		lookup := func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		}

		config := DefaultConfig()
		if err := config.ApplyEnv(lookup); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Auth.JWTSecret != "from-env" {
			t.Errorf("expected jwt secret from env, got %q", config.Auth.JWTSecret)
		}
		if config.Server.Port != 9090 {
			t.Errorf("expected port 9090, got %d", config.Server.Port)
		}
		if !config.Cache.Enabled {
			t.Error("expected cache enabled from env")
		}

		env["MARQUEE_SERVER_PORT"] = "ninety"
		if err := DefaultConfig().ApplyEnv(lookup); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for bad port, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "empty database path", mutate: func(c *Config) { c.Database.Path = "" }},
			{name: "empty jwt secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }},
			{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }},
			{name: "zero token ttl", mutate: func(c *Config) { c.Auth.TokenTTL = 0 }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}
