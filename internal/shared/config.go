package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Cache    CacheConfig    `toml:"cache"`
}

// LogConfig controls the process-wide logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string        `toml:"host"`
	Port           int           `toml:"port"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	AllowedOrigins []string      `toml:"allowed_origins"`
	RateLimit      float64       `toml:"rate_limit"`
	RateBurst      int           `toml:"rate_burst"`
}

// Addr returns the host:port pair the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig contains session token and identity provider settings.
type AuthConfig struct {
	JWTSecret string        `toml:"jwt_secret"`
	TokenTTL  time.Duration `toml:"token_ttl"`
	Google    GoogleConfig  `toml:"google"`
}

// GoogleConfig contains Google OAuth2 client credentials.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

// Enabled reports whether Google sign-in has credentials configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// CacheConfig contains the optional redis cache settings.
type CacheConfig struct {
	Enabled  bool          `toml:"enabled"`
	Addr     string        `toml:"addr"`
	Password string        `toml:"password"`
	DB       int           `toml:"db"`
	TTL      time.Duration `toml:"ttl"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveConfig loads the config file at path, falling back to defaults when it does not exist,
// then applies environment overrides. A .env file in the working directory is loaded first if present.
func ResolveConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config, err := LoadConfig(path)
	if errors.Is(err, ErrMissingConfig) {
		config = DefaultConfig()
	} else if err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return config, config.Validate()
}

// ApplyEnv overrides secrets and addresses from MARQUEE_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"MARQUEE_LOG_LEVEL":            &c.Log.Level,
		"MARQUEE_DATABASE_PATH":        &c.Database.Path,
		"MARQUEE_SERVER_HOST":          &c.Server.Host,
		"MARQUEE_JWT_SECRET":           &c.Auth.JWTSecret,
		"MARQUEE_GOOGLE_CLIENT_ID":     &c.Auth.Google.ClientID,
		"MARQUEE_GOOGLE_CLIENT_SECRET": &c.Auth.Google.ClientSecret,
		"MARQUEE_GOOGLE_REDIRECT_URL":  &c.Auth.Google.RedirectURL,
		"MARQUEE_CACHE_ADDR":           &c.Cache.Addr,
		"MARQUEE_CACHE_PASSWORD":       &c.Cache.Password,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("MARQUEE_SERVER_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MARQUEE_SERVER_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}

	if v, ok := lookup("MARQUEE_CACHE_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: MARQUEE_CACHE_ENABLED=%q", ErrInvalidConfig, v)
		}
		c.Cache.Enabled = enabled
	}

	return nil
}

// Validate checks values that would otherwise fail at first use.
func (c *Config) Validate() error {
	switch {
	case c.Database.Path == "":
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	case c.Auth.JWTSecret == "":
		return fmt.Errorf("%w: auth.jwt_secret is required", ErrInvalidConfig)
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	case c.Auth.TokenTTL <= 0:
		return fmt.Errorf("%w: auth.token_ttl must be positive", ErrInvalidConfig)
	}
	return nil
}
