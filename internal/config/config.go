package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultResolveTimeout bounds how long the UI waits for the identity
// provider's first state report.
const DefaultResolveTimeout = 5 * time.Second

type Config struct {
	API      APIConfig      `yaml:"api"`
	Identity IdentityConfig `yaml:"identity"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

type IdentityConfig struct {
	APIKey          string       `yaml:"api_key"`
	Endpoint        string       `yaml:"endpoint"`
	TokenEndpoint   string       `yaml:"token_endpoint"`
	CredentialsFile string       `yaml:"credentials_file"`
	Google          GoogleConfig `yaml:"google"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Issuer       string `yaml:"issuer"`
}

type SessionConfig struct {
	ResolveTimeout time.Duration `yaml:"resolve_timeout"`
}

type LogConfig struct {
	File string `yaml:"file"`
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:5000",
		},
		Identity: IdentityConfig{
			Endpoint:        "https://identitytoolkit.googleapis.com",
			TokenEndpoint:   "https://securetoken.googleapis.com",
			CredentialsFile: defaultCredentialsFile(),
			Google: GoogleConfig{
				Issuer: "https://accounts.google.com",
			},
		},
		Session: SessionConfig{
			ResolveTimeout: DefaultResolveTimeout,
		},
	}
}

func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "jobhub", "credentials.yaml")
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Session.ResolveTimeout <= 0 {
		cfg.Session.ResolveTimeout = DefaultResolveTimeout
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but returns the defaults when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultConfig(), nil
	}
	return cfg, err
}

// envKeys maps environment variable names to the field they override.
var envKeys = map[string]func(*Config, string) error{
	"JOBHUB_API_URL":              func(c *Config, v string) error { c.API.BaseURL = v; return nil },
	"JOBHUB_FIREBASE_API_KEY":     func(c *Config, v string) error { c.Identity.APIKey = v; return nil },
	"JOBHUB_IDENTITY_ENDPOINT":    func(c *Config, v string) error { c.Identity.Endpoint = v; return nil },
	"JOBHUB_TOKEN_ENDPOINT":       func(c *Config, v string) error { c.Identity.TokenEndpoint = v; return nil },
	"JOBHUB_CREDENTIALS_FILE":     func(c *Config, v string) error { c.Identity.CredentialsFile = v; return nil },
	"JOBHUB_GOOGLE_CLIENT_ID":     func(c *Config, v string) error { c.Identity.Google.ClientID = v; return nil },
	"JOBHUB_GOOGLE_CLIENT_SECRET": func(c *Config, v string) error { c.Identity.Google.ClientSecret = v; return nil },
	"JOBHUB_LOG_FILE":             func(c *Config, v string) error { c.Log.File = v; return nil },
	"JOBHUB_RESOLVE_TIMEOUT": func(c *Config, v string) error {
		d, err := parseDuration(v)
		if err != nil {
			return err
		}
		c.Session.ResolveTimeout = d
		return nil
	},
}

// ApplyEnv overlays values from a dotenv file (if it exists) and then from
// the process environment. Process variables win over the file.
func (c *Config) ApplyEnv(dotenvPath string) error {
	values := map[string]string{}
	if dotenvPath != "" {
		fileValues, err := godotenv.Read(dotenvPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read %s: %w", dotenvPath, err)
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}
	for name := range envKeys {
		if v, ok := os.LookupEnv(name); ok {
			values[name] = v
		}
	}

	for name, apply := range envKeys {
		v, ok := values[name]
		if !ok || v == "" {
			continue
		}
		if err := apply(c, v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// parseDuration accepts Go duration strings and bare milliseconds.
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

// GoogleEnabled reports whether federated sign-in has client credentials.
func (c *Config) GoogleEnabled() bool {
	return c.Identity.Google.ClientID != "" && c.Identity.Google.ClientSecret != ""
}

// Validate checks the fields the client cannot start without.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.Identity.APIKey == "" {
		return errors.New("identity.api_key is required")
	}
	return nil
}
