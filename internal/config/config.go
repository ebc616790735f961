// Package config loads the client configuration from ~/.biblio/config.yaml
// and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/naveenspark/biblio/internal/gateway"
	"github.com/naveenspark/biblio/pkg/client"
)

var (
	ErrDecode    = errors.New("decode error")
	ErrAPIURL    = errors.New("invalid api_url")
	ErrTimeout   = errors.New("invalid timeout")
	ErrLogLevel  = errors.New("invalid log_level")
	ErrTokenFile = errors.New("invalid token_file")
)

// Environment overrides.
const (
	EnvConfig = "BIBLIO_CONFIG"
	EnvAPIURL = "BIBLIO_API_URL"
)

// Config is the client configuration.
type Config struct {
	APIURL      string        `yaml:"api_url"`
	TokenFile   string        `yaml:"token_file"`
	PublicPaths []string      `yaml:"public_paths"`
	Timeout     time.Duration `yaml:"timeout"`
	LogFile     string        `yaml:"log_file"`
	LogLevel    string        `yaml:"log_level"`
}

// Dir returns ~/.biblio.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".biblio"), nil
}

// Load reads the config file named by BIBLIO_CONFIG, or ~/.biblio/config.yaml.
// A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	return LoadFile(path)
}

// LoadFile reads path, applies env overrides and defaults, and validates.
func LoadFile(path string) (*Config, error) {
	var cfg Config

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %q: %w", path, err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: yaml decode %q: %v", ErrDecode, path, err)
		}
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() error {
	if c.APIURL == "" {
		c.APIURL = client.DefaultBaseURL
	}
	c.APIURL = strings.TrimSuffix(c.APIURL, "/")
	if c.PublicPaths == nil {
		c.PublicPaths = append([]string(nil), gateway.DefaultPublicPaths...)
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.TokenFile == "" || c.LogFile == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if c.TokenFile == "" {
			c.TokenFile = filepath.Join(dir, "token")
		}
		if c.LogFile == "" {
			c.LogFile = filepath.Join(dir, "biblio.log")
		}
	}
	return nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: %q (want http(s)://host[/path])", ErrAPIURL, c.APIURL))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrTimeout, c.Timeout))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.TokenFile) == "" {
		errs = append(errs, fmt.Errorf("%w: empty path", ErrTokenFile))
	}

	return errors.Join(errs...)
}

// BasePath returns the path component of the API URL, e.g. "/api".
func (c *Config) BasePath() string {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Path, "/")
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrLogLevel, c.LogLevel)
	}
	return lvl, nil
}

// OpenLogger returns a JSON logger writing to LogFile. "-" or "off" disables
// logging. The returned close function is never nil.
func (c *Config) OpenLogger() (*slog.Logger, func() error, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, nil, err
	}
	if c.LogFile == "-" || strings.EqualFold(c.LogFile, "off") {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: lvl})), f.Close, nil
}
