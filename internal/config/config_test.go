package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/naveenspark/biblio/internal/gateway"
	"github.com/naveenspark/biblio/pkg/client"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvAPIURL, "")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.APIURL != client.DefaultBaseURL {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, client.DefaultBaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", cfg.Timeout)
	}
	if len(cfg.PublicPaths) != len(gateway.DefaultPublicPaths) {
		t.Errorf("PublicPaths = %v, want defaults", cfg.PublicPaths)
	}
	if !strings.HasSuffix(cfg.TokenFile, filepath.Join(".biblio", "token")) {
		t.Errorf("TokenFile = %q", cfg.TokenFile)
	}
	if cfg.BasePath() != "/api" {
		t.Errorf("BasePath() = %q, want /api", cfg.BasePath())
	}
}

func TestLoadFile_Values(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	path := writeFile(t, `
api_url: https://biblioteca.example.edu/api/
token_file: /tmp/biblio-token
public_paths: ["/book/all"]
timeout: 5s
log_file: "-"
log_level: debug
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.APIURL != "https://biblioteca.example.edu/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", cfg.Timeout)
	}
	if len(cfg.PublicPaths) != 1 {
		t.Errorf("PublicPaths = %v", cfg.PublicPaths)
	}
	lvl, err := cfg.Level()
	if err != nil || lvl != slog.LevelDebug {
		t.Errorf("Level() = (%v, %v), want debug", lvl, err)
	}
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://override:9000/api")
	path := writeFile(t, "api_url: http://file:8087/api\ntoken_file: /tmp/t\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.APIURL != "http://override:9000/api" {
		t.Errorf("APIURL = %q, want env override", cfg.APIURL)
	}
}

func TestLoadFile_UnknownField(t *testing.T) {
	path := writeFile(t, "api_url: http://x/api\ncolour: blue\n")
	_, err := LoadFile(path)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("LoadFile() error = %v, want ErrDecode", err)
	}
}

func TestLoadFile_EmptyFile(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	path := writeFile(t, "")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.APIURL != client.DefaultBaseURL {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := Config{APIURL: "ftp://nope", Timeout: -time.Second, LogLevel: "loud", TokenFile: " "}
	err := cfg.Validate()
	for _, want := range []error{ErrAPIURL, ErrTimeout, ErrLogLevel, ErrTokenFile} {
		if !errors.Is(err, want) {
			t.Errorf("Validate() error = %v, missing %v", err, want)
		}
	}
}

func TestOpenLogger(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{LogFile: filepath.Join(dir, "logs", "biblio.log"), LogLevel: "info"}

	logger, closeFn, err := cfg.OpenLogger()
	if err != nil {
		t.Fatalf("OpenLogger() error: %v", err)
	}
	logger.Info("hello", "k", "v")
	logger.Debug("hidden")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("log = %s, want JSON entry", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("debug entry written at info level")
	}
}

func TestOpenLogger_Off(t *testing.T) {
	cfg := Config{LogFile: "off", LogLevel: "info"}
	logger, closeFn, err := cfg.OpenLogger()
	if err != nil || logger == nil || closeFn == nil {
		t.Fatalf("OpenLogger() = (%v, %p, %v)", logger, closeFn, err)
	}
}
