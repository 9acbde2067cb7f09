package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultGeminiBaseURL is the public Generative Language REST endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	AI      AIConfig
	Email   EmailConfig
	Crisis  CrisisConfig
	Log     LogConfig
}

type ServerConfig struct {
	Host   string
	Port   int
	WebDir string
}

type StorageConfig struct {
	DBPath        string
	EncryptionKey string
}

type AIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type EmailConfig struct {
	User      string
	Password  string
	Recipient string
	SMTPHost  string
	SMTPPort  int
}

type CrisisConfig struct {
	Hotline  string
	Keywords string
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Addr is the host:port the HTTP server listens on.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DataDir is the directory holding the database and the PID file.
func (c StorageConfig) DataDir() string {
	if c.DBPath == "" || c.DBPath == ":memory:" {
		return defaultDataDir()
	}
	return filepath.Dir(c.DBPath)
}

// KeywordList splits the comma separated keyword override. An empty result
// means the built-in crisis keywords apply.
func (c CrisisConfig) KeywordList() []string {
	var out []string
	for _, k := range strings.Split(c.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(defaultDataDir(), "offline_moods.db"),
		},
		AI: AIConfig{
			BaseURL: DefaultGeminiBaseURL,
		},
		Email: EmailConfig{
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 465,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads configuration in increasing precedence: built-in defaults, the
// JSON file at $XDG_CONFIG_HOME/wellbuddy/config.json, a .env file in the
// working directory, and finally real environment variables.
//
// The .env file never overrides variables already set in the environment.
// Secrets (API key, SMTP password, encryption key) are read from the
// environment only. Missing secrets are not an error: the features that need
// them degrade to their fallback behavior.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), ".env")
}

func loadWith(b ConfigBackend, dotenvPath string) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", dotenvPath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}

	return cfg, nil
}
