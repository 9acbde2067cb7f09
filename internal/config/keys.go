package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

// specs lists every config key. Env var names for the mail, AI and storage
// keys match the variables the deployment already exports.
var specs = []keySpec{
	{
		key: "server.host", typ: kString, env: "WELLBUDDY_HOST",
		apply:   func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Host },
	},
	{
		key: "server.port", typ: kInt, env: "WELLBUDDY_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.web_dir", typ: kString, env: "WELLBUDDY_WEB_DIR",
		apply:   func(cfg *Config, v any) { cfg.Server.WebDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.WebDir },
	},
	{
		key: "storage.db_path", typ: kString, env: "OFFLINE_DB_PATH",
		apply:   func(cfg *Config, v any) { cfg.Storage.DBPath = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DBPath },
	},
	{
		key: "storage.encryption_key", typ: kString, env: "ENCRYPTION_KEY",
		secret: true,
		apply:   func(cfg *Config, v any) { cfg.Storage.EncryptionKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.EncryptionKey },
	},
	{
		key: "ai.api_key", typ: kString, env: "GEMINI_API_KEY",
		secret: true,
		apply:   func(cfg *Config, v any) { cfg.AI.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.AI.APIKey },
	},
	{
		key: "ai.model", typ: kString, env: "GEMINI_MODEL",
		apply:   func(cfg *Config, v any) { cfg.AI.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.AI.Model },
	},
	{
		key: "ai.base_url", typ: kString, env: "GEMINI_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.AI.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.AI.BaseURL },
	},
	{
		key: "email.user", typ: kString, env: "EMAIL_USER",
		apply:   func(cfg *Config, v any) { cfg.Email.User = v.(string) },
		extract: func(cfg Config) any { return cfg.Email.User },
	},
	{
		key: "email.password", typ: kString, env: "EMAIL_PASS",
		secret: true,
		apply:   func(cfg *Config, v any) { cfg.Email.Password = v.(string) },
		extract: func(cfg Config) any { return cfg.Email.Password },
	},
	{
		key: "email.recipient", typ: kString, env: "EMAIL_RECIPIENT",
		apply:   func(cfg *Config, v any) { cfg.Email.Recipient = v.(string) },
		extract: func(cfg Config) any { return cfg.Email.Recipient },
	},
	{
		key: "email.smtp_host", typ: kString, env: "EMAIL_SMTP_HOST",
		apply:   func(cfg *Config, v any) { cfg.Email.SMTPHost = v.(string) },
		extract: func(cfg Config) any { return cfg.Email.SMTPHost },
	},
	{
		key: "email.smtp_port", typ: kInt, env: "EMAIL_SMTP_PORT",
		apply:   func(cfg *Config, v any) { cfg.Email.SMTPPort = v.(int) },
		extract: func(cfg Config) any { return cfg.Email.SMTPPort },
	},
	{
		key: "crisis.hotline", typ: kString, env: "HOTLINE_NUMBER",
		apply:   func(cfg *Config, v any) { cfg.Crisis.Hotline = v.(string) },
		extract: func(cfg Config) any { return cfg.Crisis.Hotline },
	},
	{
		key: "crisis.keywords", typ: kString, env: "CRISIS_KEYWORDS",
		apply:   func(cfg *Config, v any) { cfg.Crisis.Keywords = v.(string) },
		extract: func(cfg Config) any { return cfg.Crisis.Keywords },
	},
	{
		key: "log.level", typ: kString, env: "WELLBUDDY_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "log.file", typ: kString, env: "WELLBUDDY_LOG_FILE",
		apply:   func(cfg *Config, v any) { cfg.Log.File = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.File },
	},
	{
		key: "log.max_size_mb", typ: kInt, env: "WELLBUDDY_LOG_MAX_SIZE_MB",
		apply:   func(cfg *Config, v any) { cfg.Log.MaxSizeMB = v.(int) },
		extract: func(cfg Config) any { return cfg.Log.MaxSizeMB },
	},
	{
		key: "log.max_backups", typ: kInt, env: "WELLBUDDY_LOG_MAX_BACKUPS",
		apply:   func(cfg *Config, v any) { cfg.Log.MaxBackups = v.(int) },
		extract: func(cfg Config) any { return cfg.Log.MaxBackups },
	},
	{
		key: "log.max_age_days", typ: kInt, env: "WELLBUDDY_LOG_MAX_AGE_DAYS",
		apply:   func(cfg *Config, v any) { cfg.Log.MaxAgeDays = v.(int) },
		extract: func(cfg Config) any { return cfg.Log.MaxAgeDays },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
