package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SessionKind selects the call session implementation.
type SessionKind string

const (
	SessionRelay     SessionKind = "relay"
	SessionSimulated SessionKind = "simulated"
)

// Config stores runtime configuration for the front desk.
type Config struct {
	Session   SessionConfig
	Relay     RelayConfig
	Assistant AssistantConfig
	UI        UIConfig
	Log       LogConfig
}

type SessionConfig struct {
	Kind      SessionKind
	PublicKey string
}

type RelayConfig struct {
	URL         string
	TokenSecret string
	TokenTTL    time.Duration
	DialTimeout time.Duration
}

type AssistantConfig struct {
	Path string
}

type UIConfig struct {
	NoticeDuration time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// Load resolves configuration from a .env file, environment variables and
// defaults. Existing environment variables win over .env entries.
func Load() (Config, error) {
	dotenvPath := envOrDefault("FRONTDESK_DOTENV", ".env")
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
	}

	cfg := Config{
		Session: SessionConfig{
			Kind:      SessionKind(strings.ToLower(envOrDefault("FRONTDESK_SESSION", string(SessionRelay)))),
			PublicKey: strings.TrimSpace(os.Getenv("FRONTDESK_PUBLIC_KEY")),
		},
		Relay: RelayConfig{
			URL:         envOrDefault("FRONTDESK_RELAY_URL", "ws://localhost:8787/call"),
			TokenSecret: strings.TrimSpace(os.Getenv("FRONTDESK_TOKEN_SECRET")),
			TokenTTL:    time.Duration(envOrDefaultInt("FRONTDESK_TOKEN_TTL_SECONDS", 600)) * time.Second,
			DialTimeout: time.Duration(envOrDefaultInt("FRONTDESK_DIAL_TIMEOUT_MS", 10000)) * time.Millisecond,
		},
		Assistant: AssistantConfig{
			Path: strings.TrimSpace(os.Getenv("FRONTDESK_ASSISTANT_FILE")),
		},
		UI: UIConfig{
			NoticeDuration: time.Duration(envOrDefaultInt("FRONTDESK_NOTICE_MS", 3000)) * time.Millisecond,
		},
		Log: LogConfig{
			Level:  envOrDefault("FRONTDESK_LOG_LEVEL", "info"),
			Format: strings.ToLower(envOrDefault("FRONTDESK_LOG_FORMAT", "console")),
		},
	}

	switch cfg.Session.Kind {
	case SessionRelay, SessionSimulated:
	default:
		return Config{}, fmt.Errorf("unknown FRONTDESK_SESSION %q (want relay or simulated)", cfg.Session.Kind)
	}

	if cfg.Relay.TokenTTL <= 0 {
		cfg.Relay.TokenTTL = 10 * time.Minute
	}
	if cfg.Relay.DialTimeout <= 0 {
		cfg.Relay.DialTimeout = 10 * time.Second
	}
	if cfg.UI.NoticeDuration <= 0 {
		cfg.UI.NoticeDuration = 3 * time.Second
	}

	return cfg, nil
}

// RedactedPublicKey returns the public key with all but its prefix masked.
func (c Config) RedactedPublicKey() string {
	key := c.Session.PublicKey
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
