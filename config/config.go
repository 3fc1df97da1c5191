// Package config loads finadvisor settings from a TOML file, a .env file
// and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const appName = "assistente-financeiro"

// Config holds all finadvisor configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Chat   ChatConfig   `toml:"chat"`
	Log    LogConfig    `toml:"log"`
	Auth   AuthConfig   `toml:"auth"`
	Rates  RatesConfig  `toml:"rates"`
	Store  StoreConfig  `toml:"store"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// ChatConfig holds model settings.
type ChatConfig struct {
	APIKey       string        `toml:"api_key,omitempty"`
	Model        string        `toml:"model"`
	MaxTokens    int64         `toml:"max_tokens"`
	MaxTurns     int           `toml:"max_turns"`
	TurnTimeout  time.Duration `toml:"turn_timeout"`
	SystemPrompt string        `toml:"system_prompt,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AuthConfig enables JWT auth when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret,omitempty"`
}

// RatesConfig holds exchange rate settings.
type RatesConfig struct {
	Provider     string   `toml:"provider"`
	URL          string   `toml:"url,omitempty"`
	Base         string   `toml:"base"`
	Codes        []string `toml:"codes"`
	Refresh      string   `toml:"refresh"`
	SnapshotPath string   `toml:"snapshot_path,omitempty"`
}

// StoreConfig holds conversation storage settings.
type StoreConfig struct {
	ConversationTTL time.Duration `toml:"conversation_ttl"`
}

// Rate providers.
const (
	ProviderExchangeRateAPI = "exchangerate-api"
	ProviderECB             = "ecb"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Chat: ChatConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   4096,
			MaxTurns:    8,
			TurnTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Rates: RatesConfig{
			Provider:     ProviderExchangeRateAPI,
			Base:         "BRL",
			Codes:        []string{"USD", "EUR", "GBP"},
			Refresh:      "@every 5m",
			SnapshotPath: filepath.Join(DataDir(), "rates.db"),
		},
		Store: StoreConfig{ConversationTTL: 24 * time.Hour},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path (Path() when empty), then the .env
// file at envFile when it exists, then environment overrides. A missing
// config file yields the defaults.
func Load(path, envFile string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = Path()
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("ANTHROPIC_API_KEY", &cfg.Chat.APIKey)
	setString("ANTHROPIC_MODEL", &cfg.Chat.Model)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)
	setString("JWT_SECRET", &cfg.Auth.JWTSecret)
	setString("RATES_PROVIDER", &cfg.Rates.Provider)
	setString("RATES_URL", &cfg.Rates.URL)
	setString("RATES_SNAPSHOT_PATH", &cfg.Rates.SnapshotPath)

	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("PORT must be a number, got %q", port)
		}
		cfg.Server.Addr = ":" + port
	}
	if codes, ok := os.LookupEnv("RATES_CODES"); ok && codes != "" {
		cfg.Rates.Codes = strings.Split(codes, ",")
	}
	if timeout, ok := os.LookupEnv("CHAT_TURN_TIMEOUT"); ok && timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("CHAT_TURN_TIMEOUT: %w", err)
		}
		cfg.Chat.TurnTimeout = d
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Rates.Provider {
	case ProviderExchangeRateAPI, ProviderECB:
	default:
		return fmt.Errorf("unknown rates provider %q", c.Rates.Provider)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Chat.MaxTokens <= 0 {
		return fmt.Errorf("chat.max_tokens must be positive")
	}
	if c.Chat.TurnTimeout <= 0 {
		return fmt.Errorf("chat.turn_timeout must be positive")
	}

	c.Rates.Base = strings.ToUpper(strings.TrimSpace(c.Rates.Base))
	codes := make([]string, 0, len(c.Rates.Codes))
	for _, code := range c.Rates.Codes {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return fmt.Errorf("rates.codes must not be empty")
	}
	c.Rates.Codes = codes
	return nil
}

// Save writes the config to path, creating its directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
