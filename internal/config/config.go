package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all banker configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Mint       MintConfig       `toml:"mint"`
	Appearance AppearanceConfig `toml:"appearance"`
	CSV        CSVConfig        `toml:"csv"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath   string `toml:"db_path,omitempty"`
	AutoSave bool   `toml:"autosave"`
	Currency string `toml:"currency,omitempty"`
	LogLevel string `toml:"log_level"`
}

// MintConfig holds the account aggregator login. The password is only ever
// read from the environment; whether a ledger syncs is stored in the ledger.
type MintConfig struct {
	Username string `toml:"username,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// CSVConfig holds saved CSV import settings.
type CSVConfig struct {
	Profiles map[string]CSVProfile `toml:"profiles,omitempty"`
}

// CSVProfile is a named set of CSV import settings.
type CSVProfile struct {
	DateColumn         int    `toml:"date_column"`
	DateFormat         string `toml:"date_format"`
	AmountColumn       int    `toml:"amount_column"`
	DecimalSeparator   string `toml:"decimal_separator"`
	DescriptionColumns []int  `toml:"description_columns"`
	Delimiter          string `toml:"delimiter"`
	Encoding           string `toml:"encoding"`
	SkipFirstLine      bool   `toml:"skip_first_line"`
}

// Environment variables overriding the file.
const (
	EnvDB           = "BANKER_DB"
	EnvAutoSave     = "BANKER_AUTOSAVE"
	EnvLogLevel     = "BANKER_LOG_LEVEL"
	EnvMintPassword = "BANKER_MINT_PASSWORD"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			AutoSave: true,
			LogLevel: "warn",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "banker")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "banker")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "banker")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "banker")
}

// DefaultDBPath returns the ledger database used when none is configured.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "bank.db")
}

// LoadEnv loads a .env file from the working directory, if present.
// Variables already set in the environment win.
func LoadEnv() {
	_ = godotenv.Load()
}

// Load reads the config file, returning defaults if it doesn't exist, and
// applies environment overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvDB); v != "" {
		cfg.General.DBPath = v
	}
	if v := getenv(EnvAutoSave); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAutoSave, err)
		}
		cfg.General.AutoSave = b
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.General.LogLevel = v
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// DBPath returns the configured ledger path, or the default one.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	return DefaultDBPath()
}

// MintPassword returns the aggregator password from the environment.
func MintPassword() string {
	return os.Getenv(EnvMintPassword)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
