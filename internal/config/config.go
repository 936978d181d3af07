package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Seed    SeedConfig
	Journal JournalConfig
	Log     LogConfig
	TUI     TUIConfig
}

// SeedConfig selects the initial in-progress list. An empty path means the
// seed bundled with the binary.
type SeedConfig struct {
	Path string
}

// JournalConfig holds the mutation journal's sqlite settings.
type JournalConfig struct {
	DSN string
}

type LogConfig struct {
	Level string
	File  string
}

type TUIConfig struct {
	Glyphs string
}

// Path returns the config file location: $CACHEMAKER_CONFIG, or
// ~/.config/cachemaker/config.toml.
func Path() string {
	if p := strings.TrimSpace(os.Getenv("CACHEMAKER_CONFIG")); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "cachemaker", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix
// CACHEMAKER_. An explicit path must exist; the default location may not.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("seed.path", "")
	v.SetDefault("journal.dsn", ":memory:")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("tui.glyphs", "unicode")

	v.SetConfigType("toml")

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = Path()
		explicit = strings.TrimSpace(os.Getenv("CACHEMAKER_CONFIG")) != ""
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix("CACHEMAKER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if _, err := os.Stat(path); err == nil || explicit {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level %q (want debug|info|warn|error)", c.Log.Level)
	}
	switch strings.ToLower(strings.TrimSpace(c.TUI.Glyphs)) {
	case "unicode", "ascii":
	default:
		return fmt.Errorf("invalid tui.glyphs %q (want unicode|ascii)", c.TUI.Glyphs)
	}
	return nil
}
