package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	dirName  = ".workouts"
	fileName = "config.json"

	// EnvPrefix prefixes environment overrides, e.g. WORKOUTS_LOG_LEVEL
	EnvPrefix = "WORKOUTS"

	apiKeyPlaceholder = "YOUR_YOUTUBE_API_KEY"
)

// Config represents the application configuration
type Config struct {
	Storage StorageConfig `mapstructure:"storage" json:"storage"`
	YouTube YouTubeConfig `mapstructure:"youtube" json:"youtube"`
	Log     LogConfig     `mapstructure:"log" json:"log"`
	Backup  BackupConfig  `mapstructure:"backup" json:"backup"`
	Library LibraryConfig `mapstructure:"library" json:"library"`
}

// StorageConfig locates the SQLite database
type StorageConfig struct {
	Path string `mapstructure:"path" json:"path"`
}

// YouTubeConfig holds the Data API settings
type YouTubeConfig struct {
	APIKey     string `mapstructure:"api_key" json:"api_key"`
	DailyQuota int    `mapstructure:"daily_quota" json:"daily_quota"`
}

// LogConfig holds logging preferences
type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
}

// BackupConfig holds backup reminder settings
type BackupConfig struct {
	ReminderDays int `mapstructure:"reminder_days" json:"reminder_days"`
}

// LibraryConfig holds library listing preferences
type LibraryConfig struct {
	PageSize int `mapstructure:"page_size" json:"page_size"`
}

// ErrNoConfig is returned when an explicitly requested config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

var logLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	dir, err := GetConfigDir()
	if err != nil {
		dir = dirName
	}
	return Config{
		Storage: StorageConfig{Path: filepath.Join(dir, "workouts.db")},
		YouTube: YouTubeConfig{DailyQuota: 10000},
		Log:     LogConfig{Level: "info"},
		Backup:  BackupConfig{ReminderDays: 30},
		Library: LibraryConfig{PageSize: 12},
	}
}

// Load reads the configuration. Values come, lowest precedence first, from
// defaults, the config file, WORKOUTS_* environment variables and flags.
// An empty path means ~/.workouts/config.json, which may be absent.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = getConfigPath(); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The plain variable name is accepted too
	if err := v.BindEnv("youtube.api_key", EnvPrefix+"_YOUTUBE_API_KEY", "YOUTUBE_API_KEY"); err != nil {
		return nil, err
	}

	defaults := DefaultConfig()
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("youtube.api_key", "")
	v.SetDefault("youtube.daily_quota", defaults.YouTube.DailyQuota)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("backup.reminder_days", defaults.Backup.ReminderDays)
	v.SetDefault("library.page_size", defaults.Library.PageSize)

	if flags != nil {
		for key, name := range map[string]string{"storage.path": "db", "log.level": "log-level"} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if explicit {
		return nil, fmt.Errorf("%w: %s", ErrNoConfig, path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.YouTube.APIKey == apiKeyPlaceholder {
		cfg.YouTube.APIKey = ""
	}
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	return &cfg, nil
}

// Save writes the configuration to path, or ~/.workouts/config.json if empty
func Save(path string, cfg *Config) error {
	if path == "" {
		var err error
		if path, err = getConfigPath(); err != nil {
			return err
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample writes an example config file if none exists.
// It reports whether a file was created.
func CreateExample(path string) (bool, error) {
	if path == "" {
		var err error
		if path, err = getConfigPath(); err != nil {
			return false, err
		}
	}

	if _, err := os.Stat(path); err == nil {
		return false, nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.YouTube.APIKey = apiKeyPlaceholder
	if err := Save(path, &example); err != nil {
		return false, err
	}
	return true, nil
}

// Validate checks that the config values are usable
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return errors.New("storage.path is required")
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %s, got %q", strings.Join(logLevels, ", "), c.Log.Level)
	}
	if c.YouTube.DailyQuota <= 0 {
		return fmt.Errorf("youtube.daily_quota must be positive, got %d", c.YouTube.DailyQuota)
	}
	if c.Backup.ReminderDays <= 0 {
		return fmt.Errorf("backup.reminder_days must be positive, got %d", c.Backup.ReminderDays)
	}
	if c.Library.PageSize <= 0 {
		return fmt.Errorf("library.page_size must be positive, got %d", c.Library.PageSize)
	}
	return nil
}

// expandHome resolves a leading ~/ against the user's home directory
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}
