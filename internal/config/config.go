// Package config loads runtime settings from defaults, the YAML config file,
// STICKYNOTES_* environment variables and command line flags, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sandeepkv93/stickynotes/internal/keystore"
	"github.com/sandeepkv93/stickynotes/internal/logging"
	"github.com/sandeepkv93/stickynotes/internal/storage"
)

const (
	EnvPrefix = "STICKYNOTES"
	FileName  = "stickynotes"
	// MaxRetentionDays is a hundred years.
	MaxRetentionDays = 36500
	// LogFileOff disables the log file.
	LogFileOff = "off"
)

type Config struct {
	DataDir       string              `mapstructure:"data_dir" yaml:"data_dir"`
	DBFile        string              `mapstructure:"db_file" yaml:"db_file"`
	Key           KeyConfig           `mapstructure:"key" yaml:"key"`
	Trash         TrashConfig         `mapstructure:"trash" yaml:"trash"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler" yaml:"scheduler"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Log           LogConfig           `mapstructure:"log" yaml:"log"`
}

type KeyConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Service string `mapstructure:"service" yaml:"service"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

type TrashConfig struct {
	RetentionDays  int  `mapstructure:"retention_days" yaml:"retention_days"`
	CleanupOnStart bool `mapstructure:"cleanup_on_start" yaml:"cleanup_on_start"`
}

type SchedulerConfig struct {
	Interval   time.Duration `mapstructure:"interval" yaml:"interval"`
	BatchLimit int           `mapstructure:"batch_limit" yaml:"batch_limit"`
	Buffer     int           `mapstructure:"buffer" yaml:"buffer"`
}

type NotificationsConfig struct {
	Desktop bool `mapstructure:"desktop" yaml:"desktop"`
}

type LogConfig struct {
	Level     string `mapstructure:"level" yaml:"level"`
	File      string `mapstructure:"file" yaml:"file"`
	MaxSizeMB int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files" yaml:"max_files"`
}

func Defaults() map[string]any {
	return map[string]any{
		"data_dir":               "",
		"db_file":                storage.DefaultDBFile,
		"key.backend":            string(keystore.BackendAuto),
		"key.service":            keystore.DefaultService,
		"key.dir":                "",
		"trash.retention_days":   30,
		"trash.cleanup_on_start": true,
		"scheduler.interval":     time.Minute,
		"scheduler.batch_limit":  0,
		"scheduler.buffer":       64,
		"notifications.desktop":  false,
		"log.level":              "info",
		"log.file":               "",
		"log.max_size_mb":        10,
		"log.max_files":          5,
	}
}

// Default is the configuration with every key at its default value.
func Default() (Config, error) {
	var c Config
	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode defaults: %w", err)
	}
	return c, nil
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"data-dir":    "data_dir",
	"db-file":     "db_file",
	"key-backend": "key.backend",
	"log-level":   "log.level",
	"log-file":    "log.file",
	"retention":   "trash.retention_days",
	"interval":    "scheduler.interval",
	"desktop":     "notifications.desktop",
}

// DefaultFile is the per-user config file path.
func DefaultFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, storage.AppDirName, FileName+".yaml"), nil
}

// Load resolves the configuration. configFile, when set, replaces the file
// search path. cmd may be nil.
func Load(cmd *cobra.Command, configFile string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if path, err := DefaultFile(); err == nil {
			v.AddConfigPath(filepath.Dir(path))
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for flag, key := range flagKeys {
			if f := cmd.Flags().Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if _, err := keystore.ParseBackend(c.Key.Backend); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Trash.RetentionDays < 0 || c.Trash.RetentionDays > MaxRetentionDays {
		errs = append(errs, fmt.Errorf("trash.retention_days must be between 0 and %d, got %d", MaxRetentionDays, c.Trash.RetentionDays))
	}
	if c.Scheduler.Interval <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.interval must be positive, got %s", c.Scheduler.Interval))
	}
	if c.Scheduler.BatchLimit < 0 {
		errs = append(errs, fmt.Errorf("scheduler.batch_limit must not be negative, got %d", c.Scheduler.BatchLimit))
	}
	if strings.TrimSpace(c.DBFile) == "" {
		errs = append(errs, errors.New("db_file is required"))
	}
	return errors.Join(errs...)
}

// ResolvedDataDir is data_dir or the platform data directory.
func (c Config) ResolvedDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	return storage.DataDir()
}

// DatabasePath joins db_file onto the data directory unless it is absolute.
func (c Config) DatabasePath() (string, error) {
	if filepath.IsAbs(c.DBFile) {
		return c.DBFile, nil
	}
	dir, err := c.ResolvedDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.DBFile), nil
}

// LogFilePath returns "" when file logging is off.
func (c Config) LogFilePath() (string, error) {
	switch strings.TrimSpace(c.Log.File) {
	case LogFileOff:
		return "", nil
	case "":
		dir, err := c.ResolvedDataDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "logs", "stickynotes.log"), nil
	default:
		return c.Log.File, nil
	}
}

func (c Config) KeystoreConfig() (keystore.Config, error) {
	backend, err := keystore.ParseBackend(c.Key.Backend)
	if err != nil {
		return keystore.Config{}, err
	}
	return keystore.Config{Backend: backend, Service: c.Key.Service, Dir: c.Key.Dir}, nil
}

func (c Config) LoggingOptions() (logging.Options, error) {
	file, err := c.LogFilePath()
	if err != nil {
		return logging.Options{}, err
	}
	return logging.Options{
		Level:     c.Log.Level,
		File:      file,
		MaxSizeMB: c.Log.MaxSizeMB,
		MaxFiles:  c.Log.MaxFiles,
	}, nil
}

func Marshal(c Config) ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile writes c as YAML to path, creating the directory. An existing
// file is only replaced when overwrite is set.
func WriteFile(path string, c Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0o600)
}
