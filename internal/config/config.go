package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	dbFileName      = "tracker.db"
	sessionFileName = "session.yaml"
	configFileName  = "config.yaml"
)

// Settings are the tunables read from config.yaml and TRACKER_* variables.
type Settings struct {
	PageSize int   `mapstructure:"page_size"`
	Retry    Retry `mapstructure:"retry"`
	Log      Log   `mapstructure:"log"`
	HTTP     HTTP  `mapstructure:"http"`
}

// Retry controls automatic dashboard reloads.
type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
}

// Log selects the log level and output format ("dev" is human-readable
// console output, anything else is JSON).
type Log struct {
	Level string `mapstructure:"level"`
	Env   string `mapstructure:"env"`
}

// HTTP configures `tracker serve`.
type HTTP struct {
	Addr string `mapstructure:"addr"`
}

// Config holds resolved configuration for the tracker directory and database.
type Config struct {
	TrackerDir  string // resolved .tracker directory path
	DBPath      string // full path to tracker.db
	SessionPath string // full path to session.yaml
	ConfigPath  string // full path to config.yaml
	EnvVarSet   bool   // whether TRACKER_PATH was used

	Settings

	v *viper.Viper
}

var defaults = map[string]any{
	"page_size":          5,
	"retry.max_attempts": 3,
	"retry.base_delay":   "1s",
	"log.level":          "info",
	"log.env":            "dev",
	"http.addr":          ":8080",
}

var logLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}

// Resolve returns the current configuration by checking TRACKER_PATH first,
// then falling back to $PWD/.tracker, and loads settings from that
// directory.
func Resolve() (*Config, error) {
	var trackerDir string
	var envVarSet bool

	if envPath := os.Getenv("TRACKER_PATH"); envPath != "" {
		trackerDir = envPath
		envVarSet = true
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		trackerDir = filepath.Join(cwd, ".tracker")
	}

	cfg, err := Load(trackerDir)
	if err != nil {
		return nil, err
	}
	cfg.EnvVarSet = envVarSet
	return cfg, nil
}

// Load builds a Config for trackerDir. A missing config.yaml is not an
// error; defaults and TRACKER_* environment variables still apply.
func Load(trackerDir string) (*Config, error) {
	configPath := filepath.Join(trackerDir, configFileName)
	file, err := readFile(configPath)
	if err != nil {
		return nil, err
	}
	v, settings, err := layered(file, true)
	if err != nil {
		return nil, err
	}

	return &Config{
		TrackerDir:  trackerDir,
		DBPath:      filepath.Join(trackerDir, dbFileName),
		SessionPath: filepath.Join(trackerDir, sessionFileName),
		ConfigPath:  configPath,
		Settings:    settings,
		v:           v,
	}, nil
}

// readFile loads only the values written in config.yaml.
func readFile(path string) (*viper.Viper, error) {
	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("yaml")
	if err := file.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", configFileName, err)
		}
	}
	return file, nil
}

// layered stacks defaults, the file values and, when env is set, the
// TRACKER_* environment, then decodes and validates the result.
func layered(file *viper.Viper, env bool) (*viper.Viper, Settings, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	if err := v.MergeConfigMap(file.AllSettings()); err != nil {
		return nil, Settings{}, fmt.Errorf("merging %s: %w", configFileName, err)
	}
	if env {
		v.SetEnvPrefix("TRACKER")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, Settings{}, err
	}
	return v, s, nil
}

// Validate rejects settings the tracker cannot run with.
func (s Settings) Validate() error {
	var errs []error
	if s.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size must be positive, got %d", s.PageSize))
	}
	if s.Retry.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must not be negative, got %d", s.Retry.MaxAttempts))
	}
	if s.Retry.BaseDelay < 0 {
		errs = append(errs, fmt.Errorf("retry.base_delay must not be negative, got %s", s.Retry.BaseDelay))
	}
	if !slices.Contains(logLevels, strings.ToLower(s.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level %q must be one of %q", s.Log.Level, logLevels))
	}
	if s.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr must not be empty"))
	}
	return errors.Join(errs...)
}

// Keys lists every setting name in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the effective value of a setting.
func (c *Config) Get(key string) (any, error) {
	if _, ok := defaults[key]; !ok {
		return nil, fmt.Errorf("unknown setting %q: must be one of %q", key, Keys())
	}
	return c.v.Get(key), nil
}

// Set validates one setting and writes it to config.yaml together with
// the values already in the file. Values that only come from defaults or
// TRACKER_* variables are not persisted.
func (c *Config) Set(key, value string) error {
	def, ok := defaults[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: must be one of %q", key, Keys())
	}

	var typed any = value
	if _, isInt := def.(int); isInt {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("setting %s: %q is not a number", key, value)
		}
		typed = n
	}

	file, err := readFile(c.ConfigPath)
	if err != nil {
		return err
	}
	file.Set(key, typed)

	// The file must be valid on its own, not only while the environment
	// happens to override the bad value.
	if _, _, err := layered(file, false); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	v, settings, err := layered(file, true)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	if err := file.WriteConfigAs(c.ConfigPath); err != nil {
		return fmt.Errorf("writing %s: %w", configFileName, err)
	}

	c.v = v
	c.Settings = settings
	return nil
}

// Exists checks if the tracker directory and DB file both exist.
// It returns an error for non-existence failures (e.g. permission errors).
func (c *Config) Exists() (bool, error) {
	if _, err := os.Stat(c.TrackerDir); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := os.Stat(c.DBPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var (
	defaultName     string
	defaultNameOnce sync.Once
)

// DefaultDisplayName suggests a display name for new accounts.
// It tries git config user.name first and falls back to the OS username.
// The result is cached for the lifetime of the process.
func DefaultDisplayName() string {
	defaultNameOnce.Do(func() {
		defaultName = resolveName()
	})
	return defaultName
}

func resolveName() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "git", "config", "user.name").Output()
	if err == nil {
		if name := strings.TrimSpace(string(out)); name != "" {
			return name
		}
	}

	u, err := user.Current()
	if err == nil && u.Username != "" {
		return u.Username
	}

	return ""
}
