// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package config loads and persists the Devkeep configuration file. Values
// are resolved through viper with the usual precedence: defaults, config
// file, environment (DEVKEEP_*), then command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	currentMu sync.RWMutex
	current   Config
)

// SetCurrent records the resolved configuration for the running process.
// The CLI calls this once after Load; views read it through Current.
func SetCurrent(c Config) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = c
}

// Current returns the configuration recorded by SetCurrent.
func Current() Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// Config is the persisted application configuration.
type Config struct {
	Language   string `mapstructure:"language" yaml:"language"`
	Debug      bool   `mapstructure:"debug" yaml:"debug"`
	Demo       bool   `mapstructure:"demo" yaml:"demo"`
	HelperPath string `mapstructure:"helper_path" yaml:"helper_path"`
	DBType     string `mapstructure:"db_type" yaml:"db_type"`
	DSN        string `mapstructure:"dsn" yaml:"dsn"`

	// Remote is the optional SFTP target for backup push/pull.
	Remote RemoteConfig `mapstructure:"remote" yaml:"remote"`
}

// RemoteConfig identifies the remote backup host.
type RemoteConfig struct {
	Host    string `mapstructure:"host" yaml:"host"`
	User    string `mapstructure:"user" yaml:"user"`
	KeyFile string `mapstructure:"key_file" yaml:"key_file"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

// Defaults returns the default configuration values keyed for viper.
func Defaults() map[string]any {
	return map[string]any{
		"language": "en",
		"debug":    false,
		"demo":     false,
		"db_type":  "sqlite",
		"dsn":      "",
	}
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Devkeep")
		default:
			configDir = "/etc/devkeep"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "devkeep")
	}

	return filepath.Join(configDir, "devkeep.yaml"), nil
}

// Load resolves the configuration for the given command. An explicit
// config file path (from --config) takes precedence over the standard
// locations.
func Load(cmd *cobra.Command, explicitPath *string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("devkeep")
	v.SetConfigType("yaml")

	if explicitPath != nil && *explicitPath != "" {
		v.SetConfigFile(*explicitPath)
	}

	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; anything else is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("devkeep")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}

// Write persists the configuration to the user (or system) config file.
func Write(c *Config, system bool) error {
	path, err := getConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	return os.WriteFile(path, data, 0600)
}

// DataDir returns the directory for the local database and exports,
// creating it if needed.
func DataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	dir := filepath.Join(base, "devkeep")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
