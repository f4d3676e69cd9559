// Package conf loads and holds the application configuration for the
// FeatherQuest engine. It defines the settings struct and functions to load
// and save the settings.
package conf

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled bool   // true to enable this log
	Path    string // path to log file
}

// MainSettings contains main application settings
type MainSettings struct {
	Name string    // name of this node, can be used to identify the source of observations
	Log  LogConfig // main log configuration
}

// EBirdSettings contains settings for the eBird API client
type EBirdSettings struct {
	APIKey       string        // eBird API key
	BaseURL      string        // eBird API base URL
	Timeout      time.Duration // per-request timeout
	CacheTTL     time.Duration // species search cache TTL
	RateLimitMS  int           // milliseconds between requests
	LookbackDays int           // recent sightings lookback window in days
}

// OutputSettings contains settings for the observation store backends
type OutputSettings struct {
	SQLite struct {
		Enabled bool   // true to enable sqlite output
		Path    string // path to sqlite database
	}
	MySQL struct {
		Enabled  bool   // true to enable mysql output
		Username string // mysql database username
		Password string // mysql database user password
		Database string // mysql database name
		Host     string // mysql database host
		Port     string // mysql database port
	}
}

// Settings contains all runtime settings
type Settings struct {
	Debug bool // true to enable debug mode

	Main   MainSettings
	EBird  EBirdSettings
	Output OutputSettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration and returns the settings
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	setSettings(settings)
	return settings, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !asConfigNotFound(err, &configFileNotFoundError) {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		// No config file found, write the defaults so the next run starts
		// from an editable file.
		if path, err := createDefaultConfig(); err != nil {
			log.Printf("Config file not found and writing defaults failed, using built-in defaults: %v", err)
		} else {
			log.Printf("Config file not found, created %s with default values", path)
		}
	}

	return nil
}

// createDefaultConfig writes the default settings to the last (most specific)
// default config path and returns the path written.
func createDefaultConfig() (string, error) {
	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return "", fmt.Errorf("error unmarshaling default config: %w", err)
	}

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return "", err
	}
	path := filepath.Join(configPaths[len(configPaths)-1], "config.yaml")

	if err := SaveYAML(settings, path); err != nil {
		return "", err
	}
	return path, nil
}

func asConfigNotFound(err error, target *viper.ConfigFileNotFoundError) bool {
	if cnf, ok := err.(viper.ConfigFileNotFoundError); ok {
		*target = cnf
		return true
	}
	return false
}

// GetDefaultConfigPaths returns the list of directories searched for config.yaml.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "featherquest"))
	}
	return paths, nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

func setSettings(settings *Settings) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	settingsInstance = settings
}

// SaveYAML writes the given settings to the specified path as YAML.
func SaveYAML(settings *Settings, path string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to yaml: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file %s: %w", path, err)
	}

	return nil
}
