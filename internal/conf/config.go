// config.go: settings struct and functions to load and save the application settings.
package conf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SQLiteSettings contains settings for the SQLite database output
type SQLiteSettings struct {
	Enabled bool   // true to enable SQLite output
	Path    string // path to the SQLite database file
}

// MySQLSettings contains settings for the MySQL database output
type MySQLSettings struct {
	Enabled  bool   // true to enable MySQL output
	Username string // MySQL username
	Password string // MySQL password
	Database string // MySQL database name
	Host     string // MySQL host
	Port     string // MySQL port
}

// OutputSettings selects and configures the record store backend
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// GBIFSettings configures the taxonomic backbone lookup client
type GBIFSettings struct {
	BaseURL       string        // GBIF API base URL
	Timeout       time.Duration // per-request timeout
	CacheTTL      time.Duration // lookup response cache TTL, 0 disables caching
	RateLimitMS   int           // milliseconds between requests
	MinConfidence int           // minimum backbone match confidence (0-100)
}

// ImportSettings configures upload processing
type ImportSettings struct {
	Verbose bool // emit progress diagnostics, warnings and errors are always emitted
}

// LogSettings holds the import service log file settings
type LogSettings struct {
	Enabled bool   // true to enable the service log file
	Path    string // path to the log file
}

// MainSettings holds application wide settings
type MainSettings struct {
	Name string // name of the running node
	Log  LogSettings
}

// Settings is the top level configuration struct
type Settings struct {
	Debug  bool
	Main   MainSettings
	Output OutputSettings
	GBIF   GBIFSettings
	Import ImportSettings
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment into a Settings struct.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()
	return settings, nil
}

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
		if errors.As(err, &configFileNotFoundError) {
			// No config file present, defaults apply; write one for the user
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// Setting returns the current settings instance, loading it if needed.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetDefaultConfigPaths returns the search paths for the configuration file.
func GetDefaultConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}
	return []string{
		".",
		filepath.Join(home, ".config", "pathotrack"),
	}, nil
}

// createDefaultConfig writes the current defaults as a yaml config file.
func createDefaultConfig(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	configPath := filepath.Join(dir, "config.yaml")

	out, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return fmt.Errorf("error marshaling default config: %w", err)
	}
	if err := os.WriteFile(configPath, out, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}
	log.Printf("Created default config file at %s", configPath)
	return viper.ReadInConfig()
}
