package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	smmhttp "github.com/canterburyairpatrol/smm-asset/packages/http"
)

// Config represents the smm-asset configuration
type Config struct {
	Host         string `yaml:"host,omitempty"`
	Username     string `yaml:"username,omitempty"`
	Password     string `yaml:"password,omitempty"`
	Asset        string `yaml:"asset,omitempty"`
	Timeout      string `yaml:"timeout,omitempty"` // Go duration, e.g. 30s
	ValidateSSL  *bool  `yaml:"validateSSL,omitempty"`
	Proxy        string `yaml:"proxy,omitempty"`
	FormEncoding *bool  `yaml:"formEncoding,omitempty"`
	LogLevel     string `yaml:"logLevel,omitempty"`
	LogFormat    string `yaml:"logFormat,omitempty"`
	Journal      string `yaml:"journal,omitempty"` // sqlite:// connection string
	NoColor      *bool  `yaml:"noColor,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetValidateSSL returns the validate SSL setting, defaulting to false
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, false)
}

// GetFormEncoding returns the form encoding setting, defaulting to false
func (c *Config) GetFormEncoding() bool {
	return getBool(c.FormEncoding, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetTimeout parses Timeout, falling back to the transport default.
func (c *Config) GetTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return smmhttp.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".smm-asset.yaml",
	".smm-asset.yml",
	"smm-asset.yaml",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.Host != "" {
		result.Host = other.Host
	}
	if other.Username != "" {
		result.Username = other.Username
	}
	if other.Password != "" {
		result.Password = other.Password
	}
	if other.Asset != "" {
		result.Asset = other.Asset
	}
	if other.Timeout != "" {
		result.Timeout = other.Timeout
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		result.LogFormat = other.LogFormat
	}
	if other.Journal != "" {
		result.Journal = other.Journal
	}

	// Boolean flags - only override if explicitly set in other config
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.FormEncoding != nil {
		result.FormEncoding = other.FormEncoding
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	return &result
}

// Validate checks the settings needed to talk to a server. The host URL
// itself is checked by the session, which reports StateHostInvalid.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if _, err := c.GetTimeout(); err != nil {
		return err
	}
	return nil
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
