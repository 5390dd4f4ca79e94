package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:      "30s",
		ValidateSSL:  BoolPtr(false),
		FormEncoding: BoolPtr(false),
		LogLevel:     "warn",
		LogFormat:    "text",
		NoColor:      BoolPtr(false),
	}
}
