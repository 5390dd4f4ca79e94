package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smm-asset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: https://smm.example.com
username: drone7
password: secret
asset: drone7
timeout: 10s
validateSSL: true
`), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://smm.example.com", cfg.Host)
	assert.Equal(t, "drone7", cfg.Username)
	assert.True(t, cfg.GetValidateSSL())
	assert.Equal(t, "warn", cfg.LogLevel)
	d, err := cfg.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)
	require.NoError(t, cfg.Validate())
}

func TestFindAndLoadConfig_Defaults(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.False(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetFormEncoding())
	d, err := cfg.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)
}

func TestFindAndLoadConfig_HiddenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".smm-asset.yaml"), []byte("host: http://localhost:8000\n"), 0600))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.Host)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: [unterminated"), 0600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Host = "https://a.example.com"
	base.Username = "one"

	merged := base.Merge(&Config{
		Username:     "two",
		ValidateSSL:  BoolPtr(true),
		FormEncoding: nil,
	})

	assert.Equal(t, "https://a.example.com", merged.Host)
	assert.Equal(t, "two", merged.Username)
	assert.True(t, merged.GetValidateSSL())
	assert.False(t, merged.GetFormEncoding())
	assert.Equal(t, "one", base.Username)
	assert.Same(t, base, base.Merge(nil))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"missing host", Config{Username: "u"}, "host is required"},
		{"missing user", Config{Host: "https://x"}, "username is required"},
		{"bad timeout", Config{Host: "https://x", Username: "u", Timeout: "soon"}, "invalid timeout"},
		{"ok", Config{Host: "https://x", Username: "u"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.Host = "https://smm.example.com"
	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Host, loaded.Host)
}
