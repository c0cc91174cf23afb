// File: internal/config/config_test.go
package config

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "htmlview", cfg.Logger.ServiceName)
	assert.Equal(t, "green", cfg.Logger.Colors.Info)
	assert.Equal(t, 800, cfg.Render.ViewportWidth)
	assert.Equal(t, 1.0, cfg.Render.PixelScale)
	assert.Equal(t, []string{"all", "screen", "mobile"}, cfg.Render.MediaTypes)
	assert.Equal(t, 13, cfg.Render.FontSizePx)
	assert.True(t, cfg.Render.UserAgentSheet)
	assert.Equal(t, FormatText, cfg.Render.OutputFormat)
	assert.Equal(t, 4, cfg.Fetch.Concurrency)
	assert.Equal(t, 10.0, cfg.Fetch.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 32, cfg.Fetch.MaxImports)

	assert.NoError(t, cfg.Validate(), "defaults must be valid")
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		expected string
	}{
		{"Viewport width", func(c *Config) { c.Render.ViewportWidth = 0 }, "viewport_width must be a positive integer"},
		{"Pixel scale", func(c *Config) { c.Render.PixelScale = -1 }, "pixel_scale must be greater than 0"},
		{"Font size", func(c *Config) { c.Render.FontSizePx = 0 }, "font_size_px must be a positive integer"},
		{"Media types", func(c *Config) { c.Render.MediaTypes = nil }, "media_types must name at least one media type"},
		{"Output format", func(c *Config) { c.Render.OutputFormat = "xml" }, `output_format must be "text" or "json", got "xml"`},
		{"Fetch concurrency", func(c *Config) { c.Fetch.Concurrency = 0 }, "fetch configuration invalid: concurrency must be a positive integer"},
		{"Rate limit", func(c *Config) { c.Fetch.RateLimit = 0 }, "rate_limit must be greater than 0"},
		{"Timeout", func(c *Config) { c.Fetch.Timeout = 0 }, "timeout must be a positive duration"},
		{"Import limit", func(c *Config) { c.Fetch.MaxImports = -3 }, "max_imports must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expected)
		})
	}
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
render:
  viewport_width: 1024
  pixel_scale: 2
  output_format: json
  media_types: [print]
fetch:
  timeout: 3s
  max_imports: 5
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, 1024, cfg.Render.ViewportWidth)
		assert.Equal(t, 2.0, cfg.Render.PixelScale)
		assert.Equal(t, FormatJSON, cfg.Render.OutputFormat)
		assert.Equal(t, []string{"print"}, cfg.Render.MediaTypes)
		assert.Equal(t, 3*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, 5, cfg.Fetch.MaxImports)
		// Untouched keys keep their defaults.
		assert.Equal(t, 4, cfg.Fetch.Concurrency)
		assert.Equal(t, "info", cfg.Logger.Level)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("render.output_format", "pdf")

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "output_format")
	})

	t.Run("Environment Variable Binding", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString("render:\n  viewport_width: 640\n")))

		t.Setenv("HTMLVIEW_RENDER_VIEWPORT_WIDTH", "320")
		t.Setenv("HTMLVIEW_LOGGER_LEVEL", "debug")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, 320, cfg.Render.ViewportWidth, "environment overrides the config file")
		assert.Equal(t, "debug", cfg.Logger.Level)
	})

	t.Run("Home directory expansion", func(t *testing.T) {
		home, err := homedir.Dir()
		if err != nil {
			t.Skip("no home directory")
		}
		v := viper.New()
		SetDefaults(v)
		v.Set("logger.log_file", "~/htmlview.log")
		v.Set("render.style_sheets", []string{"~/extra.css", "/abs/site.css"})

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "htmlview.log"), cfg.Logger.LogFile)
		assert.Equal(t, []string{filepath.Join(home, "extra.css"), "/abs/site.css"}, cfg.Render.StyleSheets)
	})
}
