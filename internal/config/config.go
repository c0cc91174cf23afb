// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding configuration
// keys, e.g. HTMLVIEW_RENDER_VIEWPORT_WIDTH.
const EnvPrefix = "HTMLVIEW"

// Output formats of the render command.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds the entire application configuration.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Render RenderConfig `mapstructure:"render" yaml:"render"`
	Fetch  FetchConfig  `mapstructure:"fetch" yaml:"fetch"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// RenderConfig controls cascading and layout.
type RenderConfig struct {
	// ViewportWidth is the layout width in CSS pixels.
	ViewportWidth int `mapstructure:"viewport_width" yaml:"viewport_width"`
	// PixelScale is the number of device pixels per CSS pixel.
	PixelScale float64 `mapstructure:"pixel_scale" yaml:"pixel_scale"`
	// MediaTypes select the style sheets and @media blocks that apply.
	MediaTypes []string `mapstructure:"media_types" yaml:"media_types"`
	// FontSizePx is the pixel size the built-in face is designed at.
	FontSizePx int `mapstructure:"font_size_px" yaml:"font_size_px"`
	// UserAgentSheet enables the default style sheet.
	UserAgentSheet bool `mapstructure:"user_agent_sheet" yaml:"user_agent_sheet"`
	// OutputFormat is "text" or "json".
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	// StyleSheets are extra author sheets, applied after the document's own.
	StyleSheets []string `mapstructure:"style_sheets" yaml:"style_sheets"`
}

// FetchConfig controls loading of documents and style sheets.
type FetchConfig struct {
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
	RateLimit   float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxImports  int           `mapstructure:"max_imports" yaml:"max_imports"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "htmlview")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Render --
	v.SetDefault("render.viewport_width", 800)
	v.SetDefault("render.pixel_scale", 1.0)
	v.SetDefault("render.media_types", []string{"all", "screen", "mobile"})
	v.SetDefault("render.font_size_px", 13)
	v.SetDefault("render.user_agent_sheet", true)
	v.SetDefault("render.output_format", FormatText)
	v.SetDefault("render.style_sheets", []string{})

	// -- Fetch --
	v.SetDefault("fetch.concurrency", 4)
	v.SetDefault("fetch.rate_limit", 10.0)
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.max_imports", 32)
}

// BindEnv makes every configuration key overridable from the environment.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	BindEnv(v)

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// expandPaths resolves ~ in file system paths.
func (c *Config) expandPaths() error {
	var err error
	if c.Logger.LogFile, err = homedir.Expand(c.Logger.LogFile); err != nil {
		return fmt.Errorf("logger.log_file: %w", err)
	}
	for i, p := range c.Render.StyleSheets {
		if c.Render.StyleSheets[i], err = homedir.Expand(p); err != nil {
			return fmt.Errorf("render.style_sheets: %w", err)
		}
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.Render.Validate(); err != nil {
		return fmt.Errorf("render configuration invalid: %w", err)
	}
	if err := c.Fetch.Validate(); err != nil {
		return fmt.Errorf("fetch configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the render settings.
func (r *RenderConfig) Validate() error {
	if r.ViewportWidth <= 0 {
		return fmt.Errorf("viewport_width must be a positive integer")
	}
	if r.PixelScale <= 0 {
		return fmt.Errorf("pixel_scale must be greater than 0")
	}
	if r.FontSizePx <= 0 {
		return fmt.Errorf("font_size_px must be a positive integer")
	}
	if len(r.MediaTypes) == 0 {
		return fmt.Errorf("media_types must name at least one media type")
	}
	switch r.OutputFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("output_format must be %q or %q, got %q", FormatText, FormatJSON, r.OutputFormat)
	}
	return nil
}

// Validate checks the fetch settings.
func (f *FetchConfig) Validate() error {
	if f.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be a positive integer")
	}
	if f.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be greater than 0")
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("timeout must be a positive duration")
	}
	if f.MaxImports <= 0 {
		return fmt.Errorf("max_imports must be a positive integer")
	}
	return nil
}
