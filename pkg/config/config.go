package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/px-cli/pkg/bytesize"
)

// EnvPrefix prefixes environment overrides, e.g. PX_IMMICH_API_KEY
const EnvPrefix = "PX"

type Config struct {
	// Library selects the backend: local, immich or s3
	Library string       `mapstructure:"library" yaml:"library" validate:"required,oneof=local immich s3"`
	Local   LocalConfig  `mapstructure:"local" yaml:"local"`
	Immich  ImmichConfig `mapstructure:"immich" yaml:"immich"`
	S3      S3Config     `mapstructure:"s3" yaml:"s3"`

	// Loading
	MaxWorkers  int           `mapstructure:"max_workers" yaml:"max_workers" validate:"gte=1,lte=64"`
	PageSize    int           `mapstructure:"page_size" yaml:"page_size" validate:"gte=1,lte=1000"`
	SizeTimeout time.Duration `mapstructure:"size_timeout" yaml:"size_timeout" validate:"gte=0"`

	// Listing
	DefaultSort string        `mapstructure:"default_sort" yaml:"default_sort" validate:"oneof=date size name"`
	ReverseSort bool          `mapstructure:"reverse_sort" yaml:"reverse_sort"`
	MinSize     bytesize.Size `mapstructure:"min_size" yaml:"min_size"`

	// UI Settings
	DisplayDateFormat  string `mapstructure:"display_date_format" yaml:"display_date_format"`
	ColorTheme         string `mapstructure:"color_theme" yaml:"color_theme" validate:"oneof=auto dark light"`
	SyntaxHighlighting bool   `mapstructure:"syntax_highlighting" yaml:"syntax_highlighting"`
	HighlightStyle     string `mapstructure:"highlight_style" yaml:"highlight_style"`
	ThumbnailWidth     int    `mapstructure:"thumbnail_width" yaml:"thumbnail_width" validate:"gte=4,lte=64"`

	// Performance
	WatchDebounceMS int `mapstructure:"watch_debounce_ms" yaml:"watch_debounce_ms" validate:"gte=0"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// LocalConfig configures the directory backend
type LocalConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ImmichConfig configures the Immich backend
type ImmichConfig struct {
	URL    string `mapstructure:"url" yaml:"url" validate:"omitempty,url"`
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
}

// S3Config configures the S3 backend. Credentials fall back to the
// default AWS chain when AccessKey is empty.
type S3Config struct {
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix"`
	Region    string `mapstructure:"region" yaml:"region"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint" validate:"omitempty,url"`
	PathStyle bool   `mapstructure:"path_style" yaml:"path_style"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
}

// LoggingConfig controls the structured log. Output is "none", "stdout",
// "stderr" or a file path; empty means the default log file.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
	Output string `mapstructure:"output" yaml:"output"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Library: "local",
		Local: LocalConfig{
			Path: filepath.Join(home, "Pictures"),
		},
		MaxWorkers:         4,
		PageSize:           20,
		SizeTimeout:        5 * time.Second,
		DefaultSort:        "date",
		ReverseSort:        false,
		MinSize:            0,
		DisplayDateFormat:  "Jan 02, 2006",
		ColorTheme:         "auto",
		SyntaxHighlighting: true,
		HighlightStyle:     "monokai",
		ThumbnailWidth:     16,
		WatchDebounceMS:    500,
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// LoadEnv loads KEY=value files into the process environment. Missing
// files are skipped; variables already set are not overridden.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from the specified file path.
//
// Precedence, highest first: PX_* environment variables, the file, defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides apply even
// when the file does not mention them
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("library", d.Library)
	v.SetDefault("local.path", d.Local.Path)
	v.SetDefault("immich.url", d.Immich.URL)
	v.SetDefault("immich.api_key", d.Immich.APIKey)
	v.SetDefault("s3.bucket", d.S3.Bucket)
	v.SetDefault("s3.prefix", d.S3.Prefix)
	v.SetDefault("s3.region", d.S3.Region)
	v.SetDefault("s3.endpoint", d.S3.Endpoint)
	v.SetDefault("s3.path_style", d.S3.PathStyle)
	v.SetDefault("s3.access_key", d.S3.AccessKey)
	v.SetDefault("s3.secret_key", d.S3.SecretKey)
	v.SetDefault("max_workers", d.MaxWorkers)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("size_timeout", d.SizeTimeout)
	v.SetDefault("default_sort", d.DefaultSort)
	v.SetDefault("reverse_sort", d.ReverseSort)
	v.SetDefault("min_size", d.MinSize.String())
	v.SetDefault("display_date_format", d.DisplayDateFormat)
	v.SetDefault("color_theme", d.ColorTheme)
	v.SetDefault("syntax_highlighting", d.SyntaxHighlighting)
	v.SetDefault("highlight_style", d.HighlightStyle)
	v.SetDefault("thumbnail_width", d.ThumbnailWidth)
	v.SetDefault("watch_debounce_ms", d.WatchDebounceMS)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
}

// applyDefaults fills essential values left empty in the file
func applyDefaults(cfg *Config) {
	d := DefaultConfig()
	if cfg.Library == "" {
		cfg.Library = d.Library
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = d.MaxWorkers
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = d.PageSize
	}
	if cfg.DefaultSort == "" {
		cfg.DefaultSort = d.DefaultSort
	}
	if cfg.DisplayDateFormat == "" {
		cfg.DisplayDateFormat = d.DisplayDateFormat
	}
	if cfg.ColorTheme == "" {
		cfg.ColorTheme = d.ColorTheme
	}
	if cfg.HighlightStyle == "" {
		cfg.HighlightStyle = d.HighlightStyle
	}
	if cfg.ThumbnailWidth == 0 {
		cfg.ThumbnailWidth = d.ThumbnailWidth
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = d.Logging.Format
	}
	cfg.Local.Path = ExpandHome(cfg.Local.Path)
}

// Validate checks field ranges and the settings the chosen backend needs
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q check (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}

	switch c.Library {
	case "local":
		if c.Local.Path == "" {
			return errors.New("local.path is required for the local library")
		}
	case "immich":
		if c.Immich.URL == "" || c.Immich.APIKey == "" {
			return errors.New("immich.url and immich.api_key are required for the immich library")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3.bucket is required for the s3 library")
		}
	}
	return nil
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold API keys
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading ~ with the home directory
func ExpandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
