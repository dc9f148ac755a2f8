// Package config loads ts2ass settings from defaults, an optional YAML file,
// TS2ASS_ environment variables and command line flags.
package config

import (
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "TS2ASS"

	ProviderMicrosoft = "microsoft"
	ProviderNone      = "none"

	defaultEndpoint      = "https://api.cognitive.microsofttranslator.com"
	defaultHeight        = 540
	defaultRetryAttempts = 3
	defaultRetryDelay    = time.Second
	defaultTimeout       = 30 * time.Second
	defaultWidth         = 960
	defaultWorkers       = 4
)

type Config struct {
	Input     InputConfig     `mapstructure:"input"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Output    OutputConfig    `mapstructure:"output"`
	Translate TranslateConfig `mapstructure:"translate"`
}

type InputConfig struct {
	Resync bool `mapstructure:"resync"`
}

type LoggingConfig struct {
	Format string `mapstructure:"format"` // json, text
	Level  string `mapstructure:"level"`  // debug, info, warn, error
}

type OutputConfig struct {
	EmitPositions bool   `mapstructure:"emit_positions"`
	Format        string `mapstructure:"format"` // ass, srt
	Height        int    `mapstructure:"height"`
	Suffix        string `mapstructure:"suffix"`
	Title         string `mapstructure:"title"`
	Width         int    `mapstructure:"width"`
}

type TranslateConfig struct {
	APIKey        string        `mapstructure:"api_key" masq:"secret"`
	CachePath     string        `mapstructure:"cache_path"`
	Endpoint      string        `mapstructure:"endpoint"`
	From          string        `mapstructure:"from"`
	Provider      string        `mapstructure:"provider"` // none, microsoft
	Region        string        `mapstructure:"region"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	Timeout       time.Duration `mapstructure:"timeout"`
	To            string        `mapstructure:"to"`
	Workers       int           `mapstructure:"workers"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("input.resync", false)

	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.level", "info")

	v.SetDefault("output.emit_positions", false)
	v.SetDefault("output.format", "ass")
	v.SetDefault("output.height", defaultHeight)
	v.SetDefault("output.suffix", "_ENG")
	v.SetDefault("output.title", "")
	v.SetDefault("output.width", defaultWidth)

	v.SetDefault("translate.api_key", "")
	v.SetDefault("translate.cache_path", "")
	v.SetDefault("translate.endpoint", defaultEndpoint)
	v.SetDefault("translate.from", "ja")
	v.SetDefault("translate.provider", ProviderNone)
	v.SetDefault("translate.region", "")
	v.SetDefault("translate.retry_attempts", defaultRetryAttempts)
	v.SetDefault("translate.retry_delay", defaultRetryDelay)
	v.SetDefault("translate.timeout", defaultTimeout)
	v.SetDefault("translate.to", "en")
	v.SetDefault("translate.workers", defaultWorkers)
}

// Load reads the configuration through v, which may already carry bound
// flags. A nil v starts from an empty viper instance. Without configPath the
// file .ts2ass.yaml is looked up in the working and home directories; a
// missing file is not an error.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".ts2ass")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if readErr := v.ReadInConfig(); readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, errors.Wrap(readErr, "failed to read config file")
		}
	}

	var cfg Config
	if unmarshalErr := v.Unmarshal(&cfg); unmarshalErr != nil {
		return nil, errors.Wrap(unmarshalErr, "failed to unmarshal config")
	}

	cfg.normalize()

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, errors.Wrap(validateErr, "failed to validate config")
	}

	return &cfg, nil
}

func (c *Config) normalize() {
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}

	c.Output.Format = strings.ToLower(c.Output.Format)
	c.Translate.Provider = strings.ToLower(c.Translate.Provider)
}

func (c *Config) Validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		return errors.Newf("logging.level must be one of: debug, info, warn, error, got %q", c.Logging.Level)
	}
	if !slices.Contains([]string{"json", "text"}, c.Logging.Format) {
		return errors.Newf("logging.format must be one of: json, text, got %q", c.Logging.Format)
	}

	if !slices.Contains([]string{"ass", "srt"}, c.Output.Format) {
		return errors.Newf("output.format must be one of: ass, srt, got %q", c.Output.Format)
	}
	if c.Output.Width < 1 || c.Output.Height < 1 {
		return errors.New("output.width and output.height must be positive")
	}
	if c.Output.Suffix == "" {
		return errors.New("output.suffix is required")
	}

	switch c.Translate.Provider {
	case ProviderNone:
	case ProviderMicrosoft:
		if c.Translate.APIKey == "" {
			return errors.New("translate.api_key is required for the microsoft provider")
		}
	default:
		return errors.Newf("translate.provider must be one of: none, microsoft, got %q", c.Translate.Provider)
	}

	if c.Translate.Workers < 1 {
		return errors.New("translate.workers must be at least 1")
	}
	if c.Translate.RetryAttempts < 0 {
		return errors.New("translate.retry_attempts must not be negative")
	}

	return nil
}
