// Package config loads docgen settings from defaults, an optional docgen.yaml
// file, DOCGEN_ environment variables and command flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix     = "DOCGEN"
	EnvConfigPath = "DOCGEN_CONFIG_PATH"
	FileName      = "docgen"
)

type Config struct {
	Renderer        string `mapstructure:"renderer" validate:"required"`
	Format          string `mapstructure:"format" validate:"omitempty,oneof=descriptor hcl jsonschema openapi"`
	Locale          string `mapstructure:"locale" validate:"required"`
	LogLevel        string `mapstructure:"log_level" validate:"required,uppercase,oneof=DEBUG INFO WARN ERROR"`
	Output          string `mapstructure:"output"`
	TemplatesDir    string `mapstructure:"templates_dir"`
	Sanitize        bool   `mapstructure:"sanitize"`
	Labeler         string `mapstructure:"labeler" validate:"oneof=sentence title"`
	HTTPTimeoutSecs int    `mapstructure:"http_timeout_secs" validate:"min=0,max=300"`
}

// HTTPTimeout returns the remote loading timeout. Zero disables HTTP sources.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSecs) * time.Second
}

// flagKeys maps config keys to the command flag that overrides them.
var flagKeys = map[string]string{
	"renderer":          "renderer",
	"format":            "format",
	"locale":            "locale",
	"log_level":         "log-level",
	"output":            "output",
	"templates_dir":     "templates",
	"sanitize":          "sanitize",
	"labeler":           "labeler",
	"http_timeout_secs": "http-timeout",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("renderer", "apidoc")
	v.SetDefault("format", "")
	v.SetDefault("locale", "en")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("output", "")
	v.SetDefault("templates_dir", "")
	v.SetDefault("sanitize", false)
	v.SetDefault("labeler", "sentence")
	v.SetDefault("http_timeout_secs", 0)
}

// Load resolves the configuration. Flags that were not changed on the
// command line do not override file or environment values. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile := os.Getenv(EnvConfigPath); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/docgen")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
		slog.Debug("config file not found, using defaults and environment")
	} else {
		slog.Debug("configuration loaded", "file", v.ConfigFileUsed())
	}

	if flags != nil {
		for key, name := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil || !flag.Changed {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil configuration")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config: validate: %w", err)
	}
	return nil
}
