package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tinytelemetry/orbit/internal/logging"
	"github.com/tinytelemetry/orbit/internal/model"
)

const (
	defaultAPIURL   = "http://localhost:4000"
	defaultLogLevel = "info"
)

// cliConfig holds only client-relevant configuration.
type cliConfig struct {
	APIURL           string        `mapstructure:"api-url" validate:"required,url"`
	SpaceXURL        string        `mapstructure:"spacex-url" validate:"required,url"`
	HTTPTimeout      time.Duration `mapstructure:"http-timeout" validate:"min=100ms"`
	SessionFile      string        `mapstructure:"session-file" validate:"required"`
	Fixture          string        `mapstructure:"fixture"`
	LogLevel         string        `mapstructure:"log-level" validate:"oneof=trace debug info warn error"`
	LogFile          string        `mapstructure:"log-file" validate:"required"`
	CarouselInterval time.Duration `mapstructure:"carousel-interval" validate:"min=500ms"`
	ConfigPath       string        `mapstructure:"-"`
}

var flagKeys = map[string]string{
	"api-url":    "api-url",
	"spacex-url": "spacex-url",
	"fixture":    "fixture",
	"log-level":  "log-level",
}

func loadCLIConfig(configPath string, flags *pflag.FlagSet) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("ORBIT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("api-url", defaultAPIURL)
	v.SetDefault("spacex-url", model.DefaultSpaceXURL)
	v.SetDefault("http-timeout", model.DefaultHTTPTimeout)
	v.SetDefault("session-file", logging.StateFile("session.json"))
	v.SetDefault("fixture", "")
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-file", logging.StateFile("orbit-tui.log"))
	v.SetDefault("carousel-interval", model.DefaultCarouselInterval)

	if flags != nil {
		for flag, k := range flagKeys {
			if f := flags.Lookup(flag); f != nil && f.Changed {
				if err := v.BindPFlag(k, f); err != nil {
					return cfg, err
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "orbit", "config.yml"))
	}

	found := true
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
		found = false
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if found {
		cfg.ConfigPath = v.ConfigFileUsed()
	}

	for _, p := range []*string{&cfg.SessionFile, &cfg.LogFile, &cfg.Fixture} {
		if strings.HasPrefix(*p, "~/") {
			*p = filepath.Join(home, (*p)[2:])
		}
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return cfg, fmt.Errorf("invalid %s %q (%s)", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag())
		}
		return cfg, err
	}
	return cfg, nil
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()
